package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/utils"
)

// AuthorizerCookieName is the session cookie set by the Authorizer service
const AuthorizerCookieName = "cookie_session"

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
	authErr    error
)

// ExternalUser is the part of an Authorizer user the service maps to a local account
type ExternalUser struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	GivenName  *string  `json:"given_name"`
	FamilyName *string  `json:"family_name"`
	Nickname   *string  `json:"nickname"`
	Roles      []string `json:"roles"`
}

// DisplayName picks the best available name
func (u *ExternalUser) DisplayName() string {
	switch {
	case u.GivenName != nil && *u.GivenName != "" && u.FamilyName != nil && *u.FamilyName != "":
		return *u.GivenName + " " + *u.FamilyName
	case u.GivenName != nil && *u.GivenName != "":
		return *u.GivenName
	case u.Nickname != nil && *u.Nickname != "":
		return *u.Nickname
	}
	return ""
}

// HasRole reports whether the Authorizer granted the role
func (u *ExternalUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			authErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			cfg.AuthzURL, cfg.AuthzClientID, redirectURL)

		client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			authErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		authClient = client
	})

	return authErr
}

// ValidateSession validates an Authorizer session cookie and returns its user
func ValidateSession(cookie string) (*ExternalUser, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return nil, fmt.Errorf("session is not valid")
	}

	// the SDK user type differs between releases; decode the fields used here
	data, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	var user ExternalUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("session user has no email")
	}
	return &user, nil
}
