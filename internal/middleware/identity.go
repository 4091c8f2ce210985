package middleware

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

// userKey is the fiber.Ctx locals key holding the resolved *models.User
const userKey = "user"

// IdentityProvider resolves the user making a request.
// A request without a valid session resolves to nil and no error.
type IdentityProvider interface {
	Identify(c *fiber.Ctx) (*models.User, error)
}

// NewIdentityProvider builds the provider selected by AUTH_PROVIDER
func NewIdentityProvider(cfg *config.Config, db *gorm.DB) (IdentityProvider, error) {
	switch cfg.AuthProvider {
	case "local":
		return &LocalSessions{DB: db, Secret: []byte(cfg.SessionSecret)}, nil
	case "authorizer":
		return &AuthorizerSessions{DB: db, Config: cfg}, nil
	}
	return nil, fmt.Errorf("unsupported auth provider: %s", cfg.AuthProvider)
}

// LocalSessions reads a signed session from the session cookie or a bearer token
type LocalSessions struct {
	DB     *gorm.DB
	Secret []byte
}

func (p *LocalSessions) Identify(c *fiber.Ctx) (*models.User, error) {
	token := c.Cookies(services.SessionCookieName)
	if token == "" {
		if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	if token == "" {
		return nil, nil
	}

	userID, err := services.ParseSession(p.Secret, token)
	if err != nil {
		return nil, nil
	}

	user, err := services.GetUser(p.DB, userID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// AuthorizerSessions validates the Authorizer session cookie and maps its user to a local account
type AuthorizerSessions struct {
	DB     *gorm.DB
	Config *config.Config
}

func (p *AuthorizerSessions) Identify(c *fiber.Ctx) (*models.User, error) {
	session := c.Cookies(services.AuthorizerCookieName)
	if session == "" {
		return nil, nil
	}

	if !services.IsAuthorizerInitialized() {
		if err := services.InitAuthorizer(p.Config, c.Protocol(), c.Hostname()); err != nil {
			return nil, &types.CustomError{
				Code:    fiber.StatusServiceUnavailable,
				Message: "Authentication service unavailable",
				Type:    "auth.unavailable",
				Err:     err,
			}
		}
	}

	external, err := services.ValidateSession(session)
	if err != nil {
		log.Printf("Authorizer session rejected: %v", err)
		return nil, nil
	}

	return services.ProvisionUser(p.DB, external.Email, external.DisplayName(), external.HasRole("admin"))
}

// Identify resolves the request user into the context, leaving it empty for guests
func Identify(provider IdentityProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := provider.Identify(c)
		if err != nil {
			return err
		}
		if user != nil {
			c.Locals(userKey, user)
		}
		return c.Next()
	}
}

// RequireUser rejects requests that carry no valid session
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return types.ErrAuthenticationRequired
		}
		return c.Next()
	}
}

// CurrentUser returns the user resolved by Identify, or nil
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
