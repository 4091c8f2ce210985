package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

// RegisterInput is the sign up request body
type RegisterInput struct {
	Name                 types.Optional[string] `json:"name"`
	Email                types.Optional[string] `json:"email"`
	Password             types.Optional[string] `json:"password"`
	PasswordConfirmation types.Optional[string] `json:"password_confirmation"`
}

// LoginInput is the sign in request body
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResult is the public view of a user
type UserResult struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// PresentUser maps a user to its public view, nil for nil
func PresentUser(u *models.User) *UserResult {
	if u == nil {
		return nil
	}
	return &UserResult{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin()}
}

// Register creates an account from a sign up request
func Register(db *gorm.DB, in RegisterInput) (*models.User, error) {
	errs := types.FieldErrors{}
	name, _ := requireText(errs, "name", in.Name, 255)
	email := validateEmail(db, errs, in.Email)
	password := validatePassword(errs, in.Password, in.PasswordConfirmation, true)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return insertUser(db, name, email, password, nil)
}

// CreateUser creates an account directly, optionally with admin permissions
func CreateUser(db *gorm.DB, name, email, password string, admin bool) (*models.User, error) {
	errs := types.FieldErrors{}
	name, _ = requireText(errs, "name", types.Some(name), 255)
	email = validateEmail(db, errs, types.Some(email))
	password = validatePassword(errs, types.Some(password), types.Optional[string]{}, false)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var perms models.Permissions
	if admin {
		perms = models.AdminPermissions()
	}
	return insertUser(db, name, email, password, perms)
}

// Authenticate checks credentials, returning the same error for unknown email and bad password
func Authenticate(db *gorm.DB, in LoginInput) (*models.User, error) {
	invalid := types.NewValidationError("email", "These credentials do not match our records.")

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, invalid
	}

	user, err := FindUserByEmail(db, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		return nil, invalid
	}
	return user, nil
}

// GetUser loads a user by id
func GetUser(db *gorm.DB, id uint64) (*models.User, error) {
	var user models.User
	if err := quiet(db).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("User")
		}
		return nil, types.Persistence("Error loading user", err)
	}
	return &user, nil
}

// FindUserByEmail loads a user by email address
func FindUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := quiet(db).Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("User")
		}
		return nil, types.Persistence("Error loading user", err)
	}
	return &user, nil
}

// GrantAdmin enables the administration capabilities for the user with the email
func GrantAdmin(db *gorm.DB, email string) (*models.User, error) {
	user, err := FindUserByEmail(db, email)
	if err != nil {
		return nil, err
	}

	user.Permissions = user.Permissions.Merge(models.AdminPermissions())
	if err := db.Model(user).Update("permissions", user.Permissions).Error; err != nil {
		return nil, types.Persistence("Error updating user", err)
	}
	return user, nil
}

// SetPassword replaces the password of the user with the email
func SetPassword(db *gorm.DB, email, password string) error {
	errs := types.FieldErrors{}
	password = validatePassword(errs, types.Some(password), types.Optional[string]{}, false)
	if err := errs.Err(); err != nil {
		return err
	}

	user, err := FindUserByEmail(db, email)
	if err != nil {
		return err
	}
	return updatePasswordHash(db, user, password)
}

// ProvisionUser returns the local user for an external identity, creating it on first sight
func ProvisionUser(db *gorm.DB, email, name string, admin bool) (*models.User, error) {
	user, err := FindUserByEmail(db, email)
	switch {
	case err == nil:
		if admin && !user.IsAdmin() {
			user.Permissions = user.Permissions.Merge(models.AdminPermissions())
			if err := db.Model(user).Update("permissions", user.Permissions).Error; err != nil {
				return nil, types.Persistence("Error updating user", err)
			}
		}
		return user, nil
	case !errors.Is(err, types.ErrNotFound):
		return nil, err
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = &models.User{Name: name, Email: strings.TrimSpace(email), Permissions: models.Permissions{}}
	if admin {
		user.Permissions = models.AdminPermissions()
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return FindUserByEmail(db, email)
		}
		return nil, types.Persistence("Error creating user", err)
	}
	return user, nil
}

func insertUser(db *gorm.DB, name, email, password string, perms models.Permissions) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, types.Persistence("Error creating user", err)
	}
	if perms == nil {
		perms = models.Permissions{}
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash, Permissions: perms}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.NewValidationError("email", msgTaken("email"))
		}
		return nil, types.Persistence("Error creating user", err)
	}
	return user, nil
}

func updatePasswordHash(db *gorm.DB, user *models.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return types.Persistence("Error updating password", err)
	}
	if err := db.Model(user).Update("password_hash", hash).Error; err != nil {
		return types.Persistence("Error updating password", err)
	}
	user.PasswordHash = hash
	return nil
}

// validateEmail checks format, length and uniqueness
func validateEmail(db *gorm.DB, errs types.FieldErrors, v types.Optional[string]) string {
	email, ok := requireText(errs, "email", v, 255)
	if !ok {
		return ""
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs.Add("email", "The email field must be a valid email address.")
		return ""
	}

	var count int64
	if err := quiet(db).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		errs.Add("email", fmt.Sprintf("The email could not be checked: %v", err))
		return ""
	}
	if count > 0 {
		errs.Add("email", msgTaken("email"))
		return ""
	}
	return email
}

// validatePassword checks length and, when confirm is set, the confirmation field
func validatePassword(errs types.FieldErrors, password, confirmation types.Optional[string], confirm bool) string {
	if wrongType(errs, "password", password, "a string") {
		return ""
	}
	if !password.Present() || password.Value == "" {
		errs.Add("password", msgRequired("password"))
		return ""
	}
	if utf8.RuneCountInString(password.Value) < MinPasswordLength {
		errs.Add("password", fmt.Sprintf("The password field must be at least %d characters.", MinPasswordLength))
		return ""
	}
	if confirm && (!confirmation.Present() || confirmation.Value != password.Value) {
		errs.Add("password", "The password field confirmation does not match.")
		return ""
	}
	return password.Value
}
