package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/middleware"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/types"
	"github.com/localnerve/recipedb/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles account, session and password reset routes
type AuthHandler struct {
	DB           *gorm.DB
	Secret       []byte
	TTL          time.Duration
	SecureCookie bool
	Resets       *services.PasswordResetService
}

// sessionResponse is returned by register and login
type sessionResponse struct {
	Message string               `json:"message"`
	User    *services.UserResult `json:"user"`
	Token   string               `json:"token"`
}

func (h *AuthHandler) startSession(c *fiber.Ctx, user *models.User, status int, message string) error {
	token, expires, err := services.IssueSession(h.Secret, user, h.TTL)
	if err != nil {
		return types.Persistence("Error starting session", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		Secure:   h.SecureCookie,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(status).JSON(sessionResponse{
		Message: message,
		User:    services.PresentUser(user),
		Token:   token,
	})
}

// Register handles POST /api/register
// @Summary Register an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body services.RegisterInput true "Account"
// @Success 201 {object} sessionResponse
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body services.RegisterInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	user, err := services.Register(h.DB, body)
	if err != nil {
		return err
	}
	return h.startSession(c, user, fiber.StatusCreated, "Registration successful")
}

// Login handles POST /api/login
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginInput true "Credentials"
// @Success 200 {object} sessionResponse
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body services.LoginInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	user, err := services.Authenticate(h.DB, body)
	if err != nil {
		return err
	}
	return h.startSession(c, user, fiber.StatusOK, "Login successful")
}

// Logout handles POST /api/logout
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.MessageResponseStruct
// @Router /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(services.SessionCookieName)
	return utils.MessageResponse(c, fiber.StatusOK, "Logged out", "", nil)
}

// CurrentUser handles GET /api/user
// @Summary Get the signed in user
// @Tags Auth
// @Produce json
// @Success 200 {object} services.UserResult
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /user [get]
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return types.ErrAuthenticationRequired
	}
	return utils.SuccessResponse(c, services.PresentUser(user), fiber.StatusOK)
}

// ForgotPassword handles POST /api/password/email
// @Summary Send a password reset link
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.ForgotPasswordInput true "Email and reCAPTCHA token"
// @Success 200 {object} services.ForgotPasswordResult
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /password/email [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var body services.ForgotPasswordInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	result, err := h.Resets.SendResetLink(c.UserContext(), body, c.IP())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// ResetPassword handles POST /api/password/reset
// @Summary Reset a password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.ResetPasswordInput true "Reset token and new password"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /password/reset [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var body services.ResetPasswordInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	if err := h.Resets.Reset(body); err != nil {
		return err
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Your password has been reset.", "", nil)
}
