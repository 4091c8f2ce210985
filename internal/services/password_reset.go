// password_reset.go
//
// A recipe service with shared and private reference catalogs
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of recipedb.
// recipedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// recipedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with recipedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

// ResetTokenTTL is how long a password reset token stays valid
const ResetTokenTTL = 60 * time.Minute

// ForgotPasswordInput is the reset link request body
type ForgotPasswordInput struct {
	Email          string `json:"email"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// ForgotPasswordResult reports whether a reset link was sent
type ForgotPasswordResult struct {
	Success   bool   `json:"success"`
	UserFound bool   `json:"user_found"`
	Message   string `json:"message"`
}

// ResetPasswordInput is the password reset request body
type ResetPasswordInput struct {
	Email                string                 `json:"email"`
	Token                string                 `json:"token"`
	Password             types.Optional[string] `json:"password"`
	PasswordConfirmation types.Optional[string] `json:"password_confirmation"`
}

// PasswordResetService issues and redeems password reset tokens
type PasswordResetService struct {
	DB       *gorm.DB
	Captcha  CaptchaVerifier
	Mailer   Mailer
	ResetURL string // link base, the token and email are appended as query parameters
	now      func() time.Time
}

func (s *PasswordResetService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// SendResetLink verifies the captcha and mails a reset token to a known address
func (s *PasswordResetService) SendResetLink(ctx context.Context, in ForgotPasswordInput, remoteIP string) (*ForgotPasswordResult, error) {
	errs := types.FieldErrors{}
	email, _ := requireText(errs, "email", types.Some(in.Email), 255)
	if s.captchaEnabled() && strings.TrimSpace(in.RecaptchaToken) == "" {
		errs.Add("recaptcha", "reCAPTCHA token not received. Please complete the reCAPTCHA verification.")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if s.Captcha != nil {
		ok, err := s.Captcha.Verify(ctx, in.RecaptchaToken, remoteIP)
		if err != nil {
			log.Printf("reCAPTCHA verification error: %v", err)
		}
		if err != nil || !ok {
			return nil, types.NewValidationError("recaptcha", "reCAPTCHA verification failed. Please try again.")
		}
	}

	user, err := FindUserByEmail(s.DB, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return &ForgotPasswordResult{
				Success:   false,
				UserFound: false,
				Message:   "User not found",
			}, nil
		}
		return nil, err
	}

	token, err := randomToken(32)
	if err != nil {
		return nil, types.Persistence("Error creating reset token", err)
	}
	hash, err := HashPassword(token)
	if err != nil {
		return nil, types.Persistence("Error creating reset token", err)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", user.Email).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordResetToken{
			Email:     user.Email,
			TokenHash: hash,
			CreatedAt: s.clock(),
		}).Error
	})
	if err != nil {
		return nil, types.Persistence("Error creating reset token", err)
	}

	msg := MailMessage{
		To:      user.Email,
		Subject: "Reset Password Notification",
		Body:    fmt.Sprintf("You are receiving this email because we received a password reset request for your account.\n\n%s\n\nThis password reset link will expire in %d minutes.", s.resetLink(user.Email, token), int(ResetTokenTTL.Minutes())),
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return nil, types.Persistence("Error sending reset link", err)
	}

	return &ForgotPasswordResult{
		Success:   true,
		UserFound: true,
		Message:   "Password reset email sent to your email address.",
	}, nil
}

// Reset redeems a token and sets the new password
func (s *PasswordResetService) Reset(in ResetPasswordInput) error {
	errs := types.FieldErrors{}
	email, _ := requireText(errs, "email", types.Some(in.Email), 255)
	if strings.TrimSpace(in.Token) == "" {
		errs.Add("token", msgRequired("token"))
	}
	password := validatePassword(errs, in.Password, in.PasswordConfirmation, true)
	if err := errs.Err(); err != nil {
		return err
	}

	invalid := types.NewValidationError("email", "This password reset token is invalid.")

	var record models.PasswordResetToken
	if err := quiet(s.DB).Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid
		}
		return types.Persistence("Error loading reset token", err)
	}
	if s.clock().Sub(record.CreatedAt) > ResetTokenTTL || !CheckPassword(record.TokenHash, in.Token) {
		return invalid
	}

	user, err := FindUserByEmail(s.DB, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return invalid
		}
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return types.Persistence("Error updating password", err)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return tx.Where("email = ?", email).Delete(&models.PasswordResetToken{}).Error
	})
	if err != nil {
		return types.Persistence("Error updating password", err)
	}
	return nil
}

func (s *PasswordResetService) captchaEnabled() bool {
	r, ok := s.Captcha.(*Recaptcha)
	if ok {
		return r.Enabled()
	}
	return s.Captcha != nil
}

func (s *PasswordResetService) resetLink(email, token string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)

	base := s.ResetURL
	if base == "" {
		base = "/password/reset"
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}
