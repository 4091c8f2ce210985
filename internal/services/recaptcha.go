package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RecaptchaVerifyURL is Google's siteverify endpoint
const RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaVerifier checks a client captcha token
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Recaptcha verifies tokens against the reCAPTCHA siteverify API.
// With an empty secret verification is disabled and every token passes.
type Recaptcha struct {
	Secret    string
	VerifyURL string
	Timeout   time.Duration
}

type recaptchaResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Enabled reports whether tokens are actually checked
func (r *Recaptcha) Enabled() bool {
	return r != nil && r.Secret != ""
}

// Verify posts the token to siteverify
func (r *Recaptcha) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if !r.Enabled() {
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	url := r.VerifyURL
	if url == "" {
		url = RecaptchaVerifyURL
	}
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("secret", r.Secret)
	args.Set("response", token)
	if remoteIP != "" {
		args.Set("remoteip", remoteIP)
	}

	agent := fiber.Post(url).Timeout(timeout).Form(args)

	var res recaptchaResponse
	code, body, errs := agent.Struct(&res)
	if len(errs) > 0 {
		return false, fmt.Errorf("recaptcha verification request failed: %w", errs[0])
	}
	if code != fiber.StatusOK {
		return false, fmt.Errorf("recaptcha verification returned %d: %s", code, string(body))
	}
	return res.Success, nil
}
