package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// MessageResponse sends a message with an optional named payload, as in
// {"message": "Recipe created successfully", "recipe": {...}}
func MessageResponse(c *fiber.Ctx, status int, message, key string, payload interface{}) error {
	body := fiber.Map{"message": message}
	if key != "" {
		body[key] = payload
	}
	return c.Status(status).JSON(body)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(envelope(c, status, message, errorType))
}

// CustomErrorResponse sends a typed error, including any field errors
func CustomErrorResponse(c *fiber.Ctx, err *types.CustomError) error {
	body := envelope(c, err.Code, err.Message, err.Type)
	if len(err.Errors) > 0 {
		body["errors"] = err.Errors
	}
	return c.Status(err.Code).JSON(body)
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, types.TypeNotFound)
}

func envelope(c *fiber.Ctx, status int, message, errorType string) fiber.Map {
	body := fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	}
	if errorType != "" {
		body["type"] = errorType
	}
	return body
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int                 `json:"status"`
	Message   string              `json:"message"`
	Ok        bool                `json:"ok"`
	Timestamp string              `json:"timestamp"`
	URL       string              `json:"url"`
	Type      string              `json:"type,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

// MessageResponseStruct defines the schema for bare mutation responses
type MessageResponseStruct struct {
	Message string `json:"message"`
}
