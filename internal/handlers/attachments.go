package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/types"
	"github.com/localnerve/recipedb/internal/utils"
)

// AttachmentHandler handles file uploads
type AttachmentHandler struct {
	Attachments *services.AttachmentService
}

// UploadAttachment handles POST /api/attachments
// @Summary Upload a file
// @Description Upload an image (max 10MB) for use as a recipe image
// @Tags Attachments
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} services.AttachmentResult
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /attachments [post]
func (h *AttachmentHandler) UploadAttachment(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return types.NewValidationError("file", "The file field is required.")
	}

	file, err := fh.Open()
	if err != nil {
		return types.NewValidationError("file", "The file failed to upload.")
	}
	defer file.Close()

	result, err := h.Attachments.Upload(c.UserContext(), actor(c), services.UploadInput{
		OriginalName: fh.Filename,
		Mime:         fh.Header.Get(fiber.HeaderContentType),
		Size:         fh.Size,
		Body:         file,
	})
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, result, fiber.StatusCreated)
}

// GetAttachment handles GET /api/attachments/:id
// @Summary Get an attachment
// @Tags Attachments
// @Produce json
// @Param id path int true "Attachment ID"
// @Success 200 {object} services.AttachmentResult
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /attachments/{id} [get]
func (h *AttachmentHandler) GetAttachment(c *fiber.Ctx) error {
	id, err := paramID(c, "Attachment")
	if err != nil {
		return err
	}

	result, err := h.Attachments.Get(actor(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}
