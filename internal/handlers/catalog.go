package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/utils"
	"gorm.io/gorm"
)

// CatalogHandler serves one reference catalog. Cuisines and ingredients share the routes' shape.
type CatalogHandler[T any, P services.CatalogRecord[T]] struct {
	DB      *gorm.DB
	Catalog services.Catalog[T, P]
}

// NewCuisineHandler serves /api/cuisines
func NewCuisineHandler(db *gorm.DB) *CatalogHandler[models.Cuisine, *models.Cuisine] {
	return &CatalogHandler[models.Cuisine, *models.Cuisine]{DB: db, Catalog: services.Cuisines}
}

// NewIngredientHandler serves /api/ingredients
func NewIngredientHandler(db *gorm.DB) *CatalogHandler[models.Ingredient, *models.Ingredient] {
	return &CatalogHandler[models.Ingredient, *models.Ingredient]{DB: db, Catalog: services.Ingredients}
}

// List handles GET /api/cuisines and GET /api/ingredients
// @Summary List catalog entries
// @Description Every cuisine or ingredient, ordered by name
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.CatalogEntry
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cuisines [get]
// @Router /ingredients [get]
func (h *CatalogHandler[T, P]) List(c *fiber.Ctx) error {
	entries, err := h.Catalog.List(h.DB, actor(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, entries, fiber.StatusOK)
}

// Get handles GET /api/cuisines/:id and GET /api/ingredients/:id
// @Summary Get a catalog entry
// @Tags Catalog
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} models.CatalogEntry
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cuisines/{id} [get]
// @Router /ingredients/{id} [get]
func (h *CatalogHandler[T, P]) Get(c *fiber.Ctx) error {
	id, err := paramID(c, h.Catalog.Title())
	if err != nil {
		return err
	}

	entry, err := h.Catalog.Get(h.DB, actor(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, entry, fiber.StatusOK)
}

// Create handles POST /api/cuisines and POST /api/ingredients
// @Summary Create a catalog entry
// @Description The entry is owned by the current user
// @Tags Catalog
// @Accept json
// @Produce json
// @Param entry body services.CatalogInput true "Entry"
// @Success 201 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cuisines [post]
// @Router /ingredients [post]
func (h *CatalogHandler[T, P]) Create(c *fiber.Ctx) error {
	var body services.CatalogInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	entry, err := h.Catalog.Create(h.DB, actor(c), body)
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, fiber.StatusCreated, h.Catalog.Title()+" created successfully", h.Catalog.Kind, entry)
}

// Update handles PUT /api/cuisines/:id and PUT /api/ingredients/:id
// @Summary Rename a catalog entry
// @Description Only the owner or an admin may rename. System entries are admin only.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param entry body services.CatalogInput true "Entry"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cuisines/{id} [put]
// @Router /ingredients/{id} [put]
func (h *CatalogHandler[T, P]) Update(c *fiber.Ctx) error {
	id, err := paramID(c, h.Catalog.Title())
	if err != nil {
		return err
	}

	var body services.CatalogInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	entry, err := h.Catalog.Update(h.DB, actor(c), id, body)
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, fiber.StatusOK, h.Catalog.Title()+" updated successfully", h.Catalog.Kind, entry)
}

// Delete handles DELETE /api/cuisines/:id and DELETE /api/ingredients/:id
// @Summary Delete a catalog entry
// @Description Refused with 422 while any recipe uses the entry
// @Tags Catalog
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cuisines/{id} [delete]
// @Router /ingredients/{id} [delete]
func (h *CatalogHandler[T, P]) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, h.Catalog.Title())
	if err != nil {
		return err
	}

	if err := h.Catalog.Delete(h.DB, actor(c), id); err != nil {
		return err
	}
	return utils.MessageResponse(c, fiber.StatusOK, h.Catalog.Title()+" deleted successfully", "", nil)
}
