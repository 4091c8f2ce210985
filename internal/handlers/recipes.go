// recipes.go
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

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/utils"
)

// RecipeHandler handles recipe routes
type RecipeHandler struct {
	Recipes *services.RecipeService
}

// ListRecipes handles GET /api/recipes
// @Summary List recipes
// @Description Page through the recipes visible to the current user, newest first
// @Tags Recipes
// @Produce json
// @Param title query string false "Case-insensitive title substring"
// @Param cuisine_id query int false "Cuisine ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(15)
// @Success 200 {object} services.RecipePage
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes [get]
func (h *RecipeHandler) ListRecipes(c *fiber.Ctx) error {
	filter := services.RecipeFilter{
		Title:   c.Query("title"),
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", services.DefaultPerPage),
	}
	if cuisineID, err := strconv.ParseUint(c.Query("cuisine_id"), 10, 64); err == nil {
		filter.CuisineID = cuisineID
	}

	page, err := h.Recipes.List(actor(c), filter)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Get a recipe
// @Description Get a recipe with its cuisine, steps, ingredients and images
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} services.RecipeResult
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id} [get]
func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	id, err := paramID(c, "Recipe")
	if err != nil {
		return err
	}

	recipe, err := h.Recipes.Get(actor(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recipe, fiber.StatusOK)
}

// CreateRecipe handles POST /api/recipes
// @Summary Create a recipe
// @Description Create a recipe with its steps, step ingredients and images in one transaction
// @Tags Recipes
// @Accept json
// @Produce json
// @Param recipe body services.RecipeInput true "Recipe"
// @Success 201 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes [post]
func (h *RecipeHandler) CreateRecipe(c *fiber.Ctx) error {
	var body services.RecipeInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	recipe, err := h.Recipes.Create(actor(c), body)
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, fiber.StatusCreated, "Recipe created successfully", "recipe", recipe)
}

// UpdateRecipe handles PUT /api/recipes/:id
// @Summary Update a recipe
// @Description Update the fields sent. Sending steps or images replaces them.
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body services.RecipeInput true "Recipe fields"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id} [put]
func (h *RecipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	id, err := paramID(c, "Recipe")
	if err != nil {
		return err
	}

	var body services.RecipeInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	recipe, err := h.Recipes.Update(actor(c), id, body)
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Recipe updated successfully", "recipe", recipe)
}

// DeleteRecipe handles DELETE /api/recipes/:id
// @Summary Delete a recipe
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	id, err := paramID(c, "Recipe")
	if err != nil {
		return err
	}

	if err := h.Recipes.Delete(actor(c), id); err != nil {
		return err
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Recipe deleted successfully", "", nil)
}
