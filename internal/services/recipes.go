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

package services

import (
	"errors"
	"log"
	"strings"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/policy"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

const (
	// DefaultPerPage is the listing page size when none is requested
	DefaultPerPage = 15
	// MaxPerPage caps the requested page size
	MaxPerPage = 100
)

// RecipeFilter narrows a recipe listing
type RecipeFilter struct {
	Title     string
	CuisineID uint64
	Page      int
	PerPage   int
}

func (f RecipeFilter) normalized() RecipeFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	f.Title = strings.TrimSpace(f.Title)
	return f
}

// RecipeService reads and writes recipe aggregates.
// Every recipe read goes through visibleRecipes.
type RecipeService struct {
	DB    *gorm.DB
	Store storage.Store
}

// visibleRecipes is the single boundary for recipe reads
func visibleRecipes(db *gorm.DB, actor *policy.Actor) *gorm.DB {
	return db.Model(&models.Recipe{}).
		Clauses(hints.Comment("select", "recipe_visibility")).
		Scopes(policy.RecipeVisibility(actor))
}

// withAggregate preloads cuisine, owner, and ordered steps with their ingredients
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Cuisine").
		Preload("User").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order").Order("step_number").Order("id")
		}).
		Preload("Steps.Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Steps.Ingredients.Ingredient")
}

// List returns a page of the recipes the actor can see, newest first
func (s *RecipeService) List(actor *policy.Actor, filter RecipeFilter) (*RecipePage, error) {
	if err := policy.AuthorizeRecipe(actor, policy.ViewAny, 0); err != nil {
		return nil, err
	}
	filter = filter.normalized()

	query := func() *gorm.DB {
		q := visibleRecipes(quiet(s.DB), actor)
		if filter.Title != "" {
			q = titleContains(q, filter.Title)
		}
		if filter.CuisineID != 0 {
			q = q.Where("recipes.cuisine_id = ?", filter.CuisineID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, types.Persistence("Error listing recipes", err)
	}

	var recipes []models.Recipe
	err := query().
		Scopes(withAggregate).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&recipes).Error
	if err != nil {
		return nil, types.Persistence("Error listing recipes", err)
	}

	ids := make([]uint64, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	attachments, err := loadRecipeAttachments(s.DB, ids)
	if err != nil {
		return nil, types.Persistence("Error listing recipes", err)
	}

	page := &RecipePage{
		Data:        make([]RecipeResult, 0, len(recipes)),
		CurrentPage: filter.Page,
		PerPage:     filter.PerPage,
		Total:       total,
		LastPage:    int((total + int64(filter.PerPage) - 1) / int64(filter.PerPage)),
	}
	if page.LastPage < 1 {
		page.LastPage = 1
	}
	for i := range recipes {
		page.Data = append(page.Data, presentRecipe(&recipes[i], attachments[recipes[i].ID], s.Store))
	}
	if len(recipes) > 0 {
		from := (filter.Page-1)*filter.PerPage + 1
		to := from + len(recipes) - 1
		page.From, page.To = &from, &to
	}

	return page, nil
}

// Get returns one hydrated recipe. A recipe owned by someone else is a 403, not a 404.
func (s *RecipeService) Get(actor *policy.Actor, id uint64) (*RecipeResult, error) {
	if err := s.authorize(actor, policy.View, id); err != nil {
		return nil, err
	}
	return s.load(actor, id)
}

// Create validates the input and writes the recipe, its steps, step ingredients and image
// links in one transaction.
func (s *RecipeService) Create(actor *policy.Actor, in RecipeInput) (*RecipeResult, error) {
	if err := policy.AuthorizeRecipe(actor, policy.Create, 0); err != nil {
		return nil, err
	}

	ch, err := validateRecipe(s.DB, in, false)
	if err != nil {
		return nil, err
	}

	recipe := ch.newRecipe(actor.ID)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := insertSteps(tx, recipe.ID, ch.steps); err != nil {
			return err
		}
		return linkImages(tx, recipe.ID, ch.images)
	})
	if err != nil {
		log.Printf("Failed to create recipe for user %d: %v", actor.ID, err)
		return nil, types.Persistence("Error creating recipe", err)
	}

	return s.load(actor, recipe.ID)
}

// Update applies the fields present in the input. Present steps or images replace the stored
// lists entirely; everything happens in one transaction.
func (s *RecipeService) Update(actor *policy.Actor, id uint64, in RecipeInput) (*RecipeResult, error) {
	if err := s.authorize(actor, policy.Update, id); err != nil {
		return nil, err
	}

	ch, err := validateRecipe(s.DB, in, true)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var current models.Recipe
		if err := lockForUpdate(tx).Select("id").First(&current, id).Error; err != nil {
			return err
		}

		if cols := ch.columns(); len(cols) > 0 {
			if err := tx.Model(&current).Updates(cols).Error; err != nil {
				return err
			}
		}

		if ch.replaceSteps {
			if err := deleteSteps(tx, id); err != nil {
				return err
			}
			if err := insertSteps(tx, id, ch.steps); err != nil {
				return err
			}
		}

		if ch.replaceImages {
			if err := unlinkImages(tx, id); err != nil {
				return err
			}
			if err := linkImages(tx, id, ch.images); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Recipe")
		}
		log.Printf("Failed to update recipe %d: %v", id, err)
		return nil, types.Persistence("Error updating recipe", err)
	}

	return s.load(actor, id)
}

// Delete removes the recipe with its steps, step ingredients and image links
func (s *RecipeService) Delete(actor *policy.Actor, id uint64) error {
	if err := s.authorize(actor, policy.Delete, id); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := unlinkImages(tx, id); err != nil {
			return err
		}
		if err := deleteSteps(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		log.Printf("Failed to delete recipe %d: %v", id, err)
		return types.Persistence("Error deleting recipe", err)
	}
	return nil
}

// authorize checks the actor against the stored owner without loading recipe content
func (s *RecipeService) authorize(actor *policy.Actor, action policy.Action, id uint64) error {
	if actor == nil {
		return types.ErrAuthenticationRequired
	}

	var owner models.Recipe
	err := quiet(s.DB).Select("id", "user_id").First(&owner, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Recipe")
		}
		return types.Persistence("Error loading recipe", err)
	}

	return policy.AuthorizeRecipe(actor, action, owner.UserID)
}

// load reads a hydrated recipe through the visibility boundary
func (s *RecipeService) load(actor *policy.Actor, id uint64) (*RecipeResult, error) {
	var recipe models.Recipe
	err := visibleRecipes(quiet(s.DB), actor).
		Scopes(withAggregate).
		Where("recipes.id = ?", id).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Recipe")
		}
		return nil, types.Persistence("Error loading recipe", err)
	}

	attachments, err := loadRecipeAttachments(s.DB, []uint64{recipe.ID})
	if err != nil {
		return nil, types.Persistence("Error loading recipe", err)
	}

	result := presentRecipe(&recipe, attachments[recipe.ID], s.Store)
	return &result, nil
}

// insertSteps writes steps in input order, each followed by its ingredient lines
func insertSteps(tx *gorm.DB, recipeID uint64, steps []models.RecipeStep) error {
	for _, step := range steps {
		lines := step.Ingredients
		step.RecipeID = recipeID
		step.Ingredients = nil

		if err := tx.Create(&step).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			continue
		}

		rows := make([]models.RecipeStepIngredient, len(lines))
		for i, line := range lines {
			line.RecipeStepID = step.ID
			rows[i] = line
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteSteps removes a recipe's step ingredient rows, then its steps
func deleteSteps(tx *gorm.DB, recipeID uint64) error {
	var stepIDs []uint64
	if err := tx.Model(&models.RecipeStep{}).Where("recipe_id = ?", recipeID).Pluck("id", &stepIDs).Error; err != nil {
		return err
	}
	if len(stepIDs) > 0 {
		if err := tx.Where("recipe_step_id IN ?", stepIDs).Delete(&models.RecipeStepIngredient{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeStep{}).Error
}

// linkImages links attachments to a recipe, sorted in the given order
func linkImages(tx *gorm.DB, recipeID uint64, attachmentIDs []uint64) error {
	if len(attachmentIDs) == 0 {
		return nil
	}
	links := make([]models.Attachmentable, len(attachmentIDs))
	for i, id := range attachmentIDs {
		links[i] = models.Attachmentable{
			AttachmentableType: models.AttachmentableRecipe,
			AttachmentableID:   recipeID,
			AttachmentID:       id,
			Sort:               i,
		}
	}
	return tx.Create(&links).Error
}

func unlinkImages(tx *gorm.DB, recipeID uint64) error {
	return tx.
		Where("attachmentable_type = ? AND attachmentable_id = ?", models.AttachmentableRecipe, recipeID).
		Delete(&models.Attachmentable{}).Error
}

// linkedAttachment is an attachment row joined with its link
type linkedAttachment struct {
	models.Attachment
	LinkedID uint64
	LinkSort int
}

// loadRecipeAttachments returns each recipe's attachments in link order
func loadRecipeAttachments(db *gorm.DB, recipeIDs []uint64) (map[uint64][]models.Attachment, error) {
	out := make(map[uint64][]models.Attachment, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	var rows []linkedAttachment
	err := quiet(db).
		Table("attachments").
		Select("attachments.*, attachmentables.attachmentable_id AS linked_id, attachmentables.sort AS link_sort").
		Joins("JOIN attachmentables ON attachmentables.attachment_id = attachments.id").
		Where("attachmentables.attachmentable_type = ? AND attachmentables.attachmentable_id IN ?",
			models.AttachmentableRecipe, recipeIDs).
		Order("attachmentables.sort").
		Order("attachmentables.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.LinkedID] = append(out[row.LinkedID], row.Attachment)
	}
	return out, nil
}

// titleContains adds a case-insensitive substring match on the title.
// postgres has ILIKE, mysql and sqlserver compare under a case-insensitive collation,
// and sqlite's LOWER and LIKE only fold ASCII, so it matches the stored title_search.
func titleContains(q *gorm.DB, title string) *gorm.DB {
	switch q.Dialector.Name() {
	case "postgres":
		return q.Where("recipes.title ILIKE ? ESCAPE '!'", "%"+escapeLike(title)+"%")
	case "mysql", "sqlserver":
		return q.Where("recipes.title LIKE ? ESCAPE '!'", "%"+escapeLike(title)+"%")
	}
	return q.Where("recipes.title_search LIKE ? ESCAPE '!'", "%"+escapeLike(foldTitle(title))+"%")
}

// foldTitle is the stored and searched form of a title
func foldTitle(title string) string {
	return strings.ToLower(title)
}

// escapeLike escapes LIKE wildcards using '!' as the escape character
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
