package services

import (
	"encoding/json"
	"time"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/storage"
)

// RecipeResult is the hydrated recipe returned by the API
type RecipeResult struct {
	ID          uint64             `json:"id"`
	UserID      uint64             `json:"user_id"`
	Title       string             `json:"title"`
	CuisineID   uint64             `json:"cuisine_id"`
	Description *string            `json:"description"`
	PrepTime    *int               `json:"prep_time"`
	CookTime    *int               `json:"cook_time"`
	Servings    *int               `json:"servings"`
	TotalTime   *int               `json:"total_time"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Cuisine     *models.Cuisine    `json:"cuisine"`
	User        *UserResult        `json:"user"`
	Steps       []StepResult       `json:"steps"`
	Attachment  []AttachmentResult `json:"attachment"`
	MainImage   *AttachmentResult  `json:"main_image"`
}

// StepResult is a recipe step with its ingredient lines
type StepResult struct {
	ID          uint64                 `json:"id"`
	RecipeID    uint64                 `json:"recipe_id"`
	StepNumber  int                    `json:"step_number"`
	Order       int                    `json:"order"`
	Description string                 `json:"description"`
	Ingredients []StepIngredientResult `json:"ingredients"`
}

// StepIngredientResult is the referenced ingredient, with the line's amount and unit under pivot
type StepIngredientResult struct {
	ID     uint64      `json:"id"`
	Name   string      `json:"name"`
	UserID *uint64     `json:"user_id"`
	Pivot  PivotResult `json:"pivot"`
}

// PivotResult carries the step ingredient row
type PivotResult struct {
	ID           uint64       `json:"id"`
	RecipeStepID uint64       `json:"recipe_step_id"`
	IngredientID uint64       `json:"ingredient_id"`
	Amount       *json.Number `json:"amount"`
	Unit         *string      `json:"unit"`
}

// AttachmentResult is an uploaded file with its public URL
type AttachmentResult struct {
	ID           uint64 `json:"id"`
	URL          string `json:"url"`
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	Mime         string `json:"mime"`
	Size         int64  `json:"size"`
}

// RecipePage is one page of a recipe listing
type RecipePage struct {
	Data        []RecipeResult `json:"data"`
	CurrentPage int            `json:"current_page"`
	PerPage     int            `json:"per_page"`
	Total       int64          `json:"total"`
	LastPage    int            `json:"last_page"`
	From        *int           `json:"from"`
	To          *int           `json:"to"`
}

func presentRecipe(r *models.Recipe, attachments []models.Attachment, store storage.Store) RecipeResult {
	out := RecipeResult{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		CuisineID:   r.CuisineID,
		Description: r.Description,
		PrepTime:    r.PrepTime,
		CookTime:    r.CookTime,
		Servings:    r.Servings,
		TotalTime:   totalTime(r.PrepTime, r.CookTime),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Cuisine:     r.Cuisine,
		User:        PresentUser(r.User),
		Steps:       make([]StepResult, 0, len(r.Steps)),
		Attachment:  make([]AttachmentResult, 0, len(attachments)),
	}

	for _, s := range r.Steps {
		step := StepResult{
			ID:          s.ID,
			RecipeID:    s.RecipeID,
			StepNumber:  s.StepNumber,
			Order:       s.Order,
			Description: s.Description,
			Ingredients: make([]StepIngredientResult, 0, len(s.Ingredients)),
		}
		for _, line := range s.Ingredients {
			item := StepIngredientResult{
				ID: line.IngredientID,
				Pivot: PivotResult{
					ID:           line.ID,
					RecipeStepID: line.RecipeStepID,
					IngredientID: line.IngredientID,
					Unit:         line.Unit,
				},
			}
			if line.Ingredient != nil {
				item.Name = line.Ingredient.Name
				item.UserID = line.Ingredient.UserID
			}
			if line.Amount.Valid {
				n := json.Number(line.Amount.Decimal.String())
				item.Pivot.Amount = &n
			}
			step.Ingredients = append(step.Ingredients, item)
		}
		out.Steps = append(out.Steps, step)
	}

	for i := range attachments {
		out.Attachment = append(out.Attachment, presentAttachment(&attachments[i], store))
	}
	if len(out.Attachment) > 0 {
		main := out.Attachment[0]
		out.MainImage = &main
	}

	return out
}

func presentAttachment(a *models.Attachment, store storage.Store) AttachmentResult {
	out := AttachmentResult{
		ID:           a.ID,
		Name:         a.Name,
		OriginalName: a.OriginalName,
		Mime:         a.Mime,
		Size:         a.Size,
	}
	if store != nil {
		out.URL = store.URL(a.Key())
	}
	return out
}

// totalTime is prep plus cook, when either is known
func totalTime(prep, cook *int) *int {
	if prep == nil && cook == nil {
		return nil
	}
	total := 0
	if prep != nil {
		total += *prep
	}
	if cook != nil {
		total += *cook
	}
	return &total
}
