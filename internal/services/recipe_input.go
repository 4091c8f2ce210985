package services

import (
	"fmt"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	maxTitle = 255
	maxUnit  = 50
)

var maxAmount = decimal.RequireFromString("999999.99")

// StepIngredientInput is one ingredient line of a submitted step
type StepIngredientInput struct {
	IngredientID types.Optional[types.FlexUint64] `json:"ingredient_id"`
	Amount       types.Optional[decimal.Decimal]  `json:"amount"`
	Unit         types.Optional[string]           `json:"unit"`
}

// StepInput is one submitted step
type StepInput struct {
	StepNumber  types.Optional[int]                   `json:"step_number"`
	Order       types.Optional[int]                   `json:"order"`
	Description types.Optional[string]                `json:"description"`
	Ingredients types.Optional[[]StepIngredientInput] `json:"ingredients"`
}

// RecipeInput is the request body for creating or updating a recipe.
// On update, absent fields are left untouched; steps and images replace the stored lists when present.
type RecipeInput struct {
	Title       types.Optional[string]                           `json:"title"`
	CuisineID   types.Optional[types.FlexUint64]                 `json:"cuisine_id"`
	Description types.Optional[string]                           `json:"description"`
	PrepTime    types.Optional[int]                              `json:"prep_time"`
	CookTime    types.Optional[int]                              `json:"cook_time"`
	Servings    types.Optional[int]                              `json:"servings"`
	Steps       types.Optional[[]StepInput]                      `json:"steps"`
	Images      types.Optional[types.FlexList[types.FlexUint64]] `json:"images"`
}

// recipeChanges is a validated RecipeInput, ready to write
type recipeChanges struct {
	title         *string
	cuisineID     *uint64
	description   types.Optional[string]
	prepTime      types.Optional[int]
	cookTime      types.Optional[int]
	servings      types.Optional[int]
	steps         []models.RecipeStep
	replaceSteps  bool
	images        []uint64
	replaceImages bool
}

// newRecipe builds the recipe row for a create
func (c *recipeChanges) newRecipe(userID uint64) models.Recipe {
	r := models.Recipe{
		UserID:      userID,
		Description: c.description.Ptr(),
		PrepTime:    c.prepTime.Ptr(),
		CookTime:    c.cookTime.Ptr(),
		Servings:    c.servings.Ptr(),
	}
	if c.title != nil {
		r.Title = *c.title
		r.TitleSearch = foldTitle(*c.title)
	}
	if c.cuisineID != nil {
		r.CuisineID = *c.cuisineID
	}
	return r
}

// columns lists the scalar columns an update writes
func (c *recipeChanges) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.title != nil {
		cols["title"] = *c.title
		cols["title_search"] = foldTitle(*c.title)
	}
	if c.cuisineID != nil {
		cols["cuisine_id"] = *c.cuisineID
	}
	if c.description.Set {
		cols["description"] = c.description.Ptr()
	}
	if c.prepTime.Set {
		cols["prep_time"] = c.prepTime.Ptr()
	}
	if c.cookTime.Set {
		cols["cook_time"] = c.cookTime.Ptr()
	}
	if c.servings.Set {
		cols["servings"] = c.servings.Ptr()
	}
	return cols
}

// reference is an id that must exist, and the field it was submitted in
type reference struct {
	field string
	id    uint64
}

// validateRecipe checks every rule and reports all violations together.
// With partial set, only the fields present in the input are checked.
func validateRecipe(db *gorm.DB, in RecipeInput, partial bool) (*recipeChanges, error) {
	errs := types.FieldErrors{}
	ch := &recipeChanges{
		description: in.Description,
		prepTime:    in.PrepTime,
		cookTime:    in.CookTime,
		servings:    in.Servings,
	}

	optionalText(errs, "description", in.Description, 0)

	if !partial || in.Title.Set {
		if title, ok := requireText(errs, "title", in.Title, maxTitle); ok {
			ch.title = &title
		}
	}

	var cuisine *reference
	if !partial || in.CuisineID.Set {
		switch {
		case wrongType(errs, "cuisine_id", in.CuisineID, "an integer"):
		case !in.CuisineID.Present() || in.CuisineID.Value == 0:
			errs.Add("cuisine_id", msgRequired("cuisine_id"))
		default:
			cuisine = &reference{field: "cuisine_id", id: in.CuisineID.Value.Uint64()}
		}
	}

	optionalMin(errs, "prep_time", in.PrepTime, 0)
	optionalMin(errs, "cook_time", in.CookTime, 0)
	optionalMin(errs, "servings", in.Servings, 1)

	var ingredients []reference
	if !partial || in.Steps.Set {
		ch.replaceSteps = true
		ch.steps, ingredients = validateSteps(errs, in.Steps)
	}

	var images []reference
	if in.Images.Set && !wrongType(errs, "images", in.Images, "an array") {
		ch.replaceImages = true
		for i, id := range in.Images.Value {
			if id == 0 {
				errs.Add(fmt.Sprintf("images.%d", i), msgInvalidSelection("image"))
			}
		}
		for _, id := range in.Images.Value.Unique() {
			if id == 0 {
				continue
			}
			ch.images = append(ch.images, id.Uint64())
			images = append(images, reference{field: "images", id: id.Uint64()})
		}
	}

	if cuisine != nil {
		if err := checkReferences(db, &models.Cuisine{}, []reference{*cuisine}, "cuisine id", errs); err != nil {
			return nil, err
		}
		if !errs.Has("cuisine_id") {
			id := cuisine.id
			ch.cuisineID = &id
		}
	}
	if err := checkReferences(db, &models.Ingredient{}, ingredients, "ingredient id", errs); err != nil {
		return nil, err
	}
	if err := checkReferences(db, &models.Attachment{}, images, "image", errs); err != nil {
		return nil, err
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return ch, nil
}

// validateSteps checks the step list and collects the ingredient ids to look up
func validateSteps(errs types.FieldErrors, steps types.Optional[[]StepInput]) ([]models.RecipeStep, []reference) {
	if wrongType(errs, "steps", steps, "an array") {
		return nil, nil
	}
	if !steps.Present() {
		errs.Add("steps", msgRequired("steps"))
		return nil, nil
	}
	if len(steps.Value) == 0 {
		errs.Add("steps", "The steps field must have at least 1 items.")
		return nil, nil
	}

	out := make([]models.RecipeStep, 0, len(steps.Value))
	var refs []reference

	for i, s := range steps.Value {
		prefix := fmt.Sprintf("steps.%d.", i)
		step := models.RecipeStep{}

		switch {
		case wrongType(errs, prefix+"step_number", s.StepNumber, "an integer"):
		case !s.StepNumber.Present():
			errs.Add(prefix+"step_number", msgRequired("step_number"))
		case s.StepNumber.Value < 1:
			errs.Add(prefix+"step_number", msgMin("step_number", 1))
		default:
			step.StepNumber = s.StepNumber.Value
		}

		optionalMin(errs, prefix+"order", s.Order, 0)
		step.Order = s.Order.Value

		if desc, ok := requireText(errs, prefix+"description", s.Description, 0); ok {
			step.Description = desc
		}

		wrongType(errs, prefix+"ingredients", s.Ingredients, "an array")
		for j, ing := range s.Ingredients.Value {
			field := fmt.Sprintf("%singredients.%d.", prefix, j)
			line := models.RecipeStepIngredient{Unit: ing.Unit.Ptr()}
			if ing.Amount.Present() {
				line.Amount = decimal.NewNullDecimal(ing.Amount.Value)
			}

			switch {
			case wrongType(errs, field+"ingredient_id", ing.IngredientID, "an integer"):
			case !ing.IngredientID.Present() || ing.IngredientID.Value == 0:
				errs.Add(field+"ingredient_id", msgRequired("ingredient_id"))
			default:
				line.IngredientID = ing.IngredientID.Value.Uint64()
				refs = append(refs, reference{field: field + "ingredient_id", id: line.IngredientID})
			}

			switch {
			case wrongType(errs, field+"amount", ing.Amount, "a number"):
			case !ing.Amount.Present():
			case ing.Amount.Value.IsNegative():
				errs.Add(field+"amount", msgMin("amount", 0))
			case ing.Amount.Value.GreaterThan(maxAmount):
				errs.Add(field+"amount", "The amount field must not be greater than 999999.99.")
			}
			optionalText(errs, field+"unit", ing.Unit, maxUnit)

			step.Ingredients = append(step.Ingredients, line)
		}

		out = append(out, step)
	}

	return out, refs
}

// checkReferences looks up every referenced id in one query and flags the missing ones
func checkReferences(db *gorm.DB, model interface{}, refs []reference, name string, errs types.FieldErrors) error {
	if len(refs) == 0 {
		return nil
	}

	ids := make([]uint64, len(refs))
	for i, r := range refs {
		ids[i] = r.id
	}

	found, err := existingIDs(db, model, ids)
	if err != nil {
		return types.Persistence("Error validating recipe", err)
	}

	for _, r := range refs {
		if !found[r.id] {
			errs.Add(r.field, msgInvalidSelection(name))
		}
	}
	return nil
}
