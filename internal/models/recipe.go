package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is the aggregate root: steps and attachment links belong to it
type Recipe struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement"`
	UserID      uint64       `gorm:"not null;index:idx_recipes_user_created,priority:1"`
	Title       string       `gorm:"size:255;not null"`
	TitleSearch string       `gorm:"size:1020;not null;default:''"` // lowercased Title for dialects without a Unicode-aware case-insensitive LIKE
	CuisineID   uint64       `gorm:"not null;index"`
	Description *string
	PrepTime    *int
	CookTime    *int
	Servings    *int
	CreatedAt   time.Time    `gorm:"index:idx_recipes_user_created,priority:2"`
	UpdatedAt   time.Time
	User        *User        `gorm:"constraint:OnDelete:CASCADE"`
	Cuisine     *Cuisine     `gorm:"constraint:OnDelete:RESTRICT"`
	Steps       []RecipeStep `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeStep is one ordered instruction of a recipe
type RecipeStep struct {
	ID          uint64                 `gorm:"primaryKey;autoIncrement"`
	RecipeID    uint64                 `gorm:"not null;index"`
	StepNumber  int                    `gorm:"not null"`
	Order       int                    `gorm:"column:step_order;not null;default:0"`
	Description string                 `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Ingredients []RecipeStepIngredient `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for RecipeStep
func (RecipeStep) TableName() string {
	return "recipe_steps"
}

// RecipeStepIngredient associates an ingredient, amount and unit with a step.
// A step may list the same ingredient more than once.
type RecipeStepIngredient struct {
	ID           uint64              `gorm:"primaryKey;autoIncrement"`
	RecipeStepID uint64              `gorm:"not null;index"`
	IngredientID uint64              `gorm:"not null;index"`
	Amount       decimal.NullDecimal `gorm:"type:decimal(8,2)"`
	Unit         *string             `gorm:"size:50"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Ingredient   *Ingredient         `gorm:"constraint:OnDelete:RESTRICT"`
}

// TableName overrides the table name for RecipeStepIngredient
func (RecipeStepIngredient) TableName() string {
	return "recipe_step_ingredients"
}
