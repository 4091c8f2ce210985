package models

import (
	"time"
)

// CatalogEntry holds the columns shared by cuisines and ingredients.
// A nil UserID marks a system entry.
type CatalogEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	UserID    *uint64   `gorm:"index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner returns the tagged owner of the entry
func (e *CatalogEntry) Owner() Owner {
	return OwnerOf(e.UserID)
}

// Cuisine groups recipes by culinary tradition
type Cuisine struct {
	CatalogEntry
	User *User `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// TableName overrides the table name for Cuisine
func (Cuisine) TableName() string {
	return "cuisines"
}

// Entry exposes the shared catalog columns
func (c *Cuisine) Entry() *CatalogEntry {
	return &c.CatalogEntry
}

// Ingredient is referenced by recipe steps
type Ingredient struct {
	CatalogEntry
	User *User `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// TableName overrides the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}

// Entry exposes the shared catalog columns
func (i *Ingredient) Entry() *CatalogEntry {
	return &i.CatalogEntry
}
