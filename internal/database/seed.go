package database

import (
	"fmt"
	"log"

	"github.com/localnerve/recipedb/internal/models"
	"gorm.io/gorm"
)

// SystemCuisines are the shared cuisines every installation starts with
var SystemCuisines = []string{
	"Italian", "French", "Chinese", "Japanese", "Mexican",
	"Indian", "Thai", "Mediterranean", "American", "Greek",
}

// SystemIngredients are the shared ingredients every installation starts with
var SystemIngredients = []string{
	"Salt", "Pepper", "Olive Oil", "Butter", "Garlic",
	"Onion", "Tomato", "Carrot", "Potato", "Flour",
	"Sugar", "Egg", "Milk", "Cheese", "Chicken",
	"Beef", "Pork", "Fish", "Rice", "Pasta",
}

// SeedResult counts the rows inserted by a seed run
type SeedResult struct {
	Cuisines    int
	Ingredients int
}

// SeedReferenceData inserts the system cuisines and ingredients that are missing.
// Existing names are left alone, whoever owns them.
func SeedReferenceData(db *gorm.DB) (SeedResult, error) {
	var result SeedResult

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, name := range SystemCuisines {
			created, err := seedEntry(tx, &models.Cuisine{CatalogEntry: models.CatalogEntry{Name: name}})
			if err != nil {
				return err
			}
			if created {
				result.Cuisines++
			}
		}
		for _, name := range SystemIngredients {
			created, err := seedEntry(tx, &models.Ingredient{CatalogEntry: models.CatalogEntry{Name: name}})
			if err != nil {
				return err
			}
			if created {
				result.Ingredients++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to seed reference data: %w", err)
	}

	log.Printf("Seeded %d cuisines and %d ingredients", result.Cuisines, result.Ingredients)
	return result, nil
}

func seedEntry(tx *gorm.DB, record interface{ Entry() *models.CatalogEntry }) (bool, error) {
	entry := record.Entry()

	var count int64
	if err := tx.Model(record).Where("name = ?", entry.Name).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	return true, tx.Create(record).Error
}
