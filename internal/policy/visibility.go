package policy

import (
	"gorm.io/gorm"
)

// RecipeVisibility scopes a recipe query to what the actor may see.
// Admins see every recipe, members their own, and a nil actor nothing.
func RecipeVisibility(actor *Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case actor == nil:
			return db.Where("1 = 0")
		case actor.Admin:
			return db
		default:
			return db.Where("recipes.user_id = ?", actor.ID)
		}
	}
}
