// catalog.go
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
	"fmt"
	"strings"

	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/policy"
	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
)

// CatalogRecord is a pointer to a cuisine or ingredient
type CatalogRecord[T any] interface {
	*T
	Entry() *models.CatalogEntry
}

// CatalogInput is the request body for creating or renaming an entry
type CatalogInput struct {
	Name types.Optional[string] `json:"name"`
}

// Catalog implements the reference catalog operations for one entry kind.
type Catalog[T any, P CatalogRecord[T]] struct {
	// Kind is the lower case singular name used in messages
	Kind    string
	MaxName int
	// InUseMessage is reported when a delete is refused
	InUseMessage string
	usage        func(db *gorm.DB, id uint64) (int64, error)
}

// Cuisines is the cuisine catalog. A cuisine is in use while any recipe references it.
var Cuisines = Catalog[models.Cuisine, *models.Cuisine]{
	Kind:         "cuisine",
	MaxName:      100,
	InUseMessage: "Cannot delete cuisine as it is used in recipes",
	usage: func(db *gorm.DB, id uint64) (int64, error) {
		var n int64
		err := db.Model(&models.Recipe{}).Where("cuisine_id = ?", id).Count(&n).Error
		return n, err
	},
}

// Ingredients is the ingredient catalog. An ingredient is in use while any step references it.
var Ingredients = Catalog[models.Ingredient, *models.Ingredient]{
	Kind:         "ingredient",
	MaxName:      255,
	InUseMessage: "Cannot delete ingredient as it is used in recipes",
	usage: func(db *gorm.DB, id uint64) (int64, error) {
		var n int64
		err := db.Model(&models.RecipeStepIngredient{}).Where("ingredient_id = ?", id).Count(&n).Error
		return n, err
	},
}

// Title is the capitalized kind, as used in response messages
func (k Catalog[T, P]) Title() string {
	return strings.ToUpper(k.Kind[:1]) + k.Kind[1:]
}

// List returns every entry ordered by name. The catalog is visible to all users.
func (k Catalog[T, P]) List(db *gorm.DB, actor *policy.Actor) ([]T, error) {
	if err := policy.AuthorizeCatalog(actor, policy.ViewAny, models.SystemOwner()); err != nil {
		return nil, err
	}

	var out []T
	if err := quiet(db).Order("name").Order("id").Find(&out).Error; err != nil {
		return nil, types.Persistence(fmt.Sprintf("Error listing %ss", k.Kind), err)
	}
	return out, nil
}

// Get returns one entry
func (k Catalog[T, P]) Get(db *gorm.DB, actor *policy.Actor, id uint64) (*T, error) {
	if actor == nil {
		return nil, types.ErrAuthenticationRequired
	}

	rec, err := k.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeCatalog(actor, policy.View, P(rec).Entry().Owner()); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create adds a user owned entry
func (k Catalog[T, P]) Create(db *gorm.DB, actor *policy.Actor, in CatalogInput) (*T, error) {
	if actor == nil {
		return nil, types.ErrAuthenticationRequired
	}
	if err := policy.AuthorizeCatalog(actor, policy.Create, models.UserOwner(actor.ID)); err != nil {
		return nil, err
	}

	name, err := k.validateName(db, in.Name, 0)
	if err != nil {
		return nil, err
	}

	var rec T
	entry := P(&rec).Entry()
	entry.Name = name
	entry.UserID = models.UserOwner(actor.ID).Column()

	if err := db.Create(&rec).Error; err != nil {
		return nil, k.writeError(err, "creating")
	}
	return &rec, nil
}

// Update renames an entry. An absent name leaves the entry untouched.
func (k Catalog[T, P]) Update(db *gorm.DB, actor *policy.Actor, id uint64, in CatalogInput) (*T, error) {
	if actor == nil {
		return nil, types.ErrAuthenticationRequired
	}

	rec, err := k.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeCatalog(actor, policy.Update, P(rec).Entry().Owner()); err != nil {
		return nil, err
	}

	if !in.Name.Set {
		return rec, nil
	}

	name, err := k.validateName(db, in.Name, id)
	if err != nil {
		return nil, err
	}

	if err := db.Model(P(rec)).Update("name", name).Error; err != nil {
		return nil, k.writeError(err, "updating")
	}
	P(rec).Entry().Name = name
	return rec, nil
}

// Delete removes an entry that no recipe uses.
// Ownership is checked first, so non-owners get 403 whether or not the entry is in use.
func (k Catalog[T, P]) Delete(db *gorm.DB, actor *policy.Actor, id uint64) error {
	if actor == nil {
		return types.ErrAuthenticationRequired
	}

	rec, err := k.find(db, id)
	if err != nil {
		return err
	}
	if err := policy.AuthorizeCatalog(actor, policy.Delete, P(rec).Entry().Owner()); err != nil {
		return err
	}

	n, err := k.usage(quiet(db), id)
	if err != nil {
		return types.Persistence(fmt.Sprintf("Error deleting %s", k.Kind), err)
	}
	if n > 0 {
		return types.InUse(k.InUseMessage)
	}

	if err := db.Delete(P(rec)).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return types.InUse(k.InUseMessage)
		}
		return types.Persistence(fmt.Sprintf("Error deleting %s", k.Kind), err)
	}
	return nil
}

func (k Catalog[T, P]) find(db *gorm.DB, id uint64) (*T, error) {
	var rec T
	if err := quiet(db).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound(k.Title())
		}
		return nil, types.Persistence(fmt.Sprintf("Error loading %s", k.Kind), err)
	}
	return &rec, nil
}

// validateName checks presence, length and uniqueness, excluding the entry being renamed
func (k Catalog[T, P]) validateName(db *gorm.DB, v types.Optional[string], excludeID uint64) (string, error) {
	errs := types.FieldErrors{}
	name, ok := requireText(errs, "name", v, k.MaxName)
	if !ok {
		return "", errs.Err()
	}

	var count int64
	query := quiet(db).Model(new(T)).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return "", types.Persistence(fmt.Sprintf("Error validating %s", k.Kind), err)
	}
	if count > 0 {
		errs.Add("name", msgTaken("name"))
		return "", errs.Err()
	}
	return name, nil
}

func (k Catalog[T, P]) writeError(err error, verb string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.NewValidationError("name", msgTaken("name"))
	}
	return types.Persistence(fmt.Sprintf("Error %s %s", verb, k.Kind), err)
}
