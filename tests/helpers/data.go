// data.go
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

package helpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/services"
	"gorm.io/gorm"
)

// TestPassword is the password of every user created by CreateUser
const TestPassword = "password123"

// TestSessionSecret signs sessions in handler tests
const TestSessionSecret = "test-session-secret"

// CreateUser creates a user with TestPassword, optionally an admin
func CreateUser(t *testing.T, db *gorm.DB, name string, admin bool) *models.User {
	t.Helper()
	email := fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8])
	user, err := services.CreateUser(db, name, email, TestPassword, admin)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}
	return user
}

// CreateCuisine creates a cuisine. A nil owner makes a system cuisine.
func CreateCuisine(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Cuisine {
	t.Helper()
	cuisine := models.Cuisine{CatalogEntry: models.CatalogEntry{Name: name, UserID: ownerID(owner)}}
	if err := db.Create(&cuisine).Error; err != nil {
		t.Fatalf("Failed to create cuisine %s: %v", name, err)
	}
	return &cuisine
}

// CreateIngredient creates an ingredient. A nil owner makes a system ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{CatalogEntry: models.CatalogEntry{Name: name, UserID: ownerID(owner)}}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("Failed to create ingredient %s: %v", name, err)
	}
	return &ingredient
}

// CreateAttachment records an uploaded image without writing a blob
func CreateAttachment(t *testing.T, db *gorm.DB, owner *models.User) *models.Attachment {
	t.Helper()
	attachment := models.Attachment{
		UserID:       ownerID(owner),
		Name:         uuid.NewString(),
		OriginalName: "photo.jpg",
		Mime:         "image/jpeg",
		Extension:    "jpg",
		Size:         1024,
		Disk:         "local",
		Path:         time.Now().UTC().Format("2006/01/02/"),
		Hash:         "0000",
	}
	if err := db.Create(&attachment).Error; err != nil {
		t.Fatalf("Failed to create attachment: %v", err)
	}
	return &attachment
}

// SessionCookie returns a session cookie header value for the user
func SessionCookie(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := services.IssueSession([]byte(TestSessionSecret), user, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return services.SessionCookieName + "=" + token
}

func ownerID(owner *models.User) *uint64 {
	if owner == nil {
		return nil
	}
	id := owner.ID
	return &id
}
