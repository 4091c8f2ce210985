package database_test

import (
	"testing"

	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/database"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedReferenceData(t *testing.T) {
	db := helpers.NewTestDB(t)
	user := helpers.CreateUser(t, db, "early", false)
	helpers.CreateIngredient(t, db, "Salt", user)

	result, err := database.SeedReferenceData(db)
	require.NoError(t, err)
	assert.Equal(t, len(database.SystemCuisines), result.Cuisines)
	assert.Equal(t, len(database.SystemIngredients)-1, result.Ingredients)

	// the user's Salt keeps its owner
	var salt models.Ingredient
	require.NoError(t, db.Where("name = ?", "Salt").First(&salt).Error)
	require.NotNil(t, salt.UserID)
	assert.Equal(t, user.ID, *salt.UserID)

	var italian models.Cuisine
	require.NoError(t, db.Where("name = ?", "Italian").First(&italian).Error)
	assert.True(t, italian.Owner().IsSystem())

	again, err := database.SeedReferenceData(db)
	require.NoError(t, err)
	assert.Zero(t, again.Cuisines)
	assert.Zero(t, again.Ingredients)
}

func TestConnectUnsupportedType(t *testing.T) {
	_, err := database.Connect(&config.Config{DBType: "oracle"})
	assert.EqualError(t, err, "unsupported database type: oracle")
}
