package integration_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/database"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/policy"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
	"github.com/localnerve/recipedb/tests/helpers"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func imageOr(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

// startDatabase runs a database container and returns a migrated connection to it
func startDatabase(t *testing.T, req testcontainers.ContainerRequest, cfg *config.Config, port string) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start %s container", req.Image)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)
	cfg.DBHost = host
	cfg.DBPort = mapped.Port()
	cfg.DBAppConnectionLimit = 5

	var db *gorm.DB
	require.Eventually(t, func() bool {
		db, err = database.ConnectWithLogger(cfg, logger.Default.LogMode(logger.Warn))
		if err != nil {
			return false
		}
		sqlDB, _ := db.DB()
		return sqlDB.PingContext(ctx) == nil
	}, 60*time.Second, time.Second, "database never became reachable")
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := &config.Config{
		DBType:        "mysql",
		DBAppDatabase: "testdb",
		DBAppUser:     "testuser",
		DBAppPassword: "testpass",
		AuthProvider:  "local",
	}
	db := startDatabase(t, testcontainers.ContainerRequest{
		Image:        imageOr("DB_IMAGE", "mariadb:11"),
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MARIADB_ROOT_PASSWORD": "rootpass",
			"MARIADB_DATABASE":      "testdb",
			"MARIADB_USER":          "testuser",
			"MARIADB_PASSWORD":      "testpass",
		},
		WaitingFor: wait.ForLog("ready for connections").WithOccurrence(2).WithStartupTimeout(90 * time.Second),
	}, cfg, "3306")

	runSuite(t, cfg, db)
}

func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := &config.Config{
		DBType:        "postgres",
		DBAppDatabase: "testdb",
		DBAppUser:     "testuser",
		DBAppPassword: "testpass",
		AuthProvider:  "local",
	}
	db := startDatabase(t, testcontainers.ContainerRequest{
		Image:        imageOr("POSTGRES_IMAGE", "postgres:17"),
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, cfg, "5432")

	runSuite(t, cfg, db)
}

func runSuite(t *testing.T, cfg *config.Config, db *gorm.DB) {
	_, err := database.SeedReferenceData(db)
	require.NoError(t, err)

	t.Run("RecipeLifecycle", func(t *testing.T) {
		testRecipeLifecycle(t, db)
	})

	t.Run("CatalogInUse", func(t *testing.T) {
		testCatalogInUse(t, db)
	})

	t.Run("ConcurrentUpdates", func(t *testing.T) {
		testConcurrentUpdates(t, db)
	})

	t.Run("HealthCheck", func(t *testing.T) {
		result := services.HealthCheck(context.Background(), cfg, db, storage.NewLocalStoreFs(afero.NewMemMapFs(), "/storage"))
		assert.Equal(t, "healthy", result.Status, "%+v", result)
		assert.Equal(t, "ok", result.Database)
	})
}

func seeded(t *testing.T, db *gorm.DB) (cuisineID, ingredientID uint64) {
	t.Helper()
	var cuisine models.Cuisine
	require.NoError(t, db.Where("name = ?", "Italian").First(&cuisine).Error)
	var ingredient models.Ingredient
	require.NoError(t, db.Where("name = ?", "Flour").First(&ingredient).Error)
	return cuisine.ID, ingredient.ID
}

func recipeInput(title string, cuisineID, ingredientID uint64) services.RecipeInput {
	return services.RecipeInput{
		Title:     types.Some(title),
		CuisineID: types.Some(types.FlexUint64(cuisineID)),
		PrepTime:  types.Some(15),
		Steps: types.Some([]services.StepInput{{
			StepNumber:  types.Some(1),
			Description: types.Some("Combine"),
			Ingredients: types.Some([]services.StepIngredientInput{{
				IngredientID: types.Some(types.FlexUint64(ingredientID)),
				Amount:       types.Some(decimal.RequireFromString("250.75")),
			}}),
		}}),
	}
}

func testRecipeLifecycle(t *testing.T, db *gorm.DB) {
	cuisineID, flourID := seeded(t, db)
	owner := helpers.CreateUser(t, db, "owner", false)
	other := helpers.CreateUser(t, db, "other", false)
	svc := &services.RecipeService{DB: db}

	recipe, err := svc.Create(policy.ActorFor(owner), recipeInput("Gnocchi", cuisineID, flourID))
	require.NoError(t, err)
	require.Len(t, recipe.Steps, 1)
	assert.Equal(t, "250.75", recipe.Steps[0].Ingredients[0].Pivot.Amount.String())

	_, err = svc.Get(policy.ActorFor(other), recipe.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)

	page, err := svc.List(policy.ActorFor(other), services.RecipeFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	page, err = svc.List(policy.ActorFor(owner), services.RecipeFilter{Title: "gnoc"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	updated, err := svc.Update(policy.ActorFor(owner), recipe.ID, services.RecipeInput{
		Steps: types.Some([]services.StepInput{
			{StepNumber: types.Some(1), Description: types.Some("Boil")},
			{StepNumber: types.Some(2), Description: types.Some("Serve")},
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Gnocchi", updated.Title)
	assert.Len(t, updated.Steps, 2)

	require.NoError(t, svc.Delete(policy.ActorFor(owner), recipe.ID))
	var steps int64
	require.NoError(t, db.Model(&models.RecipeStep{}).Where("recipe_id = ?", recipe.ID).Count(&steps).Error)
	assert.Zero(t, steps)
}

func testCatalogInUse(t *testing.T, db *gorm.DB) {
	cuisineID, flourID := seeded(t, db)
	owner := helpers.CreateUser(t, db, "catalog", false)
	admin := helpers.CreateUser(t, db, "admin", true)
	svc := &services.RecipeService{DB: db}

	recipe, err := svc.Create(policy.ActorFor(owner), recipeInput("Pasta", cuisineID, flourID))
	require.NoError(t, err)

	err = services.Ingredients.Delete(db, policy.ActorFor(admin), flourID)
	assert.ErrorIs(t, err, types.ErrInUse)
	err = services.Cuisines.Delete(db, policy.ActorFor(admin), cuisineID)
	assert.ErrorIs(t, err, types.ErrInUse)

	require.NoError(t, svc.Delete(policy.ActorFor(owner), recipe.ID))
}

func testConcurrentUpdates(t *testing.T, db *gorm.DB) {
	cuisineID, flourID := seeded(t, db)
	owner := helpers.CreateUser(t, db, "racer", false)
	svc := &services.RecipeService{DB: db}

	recipe, err := svc.Create(policy.ActorFor(owner), recipeInput("Risotto", cuisineID, flourID))
	require.NoError(t, err)

	const writers = 4
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			_, err := svc.Update(policy.ActorFor(owner), recipe.ID, services.RecipeInput{
				Steps: types.Some([]services.StepInput{
					{StepNumber: types.Some(1), Description: types.Some(fmt.Sprintf("Writer %d", i))},
				}),
			})
			errs <- err
		}(i)
	}
	for i := 0; i < writers; i++ {
		assert.NoError(t, <-errs)
	}

	// whichever writer won, the recipe holds exactly one step list
	got, err := svc.Get(policy.ActorFor(owner), recipe.ID)
	require.NoError(t, err)
	assert.Len(t, got.Steps, 1)
}
