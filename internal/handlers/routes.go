package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/middleware"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/storage"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the API routes are built from
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Store    storage.Store
	Identity middleware.IdentityProvider
	Resets   *services.PasswordResetService
}

// SetupRoutes mounts the API under /api
func SetupRoutes(app *fiber.App, deps Dependencies) {
	api := app.Group("/api")

	healthHandler := &HealthHandler{Config: deps.Config, DB: deps.DB, Store: deps.Store}
	api.Get("/health", healthHandler.Health)

	api.Use(middleware.Identify(deps.Identity))
	requireUser := middleware.RequireUser()

	authHandler := &AuthHandler{
		DB:           deps.DB,
		Secret:       []byte(deps.Config.SessionSecret),
		TTL:          deps.Config.SessionTTL,
		SecureCookie: deps.Config.SessionSecureCookie,
		Resets:       deps.Resets,
	}
	api.Get("/user", requireUser, authHandler.CurrentUser)

	// Local accounts only, the Authorizer owns sign up and sign in otherwise
	if deps.Config.AuthProvider == "local" {
		api.Post("/register", authHandler.Register)
		api.Post("/login", authHandler.Login)
		api.Post("/logout", authHandler.Logout)
		if deps.Resets != nil {
			api.Post("/password/email", authHandler.ForgotPassword)
			api.Post("/password/reset", authHandler.ResetPassword)
		}
	}

	recipeHandler := &RecipeHandler{Recipes: &services.RecipeService{DB: deps.DB, Store: deps.Store}}
	api.Get("/recipes", requireUser, recipeHandler.ListRecipes)
	api.Post("/recipes", requireUser, recipeHandler.CreateRecipe)
	api.Get("/recipes/:id", requireUser, recipeHandler.GetRecipe)
	api.Put("/recipes/:id", requireUser, recipeHandler.UpdateRecipe)
	api.Delete("/recipes/:id", requireUser, recipeHandler.DeleteRecipe)

	cuisineHandler := NewCuisineHandler(deps.DB)
	api.Get("/cuisines", requireUser, cuisineHandler.List)
	api.Post("/cuisines", requireUser, cuisineHandler.Create)
	api.Get("/cuisines/:id", requireUser, cuisineHandler.Get)
	api.Put("/cuisines/:id", requireUser, cuisineHandler.Update)
	api.Delete("/cuisines/:id", requireUser, cuisineHandler.Delete)

	ingredientHandler := NewIngredientHandler(deps.DB)
	api.Get("/ingredients", requireUser, ingredientHandler.List)
	api.Post("/ingredients", requireUser, ingredientHandler.Create)
	api.Get("/ingredients/:id", requireUser, ingredientHandler.Get)
	api.Put("/ingredients/:id", requireUser, ingredientHandler.Update)
	api.Delete("/ingredients/:id", requireUser, ingredientHandler.Delete)

	attachmentHandler := &AttachmentHandler{Attachments: &services.AttachmentService{
		DB:       deps.DB,
		Store:    deps.Store,
		MaxBytes: int64(deps.Config.MaxUploadBytes()),
	}}
	api.Post("/attachments", requireUser, attachmentHandler.UploadAttachment)
	api.Get("/attachments/:id", requireUser, attachmentHandler.GetAttachment)
}
