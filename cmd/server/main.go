// main.go
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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/database"
	"github.com/localnerve/recipedb/internal/handlers"
	"github.com/localnerve/recipedb/internal/middleware"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/storage"

	_ "github.com/localnerve/recipedb/docs/api" // Swagger docs
)

// @title RecipeDB API
// @version 1.0.0
// @description Recipe service with shared and private cuisine and ingredient catalogs
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/recipedb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name recipedb_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if cfg.DBAutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Attachment store
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open attachment storage: %v", err)
	}

	identity, err := middleware.NewIdentityProvider(cfg, db)
	if err != nil {
		log.Fatalf("Failed to configure identity: %v", err)
	}

	resets := &services.PasswordResetService{
		DB:      db,
		Captcha: &services.Recaptcha{Secret: cfg.RecaptchaSecretKey},
		Mailer:  services.LogMailer{},
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		// Leave room for multipart framing so oversized files get a validation error
		BodyLimit: cfg.MaxUploadBytes() + 1024*1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("recipedb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Locally stored attachments
	if cfg.StorageDriver == "local" {
		app.Static(cfg.StorageBaseURL, cfg.StorageDir)
	}

	handlers.SetupRoutes(app, handlers.Dependencies{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Identity: identity,
		Resets:   resets,
	})

	// 404 handler
	app.Use(handlers.NotFound)

	if cfg.AuthProvider == "authorizer" {
		log.Printf("Authorizer will be initialized on first authenticated request")
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
