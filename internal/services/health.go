package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Storage      string            `json:"storage"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, detail string, err error) {
	r.Status = "unhealthy"
	r.Details[detail] = err.Error()
	msg := fmt.Sprintf("%s failed: %v", component, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	log.Printf("Health check failed - %s: %v", strings.ToLower(component), err)
}

// HealthCheck performs a comprehensive health check of the service.
// A nil store skips the storage check.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, store storage.Store) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("Database connection", "database_error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("Database ping", "database_ping_error", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBAppDatabase
	}

	// Check Authorizer connectivity, when sessions come from it
	if cfg.AuthProvider == "authorizer" {
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.fail("Authorizer ping", "authorizer_error", err)
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	} else {
		result.Authorizer = "disabled"
	}

	if store == nil {
		result.Storage = "skipped"
	} else if err := store.Check(ctx); err != nil {
		result.Storage = "unavailable"
		result.fail("Storage check", "storage_error", err)
	} else {
		result.Storage = "ok"
		result.Details["storage_disk"] = store.Disk()
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
