package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for k, v := range values {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"DB_TYPE":            "sqlite",
		"DB_APP_DATABASE":    "recipes.db",
		"SESSION_SECRET":     "secret",
		"RECAPTCHA_REQUIRED": "false",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "local", cfg.AuthProvider)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*1024*1024, cfg.MaxUploadBytes())
	assert.True(t, cfg.DBAutoMigrate)
}

func TestLoadRequiresDatabase(t *testing.T) {
	setEnv(t, map[string]string{
		"DB_APP_DATABASE": "",
		"SESSION_SECRET":  "secret",
	})

	_, err := Load()
	assert.EqualError(t, err, "DB_APP_DATABASE is required")
}

func TestValidateProviders(t *testing.T) {
	base := Config{
		DBType:        "sqlite",
		DBAppDatabase: "recipes.db",
		AuthProvider:  "local",
		SessionSecret: "secret",
		StorageDriver: "local",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"local ok", func(*Config) {}, ""},
		{"local without secret", func(c *Config) { c.SessionSecret = "" }, "SESSION_SECRET is required for the local auth provider"},
		{"authorizer without url", func(c *Config) { c.AuthProvider = "authorizer" }, "AUTHZ_URL is required"},
		{"unknown provider", func(c *Config) { c.AuthProvider = "ldap" }, "unsupported auth provider: ldap"},
		{"s3 without bucket", func(c *Config) { c.StorageDriver = "s3" }, "S3_BUCKET is required for the s3 storage driver"},
		{"mysql without user", func(c *Config) { c.DBType = "mysql" }, "DB_APP_USER is required"},
		{"recaptcha without key", func(c *Config) { c.RecaptchaRequired = true }, "RECAPTCHA_SECRET_KEY is required unless RECAPTCHA_REQUIRED=false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "DB_TYPE=sqlite\nDB_APP_DATABASE=from-file.db\nSESSION_SECRET=file-secret\nRECAPTCHA_REQUIRED=false\nSESSION_TTL=90m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv does not override, so clear anything the environment already set
	for _, key := range []string{"DB_TYPE", "DB_APP_DATABASE", "SESSION_SECRET", "RECAPTCHA_REQUIRED", "SESSION_TTL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("ENV_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DBAppDatabase)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
}
