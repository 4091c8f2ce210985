package services_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/policy"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
	"github.com/localnerve/recipedb/tests/helpers"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAttachment(t *testing.T) {
	db := helpers.NewTestDB(t)
	user := helpers.CreateUser(t, db, "uploader", false)
	store := storage.NewLocalStoreFs(afero.NewMemMapFs(), "/storage")
	svc := &services.AttachmentService{DB: db, Store: store, MaxBytes: 1024}

	result, err := svc.Upload(context.Background(), policy.ActorFor(user), services.UploadInput{
		OriginalName: "Photo.JPG",
		Size:         5,
		Body:         strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Photo.JPG", result.OriginalName)
	assert.Equal(t, "image/jpeg", result.Mime)
	assert.EqualValues(t, 5, result.Size)
	assert.True(t, strings.HasPrefix(result.URL, "/storage/"))
	assert.True(t, strings.HasSuffix(result.URL, result.Name+".jpg"))

	var row models.Attachment
	require.NoError(t, db.First(&row, result.ID).Error)
	assert.Equal(t, "local", row.Disk)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", row.Hash)
	require.NotNil(t, row.UserID)
	assert.Equal(t, user.ID, *row.UserID)

	f, err := store.Open(row.Key())
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	got, err := svc.Get(policy.ActorFor(user), result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.URL, got.URL)

	_, err = svc.Get(policy.ActorFor(user), result.ID+1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUploadAttachmentValidation(t *testing.T) {
	db := helpers.NewTestDB(t)
	user := helpers.CreateUser(t, db, "uploader", false)
	svc := &services.AttachmentService{
		DB:       db,
		Store:    storage.NewLocalStoreFs(afero.NewMemMapFs(), "/storage"),
		MaxBytes: 2048,
	}
	actor := policy.ActorFor(user)

	_, err := svc.Upload(context.Background(), actor, services.UploadInput{})
	assert.Equal(t, []string{"The file field is required."}, fieldErrors(t, err)["file"])

	_, err = svc.Upload(context.Background(), actor, services.UploadInput{
		OriginalName: "big.png",
		Size:         4096,
		Body:         strings.NewReader(strings.Repeat("x", 4096)),
	})
	assert.Equal(t, []string{"The file field must not be greater than 2 kilobytes."}, fieldErrors(t, err)["file"])

	_, err = svc.Upload(context.Background(), nil, services.UploadInput{OriginalName: "a.png", Body: strings.NewReader("a")})
	assert.ErrorIs(t, err, types.ErrAuthenticationRequired)

	assert.Zero(t, countRows(t, db, &models.Attachment{}))
}

func TestUploadAttachmentStoreFailure(t *testing.T) {
	db := helpers.NewTestDB(t)
	user := helpers.CreateUser(t, db, "uploader", false)
	svc := &services.AttachmentService{
		DB:    db,
		Store: storage.NewLocalStoreFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/storage"),
	}

	_, err := svc.Upload(context.Background(), policy.ActorFor(user), services.UploadInput{
		OriginalName: "notes.txt",
		Size:         2,
		Body:         strings.NewReader("hi"),
	})
	assert.ErrorIs(t, err, types.ErrPersistence)
	assert.Zero(t, countRows(t, db, &models.Attachment{}))
}

func TestHealthCheck(t *testing.T) {
	db := helpers.NewTestDB(t)
	cfg := &config.Config{DBType: "sqlite", DBAppDatabase: "test.db", AuthProvider: "local"}

	result := services.HealthCheck(context.Background(), cfg, db, storage.NewLocalStoreFs(afero.NewMemMapFs(), "/storage"))
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "disabled", result.Authorizer)
	assert.Equal(t, "ok", result.Storage)
	assert.Empty(t, result.ErrorMessage)

	broken := storage.NewLocalStoreFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/storage")
	result = services.HealthCheck(context.Background(), cfg, db, broken)
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unavailable", result.Storage)
	assert.Contains(t, result.ErrorMessage, "Storage check failed")

	result = services.HealthCheck(context.Background(), cfg, db, nil)
	assert.Equal(t, "skipped", result.Storage)
}
