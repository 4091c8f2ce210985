package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStoreFs(afero.NewMemMapFs(), "/storage/")

	require.NoError(t, store.Put(ctx, "2026/10/16/abc.png", strings.NewReader("image-bytes"), 11, "image/png"))

	f, err := store.Open("2026/10/16/abc.png")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	assert.Equal(t, "/storage/2026/10/16/abc.png", store.URL("2026/10/16/abc.png"))

	require.NoError(t, store.Delete(ctx, "2026/10/16/abc.png"))
	_, err = store.Open("2026/10/16/abc.png")
	assert.Error(t, err)

	// deleting twice is not an error
	assert.NoError(t, store.Delete(ctx, "2026/10/16/abc.png"))
}

func TestLocalStoreKeysStayInsideRoot(t *testing.T) {
	store := NewLocalStoreFs(afero.NewMemMapFs(), "/storage")
	assert.Equal(t, "/storage/etc/passwd", store.URL("../../etc/passwd"))
}

func TestLocalStoreCheck(t *testing.T) {
	store := NewLocalStoreFs(afero.NewMemMapFs(), "/storage")
	assert.NoError(t, store.Check(context.Background()))

	readOnly := NewLocalStoreFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/storage")
	assert.Error(t, readOnly.Check(context.Background()))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a/b.png",
		objectURL("https://cdn.example.com", "", "bucket", "us-east-1", "a/b.png"))
	assert.Equal(t, "http://minio:9000/bucket/a/b.png",
		objectURL("", "http://minio:9000", "bucket", "us-east-1", "a/b.png"))
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/a/b.png",
		objectURL("", "", "bucket", "eu-west-1", "a/b.png"))
}
