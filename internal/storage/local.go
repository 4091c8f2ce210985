package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// LocalStore keeps objects on a filesystem, served by the app under baseURL
type LocalStore struct {
	fs      afero.Fs
	baseURL string
}

// NewLocalStore roots a store at dir on the OS filesystem
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return NewLocalStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL), nil
}

// NewLocalStoreFs builds a store over any afero filesystem
func NewLocalStoreFs(fs afero.Fs, baseURL string) *LocalStore {
	return &LocalStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Disk() string {
	return "local"
}

func (s *LocalStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	name := s.clean(key)
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	f, err := s.fs.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = s.fs.Remove(name)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return f.Close()
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	err := s.fs.Remove(s.clean(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	return s.baseURL + s.clean(key)
}

// Open reads an object back
func (s *LocalStore) Open(key string) (afero.File, error) {
	return s.fs.Open(s.clean(key))
}

func (s *LocalStore) Check(ctx context.Context) error {
	const probe = ".healthcheck"
	if err := s.Put(ctx, probe, strings.NewReader("ok"), 2, "text/plain"); err != nil {
		return err
	}
	return s.Delete(ctx, probe)
}

// clean keeps keys inside the store root
func (s *LocalStore) clean(key string) string {
	return path.Clean("/" + key)
}
