package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/media"
)

// FakeMediaStore is an in-memory media.Store. Like the real store it
// removes the local file on every upload attempt.
type FakeMediaStore struct {
	mu        sync.Mutex
	objects   map[string]string
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func NewFakeMediaStore() *FakeMediaStore {
	return &FakeMediaStore{objects: make(map[string]string)}
}

func (f *FakeMediaStore) Upload(_ context.Context, localPath string) (*media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if localPath == "" {
		return nil, media.ErrNoFile
	}
	defer os.Remove(localPath)

	if _, err := os.Stat(localPath); err != nil {
		return nil, fmt.Errorf("stat %s: %w", localPath, err)
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}

	id := "media/" + uuid.NewString()
	asset := &media.Asset{URL: "https://media.test/" + id, PublicID: id}
	f.objects[id] = asset.URL
	f.uploads = append(f.uploads, id)
	return asset, nil
}

func (f *FakeMediaStore) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if publicID == "" {
		return nil
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, publicID)
	f.deletes = append(f.deletes, publicID)
	return nil
}

// FailUploads makes every following upload fail with err (nil restores).
func (f *FakeMediaStore) FailUploads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadErr = err
}

// FailDeletes makes every following delete fail with err (nil restores).
func (f *FakeMediaStore) FailDeletes(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteErr = err
}

// Has reports whether publicID is currently stored.
func (f *FakeMediaStore) Has(publicID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[publicID]
	return ok
}

func (f *FakeMediaStore) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *FakeMediaStore) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// TempFile writes a small file that can stand in for a staged upload.
func TempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake-image"), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
