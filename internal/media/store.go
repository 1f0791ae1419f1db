// Package media stores user-uploaded images in object storage.
package media

import (
	"context"
	"errors"
)

var ErrNoFile = errors.New("no local file to upload")

// Asset identifies an uploaded object. PublicID is what Delete takes.
type Asset struct {
	URL      string
	PublicID string
}

// Store uploads staged local files and deletes previously uploaded objects.
// Upload removes the local file whether or not the upload succeeds.
type Store interface {
	Upload(ctx context.Context, localPath string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}
