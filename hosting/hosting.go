// Package hosting stores published sites and uploaded assets in
// S3-compatible object storage and hands out their public URLs.
package hosting

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrNotConfigured = errors.New("hosting is not configured")
)

// Store is what the publish and asset handlers depend on.
type Store interface {
	// PutSite writes the HTML for a user's published site and returns its
	// public URL. The key is deterministic per user, so a second write
	// replaces the first.
	PutSite(ctx context.Context, userID int, html string) (string, error)

	// RemoveSite deletes the user's published object. Removing an object
	// that does not exist is a success, so unpublish stays idempotent.
	RemoveSite(ctx context.Context, userID int) error

	// PutAsset stores an uploaded file and returns its public URL.
	PutAsset(ctx context.Context, userID int, filename, contentType string, r io.Reader, size int64) (string, error)
}

// SiteKey returns the deterministic object key for a user's published
// site. The xxhash keeps the key stable without exposing the raw user id.
func SiteKey(userID int) string {
	hash := xxhash.Sum64String(fmt.Sprintf("user:%d", userID))
	return fmt.Sprintf("sites/%016x.html", hash)
}
