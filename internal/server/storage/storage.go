// Package storage defines the media-host boundary used for avatar uploads.
package storage

import (
	"context"
	"io"
)

// AvatarStore uploads avatar images to an external object store and returns
// a publicly reachable URL for the stored object.
type AvatarStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
