package storage

import (
	"context"
	"io"
)

// Uploader writes an object and returns the key it was stored under.
type Uploader interface {
	Upload(ctx context.Context, objectKey string, contentType string, r io.Reader) (string, error)
}
