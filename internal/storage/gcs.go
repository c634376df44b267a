package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSUploader stores resume files in a private bucket. Objects stay private;
// callers keep the object key, not a public URL.
type GCSUploader struct {
	client *gcs.Client
	bucket string
}

func NewGCSUploader(ctx context.Context, bucket string) (*GCSUploader, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSUploader{client: c, bucket: bucket}, nil
}

func (u *GCSUploader) Close() error { return u.client.Close() }

func (u *GCSUploader) Upload(ctx context.Context, objectKey string, contentType string, r io.Reader) (string, error) {
	w := u.client.Bucket(u.bucket).Object(objectKey).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return objectKey, nil
}
