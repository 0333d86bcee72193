package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
)

// GCS stores blobs in one Google Cloud Storage bucket.
// It uses Application Default Credentials.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS opens a storage client for bucket.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Put uploads data and returns its gs:// URI.
func (g *GCS) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, name), nil
}

// Fetch downloads the object behind a gs:// URI.
func (g *GCS) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := SplitURI(uri, "gs")
	if err != nil {
		return nil, err
	}
	rc, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading bytes of %s: %w", uri, err)
	}
	return data, nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}
