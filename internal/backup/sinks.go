package backup

import (
	"context"
	"fmt"
)

// BlobPutter stores a named object and returns its URI.
type BlobPutter interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// BlobSink writes each backup as a JSON object under backups/<key>/.
type BlobSink struct {
	blobs BlobPutter
}

// NewBlobSink returns a sink over blobs.
func NewBlobSink(blobs BlobPutter) *BlobSink {
	return &BlobSink{blobs: blobs}
}

// Name implements Sink.
func (s *BlobSink) Name() string { return "blob" }

// Write implements Sink.
func (s *BlobSink) Write(ctx context.Context, snap Snapshot) error {
	name := fmt.Sprintf("backups/%s/%s", snap.Key, Filename(snap.Taken))
	if _, err := s.blobs.Put(ctx, name, "application/json", snap.Payload); err != nil {
		return fmt.Errorf("failed to upload backup %s: %w", name, err)
	}
	return nil
}
