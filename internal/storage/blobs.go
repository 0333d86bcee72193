// Package storage keeps uploaded statements and backup files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned when a blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Blobs puts and fetches named objects. Put returns a URI that Fetch accepts.
type Blobs interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// SplitURI splits scheme://bucket/object into its bucket and object path.
// e.g. "gs://bucket/statements/x.pdf" → "bucket", "statements/x.pdf"
func SplitURI(uri, scheme string) (string, string, error) {
	prefix := scheme + "://"
	if !strings.HasPrefix(uri, prefix) {
		return "", "", fmt.Errorf("invalid %s URI: %s", scheme, uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, prefix), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid %s URI (no object path): %s", scheme, uri)
	}
	return parts[0], parts[1], nil
}

// BaseName returns the file name at the end of a blob URI.
func BaseName(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		uri = uri[i+3:]
	}
	return path.Base(uri)
}
