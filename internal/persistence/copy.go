package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// CopyStatus is what Copy did with one key.
type CopyStatus string

const (
	CopyCopied  CopyStatus = "copied"
	CopySkipped CopyStatus = "skipped" // target already holds the key
	CopyMissing CopyStatus = "missing" // nothing stored in the source
)

// CopyResult reports one key of a Copy run.
type CopyResult struct {
	Key    string
	Status CopyStatus
	Bytes  int
}

// Copy moves the documents stored under keys from one backend to another.
// Keys already present in the target are left alone unless overwrite is set.
// The document is validated by decoding it before it is written.
func Copy(ctx context.Context, from, to Backend, keys []string, overwrite bool) ([]CopyResult, error) {
	results := make([]CopyResult, 0, len(keys))
	for _, key := range keys {
		data, err := from.Read(ctx, key)
		if errors.Is(err, ErrNotFound) {
			results = append(results, CopyResult{Key: key, Status: CopyMissing})
			continue
		}
		if err != nil {
			return results, fmt.Errorf("failed to read %q from source: %w", key, err)
		}
		if !overwrite {
			_, err := to.Read(ctx, key)
			if err == nil {
				results = append(results, CopyResult{Key: key, Status: CopySkipped})
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return results, fmt.Errorf("failed to check %q in target: %w", key, err)
			}
		}

		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return results, fmt.Errorf("failed to decode portfolio %q: %w", key, err)
		}
		if err := to.Write(ctx, key, data); err != nil {
			return results, fmt.Errorf("failed to write %q to target: %w", key, err)
		}
		results = append(results, CopyResult{Key: key, Status: CopyCopied, Bytes: len(data)})
	}
	return results, nil
}
