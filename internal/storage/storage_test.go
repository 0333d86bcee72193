package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://bucket/statements/a.pdf", "bucket", "statements/a.pdf", false},
		{"gs://bucket/a.pdf", "bucket", "a.pdf", false},
		{"gs://bucket", "", "", true},
		{"gs://bucket/", "", "", true},
		{"s3://bucket/a.pdf", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := SplitURI(tt.uri, "gs")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "file.pdf", BaseName("gs://bucket/folder/file.pdf"))
	assert.Equal(t, "x.json", BaseName("mem://local/backups/k/x.json"))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	uri, err := m.Put(ctx, "statements/p1/a.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "mem://local/statements/p1/a.pdf", uri)

	data, err := m.Fetch(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)

	_, err = m.Fetch(ctx, "mem://local/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Fetch(ctx, "gs://local/statements/p1/a.pdf")
	assert.Error(t, err)

	assert.Equal(t, []string{"statements/p1/a.pdf"}, m.Names())
}
