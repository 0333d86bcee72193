package persistence

import (
	"context"
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend            string
	DataDir            string
	SQLitePath         string
	PostgresDSN        string
	FirestoreProjectID string
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.DataDir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.DataDir, "imobcontrol.db")
		}
		return OpenSQL(ctx, DialectSQLite, path)
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires POSTGRES_DSN")
		}
		return OpenSQL(ctx, DialectPostgres, opts.PostgresDSN)
	case BackendFirestore:
		if opts.FirestoreProjectID == "" {
			return nil, fmt.Errorf("firestore backend requires FIRESTORE_PROJECT_ID")
		}
		return NewFirestoreStore(ctx, opts.FirestoreProjectID)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
