package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/dvloznov/imobcontrol/internal/persistence"
	"github.com/dvloznov/imobcontrol/internal/portfolio"
)

type migrateCmd struct {
	app       *app
	target    persistence.Options
	keys      string
	overwrite bool
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "copy stored portfolios to another storage backend" }
func (*migrateCmd) Usage() string {
	return `imobcontrol migrate -to <backend> [target flags] [-keys k1,k2] [-overwrite]

  Copies the portfolios of the configured backend (STORAGE_BACKEND) into the
  target backend. SQL targets get their schema created first. Without -keys
  the base key is copied, plus one key per configured user when
  NAMESPACE_PER_USER is set.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.target.Backend, "to", "", "target backend: file, sqlite, postgres or firestore")
	f.StringVar(&c.target.DataDir, "to-dir", "", "target data directory (file and sqlite)")
	f.StringVar(&c.target.SQLitePath, "to-sqlite", "", "target SQLite database file")
	f.StringVar(&c.target.PostgresDSN, "to-dsn", "", "target Postgres DSN")
	f.StringVar(&c.target.FirestoreProjectID, "to-project", "", "target Firestore project")
	f.StringVar(&c.keys, "keys", "", "comma separated storage keys")
	f.BoolVar(&c.overwrite, "overwrite", false, "replace portfolios that already exist in the target")
}

func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.target.Backend == "" {
		return usageError("-to is required")
	}
	if c.target == c.app.cfg.PersistenceOptions() {
		return usageError("source and target are the same backend")
	}

	from, err := c.app.openBackend(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to open source backend: %w", err))
	}
	defer from.Close()
	to, err := c.app.openTarget(ctx, c.target)
	if err != nil {
		return fail(fmt.Errorf("failed to open target backend: %w", err))
	}
	defer to.Close()

	results, err := persistence.Copy(ctx, from, to, c.storageKeys(), c.overwrite)
	for _, r := range results {
		switch r.Status {
		case persistence.CopyCopied:
			fmt.Fprintf(c.app.out, "  [OK]   %s (%d bytes)\n", r.Key, r.Bytes)
		case persistence.CopySkipped:
			fmt.Fprintf(c.app.out, "  [SKIP] %s (already in target)\n", r.Key)
		case persistence.CopyMissing:
			fmt.Fprintf(c.app.out, "  [SKIP] %s (nothing stored)\n", r.Key)
		}
	}
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.app.out, "Migrated %d of %d portfolios.\n", countCopied(results), len(results))
	return subcommands.ExitSuccess
}

func (c *migrateCmd) storageKeys() []string {
	if c.keys != "" {
		var keys []string
		for _, k := range strings.Split(c.keys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		return keys
	}
	reg := portfolio.NewRegistry(nil, c.app.registryOptions(), c.app.log)
	keys := []string{reg.Key("")}
	if c.app.cfg.NamespacePerUser {
		for _, u := range c.app.cfg.Users {
			keys = append(keys, reg.Key(u.Username))
		}
	}
	return keys
}

func countCopied(results []persistence.CopyResult) int {
	n := 0
	for _, r := range results {
		if r.Status == persistence.CopyCopied {
			n++
		}
	}
	return n
}
