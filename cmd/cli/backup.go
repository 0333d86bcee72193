package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/dvloznov/imobcontrol/internal/backup"
)

type backupCmd struct {
	app    *app
	output string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "export the portfolio to a JSON backup file" }
func (*backupCmd) Usage() string {
	return `imobcontrol backup [-o <file>]

  Writes every property with its financial history. The file can be
  restored here or in the browser application.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file (default imobcontrol_backup_<date>.json)")
}

func (c *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	now := time.Now()
	props := store.List()
	data, err := backup.Export(props, now)
	if err != nil {
		return fail(err)
	}
	output := c.output
	if output == "" {
		output = backup.Filename(now)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fail(fmt.Errorf("failed to write backup: %w", err))
	}
	fmt.Fprintf(c.app.out, "Backup of %d properties written to %s\n", len(props), output)
	return subcommands.ExitSuccess
}

type restoreCmd struct {
	app *app
	yes bool
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the portfolio with a backup file" }
func (*restoreCmd) Usage() string {
	return `imobcontrol restore [-yes] <backup.json>

  Replaces ALL current properties with the ones in the backup.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "do not ask for confirmation")
}

func (c *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("restore takes exactly one backup file")
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	props, err := backup.Parse(data)
	if err != nil {
		return fail(err)
	}

	if !c.yes && !c.app.confirm(fmt.Sprintf("Substituir todos os imóveis atuais por %d imóveis do backup?", len(props))) {
		fmt.Fprintln(c.app.out, "Restore cancelled.")
		return subcommands.ExitSuccess
	}

	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()
	if err := store.Restore(ctx, props); err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.app.out, "Restored %d properties.\n", len(props))
	return subcommands.ExitSuccess
}
