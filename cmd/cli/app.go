package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/config"
	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/persistence"
	"github.com/dvloznov/imobcontrol/internal/portfolio"
)

// as a CLI application it lives for one command, so app is built once in
// main and shared by every command.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	in    *bufio.Reader
	out   io.Writer
	user  string
	plain bool

	// openBackend and openTarget are replaced in tests.
	openBackend func(ctx context.Context) (persistence.Backend, error)
	openTarget  func(ctx context.Context, opts persistence.Options) (persistence.Backend, error)
}

func newApp(cfg *config.Config, in io.Reader, out io.Writer) *app {
	a := &app{cfg: cfg, log: zerolog.Nop(), in: bufio.NewReader(in), out: out}
	a.openBackend = func(ctx context.Context) (persistence.Backend, error) {
		return persistence.Open(ctx, cfg.PersistenceOptions())
	}
	a.openTarget = persistence.Open
	return a
}

// openStore opens the portfolio of the -user flag. close releases the
// backend and must run after the last mutation.
func (a *app) openStore(ctx context.Context) (*portfolio.Store, func(), error) {
	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage backend: %w", err)
	}
	store, err := portfolio.NewRegistry(backend, a.registryOptions(), a.log).Store(ctx, a.user)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return store, func() { backend.Close() }, nil
}

func (a *app) registryOptions() portfolio.RegistryOptions {
	opts := portfolio.RegistryOptions{BaseKey: a.cfg.StorageKey, PerUser: a.cfg.NamespacePerUser}
	if a.cfg.SeedSampleData {
		opts.Seed = domain.SampleProperties
	}
	return opts
}

// storeKey is the storage key openStore reads.
func (a *app) storeKey() string {
	return portfolio.NewRegistry(nil, a.registryOptions(), a.log).Key(a.user)
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func (a *app) printMarkdown(md string) {
	if a.plain {
		fmt.Fprint(a.out, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(a.out, out)
			return
		}
	}
	fmt.Fprint(a.out, md)
}

// confirm asks a yes/no question on the terminal. Only "s", "sim", "y" and
// "yes" confirm.
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [s/N] ", question)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}
