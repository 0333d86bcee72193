// Command imobcontrol is the terminal client of the portfolio: dashboard,
// reports, backups, the AI assistant and the Notion and BigQuery exports.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/dvloznov/imobcontrol/internal/config"
	"github.com/dvloznov/imobcontrol/internal/logger"
)

const progName = "imobcontrol"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	a := newApp(cfg, os.Stdin, os.Stdout)
	flag.StringVar(&a.user, "user", "", "portfolio owner when NAMESPACE_PER_USER is set")
	flag.BoolVar(&a.plain, "plain", false, "print raw markdown instead of rendering it")

	commander := subcommands.NewCommander(flag.CommandLine, progName)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range commands(a) {
		commander.Register(c.cmd, c.group)
	}

	// Answers shell completion requests and exits; a no-op otherwise.
	completion(commands(a)).Complete(progName)

	flag.Parse()
	a.log = logger.NewFromConfig(cfg.LogLevel, cfg.LogFormat)
	ctx := logger.WithContext(context.Background(), a.log)
	os.Exit(int(commander.Execute(ctx)))
}

type registered struct {
	cmd   subcommands.Command
	group string
}

func commands(a *app) []registered {
	return []registered{
		{&dashboardCmd{app: a}, "reports"},
		{&reportCmd{app: a}, "reports"},
		{&backupCmd{app: a}, "backup"},
		{&restoreCmd{app: a}, "backup"},
		{&migrateCmd{app: a}, "backup"},
		{&describeCmd{app: a}, "assistant"},
		{&chatCmd{app: a}, "assistant"},
		{&extractCmd{app: a}, "assistant"},
		{&syncNotionCmd{app: a}, "export"},
		{&exportBQCmd{app: a}, "export"},
	}
}
