package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/imobcontrol/internal/domain"
	infraBQ "github.com/dvloznov/imobcontrol/internal/infra/bigquery"
	"github.com/dvloznov/imobcontrol/internal/notionsync"
)

type syncNotionCmd struct {
	app    *app
	token  string
	dbID   string
	dryRun bool
}

func (*syncNotionCmd) Name() string     { return "sync-notion" }
func (*syncNotionCmd) Synopsis() string { return "mirror the portfolio into a Notion database" }
func (*syncNotionCmd) Usage() string {
	return `imobcontrol sync-notion [-dry-run] [-notion-token <token>] [-notion-db-id <id>]

  One page per property, matched on the "Property ID" column. Pages of
  removed properties are archived.
`
}

func (c *syncNotionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.token, "notion-token", c.app.cfg.NotionToken, "Notion API token (or set NOTION_TOKEN)")
	f.StringVar(&c.dbID, "notion-db-id", c.app.cfg.NotionDatabaseID, "Notion database ID (or set NOTION_DATABASE_ID)")
	f.BoolVar(&c.dryRun, "dry-run", false, "Dry run mode - preview changes without syncing")
}

func (c *syncNotionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.token == "" {
		return usageError("-notion-token is required")
	}
	if c.dbID == "" {
		return usageError("-notion-db-id is required")
	}
	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	stats, err := notionsync.SyncProperties(ctx, store.List(), notionsync.NewNotionClient(c.token), c.dbID, c.dryRun)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.app.out, "Created %d, updated %d, archived %d, failed %d.\n",
		stats.Created, stats.Updated, stats.Archived, stats.Failed)
	if stats.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type exportBQCmd struct {
	app       *app
	projectID string
	dataset   string
	summary   bool
}

func (*exportBQCmd) Name() string     { return "export-bq" }
func (*exportBQCmd) Synopsis() string { return "export financial records to BigQuery" }
func (*exportBQCmd) Usage() string {
	return `imobcontrol export-bq [-project <id>] [-dataset <name>] [-summary]

  Appends one row per financial record to <dataset>.financial_records,
  creating the table when needed. -summary prints the monthly totals of
  the export afterwards.
`
}

func (c *exportBQCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.projectID, "project", c.app.cfg.BigQueryProjectID, "GCP project (or set BIGQUERY_PROJECT_ID)")
	f.StringVar(&c.dataset, "dataset", c.app.cfg.BigQueryDataset, "BigQuery dataset (or set BIGQUERY_DATASET)")
	f.BoolVar(&c.summary, "summary", false, "print monthly totals after exporting")
}

func (c *exportBQCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.projectID == "" {
		return usageError("-project is required")
	}
	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	exporter, err := infraBQ.NewExporter(ctx, c.projectID, c.dataset)
	if err != nil {
		return fail(err)
	}
	defer exporter.Close()
	if err := exporter.EnsureTable(ctx); err != nil {
		return fail(err)
	}

	key := c.app.storeKey()
	exportID, n, err := exporter.Export(ctx, key, store.List())
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.app.out, "Exported %d records (export %s).\n", n, exportID)
	if !c.summary {
		return subcommands.ExitSuccess
	}

	rows, err := exporter.QueryMonthlyTotals(ctx, key)
	if err != nil {
		return fail(err)
	}
	var b strings.Builder
	b.WriteString("| Mês | Receita | Despesa |\n|---|---:|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.Month, ratMoney(r.Revenue), ratMoney(r.Expense))
	}
	c.app.printMarkdown(b.String())
	return subcommands.ExitSuccess
}

func ratMoney(r *big.Rat) string {
	if r == nil {
		return domain.Money{}.String()
	}
	d, err := decimal.NewFromString(r.FloatString(2))
	if err != nil {
		return r.FloatString(2)
	}
	return domain.MoneyFromDecimal(d).String()
}
