package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/dvloznov/imobcontrol/internal/dashboard"
	"github.com/dvloznov/imobcontrol/internal/dates"
	"github.com/dvloznov/imobcontrol/internal/report"
)

// filterFlags are the dashboard filter flags shared by dashboard and report.
type filterFlags struct {
	properties string
	start      string
	end        string
}

func (f *filterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.properties, "property", "", "comma separated property ids (default all)")
	fs.StringVar(&f.start, "start", "", "first day, YYYY-MM-DD or DD/MM/YYYY")
	fs.StringVar(&f.end, "end", "", "last day, YYYY-MM-DD or DD/MM/YYYY")
}

func (f *filterFlags) filter(now time.Time) (dashboard.Filter, error) {
	out := dashboard.Filter{Now: now}
	for _, id := range strings.Split(f.properties, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out.PropertyIDs = append(out.PropertyIDs, id)
		}
	}
	for _, d := range []struct {
		name, value string
		dst         **time.Time
	}{{"start", f.start, &out.Start}, {"end", f.end, &out.End}} {
		if d.value == "" {
			continue
		}
		t, ok := dates.ParseQuery(d.value)
		if !ok {
			return out, fmt.Errorf("invalid -%s %q", d.name, d.value)
		}
		*d.dst = &t
	}
	return out, nil
}

func (f *filterFlags) period() string {
	switch {
	case f.start != "" && f.end != "":
		return f.start + " a " + f.end
	case f.start != "":
		return "a partir de " + f.start
	case f.end != "":
		return "até " + f.end
	}
	return ""
}

type dashboardCmd struct {
	app     *app
	filters filterFlags
	json    bool
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show revenue, expenses and occupancy" }
func (*dashboardCmd) Usage() string {
	return `imobcontrol dashboard [-property 1,2] [-start <date>] [-end <date>] [-json]

  Aggregates the financial records of the selected properties. Without dates
  every record counts and occupancy covers the current month.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.BoolVar(&c.json, "json", false, "print the raw result as JSON")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter, err := c.filters.filter(time.Now())
	if err != nil {
		return usageError("%v", err)
	}
	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	res := dashboard.Aggregate(store.List(), filter)
	if c.json {
		enc := json.NewEncoder(c.app.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}
	c.app.printMarkdown(report.Markdown(res, report.Options{Title: "Dashboard", Period: c.filters.period()}))
	return subcommands.ExitSuccess
}

type reportCmd struct {
	app     *app
	filters filterFlags
	format  string
	output  string
	title   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "write the financial report as markdown, HTML or PDF" }
func (*reportCmd) Usage() string {
	return `imobcontrol report [-format md|html|pdf] [-o <file>] [filters]

  Writes the dashboard report. PDF output needs Chrome or Chromium
  (CHROME_BIN overrides the binary).
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.StringVar(&c.format, "format", "html", "md, html or pdf")
	f.StringVar(&c.output, "o", "", "output file (default imobcontrol_relatorio_<date>.<format>)")
	f.StringVar(&c.title, "title", "Relatório Financeiro", "report title")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "md" && c.format != "html" && c.format != "pdf" {
		return usageError("unknown format %q", c.format)
	}
	now := time.Now()
	filter, err := c.filters.filter(now)
	if err != nil {
		return usageError("%v", err)
	}
	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	md := report.Markdown(dashboard.Aggregate(store.List(), filter), report.Options{
		Title:     c.title,
		Generated: now,
		Period:    c.filters.period(),
	})
	data := []byte(md)
	if c.format != "md" {
		if data, err = report.HTML(md, c.title); err != nil {
			return fail(err)
		}
	}
	if c.format == "pdf" {
		pdf := &report.PDFRenderer{ChromePath: c.app.cfg.ChromeBin}
		if data, err = pdf.PDF(ctx, data); err != nil {
			return fail(err)
		}
	}

	output := c.output
	if output == "" {
		output = fmt.Sprintf("imobcontrol_relatorio_%s.%s", now.Format(time.DateOnly), c.format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fail(fmt.Errorf("failed to write report: %w", err))
	}
	fmt.Fprintf(c.app.out, "Report written to %s\n", output)
	return subcommands.ExitSuccess
}
