package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/dvloznov/imobcontrol/internal/ai"
	"github.com/dvloznov/imobcontrol/internal/domain"
)

func (a *app) gateway(ctx context.Context) (*ai.Gateway, error) {
	return ai.NewGemini(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel, a.log)
}

type describeCmd struct {
	app      *app
	req      ai.DescribeRequest
	features string
}

func (*describeCmd) Name() string     { return "describe" }
func (*describeCmd) Synopsis() string { return "write listing copy for a property" }
func (*describeCmd) Usage() string {
	return `imobcontrol describe -type Casa -location <place> -bedrooms 3 [-features "Piscina, Jardim"]
`
}

func (c *describeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.req.Type, "type", string(domain.TypeApartment), "property type")
	f.StringVar(&c.req.Location, "location", "", "neighbourhood or address")
	f.IntVar(&c.req.Bedrooms, "bedrooms", 0, "number of bedrooms")
	f.StringVar(&c.features, "features", "", "features and highlights")
}

func (c *describeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.req.Location == "" {
		return usageError("-location is required")
	}
	c.req.Features = c.features
	g, err := c.app.gateway(ctx)
	if err != nil {
		return fail(err)
	}
	c.app.printMarkdown(g.Describe(ctx, c.req))
	return subcommands.ExitSuccess
}

type chatCmd struct {
	app *app
}

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "ask the assistant about the portfolio" }
func (*chatCmd) Usage() string {
	return `imobcontrol chat [question]

  With a question, prints one answer. Without, starts a conversation that
  ends on an empty line or EOF.
`
}

func (*chatCmd) SetFlags(*flag.FlagSet) {}

func (c *chatCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g, err := c.app.gateway(ctx)
	if err != nil {
		return fail(err)
	}
	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()
	props := store.List()

	if f.NArg() > 0 {
		c.app.printMarkdown(g.Chat(ctx, strings.Join(f.Args(), " "), props, nil))
		return subcommands.ExitSuccess
	}

	var history []ai.Turn
	for {
		fmt.Fprint(c.app.out, "> ")
		line, err := c.app.in.ReadString('\n')
		message := strings.TrimSpace(line)
		if message == "" {
			if err != nil && !errors.Is(err, io.EOF) {
				return fail(err)
			}
			return subcommands.ExitSuccess
		}
		reply := g.Chat(ctx, message, props, history)
		c.app.printMarkdown(reply)
		history = append(history, ai.Turn{Role: "user", Text: message}, ai.Turn{Role: "model", Text: reply})
		if err != nil {
			return subcommands.ExitSuccess
		}
	}
}

type extractCmd struct {
	app        *app
	propertyID string
	mimeType   string
	yes        bool
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "read financial records out of a statement" }
func (*extractCmd) Usage() string {
	return `imobcontrol extract [-property <id> [-yes]] <statement.pdf>

  Prints the records found in the statement. With -property they are added
  to that property after confirmation.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.propertyID, "property", "", "property that receives the records")
	f.StringVar(&c.mimeType, "mime", "", "document type (default from the file extension)")
	f.BoolVar(&c.yes, "yes", false, "import without asking")
}

func (c *extractCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("extract takes exactly one statement file")
	}
	path := f.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	mimeType := c.mimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	g, err := c.app.gateway(ctx)
	if err != nil {
		return fail(err)
	}
	ex := g.ExtractRecords(ctx, data, mimeType)
	if ex.Outcome != ai.OutcomeOK {
		return fail(fmt.Errorf("extraction %s: %w", ex.Outcome, ex.Err))
	}
	c.app.printMarkdown(recordsMarkdown(ex.Records))
	if len(ex.Records) == 0 || c.propertyID == "" {
		return subcommands.ExitSuccess
	}

	if !c.yes && !c.app.confirm(fmt.Sprintf("Adicionar %d lançamentos ao imóvel %s?", len(ex.Records), c.propertyID)) {
		fmt.Fprintln(c.app.out, "Import cancelled.")
		return subcommands.ExitSuccess
	}
	store, closeStore, err := c.app.openStore(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()
	if _, err := store.AddRecords(ctx, c.propertyID, ex.Records); err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.app.out, "Added %d records to property %s.\n", len(ex.Records), c.propertyID)
	return subcommands.ExitSuccess
}

func recordsMarkdown(records []domain.FinancialRecord) string {
	if len(records) == 0 {
		return "Nenhum lançamento encontrado.\n"
	}
	var b strings.Builder
	b.WriteString("| Data | Descrição | Tipo | Valor | Check-in | Check-out |\n|---|---|---|---:|---|---|\n")
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Date, strings.ReplaceAll(r.Description, "|", `\|`), r.Kind, r.Amount, r.CheckIn, r.CheckOut)
	}
	return b.String()
}
