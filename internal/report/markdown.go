// Package report renders dashboard results for people: markdown for the
// terminal, HTML for the print view and PDF through headless Chrome.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/imobcontrol/internal/dashboard"
	"github.com/dvloznov/imobcontrol/internal/dates"
)

// MaxRecords caps the transaction table.
const MaxRecords = 50

// Options describes the report header.
type Options struct {
	Title     string
	Generated time.Time
	// Period is a human description of the date filter, e.g. "01/11/2025 a 30/11/2025".
	Period string
}

// Markdown renders res as a GitHub-flavoured markdown document.
func Markdown(res dashboard.Result, opts Options) string {
	title := opts.Title
	if title == "" {
		title = "Relatório Financeiro"
	}
	period := opts.Period
	if period == "" {
		period = "Todo o período"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Período: **%s**  \n", escape(period))
	fmt.Fprintf(&b, "Imóveis considerados: **%d**", res.PropertyCount)
	if !opts.Generated.IsZero() {
		fmt.Fprintf(&b, "  \nGerado em: %s", opts.Generated.Format("02/01/2006 15:04"))
	}
	b.WriteString("\n\n## Resumo\n\n")
	b.WriteString("| Indicador | Valor |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Receita total | %s |\n", res.TotalRevenue)
	fmt.Fprintf(&b, "| Despesa total | %s |\n", res.TotalExpense)
	fmt.Fprintf(&b, "| Resultado líquido | %s |\n", res.NetResult)
	fmt.Fprintf(&b, "| Taxa de ocupação | %.1f%% |\n", res.OccupancyRate)
	fmt.Fprintf(&b, "| Dias ocupados | %d |\n", res.OccupiedDays)
	fmt.Fprintf(&b, "| Dias vagos | %d |\n", res.VacantDays)

	fmt.Fprintf(&b, "\nJanela de ocupação: %s a %s (%d dias).\n",
		dates.FormatDate(res.WindowStart), dates.FormatDate(res.WindowEnd), res.DaysInPeriod)
	if res.Clamped {
		b.WriteString("\n> Atenção: há estadias sobrepostas; a ocupação foi limitada a 100%.\n")
	}
	if !res.UndatedRevenue.IsZero() || !res.UndatedExpense.IsZero() {
		fmt.Fprintf(&b, "\n> Lançamentos sem data: receita %s, despesa %s (fora do gráfico mensal).\n",
			res.UndatedRevenue, res.UndatedExpense)
	}

	if len(res.Chart) > 0 {
		b.WriteString("\n## Evolução mensal\n\n")
		b.WriteString("| Mês | Receita | Despesa | Resultado |\n|---|---:|---:|---:|\n")
		for _, m := range res.Chart {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", m.Key, m.Revenue, m.Expense, m.Revenue.Sub(m.Expense))
		}
	}

	b.WriteString("\n## Lançamentos\n\n")
	if len(res.Records) == 0 {
		b.WriteString("Nenhum lançamento no período.\n")
		return b.String()
	}
	b.WriteString("| Data | Imóvel | Descrição | Tipo | Valor |\n|---|---|---|---|---:|\n")
	for i, e := range res.Records {
		if i == MaxRecords {
			fmt.Fprintf(&b, "\n_%d lançamentos não exibidos._\n", len(res.Records)-MaxRecords)
			break
		}
		kind := "Receita"
		if e.Record.IsExpense() {
			kind = "Despesa"
		}
		date := e.Record.Date
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			escape(date), escape(e.PropertyTitle), escape(e.Record.Description), kind, e.Record.Amount)
	}
	return b.String()
}

// escape keeps user text from breaking table cells.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
