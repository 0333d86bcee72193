package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/api/middleware"
	"github.com/dvloznov/imobcontrol/internal/dashboard"
	"github.com/dvloznov/imobcontrol/internal/dates"
	"github.com/dvloznov/imobcontrol/internal/logger"
	"github.com/dvloznov/imobcontrol/internal/report"
)

// PDFPrinter turns an HTML page into a PDF. *report.PDFRenderer satisfies it.
type PDFPrinter interface {
	PDF(ctx context.Context, html []byte) ([]byte, error)
}

// DashboardHandler serves the aggregated financial view.
type DashboardHandler struct {
	stores StoreResolver
	pdf    PDFPrinter
	now    func() time.Time
	log    zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler. pdf may be nil.
func NewDashboardHandler(stores StoreResolver, pdf PDFPrinter, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{stores: stores, pdf: pdf, now: time.Now, log: log}
}

// ParseFilter reads property, start and end from the query. Dates are
// YYYY-MM-DD or DD/MM/YYYY; property may repeat or be comma separated.
func ParseFilter(r *http.Request, now time.Time) (dashboard.Filter, error) {
	q := r.URL.Query()
	f := dashboard.Filter{
		PropertyIDs: splitList(q["property"]),
		Now:         now,
	}
	var err error
	if f.Start, err = queryDate(q.Get("start")); err != nil {
		return f, fmt.Errorf("invalid start: %w", err)
	}
	if f.End, err = queryDate(q.Get("end")); err != nil {
		return f, fmt.Errorf("invalid end: %w", err)
	}
	return f, nil
}

func queryDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, ok := dates.ParseQuery(s); ok {
		return &t, nil
	}
	return nil, fmt.Errorf("%q is not a date", s)
}

// Dashboard handles GET /api/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	res, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

// Report handles GET /api/dashboard/report
//
// format=html (default) returns the print view, format=pdf prints it with
// headless Chrome and format=md returns the markdown source.
func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	if format != "html" && format != "pdf" && format != "md" {
		middleware.WriteError(w, http.StatusBadRequest, "format must be html, pdf or md")
		return
	}

	res, ok := h.aggregate(w, r)
	if !ok {
		return
	}
	now := h.now()
	opts := report.Options{
		Title:     r.URL.Query().Get("title"),
		Generated: now,
		Period:    periodLabel(r),
	}
	md := report.Markdown(res, opts)
	if format == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(md))
		return
	}

	title := opts.Title
	if title == "" {
		title = "Relatório Financeiro"
	}
	log := logger.FromContext(r.Context())
	page, err := report.HTML(md, title)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render report")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}
	if format == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(page)
		return
	}

	if h.pdf == nil {
		middleware.WriteError(w, http.StatusNotImplemented, "PDF reports are disabled")
		return
	}
	pdf, err := h.pdf.PDF(r.Context(), page)
	if err != nil {
		log.Error().Err(err).Msg("Failed to print report")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to print report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="imobcontrol_relatorio_%s.pdf"`, now.Format(time.DateOnly)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *DashboardHandler) aggregate(w http.ResponseWriter, r *http.Request) (dashboard.Result, bool) {
	f, err := ParseFilter(r, h.now())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return dashboard.Result{}, false
	}
	store, ok := storeFor(w, r, h.stores)
	if !ok {
		return dashboard.Result{}, false
	}
	return dashboard.Aggregate(store.List(), f), true
}

func periodLabel(r *http.Request) string {
	q := r.URL.Query()
	start, _ := queryDate(q.Get("start"))
	end, _ := queryDate(q.Get("end"))
	switch {
	case start != nil && end != nil:
		return dates.FormatDate(*start) + " a " + dates.FormatDate(*end)
	case start != nil:
		return "a partir de " + dates.FormatDate(*start)
	case end != nil:
		return "até " + dates.FormatDate(*end)
	}
	return ""
}
