package salesreporthttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/regional-dashboard/internal/platform/httpx"
	"github.com/odyssey-erp/regional-dashboard/internal/salesreport"
	"github.com/odyssey-erp/regional-dashboard/internal/salesreport/export"
)

const requestTimeout = 10 * time.Second

// ReportService computes the sales target achievement report.
type ReportService interface {
	Execute(ctx context.Context, filters salesreport.Filters) (salesreport.Result, error)
}

// PDFService renders a computed report to PDF bytes.
type PDFService interface {
	Render(ctx context.Context, meta export.Meta, result salesreport.Result) ([]byte, error)
}

// Handler serves the report as JSON, CSV and PDF.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	pdf     PDFService
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the report HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService, pdf PDFService) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		pdf:     pdf,
		now:     time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	result, ok := h.execute(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.execute(w, r)
	if !ok {
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteCSV(buf, result); err != nil {
		h.respondError(w, "write csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFilename(result.Scope, "csv")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.respondError(w, "pdf exporter", errors.New("pdf exporter not configured"))
		return
	}
	result, ok := h.execute(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	meta := export.Meta{
		FiscalYear:  result.Scope.FiscalYear,
		Company:     result.Scope.Company,
		From:        result.Scope.From,
		To:          result.Scope.To,
		GeneratedAt: h.now(),
	}
	pdfBytes, err := h.pdf.Render(ctx, meta, result)
	if err != nil {
		h.respondError(w, "render pdf", fmt.Errorf("%w: %v", httpx.ErrUpstream, err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFilename(result.Scope, "pdf")))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

// execute runs the report for the request filters and writes the error
// response itself when it fails.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request) (salesreport.Result, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.Execute(ctx, parseFilters(r))
	if err != nil {
		h.respondError(w, "execute report", err)
		return salesreport.Result{}, false
	}
	return result, true
}

func parseFilters(r *http.Request) salesreport.Filters {
	q := r.URL.Query()
	return salesreport.Filters{
		FromDate:   q.Get(salesreport.FilterFromDate),
		ToDate:     q.Get(salesreport.FilterToDate),
		FiscalYear: q.Get(salesreport.FilterFiscalYear),
		Company:    q.Get(salesreport.FilterCompany),
	}
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	if errors.Is(err, salesreport.ErrValidation) {
		httpx.RespondError(w, httpx.Invalid(err.Error()))
		return
	}
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

func exportFilename(scope salesreport.Scope, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, scope.FiscalYear)
	return fmt.Sprintf("sales-target-achievement-%s-%s.%s", safe, scope.To.Format("20060102"), ext)
}
