package salesreport

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DataSource exposes the read-only queries the report depends on.
type DataSource interface {
	// ActiveTargets returns the active sales targets of a fiscal year.
	ActiveTargets(ctx context.Context, fiscalYear string) ([]SalesTarget, error)
	// SubmittedInvoices returns submitted invoices of the company posted
	// within the scope's inclusive date range.
	SubmittedInvoices(ctx context.Context, scope InvoiceScope) ([]Invoice, error)
	// ItemGroupSales sums line net amounts of the given submitted invoices
	// whose item belongs to itemGroup, grouped by invoice salesperson.
	ItemGroupSales(ctx context.Context, invoiceIDs []string, itemGroup string) ([]SalespersonAmount, error)
}

// RunObserver records the outcome and latency of report runs.
type RunObserver interface {
	ObserveReportRun(report, outcome string, elapsed time.Duration)
}

// Options configures the report service.
type Options struct {
	// DefaultCompany is used when the filters carry no company.
	DefaultCompany string
	Translator     Translator
	Logger         *slog.Logger
	Observer       RunObserver
}

// Service computes the sales target achievement report.
type Service struct {
	source DataSource
	opts   Options
	now    func() time.Time
}

// NewService wires a DataSource with report options.
func NewService(source DataSource, opts Options) *Service {
	return &Service{source: source, opts: opts, now: time.Now}
}

// Columns returns the column schema rendered by this service.
func (s *Service) Columns() []Column {
	return Columns(s.opts.Translator)
}

// Execute validates the filters, aggregates targets and actual sales and
// returns the column schema together with rows sorted by salesperson.
func (s *Service) Execute(ctx context.Context, filters Filters) (Result, error) {
	started := s.now()
	scope, err := filters.Validate(s.opts.DefaultCompany)
	if err != nil {
		s.observe("invalid", started)
		return Result{}, err
	}

	rows, invoiceCount, err := s.run(ctx, scope)
	if err != nil {
		s.observe("error", started)
		return Result{}, err
	}
	s.observe("ok", started)

	if s.opts.Logger != nil {
		s.opts.Logger.Debug("sales target report computed",
			slog.String("run_id", uuid.NewString()),
			slog.String("fiscal_year", scope.FiscalYear),
			slog.String("company", scope.Company),
			slog.Int("invoices", invoiceCount),
			slog.Int("rows", len(rows)),
			slog.Duration("elapsed", s.now().Sub(started)),
		)
	}
	return Result{Columns: s.Columns(), Rows: rows, Scope: scope}, nil
}

func (s *Service) run(ctx context.Context, scope Scope) ([]Row, int, error) {
	targets, err := s.source.ActiveTargets(ctx, scope.FiscalYear)
	if err != nil {
		return nil, 0, &DataSourceError{Op: "fetch targets", Err: err}
	}
	goals := aggregateTargets(targets)

	actuals := newActuals(goals)
	// No company resolved: no invoice can be in scope.
	if scope.Company == "" {
		return compileRows(goals, actuals), 0, nil
	}

	invoices, err := s.source.SubmittedInvoices(ctx, InvoiceScope{From: scope.From, To: scope.To, Company: scope.Company})
	if err != nil {
		return nil, 0, &DataSourceError{Op: "fetch invoices", Err: err}
	}
	addInvoiceTotals(actuals, invoices)

	if len(invoices) > 0 {
		ids := make([]string, 0, len(invoices))
		for _, inv := range invoices {
			ids = append(ids, inv.ID)
		}
		groups, err := s.source.ItemGroupSales(ctx, ids, ItemGroupSIL)
		if err != nil {
			return nil, 0, &DataSourceError{Op: "aggregate sil sales", Err: err}
		}
		addSILTotals(actuals, groups)
	}

	return compileRows(goals, actuals), len(invoices), nil
}

func (s *Service) observe(outcome string, started time.Time) {
	if s.opts.Observer == nil {
		return
	}
	s.opts.Observer.ObserveReportRun(ReportName, outcome, s.now().Sub(started))
}
