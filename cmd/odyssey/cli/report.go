package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/odyssey-erp/regional-dashboard/internal/salesreport"
	"github.com/odyssey-erp/regional-dashboard/internal/salesreport/export"
)

// Output formats accepted by the report command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// ReportExecutor computes the report for a set of filters.
type ReportExecutor interface {
	Execute(ctx context.Context, filters salesreport.Filters) (salesreport.Result, error)
}

// ReportOptions defines available flags for the report command.
type ReportOptions struct {
	FromDate   string
	ToDate     string
	FiscalYear string
	Company    string
	Format     string
	Stdout     io.Writer
	Stderr     io.Writer
}

// ReportCLI runs the sales target achievement report from the terminal.
type ReportCLI struct {
	service ReportExecutor
}

// NewReportCLI constructs a CLI helper around the report service.
func NewReportCLI(service ReportExecutor) (*ReportCLI, error) {
	if service == nil {
		return nil, errors.New("cli: report service is required")
	}
	return &ReportCLI{service: service}, nil
}

// ReportCommand executes the report and prints it. The exit code is 0 on
// success, 2 when the filters are rejected and 1 for any other failure.
func (c *ReportCLI) ReportCommand(ctx context.Context, opts ReportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = FormatTable
	}
	if format != FormatTable && format != FormatJSON && format != FormatCSV {
		_, _ = fmt.Fprintf(opts.Stderr, "report: unsupported format %q (expected table, json or csv)\n", opts.Format)
		return 2
	}

	result, err := c.service.Execute(ctx, salesreport.Filters{
		FromDate:   opts.FromDate,
		ToDate:     opts.ToDate,
		FiscalYear: opts.FiscalYear,
		Company:    opts.Company,
	})
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "report: %v\n", err)
		if errors.Is(err, salesreport.ErrValidation) {
			return 2
		}
		return 1
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: encode json: %v\n", err)
			return 1
		}
	case FormatCSV:
		if err := export.WriteCSV(opts.Stdout, result); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: write csv: %v\n", err)
			return 1
		}
	default:
		if err := renderTable(opts.Stdout, result); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: render table: %v\n", err)
			return 1
		}
	}
	return 0
}

func renderTable(out io.Writer, result salesreport.Result) error {
	scope := result.Scope
	_, _ = fmt.Fprintf(out, "Sales target achievement for %s (%s) %s to %s\n",
		scope.Company, scope.FiscalYear,
		scope.From.Format(salesreport.DateLayout), scope.To.Format(salesreport.DateLayout))
	if len(result.Rows) == 0 {
		_, _ = fmt.Fprintln(out, "No salesperson has an active target for this fiscal year.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	labels := make([]string, 0, len(result.Columns))
	for _, col := range result.Columns {
		labels = append(labels, col.Label)
	}
	_, _ = fmt.Fprintln(tw, strings.Join(labels, "\t")+"\t")
	for _, row := range result.Rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t\n",
			row.SalesPerson,
			row.TotalRevenue.StringFixed(2),
			row.RevenueGoal.StringFixed(2),
			row.TotalSIL.StringFixed(2),
			row.GoalSIL.StringFixed(2),
			row.RevenueGoalPercent,
			row.SILGoalPercent,
		)
	}
	return tw.Flush()
}
