package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/regional-dashboard/internal/app"
	"github.com/odyssey-erp/regional-dashboard/internal/salesreport"
)

func fixtureService() *salesreport.Service {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
	source := &salesreport.MemorySource{
		Targets: []salesreport.SalesTarget{
			{SalesPerson: "Alice", ItemGroup: "", TargetAmount: decimal.NewFromInt(1000), FiscalYear: "FY24", Active: true},
			{SalesPerson: "Alice", ItemGroup: "SIL", TargetAmount: decimal.NewFromInt(200), FiscalYear: "FY24", Active: true},
		},
		Invoices: []salesreport.Invoice{
			{ID: "INV-1", NetTotal: decimal.NewFromInt(500), SalesPerson: "Alice", PostingDate: day(5), Company: "Acme", Submitted: true},
		},
		Lines: []salesreport.InvoiceLine{
			{InvoiceID: "INV-1", ItemCode: "S-1", NetAmount: decimal.NewFromInt(100)},
		},
		Items: []salesreport.Item{{ItemCode: "S-1", ItemGroup: "SIL"}},
	}
	return salesreport.NewService(source, salesreport.Options{DefaultCompany: "Acme"})
}

func reportOpts(stdout, stderr *bytes.Buffer, format string) ReportOptions {
	return ReportOptions{
		FromDate:   "2024-01-01",
		ToDate:     "2024-01-31",
		FiscalYear: "FY24",
		Format:     format,
		Stdout:     stdout,
		Stderr:     stderr,
	}
}

func TestReportCommandJSON(t *testing.T) {
	cli, err := NewReportCLI(fixtureService())
	require.NoError(t, err)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := cli.ReportCommand(context.Background(), reportOpts(stdout, stderr, "json"))
	require.Zero(t, exitCode)
	require.Empty(t, stderr.String())

	var payload struct {
		Columns []map[string]any `json:"columns"`
		Data    []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &payload))
	require.Len(t, payload.Columns, 7)
	require.Len(t, payload.Data, 1)
	require.Equal(t, "Alice", payload.Data[0]["sales_person"])
	require.InDelta(t, 50.0, payload.Data[0]["revenue_goal_percent"], 0.0001)
	require.InDelta(t, 50.0, payload.Data[0]["sil_goal_percent"], 0.0001)
}

func TestReportCommandKeepsLogsOffStdout(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	logger := app.NewLoggerTo(&app.Config{LogFormat: "json", LogLevel: "debug"}, stderr)

	source, err := salesreport.DemoFixture()
	require.NoError(t, err)
	cli, err := NewReportCLI(salesreport.NewService(source, salesreport.Options{
		DefaultCompany: "Odyssey Medika",
		Logger:         logger,
	}))
	require.NoError(t, err)

	opts := reportOpts(stdout, stderr, "json")
	opts.FiscalYear = "2024"
	opts.ToDate = "2024-12-31"
	require.Zero(t, cli.ReportCommand(context.Background(), opts))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &payload))
	require.NotContains(t, stdout.String(), "run_id")
	require.Contains(t, stderr.String(), "run_id")
}

func TestReportCommandTable(t *testing.T) {
	cli, err := NewReportCLI(fixtureService())
	require.NoError(t, err)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	require.Zero(t, cli.ReportCommand(context.Background(), reportOpts(stdout, stderr, "")))
	out := stdout.String()
	require.Contains(t, out, "Acme (FY24) 2024-01-01 to 2024-01-31")
	require.Contains(t, out, "Revenue Goal %")
	require.Contains(t, out, "1000.00")
	require.Contains(t, out, "50.00")
}

func TestReportCommandCSV(t *testing.T) {
	cli, err := NewReportCLI(fixtureService())
	require.NoError(t, err)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	require.Zero(t, cli.ReportCommand(context.Background(), reportOpts(stdout, stderr, "csv")))
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Alice,500.00,1000.00,100.00,200.00,50.00,50.00", lines[1])
}

func TestReportCommandValidationExitCode(t *testing.T) {
	cli, err := NewReportCLI(fixtureService())
	require.NoError(t, err)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	opts := reportOpts(stdout, stderr, "json")
	opts.FiscalYear = ""
	require.Equal(t, 2, cli.ReportCommand(context.Background(), opts))
	require.Contains(t, stderr.String(), salesreport.MsgMissingFilters)
	require.Empty(t, stdout.String())
}

func TestReportCommandRejectsUnknownFormat(t *testing.T) {
	cli, err := NewReportCLI(fixtureService())
	require.NoError(t, err)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	require.Equal(t, 2, cli.ReportCommand(context.Background(), reportOpts(stdout, stderr, "xml")))
	require.Contains(t, stderr.String(), "unsupported format")
}

type brokenExecutor struct{}

func (brokenExecutor) Execute(ctx context.Context, filters salesreport.Filters) (salesreport.Result, error) {
	return salesreport.Result{}, &salesreport.DataSourceError{Op: "fetch targets", Err: errors.New("connection refused")}
}

func TestReportCommandDataSourceFailure(t *testing.T) {
	cli, err := NewReportCLI(brokenExecutor{})
	require.NoError(t, err)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	require.Equal(t, 1, cli.ReportCommand(context.Background(), reportOpts(stdout, stderr, "table")))
	require.Contains(t, stderr.String(), "connection refused")
}

func TestNewReportCLIRequiresService(t *testing.T) {
	_, err := NewReportCLI(nil)
	require.Error(t, err)
}
