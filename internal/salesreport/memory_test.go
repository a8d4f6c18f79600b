package salesreport

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureJSON = `{
  "targets": [
    {"sales_person": "SP-001", "item_group": "", "target_amount": 1000, "fiscal_year": "FY24", "active": true},
    {"sales_person": "SP-001", "item_group": "SIL", "target_amount": "200", "fiscal_year": "FY24", "active": true},
    {"sales_person": "SP-002", "item_group": "All Item Groups", "target_amount": 400, "fiscal_year": "FY24", "active": true},
    {"sales_person": "SP-003", "item_group": "", "target_amount": 900, "fiscal_year": "FY24", "active": false},
    {"sales_person": "SP-004", "item_group": "", "target_amount": 900, "fiscal_year": "FY23", "active": true}
  ],
  "invoices": [
    {"id": "SINV-1", "net_total": 300, "grand_total": 330, "sales_person": "SP-001", "posting_date": "2024-01-10", "company": "Acme", "submitted": true},
    {"id": "SINV-2", "net_total": 400, "grand_total": 440, "sales_person": "SP-001", "posting_date": "2024-03-31", "company": "Acme", "submitted": true},
    {"id": "SINV-3", "net_total": 999, "grand_total": 999, "sales_person": "SP-001", "posting_date": "2024-04-01", "company": "Acme", "submitted": true},
    {"id": "SINV-4", "net_total": 50, "grand_total": 55, "sales_person": "SP-001", "posting_date": "2024-02-01", "company": "Acme", "submitted": false},
    {"id": "SINV-5", "net_total": 70, "grand_total": 77, "sales_person": "SP-001", "posting_date": "2024-02-01", "company": "Other", "submitted": true},
    {"id": "SINV-6", "net_total": 800, "grand_total": 880, "sales_person": "SP-999", "posting_date": "2024-02-01", "company": "Acme", "submitted": true}
  ],
  "invoice_lines": [
    {"parent_invoice": "SINV-1", "item_code": "SIL-KIT", "net_amount": 150},
    {"parent_invoice": "SINV-1", "item_code": "GAUZE", "net_amount": 150},
    {"parent_invoice": "SINV-2", "item_code": "GAUZE", "net_amount": 400},
    {"parent_invoice": "SINV-3", "item_code": "SIL-KIT", "net_amount": 999},
    {"parent_invoice": "SINV-4", "item_code": "SIL-KIT", "net_amount": 50},
    {"parent_invoice": "SINV-6", "item_code": "SIL-KIT", "net_amount": 800},
    {"parent_invoice": "SINV-6", "item_code": "UNKNOWN", "net_amount": 1}
  ],
  "items": [
    {"item_code": "SIL-KIT", "item_group": "SIL"},
    {"item_code": "GAUZE", "item_group": "Consumables"}
  ]
}`

func loadTestFixture(t *testing.T) *MemorySource {
	t.Helper()
	src, err := LoadFixture(strings.NewReader(fixtureJSON))
	require.NoError(t, err)
	return src
}

func TestMemorySourceFilters(t *testing.T) {
	src := loadTestFixture(t)
	ctx := context.Background()

	targets, err := src.ActiveTargets(ctx, "FY24")
	require.NoError(t, err)
	require.Len(t, targets, 3)

	scope, err := Filters{FromDate: "2024-01-01", ToDate: "2024-03-31", FiscalYear: "FY24", Company: "Acme"}.Validate("")
	require.NoError(t, err)
	invoices, err := src.SubmittedInvoices(ctx, InvoiceScope{From: scope.From, To: scope.To, Company: scope.Company})
	require.NoError(t, err)
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
	}
	require.Equal(t, []string{"SINV-1", "SINV-2", "SINV-6"}, ids)
}

func TestMemorySourceItemGroupSalesJoinsInMemory(t *testing.T) {
	src := loadTestFixture(t)
	groups, err := src.ItemGroupSales(context.Background(), []string{"SINV-1", "SINV-2", "SINV-4", "SINV-6"}, ItemGroupSIL)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "SP-001", groups[0].SalesPerson)
	requireAmount(t, "150", groups[0].Amount)
	require.Equal(t, "SP-999", groups[1].SalesPerson)
	requireAmount(t, "800", groups[1].Amount)
}

func TestServiceOverMemorySource(t *testing.T) {
	svc := NewService(loadTestFixture(t), Options{DefaultCompany: "Acme"})
	result, err := svc.Execute(context.Background(), Filters{FromDate: "2024-01-01", ToDate: "2024-03-31", FiscalYear: "FY24"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	sp1 := result.Rows[0]
	require.Equal(t, "SP-001", sp1.SalesPerson)
	requireAmount(t, "700", sp1.TotalRevenue)
	requireAmount(t, "1000", sp1.RevenueGoal)
	requireAmount(t, "150", sp1.TotalSIL)
	requireAmount(t, "200", sp1.GoalSIL)
	require.Equal(t, 70.0, sp1.RevenueGoalPercent)
	require.Equal(t, 75.0, sp1.SILGoalPercent)

	sp2 := result.Rows[1]
	require.Equal(t, "SP-002", sp2.SalesPerson)
	require.True(t, sp2.TotalRevenue.IsZero())
	requireAmount(t, "400", sp2.RevenueGoal)
	require.Zero(t, sp2.SILGoalPercent)
}

func TestLoadFixtureRejectsBadDates(t *testing.T) {
	_, err := LoadFixture(strings.NewReader(`{"invoices":[{"id":"X","posting_date":"10/01/2024"}]}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "X")
}

func TestMemorySourceHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loadTestFixture(t).ActiveTargets(ctx, "FY24")
	require.ErrorIs(t, err, context.Canceled)
}
