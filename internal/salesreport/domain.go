package salesreport

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReportName identifies the report in logs, metrics and export filenames.
const ReportName = "sales_target_achievement"

const (
	// ItemGroupSIL is the item group tracked against the SIL sub-goal.
	ItemGroupSIL = "SIL"
	// ItemGroupAll is the root item group; targets on it count towards revenue.
	ItemGroupAll = "All Item Groups"
)

// SalesTarget is a per-salesperson goal for a fiscal year.
type SalesTarget struct {
	SalesPerson  string          `json:"sales_person"`
	ItemGroup    string          `json:"item_group"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	FiscalYear   string          `json:"fiscal_year"`
	Active       bool            `json:"active"`
}

// Invoice is the header of a sales invoice in base currency.
type Invoice struct {
	ID          string          `json:"id"`
	NetTotal    decimal.Decimal `json:"net_total"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	SalesPerson string          `json:"sales_person"`
	PostingDate time.Time       `json:"posting_date"`
	Company     string          `json:"company"`
	Submitted   bool            `json:"submitted"`
}

// InvoiceLine is a single item line of an invoice.
type InvoiceLine struct {
	InvoiceID string          `json:"parent_invoice"`
	ItemCode  string          `json:"item_code"`
	NetAmount decimal.Decimal `json:"net_amount"`
}

// Item maps an item code to its item group.
type Item struct {
	ItemCode  string `json:"item_code"`
	ItemGroup string `json:"item_group"`
}

// InvoiceScope selects the invoices counted as actual sales.
type InvoiceScope struct {
	From    time.Time
	To      time.Time
	Company string
}

// SalespersonAmount is one group of the line-item aggregation.
type SalespersonAmount struct {
	SalesPerson string
	Amount      decimal.Decimal
}

// TargetBucket accumulates goals for one salesperson.
type TargetBucket struct {
	RevenueGoal decimal.Decimal
	GoalSIL     decimal.Decimal
}

// ActualBucket accumulates actual sales for one salesperson.
type ActualBucket struct {
	TotalRevenue decimal.Decimal
	TotalSIL     decimal.Decimal
}

// Row is one line of the report output.
type Row struct {
	SalesPerson        string
	TotalRevenue       decimal.Decimal
	RevenueGoal        decimal.Decimal
	TotalSIL           decimal.Decimal
	GoalSIL            decimal.Decimal
	RevenueGoalPercent float64
	SILGoalPercent     float64
}

// MarshalJSON renders the row keyed by column fieldname with numeric amounts.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		FieldSalesPerson:        r.SalesPerson,
		FieldTotalRevenue:       json.Number(r.TotalRevenue.String()),
		FieldRevenueGoal:        json.Number(r.RevenueGoal.String()),
		FieldTotalSIL:           json.Number(r.TotalSIL.String()),
		FieldGoalSIL:            json.Number(r.GoalSIL.String()),
		FieldRevenueGoalPercent: r.RevenueGoalPercent,
		FieldSILGoalPercent:     r.SILGoalPercent,
	})
}

// Result is the columns/rows tuple handed to renderers. Scope records the
// validated filters the rows were computed for.
type Result struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"data"`
	Scope   Scope    `json:"-"`
}
