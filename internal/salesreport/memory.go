package salesreport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MemorySource is a DataSource over in-memory records. The line-item
// aggregation is performed as an in-memory join of lines, invoices and items.
type MemorySource struct {
	Targets  []SalesTarget
	Invoices []Invoice
	Lines    []InvoiceLine
	Items    []Item
}

// ActiveTargets implements DataSource.
func (m *MemorySource) ActiveTargets(ctx context.Context, fiscalYear string) ([]SalesTarget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []SalesTarget
	for _, t := range m.Targets {
		if t.Active && t.FiscalYear == fiscalYear {
			out = append(out, t)
		}
	}
	return out, nil
}

// SubmittedInvoices implements DataSource.
func (m *MemorySource) SubmittedInvoices(ctx context.Context, scope InvoiceScope) ([]Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Invoice
	for _, inv := range m.Invoices {
		if !inv.Submitted || inv.Company != scope.Company {
			continue
		}
		if inv.PostingDate.Before(scope.From) || inv.PostingDate.After(scope.To) {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

// ItemGroupSales implements DataSource.
func (m *MemorySource) ItemGroupSales(ctx context.Context, invoiceIDs []string, itemGroup string) ([]SalespersonAmount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(invoiceIDs))
	for _, id := range invoiceIDs {
		wanted[id] = struct{}{}
	}
	salesPersonByInvoice := make(map[string]string, len(invoiceIDs))
	for _, inv := range m.Invoices {
		if _, ok := wanted[inv.ID]; ok && inv.Submitted {
			salesPersonByInvoice[inv.ID] = inv.SalesPerson
		}
	}
	groupByItem := make(map[string]string, len(m.Items))
	for _, item := range m.Items {
		groupByItem[item.ItemCode] = item.ItemGroup
	}

	sums := make(map[string]decimal.Decimal)
	for _, line := range m.Lines {
		sp, ok := salesPersonByInvoice[line.InvoiceID]
		if !ok {
			continue
		}
		group, ok := groupByItem[line.ItemCode]
		if !ok || group != itemGroup {
			continue
		}
		sums[sp] = sums[sp].Add(line.NetAmount)
	}

	out := make([]SalespersonAmount, 0, len(sums))
	for sp, amount := range sums {
		out = append(out, SalespersonAmount{SalesPerson: sp, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SalesPerson < out[j].SalesPerson })
	return out, nil
}

type fixtureInvoice struct {
	ID          string          `json:"id"`
	NetTotal    decimal.Decimal `json:"net_total"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	SalesPerson string          `json:"sales_person"`
	PostingDate string          `json:"posting_date"`
	Company     string          `json:"company"`
	Submitted   bool            `json:"submitted"`
}

type fixture struct {
	Targets  []SalesTarget    `json:"targets"`
	Invoices []fixtureInvoice `json:"invoices"`
	Lines    []InvoiceLine    `json:"invoice_lines"`
	Items    []Item           `json:"items"`
}

// LoadFixture decodes a JSON document of targets, invoices, invoice_lines
// and items into a MemorySource. Posting dates use DateLayout.
func LoadFixture(r io.Reader) (*MemorySource, error) {
	var fx fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("salesreport: decode fixture: %w", err)
	}
	src := &MemorySource{Targets: fx.Targets, Lines: fx.Lines, Items: fx.Items}
	for _, fi := range fx.Invoices {
		posted, err := time.Parse(DateLayout, fi.PostingDate)
		if err != nil {
			return nil, fmt.Errorf("salesreport: invoice %s posting_date: %w", fi.ID, err)
		}
		src.Invoices = append(src.Invoices, Invoice{
			ID:          fi.ID,
			NetTotal:    fi.NetTotal,
			GrandTotal:  fi.GrandTotal,
			SalesPerson: fi.SalesPerson,
			PostingDate: posted,
			Company:     fi.Company,
			Submitted:   fi.Submitted,
		})
	}
	return src, nil
}
