package salesreport

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

//go:embed fixtures/demo.json
var demoFixture []byte

// DemoFixture returns the bundled demo data set.
func DemoFixture() (*MemorySource, error) {
	return LoadFixture(bytes.NewReader(demoFixture))
}

// Schema creates the tables read by Repository.
const Schema = `
CREATE TABLE IF NOT EXISTS items (
	item_code  TEXT PRIMARY KEY,
	item_group TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sales_targets (
	id            BIGSERIAL PRIMARY KEY,
	sales_person  TEXT NOT NULL,
	item_group    TEXT,
	target_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
	fiscal_year   TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	UNIQUE (sales_person, item_group, fiscal_year)
);

CREATE TABLE IF NOT EXISTS sales_invoices (
	name             TEXT PRIMARY KEY,
	company          TEXT NOT NULL,
	sales_person     TEXT,
	posting_date     DATE NOT NULL,
	docstatus        SMALLINT NOT NULL DEFAULT 0,
	base_net_total   NUMERIC(18,2) NOT NULL DEFAULT 0,
	base_grand_total NUMERIC(18,2) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS sales_invoices_scope_idx
	ON sales_invoices (company, posting_date) WHERE docstatus = 1;

CREATE TABLE IF NOT EXISTS sales_invoice_items (
	id              BIGSERIAL PRIMARY KEY,
	parent          TEXT NOT NULL REFERENCES sales_invoices(name) ON DELETE CASCADE,
	line_no         INTEGER NOT NULL,
	item_code       TEXT NOT NULL,
	base_net_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
	UNIQUE (parent, line_no)
);

CREATE INDEX IF NOT EXISTS sales_invoice_items_parent_idx ON sales_invoice_items (parent);
`

// Execer is satisfied by pgx.Tx, pgx.Conn and pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Seed creates the schema and writes data. Existing rows are left untouched.
func Seed(ctx context.Context, db Execer, data *MemorySource) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return wrapPgError("create schema", err)
	}
	if data == nil {
		return nil
	}

	for _, item := range data.Items {
		if _, err := db.Exec(ctx, `
			INSERT INTO items (item_code, item_group) VALUES ($1, $2)
			ON CONFLICT (item_code) DO NOTHING`, item.ItemCode, item.ItemGroup); err != nil {
			return wrapPgError(fmt.Sprintf("seed item %s", item.ItemCode), err)
		}
	}
	for _, t := range data.Targets {
		if _, err := db.Exec(ctx, `
			INSERT INTO sales_targets (sales_person, item_group, target_amount, fiscal_year, is_active)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (sales_person, item_group, fiscal_year) DO NOTHING`,
			t.SalesPerson, t.ItemGroup, decimalToNumeric(t.TargetAmount), t.FiscalYear, t.Active); err != nil {
			return wrapPgError(fmt.Sprintf("seed target %s", t.SalesPerson), err)
		}
	}
	for _, inv := range data.Invoices {
		docstatus := 0
		if inv.Submitted {
			docstatus = 1
		}
		if _, err := db.Exec(ctx, `
			INSERT INTO sales_invoices (name, company, sales_person, posting_date, docstatus, base_net_total, base_grand_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO NOTHING`,
			inv.ID, inv.Company, inv.SalesPerson, dateParam(inv.PostingDate), docstatus,
			decimalToNumeric(inv.NetTotal), decimalToNumeric(inv.GrandTotal)); err != nil {
			return wrapPgError(fmt.Sprintf("seed invoice %s", inv.ID), err)
		}
	}
	// line_no counts from 1 per invoice in fixture order.
	lineNo := make(map[string]int)
	for _, line := range data.Lines {
		lineNo[line.InvoiceID]++
		if _, err := db.Exec(ctx, `
			INSERT INTO sales_invoice_items (parent, line_no, item_code, base_net_amount)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (parent, line_no) DO NOTHING`,
			line.InvoiceID, lineNo[line.InvoiceID], line.ItemCode, decimalToNumeric(line.NetAmount)); err != nil {
			return wrapPgError(fmt.Sprintf("seed line %s/%d", line.InvoiceID, lineNo[line.InvoiceID]), err)
		}
	}
	return nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
