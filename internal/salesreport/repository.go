package salesreport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads targets and invoices from PostgreSQL.
type Repository struct {
	db DBTX
}

// NewRepository constructs a repository over a pool or connection.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

const activeTargetsSQL = `
SELECT sales_person, item_group, target_amount, fiscal_year, is_active
FROM sales_targets
WHERE fiscal_year = $1
  AND is_active`

// ActiveTargets implements DataSource.
func (r *Repository) ActiveTargets(ctx context.Context, fiscalYear string) ([]SalesTarget, error) {
	rows, err := r.db.Query(ctx, activeTargetsSQL, fiscalYear)
	if err != nil {
		return nil, wrapPgError("query targets", err)
	}
	defer rows.Close()

	var targets []SalesTarget
	for rows.Next() {
		var (
			salesPerson, itemGroup pgtype.Text
			amount                 pgtype.Numeric
			t                      SalesTarget
		)
		if err := rows.Scan(&salesPerson, &itemGroup, &amount, &t.FiscalYear, &t.Active); err != nil {
			return nil, fmt.Errorf("salesreport: scan target: %w", err)
		}
		t.SalesPerson = salesPerson.String
		t.ItemGroup = itemGroup.String
		if t.TargetAmount, err = numericToDecimal(amount); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate targets", err)
	}
	return targets, nil
}

const submittedInvoicesSQL = `
SELECT name, base_net_total, base_grand_total, sales_person, posting_date, company
FROM sales_invoices
WHERE posting_date BETWEEN $1 AND $2
  AND docstatus = 1
  AND company = $3`

// SubmittedInvoices implements DataSource.
func (r *Repository) SubmittedInvoices(ctx context.Context, scope InvoiceScope) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, submittedInvoicesSQL, dateParam(scope.From), dateParam(scope.To), scope.Company)
	if err != nil {
		return nil, wrapPgError("query invoices", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var (
			netTotal, grandTotal pgtype.Numeric
			salesPerson          pgtype.Text
			postingDate          pgtype.Date
			inv                  Invoice
		)
		if err := rows.Scan(&inv.ID, &netTotal, &grandTotal, &salesPerson, &postingDate, &inv.Company); err != nil {
			return nil, fmt.Errorf("salesreport: scan invoice: %w", err)
		}
		inv.SalesPerson = salesPerson.String
		inv.PostingDate = postingDate.Time
		inv.Submitted = true
		if inv.NetTotal, err = numericToDecimal(netTotal); err != nil {
			return nil, err
		}
		if inv.GrandTotal, err = numericToDecimal(grandTotal); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate invoices", err)
	}
	return invoices, nil
}

const itemGroupSalesSQL = `
SELECT si.sales_person, SUM(sii.base_net_amount)
FROM sales_invoice_items sii
JOIN sales_invoices si ON si.name = sii.parent
JOIN items i ON i.item_code = sii.item_code
WHERE si.name = ANY($1)
  AND si.docstatus = 1
  AND i.item_group = $2
GROUP BY si.sales_person`

// ItemGroupSales implements DataSource.
func (r *Repository) ItemGroupSales(ctx context.Context, invoiceIDs []string, itemGroup string) ([]SalespersonAmount, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, itemGroupSalesSQL, invoiceIDs, itemGroup)
	if err != nil {
		return nil, wrapPgError("query item group sales", err)
	}
	defer rows.Close()

	var groups []SalespersonAmount
	for rows.Next() {
		var (
			salesPerson pgtype.Text
			sum         pgtype.Numeric
		)
		if err := rows.Scan(&salesPerson, &sum); err != nil {
			return nil, fmt.Errorf("salesreport: scan item group sales: %w", err)
		}
		amount, err := numericToDecimal(sum)
		if err != nil {
			return nil, err
		}
		groups = append(groups, SalespersonAmount{SalesPerson: salesPerson.String, Amount: amount})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate item group sales", err)
	}
	return groups, nil
}

func dateParam(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// numericToDecimal converts a scanned NUMERIC; NULL becomes zero.
func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, errors.New("salesreport: non-finite numeric amount")
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// wrapPgError keeps the SQLSTATE of server side errors in the message.
func wrapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("salesreport: %s: sqlstate %s: %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("salesreport: %s: %w", op, err)
}
