package export

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/odyssey-erp/regional-dashboard/internal/salesreport"
)

// HTMLRenderer converts an HTML document to PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Meta describes the filter scope printed in the document header.
type Meta struct {
	FiscalYear  string
	Company     string
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
}

// PDFExporter renders the report through an HTML to PDF converter.
type PDFExporter struct {
	Renderer HTMLRenderer
	Language language.Tag
}

// Render builds the HTML document and converts it.
func (p *PDFExporter) Render(ctx context.Context, meta Meta, result salesreport.Result) ([]byte, error) {
	if p == nil || p.Renderer == nil {
		return nil, errors.New("pdf exporter not initialised")
	}
	tag := p.Language
	if tag == language.Und {
		tag = language.English
	}
	return p.Renderer.RenderHTML(ctx, BuildHTML(meta, result, message.NewPrinter(tag)))
}

// BuildHTML lays the report out as a single printable table.
func BuildHTML(meta Meta, result salesreport.Result, printer *message.Printer) string {
	if printer == nil {
		printer = message.NewPrinter(language.English)
	}
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}p.scope{color:#555;}table{width:100%;border-collapse:collapse;}th,td{border:1px solid #ddd;padding:6px;text-align:right;}th{background:#f5f5f5;}td.label,th.label{text-align:left;}")
	b.WriteString("</style></head><body>")
	b.WriteString("<h1>Sales Target Achievement</h1>")
	b.WriteString(fmt.Sprintf("<p class=\"scope\">%s &middot; %s &middot; %s to %s</p>",
		html.EscapeString(meta.Company),
		html.EscapeString(meta.FiscalYear),
		meta.From.Format(salesreport.DateLayout),
		meta.To.Format(salesreport.DateLayout),
	))

	b.WriteString("<table><thead><tr>")
	for _, col := range result.Columns {
		if col.Fieldname == salesreport.FieldSalesPerson {
			b.WriteString("<th class=\"label\">")
		} else {
			b.WriteString("<th>")
		}
		b.WriteString(html.EscapeString(col.Label))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range result.Rows {
		b.WriteString("<tr>")
		for _, col := range result.Columns {
			if col.Fieldname == salesreport.FieldSalesPerson {
				b.WriteString("<td class=\"label\">")
			} else {
				b.WriteString("<td>")
			}
			b.WriteString(html.EscapeString(displayValue(printer, col, row)))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	if !meta.GeneratedAt.IsZero() {
		b.WriteString(fmt.Sprintf("<p class=\"scope\">Generated at %s</p>", meta.GeneratedAt.Format(time.RFC1123)))
	}
	b.WriteString("</body></html>")
	return b.String()
}

func displayValue(printer *message.Printer, col salesreport.Column, row salesreport.Row) string {
	switch col.Fieldname {
	case salesreport.FieldTotalRevenue:
		return formatAmount(printer, row.TotalRevenue)
	case salesreport.FieldRevenueGoal:
		return formatAmount(printer, row.RevenueGoal)
	case salesreport.FieldTotalSIL:
		return formatAmount(printer, row.TotalSIL)
	case salesreport.FieldGoalSIL:
		return formatAmount(printer, row.GoalSIL)
	case salesreport.FieldRevenueGoalPercent:
		return formatPercent(printer, row.RevenueGoalPercent)
	case salesreport.FieldSILGoalPercent:
		return formatPercent(printer, row.SILGoalPercent)
	default:
		return rawValue(col.Fieldname, row)
	}
}

func formatAmount(printer *message.Printer, d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

func formatPercent(printer *message.Printer, v float64) string {
	return printer.Sprint(number.Decimal(v, number.Scale(2))) + "%"
}
