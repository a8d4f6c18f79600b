package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/regional-dashboard/internal/salesreport"
)

// WriteCSV writes the column labels followed by one record per report row.
func WriteCSV(w io.Writer, result salesreport.Result) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, len(result.Columns))
	for _, col := range result.Columns {
		header = append(header, col.Label)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range result.Rows {
		if err := writer.Write(csvRecord(result.Columns, row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvRecord(columns []salesreport.Column, row salesreport.Row) []string {
	record := make([]string, 0, len(columns))
	for _, col := range columns {
		record = append(record, rawValue(col.Fieldname, row))
	}
	return record
}

// rawValue renders a cell without grouping so spreadsheets parse it as a number.
func rawValue(field string, row salesreport.Row) string {
	switch field {
	case salesreport.FieldSalesPerson:
		return row.SalesPerson
	case salesreport.FieldTotalRevenue:
		return row.TotalRevenue.StringFixed(2)
	case salesreport.FieldRevenueGoal:
		return row.RevenueGoal.StringFixed(2)
	case salesreport.FieldTotalSIL:
		return row.TotalSIL.StringFixed(2)
	case salesreport.FieldGoalSIL:
		return row.GoalSIL.StringFixed(2)
	case salesreport.FieldRevenueGoalPercent:
		return strconv.FormatFloat(row.RevenueGoalPercent, 'f', 2, 64)
	case salesreport.FieldSILGoalPercent:
		return strconv.FormatFloat(row.SILGoalPercent, 'f', 2, 64)
	default:
		return ""
	}
}
