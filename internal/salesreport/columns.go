package salesreport

// Column fieldnames, also used as the keys of each output row.
const (
	FieldSalesPerson        = "sales_person"
	FieldTotalRevenue       = "total_revenue"
	FieldRevenueGoal        = "revenue_goal"
	FieldTotalSIL           = "total_sil"
	FieldGoalSIL            = "goal_sil"
	FieldRevenueGoalPercent = "revenue_goal_percent"
	FieldSILGoalPercent     = "sil_goal_percent"
)

// Column field types understood by the client renderer.
const (
	FieldTypeLink     = "Link"
	FieldTypeCurrency = "Currency"
	FieldTypeFloat    = "Float"
)

const companyCurrency = "Company:company:default_currency"

// Column describes one report column for the client renderer.
type Column struct {
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
	Fieldtype string `json:"fieldtype"`
	Options   string `json:"options,omitempty"`
	Width     int    `json:"width"`
	Precision int    `json:"precision,omitempty"`
	Formatter string `json:"formatter,omitempty"`
}

// Translator localises column labels. A nil Translator leaves labels as-is.
type Translator func(string) string

// Columns returns the fixed column schema of the report.
func Columns(translate Translator) []Column {
	if translate == nil {
		translate = func(s string) string { return s }
	}
	return []Column{
		{Fieldname: FieldSalesPerson, Label: translate("Sales Person"), Fieldtype: FieldTypeLink, Options: "Sales Person", Width: 150},
		{Fieldname: FieldTotalRevenue, Label: translate("Total Revenue"), Fieldtype: FieldTypeCurrency, Options: companyCurrency, Width: 140},
		{Fieldname: FieldRevenueGoal, Label: translate("Revenue Goal"), Fieldtype: FieldTypeCurrency, Options: companyCurrency, Width: 140},
		{Fieldname: FieldTotalSIL, Label: translate("Total SIL"), Fieldtype: FieldTypeCurrency, Options: companyCurrency, Width: 120},
		{Fieldname: FieldGoalSIL, Label: translate("Goal SIL"), Fieldtype: FieldTypeCurrency, Options: companyCurrency, Width: 120},
		{Fieldname: FieldRevenueGoalPercent, Label: translate("Revenue Goal %"), Fieldtype: FieldTypeFloat, Width: 140, Precision: 2, Formatter: "percentage"},
		{Fieldname: FieldSILGoalPercent, Label: translate("SIL Goal %"), Fieldtype: FieldTypeFloat, Width: 140, Precision: 2, Formatter: "percentage"},
	}
}
