package salesreport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTargetsPartitionsByItemGroup(t *testing.T) {
	goals := aggregateTargets([]SalesTarget{
		{SalesPerson: "SP-1", ItemGroup: "", TargetAmount: amount(100)},
		{SalesPerson: "SP-1", ItemGroup: ItemGroupAll, TargetAmount: amount(50)},
		{SalesPerson: "SP-1", ItemGroup: ItemGroupSIL, TargetAmount: amount(20)},
		{SalesPerson: "SP-1", ItemGroup: ItemGroupSIL, TargetAmount: amount(5)},
		{SalesPerson: "SP-1", ItemGroup: "Consumables", TargetAmount: amount(1000)},
		{SalesPerson: "SP-1", ItemGroup: "sil", TargetAmount: amount(7)},
		{SalesPerson: "", ItemGroup: "", TargetAmount: amount(999)},
		{SalesPerson: "SP-2", ItemGroup: "Consumables", TargetAmount: amount(40)},
	})

	require.Equal(t, []string{"SP-1", "SP-2"}, goals.universe)
	requireAmount(t, "150", goals.buckets["SP-1"].RevenueGoal)
	requireAmount(t, "25", goals.buckets["SP-1"].GoalSIL)
	assert.True(t, goals.buckets["SP-2"].RevenueGoal.IsZero())
	assert.True(t, goals.buckets["SP-2"].GoalSIL.IsZero())
	assert.False(t, goals.contains(""))
}

func TestAddTotalsOnlyForUniverse(t *testing.T) {
	goals := aggregateTargets([]SalesTarget{{SalesPerson: "SP-1", TargetAmount: amount(1)}})
	actuals := newActuals(goals)

	addInvoiceTotals(actuals, []Invoice{
		{SalesPerson: "SP-1", NetTotal: amount(10)},
		{SalesPerson: "SP-1", NetTotal: amount(-4)},
		{SalesPerson: "SP-9", NetTotal: amount(100)},
		{SalesPerson: "", NetTotal: amount(100)},
	})
	addSILTotals(actuals, []SalespersonAmount{
		{SalesPerson: "SP-1", Amount: amount(3)},
		{SalesPerson: "SP-9", Amount: amount(30)},
	})

	require.Len(t, actuals, 1)
	requireAmount(t, "6", actuals["SP-1"].TotalRevenue)
	requireAmount(t, "3", actuals["SP-1"].TotalSIL)
}

func TestAchievement(t *testing.T) {
	cases := []struct {
		name   string
		actual decimal.Decimal
		goal   decimal.Decimal
		want   float64
	}{
		{"zero goal", amount(500), decimal.Zero, 0},
		{"negative goal", amount(500), amount(-200), 0},
		{"negative goal and actual", amount(-50), amount(-200), 0},
		{"over achievement", amount(300), amount(200), 150},
		{"partial", amount(1), amount(3), 33.333333333333336},
		{"negative actual", amount(-50), amount(200), -25},
		{"zero actual", decimal.Zero, amount(200), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, achievement(tc.actual, tc.goal), 1e-9)
		})
	}
}

func TestCompileRowsSortsAndDefaultsMissingBuckets(t *testing.T) {
	goals := aggregateTargets([]SalesTarget{
		{SalesPerson: "b-person", TargetAmount: amount(100)},
		{SalesPerson: "A-person", TargetAmount: amount(100)},
		{SalesPerson: "a-person", ItemGroup: ItemGroupSIL, TargetAmount: amount(10)},
	})
	actuals := map[string]*ActualBucket{
		"b-person": {TotalRevenue: amount(40)},
	}

	rows := compileRows(goals, actuals)
	require.Len(t, rows, 3)
	assert.Equal(t, "A-person", rows[0].SalesPerson)
	assert.Equal(t, "a-person", rows[1].SalesPerson)
	assert.Equal(t, "b-person", rows[2].SalesPerson)
	assert.True(t, rows[0].TotalRevenue.IsZero())
	assert.Equal(t, 40.0, rows[2].RevenueGoalPercent)
	assert.Zero(t, rows[1].RevenueGoalPercent)
}

func TestRowMarshalJSONUsesFieldnames(t *testing.T) {
	row := Row{
		SalesPerson:        "SP-001",
		TotalRevenue:       decimal.RequireFromString("700.50"),
		RevenueGoal:        amount(1000),
		TotalSIL:           amount(150),
		GoalSIL:            amount(200),
		RevenueGoalPercent: 70.05,
		SILGoalPercent:     75,
	}
	raw, err := row.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"sales_person": "SP-001",
		"total_revenue": 700.5,
		"revenue_goal": 1000,
		"total_sil": 150,
		"goal_sil": 200,
		"revenue_goal_percent": 70.05,
		"sil_goal_percent": 75
	}`, string(raw))
}
