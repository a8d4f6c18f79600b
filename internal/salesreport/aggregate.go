package salesreport

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// targetGoals is the output of the target aggregation: goals per salesperson
// and the sorted salesperson universe of the report.
type targetGoals struct {
	buckets  map[string]*TargetBucket
	universe []string
}

func (g targetGoals) contains(salesPerson string) bool {
	_, ok := g.buckets[salesPerson]
	return ok
}

// isRevenueGroup reports whether a target on the item group counts towards
// the overall revenue goal.
func isRevenueGroup(itemGroup string) bool {
	return itemGroup == "" || itemGroup == ItemGroupAll
}

// aggregateTargets partitions target amounts into revenue and SIL goals.
// Targets without a salesperson are skipped; any item group other than the
// revenue groups and SIL still places the salesperson in the universe but
// adds nothing to either goal.
func aggregateTargets(targets []SalesTarget) targetGoals {
	buckets := make(map[string]*TargetBucket)
	for _, t := range targets {
		if t.SalesPerson == "" {
			continue
		}
		bucket, ok := buckets[t.SalesPerson]
		if !ok {
			bucket = &TargetBucket{}
			buckets[t.SalesPerson] = bucket
		}
		switch {
		case isRevenueGroup(t.ItemGroup):
			bucket.RevenueGoal = bucket.RevenueGoal.Add(t.TargetAmount)
		case t.ItemGroup == ItemGroupSIL:
			bucket.GoalSIL = bucket.GoalSIL.Add(t.TargetAmount)
		}
	}
	universe := make([]string, 0, len(buckets))
	for sp := range buckets {
		universe = append(universe, sp)
	}
	sort.Strings(universe)
	return targetGoals{buckets: buckets, universe: universe}
}

// newActuals seeds a zero bucket for every universe member.
func newActuals(goals targetGoals) map[string]*ActualBucket {
	actuals := make(map[string]*ActualBucket, len(goals.universe))
	for _, sp := range goals.universe {
		actuals[sp] = &ActualBucket{}
	}
	return actuals
}

// addInvoiceTotals sums invoice net totals for salespersons in the universe.
func addInvoiceTotals(actuals map[string]*ActualBucket, invoices []Invoice) {
	for _, inv := range invoices {
		if inv.SalesPerson == "" {
			continue
		}
		if bucket, ok := actuals[inv.SalesPerson]; ok {
			bucket.TotalRevenue = bucket.TotalRevenue.Add(inv.NetTotal)
		}
	}
}

// addSILTotals merges grouped SIL line sums for salespersons in the universe.
func addSILTotals(actuals map[string]*ActualBucket, groups []SalespersonAmount) {
	for _, g := range groups {
		if bucket, ok := actuals[g.SalesPerson]; ok {
			bucket.TotalSIL = bucket.TotalSIL.Add(g.Amount)
		}
	}
}

// compileRows joins goals and actuals into rows, keeping the order of the
// sorted universe.
func compileRows(goals targetGoals, actuals map[string]*ActualBucket) []Row {
	rows := make([]Row, 0, len(goals.universe))
	for _, sp := range goals.universe {
		target := TargetBucket{}
		if b := goals.buckets[sp]; b != nil {
			target = *b
		}
		actual := ActualBucket{}
		if b := actuals[sp]; b != nil {
			actual = *b
		}
		rows = append(rows, Row{
			SalesPerson:        sp,
			TotalRevenue:       actual.TotalRevenue,
			RevenueGoal:        target.RevenueGoal,
			TotalSIL:           actual.TotalSIL,
			GoalSIL:            target.GoalSIL,
			RevenueGoalPercent: achievement(actual.TotalRevenue, target.RevenueGoal),
			SILGoalPercent:     achievement(actual.TotalSIL, target.GoalSIL),
		})
	}
	return rows
}

// achievement returns actual/goal*100, or 0 when there is no positive goal.
// The result is not capped and keeps the sign of the actual amount.
func achievement(actual, goal decimal.Decimal) float64 {
	if !goal.IsPositive() {
		return 0
	}
	return actual.Mul(hundred).Div(goal).InexactFloat64()
}
