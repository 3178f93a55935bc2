package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeductionCalculator_ContributionRoom(t *testing.T) {
	dc := NewDeductionCalculator(testRuleSet().Federal.RRSP)

	tests := []struct {
		name     string
		earned   string
		expected string
	}{
		{"no earned income", "0", "0"},
		{"percentage of income", "109900", "19782"},
		{"rounded", "1003", "181"}, // 180.54
		{"yearly maximum", "180500", "32490"},
		{"well above maximum", "1000000", "32490"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.expected, dc.ContributionRoom(dec(tt.earned)))
		})
	}
}

func TestDeductionCalculator_CappedDeduction(t *testing.T) {
	dc := NewDeductionCalculator(testRuleSet().Federal.RRSP)
	room := dec("19782")

	assertDecimal(t, "0", dc.CappedDeduction(decimal.Zero, room))
	assertDecimal(t, "10000", dc.CappedDeduction(dec("10000"), room))
	assertDecimal(t, "19782", dc.CappedDeduction(dec("19782"), room))
	assertDecimal(t, "19782", dc.CappedDeduction(dec("50000"), room), "requested amount above room is capped")
	assertDecimal(t, "0", dc.CappedDeduction(dec("5000"), decimal.Zero))
}

func TestFreelanceNetIncome(t *testing.T) {
	net, expenses := FreelanceNetIncome(dec("20000"), dec("2000"), dec("600"), dec("1500"), dec("600"), dec("400"))
	assertDecimal(t, "14900", net)
	assertDecimal(t, "5100", expenses)

	net, expenses = FreelanceNetIncome(dec("1000"), dec("2500"))
	assertDecimal(t, "0", net, "net freelance income is floored at zero")
	assertDecimal(t, "2500", expenses)

	net, expenses = FreelanceNetIncome(dec("800"))
	assertDecimal(t, "800", net)
	assert.True(t, expenses.IsZero())
}

func TestNetRentalIncome(t *testing.T) {
	duplex := RentalProperty{
		Units:             2,
		MonthlyRent:       dec("1200"),
		MortgageInterest:  dec("12000"),
		PropertyTax:       dec("4500"),
		Insurance:         dec("1800"),
		MaintenanceBudget: dec("3000"),
	}
	assertDecimal(t, "28800", duplex.GrossIncome())
	assertDecimal(t, "21300", duplex.Expenses())
	assertDecimal(t, "7500", NetRentalIncome(duplex))

	duplex.MortgageInterest = dec("25000")
	assertDecimal(t, "-5500", NetRentalIncome(duplex), "a rental loss keeps its sign")
}
