package calculation

import (
	"testing"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFederalTaxCalculator_CalculateTax(t *testing.T) {
	ftc := NewFederalTaxCalculator(2026, testRuleSet().Federal)

	tests := []struct {
		name     string
		taxable  string
		expected string
	}{
		{"zero income", "0", "0"},
		{"negative income", "-5000", "0"},
		{"first bracket", "40000", "6000"},
		{"first boundary", "57375", "8606"},       // 8606.25
		{"second bracket", "107400", "18861"},     // 8606.25 + 50025*0.205
		{"third bracket", "117400", "21057"},      // 21057.125
		{"top bracket", "250000", "59478"},        // 59477.555
		{"rounds half away from zero", "10", "2"}, // 1.5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.expected, ftc.CalculateTax(dec(tt.taxable)))
		})
	}
}

func TestBracketTax_EmptyTable(t *testing.T) {
	assert.True(t, BracketTax(dec("50000"), nil).IsZero())
	assert.True(t, MarginalRate(dec("50000"), nil).IsZero())
}

func TestBracketTax_Monotonic(t *testing.T) {
	rules := testRuleSet()
	tables := map[string][]domain.TaxBracket{
		"federal": rules.Federal.Brackets,
		"quebec":  rules.Jurisdictions[domain.JurisdictionQC].Brackets,
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			prev := decimal.Zero
			for income := int64(0); income <= 300000; income += 250 {
				tax := BracketTax(decimal.NewFromInt(income), table)
				assert.True(t, tax.GreaterThanOrEqual(prev), "tax decreased at %d", income)
				prev = tax
			}
		})
	}
}

func TestBracketTax_ContinuousAtBoundaries(t *testing.T) {
	rules := testRuleSet()
	tables := map[string][]domain.TaxBracket{
		"federal": rules.Federal.Brackets,
		"quebec":  rules.Jurisdictions[domain.JurisdictionQC].Brackets,
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < len(table)-1; i++ {
				boundary := *table[i].Max

				// Tax at the boundary computed from the lower band formula
				var lower decimal.Decimal
				for j := 0; j <= i; j++ {
					lower = lower.Add(table[j].Max.Sub(table[j].Min).Mul(table[j].Rate))
				}
				assert.True(t, roundDollar(lower).Equal(BracketTax(boundary, table)), "boundary %s", boundary)

				// One dollar above only adds the upper band's rate
				above := BracketTax(boundary.Add(decimal.NewFromInt(1)), table)
				assert.True(t, roundDollar(lower.Add(table[i+1].Rate)).Equal(above), "above boundary %s", boundary)
			}
		})
	}
}

func TestFederalTaxCalculator_ApplyBasicPersonalCredit(t *testing.T) {
	ftc := NewFederalTaxCalculator(2026, testRuleSet().Federal)

	assertDecimal(t, "18638", ftc.ApplyBasicPersonalCredit(dec("21057"))) // 21057 - 2419.35
	assertDecimal(t, "0", ftc.ApplyBasicPersonalCredit(dec("2000")), "credit larger than tax")
	assertDecimal(t, "0", ftc.ApplyBasicPersonalCredit(decimal.Zero))
}

func TestFederalTaxCalculator_MarginalRate(t *testing.T) {
	ftc := NewFederalTaxCalculator(2026, testRuleSet().Federal)

	tests := []struct {
		taxable  string
		expected string
	}{
		{"0", "0.15"},
		{"-100", "0.15"},
		{"57375", "0.15"}, // at the boundary the lower band still applies
		{"57376", "0.205"},
		{"117400", "0.26"},
		{"158519", "0.26"},
		{"200000", "0.29"},
		{"1000000", "0.33"},
	}

	for _, tt := range tests {
		t.Run(tt.taxable, func(t *testing.T) {
			assertDecimal(t, tt.expected, ftc.MarginalRate(dec(tt.taxable)))
		})
	}
}

func TestBracketFloor(t *testing.T) {
	federal := testRuleSet().Federal.Brackets

	tests := []struct {
		taxable  string
		expected string
	}{
		{"0", "0"},
		{"40000", "0"},
		{"57375", "0"},
		{"57376", "57375"},
		{"117400", "114750"},
		{"114750", "57375"},
		{"500000", "220000"},
	}

	for _, tt := range tests {
		t.Run(tt.taxable, func(t *testing.T) {
			assertDecimal(t, tt.expected, BracketFloor(dec(tt.taxable), federal))
		})
	}

	assert.True(t, BracketFloor(dec("1000"), nil).IsZero())
}

func TestFederalTaxCalculator_EIPremium(t *testing.T) {
	ftc := NewFederalTaxCalculator(2026, testRuleSet().Federal)

	assertDecimal(t, "0", ftc.EIPremium(decimal.Zero))
	assertDecimal(t, "830", ftc.EIPremium(dec("50000")))  // 830
	assertDecimal(t, "1090", ftc.EIPremium(dec("65700"))) // 1090.62 capped
	assertDecimal(t, "1090", ftc.EIPremium(dec("95000")))
}

func TestProvincialTaxCalculator_Quebec(t *testing.T) {
	rules := testRuleSet()
	ptc := NewProvincialTaxCalculator(domain.JurisdictionQC, rules.Jurisdictions[domain.JurisdictionQC], true)

	assertDecimal(t, "20410", ptc.CalculateTax(dec("117400")))
	assertDecimal(t, "18004", ptc.ApplyBasicPersonalCredit(dec("20410")))
	assertDecimal(t, "0.24", ptc.MarginalRate(dec("117400")))
	assertDecimal(t, "0.2575", ptc.MarginalRate(dec("126001")))
	assertDecimal(t, "3075", ptc.Abatement(dec("18638")))
	assertDecimal(t, "17183", ptc.BasicPersonalAmount())
	assertDecimal(t, "0.171175", ptc.EffectiveFederalRate(dec("0.205")))
	assert.True(t, ptc.HasAbatement())
}

func TestProvincialTaxCalculator_PensionPlanContribution(t *testing.T) {
	rules := testRuleSet()
	ptc := NewProvincialTaxCalculator(domain.JurisdictionQC, rules.Jurisdictions[domain.JurisdictionQC], true)

	tests := []struct {
		name       string
		employment string
		expected   string
	}{
		{"no employment", "0", "0"},
		{"below exemption", "3000", "0"},
		{"at exemption", "3500", "0"},
		{"mid range", "50000", "2511"},        // 46500 * 0.054
		{"above maximum", "95000", "3764"},    // 69700 * 0.054 = 3763.8
		{"far above maximum", "500000", "3764"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.expected, ptc.PensionPlanContribution(dec(tt.employment)))
		})
	}
}

func TestProvincialTaxCalculator_MaxContributionCaps(t *testing.T) {
	jr := domain.JurisdictionRules{
		Brackets: brackets([3]string{"0", "", "0.1"}),
		PensionPlan: &domain.PensionPlanRules{
			BasicExemption:         dec("0"),
			MaxPensionableEarnings: dec("100000"),
			ContributionRate:       dec("0.1"),
			MaxContribution:        dec("500"),
		},
	}
	ptc := NewProvincialTaxCalculator(domain.JurisdictionON, jr, true)

	assertDecimal(t, "500", ptc.PensionPlanContribution(dec("90000")))
	assert.False(t, ptc.HasAbatement())
	assertDecimal(t, "0.26", ptc.EffectiveFederalRate(dec("0.26")))
	assertDecimal(t, "0", ptc.Abatement(dec("10000")))
}

func TestProvincialTaxCalculator_Unmodeled(t *testing.T) {
	ptc := NewProvincialTaxCalculator(domain.JurisdictionON, domain.JurisdictionRules{}, false)

	assert.True(t, ptc.CalculateTax(dec("100000")).IsZero())
	assert.True(t, ptc.ApplyBasicPersonalCredit(dec("100000")).IsZero())
	assert.True(t, ptc.MarginalRate(dec("100000")).IsZero())
	assert.True(t, ptc.Abatement(dec("10000")).IsZero())
	assert.True(t, ptc.PensionPlanContribution(dec("60000")).IsZero())
	assert.True(t, ptc.BasicPersonalAmount().IsZero())
	assert.True(t, ptc.BracketFloor(dec("100000")).IsZero())
}
