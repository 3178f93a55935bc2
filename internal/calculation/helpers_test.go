package calculation

import (
	"fmt"
	"testing"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func brackets(rows ...[3]string) []domain.TaxBracket {
	out := make([]domain.TaxBracket, len(rows))
	for i, r := range rows {
		out[i] = domain.TaxBracket{Min: dec(r[0]), Rate: dec(r[2])}
		if r[1] != "" {
			out[i].Max = decPtr(r[1])
		}
	}
	return out
}

// testRuleSet mirrors rules/2026.yaml
func testRuleSet() *domain.RuleSet {
	return &domain.RuleSet{
		Metadata: domain.RuleSetMetadata{FiscalYear: 2026, ValidUntil: "2026-12-31"},
		Federal: domain.FederalRules{
			Brackets: brackets(
				[3]string{"0", "57375", "0.15"},
				[3]string{"57375", "114750", "0.205"},
				[3]string{"114750", "158519", "0.26"},
				[3]string{"158519", "220000", "0.29"},
				[3]string{"220000", "", "0.33"},
			),
			BasicPersonalAmount: dec("16129"),
			CreditRate:          dec("0.15"),
			RRSP:                domain.RRSPRules{LimitRate: dec("0.18"), MaxContribution: dec("32490")},
			TFSARoom:            dec("7000"),
			FHSA:                domain.FHSARules{AnnualLimit: dec("8000"), LifetimeLimit: dec("40000")},
			EI:                  domain.EIRules{MaxInsurableEarnings: dec("65700"), PremiumRate: dec("0.0166"), MaxPremium: dec("1090")},
		},
		Jurisdictions: map[domain.Jurisdiction]domain.JurisdictionRules{
			domain.JurisdictionQC: {
				Name: "Quebec",
				Brackets: brackets(
					[3]string{"0", "51780", "0.14"},
					[3]string{"51780", "103545", "0.19"},
					[3]string{"103545", "126000", "0.24"},
					[3]string{"126000", "", "0.2575"},
				),
				BasicPersonalAmount: dec("17183"),
				CreditRate:          dec("0.14"),
				Abatement:           &domain.AbatementRules{Rate: dec("0.165")},
				PensionPlan: &domain.PensionPlanRules{
					BasicExemption:         dec("3500"),
					MaxPensionableEarnings: dec("73200"),
					ContributionRate:       dec("0.054"),
					MaxContribution:        dec("4038"),
				},
			},
		},
	}
}

// referenceInput is the household used throughout the engine tests
func referenceInput(contribution string) domain.ScenarioInput {
	return domain.ScenarioInput{
		EmploymentIncome:  dec("95000"),
		FreelanceIncome:   dec("20000"),
		FreelanceExpenses: dec("5100"),
		RentalGrossIncome: dec("28800"),
		RentalExpenses:    dec("21300"),
		RRSPContribution:  dec(contribution),
		Jurisdiction:      domain.JurisdictionQC,
		FilingStatus:      domain.FilingSingle,
		Age:               26,
	}
}

// TestLogger records every message for assertions
type TestLogger struct {
	Messages []string
}

func (l *TestLogger) Debugf(format string, args ...any) { l.add("DEBUG", format, args...) }
func (l *TestLogger) Infof(format string, args ...any)  { l.add("INFO", format, args...) }
func (l *TestLogger) Warnf(format string, args ...any)  { l.add("WARN", format, args...) }
func (l *TestLogger) Errorf(format string, args ...any) { l.add("ERROR", format, args...) }

func (l *TestLogger) add(level, format string, args ...any) {
	l.Messages = append(l.Messages, level+" "+fmt.Sprintf(format, args...))
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(expected).Equal(actual) {
		t.Errorf("expected %s, got %s %v", expected, actual.String(), msgAndArgs)
	}
}
