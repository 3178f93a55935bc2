package transform

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func testRRSPRules() domain.RRSPRules {
	return domain.RRSPRules{LimitRate: decimal.RequireFromString("0.18"), MaxContribution: d(32490)}
}

// createTestInput is the Quebec duplex household: 95k salary, 20k freelance
// revenue with 5.1k expenses, 28.8k rent with 21.3k expenses
func createTestInput() domain.ScenarioInput {
	return domain.ScenarioInput{
		EmploymentIncome:  d(95000),
		FreelanceIncome:   d(20000),
		FreelanceExpenses: d(5100),
		RentalGrossIncome: d(28800),
		RentalExpenses:    d(21300),
		Jurisdiction:      domain.JurisdictionQC,
		FilingStatus:      domain.FilingSingle,
		Age:               26,
	}
}

func TestApplyTransforms_EmptyTransforms(t *testing.T) {
	base := createTestInput()

	result, err := ApplyTransforms(base, nil)
	require.NoError(t, err)
	assert.Equal(t, base, result)
}

func TestApplyTransforms_Chain(t *testing.T) {
	base := createTestInput()

	result, err := ApplyTransforms(base, []ScenarioTransform{
		&SetRRSPContribution{Amount: d(5000)},
		&AddRRSPContribution{Delta: d(2500)},
		&AddFreelanceExpenses{Delta: d(2000)},
		&SetJurisdiction{Jurisdiction: domain.JurisdictionON},
	})
	require.NoError(t, err)

	assert.True(t, result.RRSPContribution.Equal(d(7500)))
	assert.True(t, result.FreelanceExpenses.Equal(d(7100)))
	assert.Equal(t, domain.JurisdictionON, result.Jurisdiction)
	assert.True(t, base.RRSPContribution.IsZero(), "base is not modified")
	assert.Equal(t, domain.JurisdictionQC, base.Jurisdiction)
}

func TestApplyTransforms_Errors(t *testing.T) {
	base := createTestInput()

	_, err := ApplyTransforms(base, []ScenarioTransform{nil})
	assert.ErrorContains(t, err, "transform at index 0 is nil")

	result, err := ApplyTransforms(base, []ScenarioTransform{
		&SetRRSPContribution{Amount: d(1000)},
		&AddRRSPContribution{Delta: d(-2000)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transform add_rrsp validation failed")
	assert.Equal(t, base, result, "a failed chain returns the base")

	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "add_rrsp", te.TransformName)
	assert.Equal(t, "validate", te.Operation)
}

func TestTransforms_Validate(t *testing.T) {
	base := createTestInput()

	tests := []struct {
		name      string
		transform ScenarioTransform
		wantErr   bool
	}{
		{"set rrsp", &SetRRSPContribution{Amount: d(10000)}, false},
		{"set rrsp above room", &SetRRSPContribution{Amount: d(50000)}, false},
		{"negative rrsp", &SetRRSPContribution{Amount: d(-1)}, true},
		{"add rrsp below zero", &AddRRSPContribution{Delta: d(-1)}, true},
		{"set expenses", &SetFreelanceExpenses{Amount: d(0)}, false},
		{"negative expenses", &SetFreelanceExpenses{Amount: d(-100)}, true},
		{"remove too many expenses", &AddFreelanceExpenses{Delta: d(-5101)}, true},
		{"remove all expenses", &AddFreelanceExpenses{Delta: d(-5100)}, false},
		{"negative salary", &SetEmploymentIncome{Amount: d(-1)}, true},
		{"unknown province", &SetJurisdiction{Jurisdiction: "NY"}, true},
		{"other province", &SetJurisdiction{Jurisdiction: domain.JurisdictionOther}, false},
		{"max rrsp without rules", &MaxRRSPContribution{}, true},
		{"max rrsp", &MaxRRSPContribution{Rules: testRRSPRules()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transform.Validate(base)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaxRRSPContribution(t *testing.T) {
	base := createTestInput()

	result, err := (&MaxRRSPContribution{Rules: testRRSPRules()}).Apply(base)
	require.NoError(t, err)
	assert.True(t, result.RRSPContribution.Equal(d(19782)), "18%% of 95000 + 14900, got %s", result.RRSPContribution)

	high := base
	high.EmploymentIncome = d(300000)
	result, err = (&MaxRRSPContribution{Rules: testRRSPRules()}).Apply(high)
	require.NoError(t, err)
	assert.True(t, result.RRSPContribution.Equal(d(32490)), "room is capped at the yearly maximum")
}

func TestRoom_IgnoresRental(t *testing.T) {
	base := createTestInput()
	noRental := base
	noRental.RentalGrossIncome = decimal.Zero
	noRental.RentalExpenses = decimal.Zero

	assert.True(t, Room(base, testRRSPRules()).Equal(Room(noRental, testRRSPRules())))
}

func TestDescribe(t *testing.T) {
	descs := Describe([]ScenarioTransform{
		&SetRRSPContribution{Amount: d(10000)},
		nil,
		&AddRRSPContribution{Delta: d(-500)},
		&AddFreelanceExpenses{Delta: d(2000)},
		&SetJurisdiction{Jurisdiction: domain.JurisdictionON},
	})
	assert.Equal(t, []string{
		"Set RRSP contribution to $10000",
		"Reduce RRSP contribution by $500",
		"Claim $2000 more in freelance expenses",
		"Move to ON",
	}, descs)
}

func TestTransformError(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransformError("set_rrsp", "apply", "failed", cause)
	assert.Equal(t, "transform set_rrsp (apply): failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "transform set_rrsp (validate): bad", NewTransformError("set_rrsp", "validate", "bad", nil).Error())
}
