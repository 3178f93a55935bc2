package transform

import (
	"testing"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRegistry_List(t *testing.T) {
	registry := NewTransformRegistry(testRRSPRules())

	assert.Equal(t, []string{
		"add_freelance_expenses",
		"add_rrsp",
		"max_rrsp",
		"set_employment_income",
		"set_freelance_expenses",
		"set_jurisdiction",
		"set_rrsp",
	}, registry.List())
}

func TestTransformRegistry_ParseTransformSpec(t *testing.T) {
	registry := NewTransformRegistry(testRRSPRules())
	base := createTestInput()

	tests := []struct {
		spec  string
		name  string
		check func(t *testing.T, in domain.ScenarioInput)
	}{
		{"set_rrsp:amount=10000", "set_rrsp", func(t *testing.T, in domain.ScenarioInput) {
			assert.True(t, in.RRSPContribution.Equal(d(10000)))
		}},
		{" add_rrsp : amount = 1500 ", "add_rrsp", func(t *testing.T, in domain.ScenarioInput) {
			assert.True(t, in.RRSPContribution.Equal(d(1500)))
		}},
		{"max_rrsp", "max_rrsp", func(t *testing.T, in domain.ScenarioInput) {
			assert.True(t, in.RRSPContribution.Equal(d(19782)))
		}},
		{"max_rrsp:", "max_rrsp", func(t *testing.T, in domain.ScenarioInput) {
			assert.True(t, in.RRSPContribution.Equal(d(19782)))
		}},
		{"set_freelance_expenses:amount=0", "set_freelance_expenses", func(t *testing.T, in domain.ScenarioInput) {
			assert.True(t, in.FreelanceExpenses.IsZero())
		}},
		{"add_freelance_expenses:amount=2000", "add_freelance_expenses", func(t *testing.T, in domain.ScenarioInput) {
			assert.True(t, in.FreelanceExpenses.Equal(d(7100)))
		}},
		{"set_employment_income:amount=120000", "set_employment_income", func(t *testing.T, in domain.ScenarioInput) {
			assert.True(t, in.EmploymentIncome.Equal(d(120000)))
		}},
		{"set_jurisdiction:province=on", "set_jurisdiction", func(t *testing.T, in domain.ScenarioInput) {
			assert.Equal(t, domain.JurisdictionON, in.Jurisdiction)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			transform, err := registry.ParseTransformSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.name, transform.Name())

			result, err := ApplyTransforms(base, []ScenarioTransform{transform})
			require.NoError(t, err)
			tt.check(t, result)
		})
	}
}

func TestTransformRegistry_ParseTransformSpec_Errors(t *testing.T) {
	registry := NewTransformRegistry(testRRSPRules())

	tests := []struct {
		spec string
		msg  string
	}{
		{"", "invalid transform spec format"},
		{":amount=1", "invalid transform spec format"},
		{"unknown:amount=1", "unknown transform: unknown"},
		{"set_rrsp:1000", "invalid parameter format"},
		{"set_rrsp:value=1000", "set_rrsp requires 'amount' parameter"},
		{"set_rrsp:amount=lots", "invalid amount value"},
		{"set_jurisdiction:code=ON", "set_jurisdiction requires 'province' parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := registry.ParseTransformSpec(tt.spec)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestTransformRegistry_ParseTransformSpecs(t *testing.T) {
	registry := NewTransformRegistry(testRRSPRules())

	transforms, err := registry.ParseTransformSpecs("set_rrsp:amount=5000; set_jurisdiction:province=ON;")
	require.NoError(t, err)
	require.Len(t, transforms, 2)
	assert.Equal(t, "set_rrsp", transforms[0].Name())
	assert.Equal(t, "set_jurisdiction", transforms[1].Name())

	_, err = registry.ParseTransformSpecs("set_rrsp:amount=5000;bogus")
	assert.Error(t, err)

	none, err := registry.ParseTransformSpecs("")
	assert.NoError(t, err)
	assert.Empty(t, none)
}
