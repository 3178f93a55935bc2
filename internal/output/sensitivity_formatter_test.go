package output

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestSweep(t *testing.T) *domain.SweepResult {
	t.Helper()
	sa := calculation.NewSensitivityAnalyzer(testEngine(t))
	result, err := sa.Sweep(context.Background(), testHousehold(), domain.SweepParameter{
		Name:        domain.SweepRRSPContribution,
		MinValue:    d("0"),
		MaxValue:    d("20000"),
		Steps:       3,
		Description: "RRSP contribution",
	})
	require.NoError(t, err)
	return result
}

func TestNewSweepFormatter(t *testing.T) {
	assert.Equal(t, "console", NewSweepFormatter("").Name())
	assert.Equal(t, "console", NewSweepFormatter("table").Name())
	assert.Equal(t, "csv", NewSweepFormatter("csv").Name())
	assert.Equal(t, "json", NewSweepFormatter("json").Name())
}

func TestSweepConsoleFormatter(t *testing.T) {
	out, err := SweepConsoleFormatter{}.FormatSweep(buildTestSweep(t))
	require.NoError(t, err)

	assert.Contains(t, out, "SENSITIVITY ANALYSIS: RRSP CONTRIBUTION")
	assert.Contains(t, out, "Range: $0.00 to $20000.00 (3 steps)")
	assert.Contains(t, out, "Base: total tax $38421.00, after tax $78979.00")
	assert.Contains(t, out, "$20000.00 ←")
	assert.Contains(t, out, "0.4234")
	assert.Contains(t, out, "Lowest tax at rrsp_contribution = $20000.00 (-$7960.00 vs base)")
}

func TestSweepConsoleFormatter_Empty(t *testing.T) {
	_, err := SweepConsoleFormatter{}.FormatSweep(&domain.SweepResult{})
	assert.Error(t, err)
}

func TestSweepCSVFormatter(t *testing.T) {
	out, err := SweepCSVFormatter{}.FormatSweep(buildTestSweep(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "rrsp_contribution,TaxableIncome,TotalTax,TaxDelta,AfterTaxIncome,AfterTaxDelta,MarginalRate,MarginalSaving", lines[0])
	assert.Equal(t, "10000.00,107400.00,34187.00,-4234.00,83213.00,4234.00,0.4112,0.4234", lines[2])
	assert.Equal(t, "20000.00,97618.00,30461.00,-7960.00,86939.00,7960.00,0.3612,0.3726", lines[3])
}

func TestSweepJSONFormatter(t *testing.T) {
	out, err := SweepJSONFormatter{}.FormatSweep(buildTestSweep(t))
	require.NoError(t, err)

	var decoded domain.SweepResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Points, 3)
	assert.True(t, decoded.Points[1].TaxDelta.Equal(d("-4234")))
}

func TestRulesReference(t *testing.T) {
	rules, err := config.NewRuleLoader().Load(2026)
	require.NoError(t, err)

	md := RulesReference(rules)
	for _, want := range []string{
		"# Tax rules 2026",
		"Valid until 2026-12-31.",
		"## Federal",
		"| $0.00 | $57375.00 | 15.00% |",
		"| $220000.00 | and up | 33.00% |",
		"- Basic personal amount: $16129.00 (credit rate 15.00%)",
		"- RRSP room: 18.00% of earned income, at most $32490.00",
		"- EI: 1.66% of insurable earnings up to $65700.00, at most $1090.00",
		"## Quebec (QC)",
		"| $126000.00 | and up | 25.75% |",
		"- Federal abatement: 16.50% of federal tax after credits",
		"- Pension plan: 5.40% of employment income between $3500.00 and $73200.00, at most $4038.00",
	} {
		assert.Contains(t, md, want)
	}

	assert.Equal(t, md, RulesReference(rules), "output must be deterministic")
}
