package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/tui/tuistyles"
)

// ScenarioCard summarises one calculated scenario of the loaded household file
type ScenarioCard struct {
	Result     domain.ScenarioResult
	Baseline   *domain.TaxBreakdown
	IsSelected bool
}

// NewScenarioCard creates a card for a scenario result
func NewScenarioCard(result domain.ScenarioResult) *ScenarioCard {
	return &ScenarioCard{Result: result}
}

// CompareTo sets the breakdown the card reports its change against
func (s *ScenarioCard) CompareTo(baseline *domain.TaxBreakdown) *ScenarioCard {
	s.Baseline = baseline
	return s
}

// SetSelected marks the card as selected
func (s *ScenarioCard) SetSelected(selected bool) *ScenarioCard {
	s.IsSelected = selected
	return s
}

// RenderCompact returns a single line: name, province, total tax and change
func (s *ScenarioCard) RenderCompact() string {
	b := s.Result.Breakdown
	line := fmt.Sprintf("%-24s %-5s tax %10s  after tax %10s",
		truncate(s.Result.Label, 24), b.Jurisdiction,
		tuistyles.FormatCurrency(b.TotalTax), tuistyles.FormatCurrency(b.AfterTaxIncome))

	if s.Baseline != nil {
		change := b.AfterTaxIncome.Sub(s.Baseline.AfterTaxIncome)
		if !change.IsZero() {
			line += "  " + tuistyles.MetricTrendStyle(change.IsPositive()).Render(tuistyles.FormatSignedCurrency(change))
		}
	}
	return line
}

// ScenarioListCompact renders a selectable list of scenario cards
func ScenarioListCompact(cards []*ScenarioCard, selectedIndex int) string {
	if len(cards) == 0 {
		return tuistyles.SubtitleStyle.Render("No scenarios in this household file")
	}

	rendered := make([]string, len(cards))
	for i, card := range cards {
		prefix := "  "
		style := lipgloss.NewStyle()
		if i == selectedIndex {
			prefix = "▸ "
			style = tuistyles.SelectedItemStyle
		}
		rendered[i] = style.Render(prefix + card.RenderCompact())
	}
	return strings.Join(rendered, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
