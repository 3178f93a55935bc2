package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/taxplan/internal/tui/tuistyles"
)

// MetricCard displays one figure with its change against the baseline
type MetricCard struct {
	Label string
	Value string
	Delta *Delta
	Width int
}

// Delta is a change against the baseline. LowerIsBetter flips the colour,
// so a falling tax bill shows green.
type Delta struct {
	Amount        decimal.Decimal
	LowerIsBetter bool
}

// Favourable reports whether the change helps the household
func (d Delta) Favourable() bool {
	if d.LowerIsBetter {
		return d.Amount.IsNegative()
	}
	return d.Amount.IsPositive()
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 26,
	}
}

// WithDelta attaches a change against the baseline. Zero changes are not shown.
func (m *MetricCard) WithDelta(amount decimal.Decimal, lowerIsBetter bool) *MetricCard {
	if amount.IsZero() {
		m.Delta = nil
		return m
	}
	m.Delta = &Delta{Amount: amount, LowerIsBetter: lowerIsBetter}
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

// Render returns the bordered card
func (m *MetricCard) Render() string {
	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" +
		tuistyles.MetricValueStyle.Render(m.Value)

	if m.Delta != nil {
		arrow := tuistyles.TrendIndicator(m.Delta.Amount.IsPositive())
		style := tuistyles.MetricTrendStyle(m.Delta.Favourable())
		content += "\n" + style.Render(arrow+" "+tuistyles.FormatSignedCurrency(m.Delta.Amount))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width).
		Render(content)
}

// MetricGrid renders cards in rows of the given width
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 || columns < 1 {
		return ""
	}

	var rows, current []string
	for i, card := range cards {
		current = append(current, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
