package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/tui/components"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.err != nil {
		return m.renderApp(m.renderError())
	}
	if m.loading {
		return m.renderApp(BorderStyle.Render("Loading " + m.configPath + "..."))
	}

	var content string
	switch m.currentScene {
	case SceneSimulator:
		content = m.renderSimulator()
	case SceneScenarios:
		content = m.renderScenarios()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}
	return m.renderApp(content)
}

// renderApp wraps content with the title and status bars
func (m Model) renderApp(content string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitleBar(),
		content,
		m.renderStatusBar(),
	)
}

func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("taxplan - what-if simulator")
	crumb := m.currentScene.String()
	if m.config != nil {
		crumb = fmt.Sprintf("%s / %s %d", crumb, m.base.Jurisdiction, m.config.FiscalYear)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, SubtitleStyle.Render(crumb))
}

func (m Model) renderStatusBar() string {
	var bindings []key.Binding
	switch m.currentScene {
	case SceneSimulator:
		bindings = []key.Binding{keys.Down, keys.Right, keys.Max, keys.Reset, keys.Scenarios, keys.Help, keys.Quit}
	default:
		bindings = []key.Binding{keys.Back, keys.Help, keys.Quit}
	}

	shortcuts := make([]string, len(bindings))
	for i, b := range bindings {
		shortcuts[i] = StatusKeyStyle.Render(b.Help().Key) + " " + b.Help().Desc
	}
	return StatusBarStyle.Render(strings.Join(shortcuts, " • "))
}

func (m Model) renderError() string {
	hint := "Press q to quit."
	if m.engine != nil {
		hint = "Press any key to continue."
	}
	return ErrorStyle.Render(fmt.Sprintf("Error: %s\n\n%s", m.err, hint))
}

// renderSimulator shows the sliders above the recalculated figures
func (m Model) renderSimulator() string {
	sliders := make([]string, len(m.sliders))
	for i, s := range m.sliders {
		sliders[i] = s.WithWidth(36).Render()
	}
	left := BorderStyle.Render(strings.Join(sliders, "\n\n"))

	cur := m.current
	cards := []*components.MetricCard{
		components.NewMetricCard("Total tax", FormatCurrency(cur.TotalTax)).WithDelta(m.TaxDelta(), true),
		components.NewMetricCard("After-tax income", FormatCurrency(cur.AfterTaxIncome)).WithDelta(m.AfterTaxDelta(), false),
		components.NewMetricCard("Taxable income", FormatCurrency(cur.TotalTaxableIncome)).
			WithDelta(cur.TotalTaxableIncome.Sub(m.baseline.TotalTaxableIncome), true),
		components.NewMetricCard("Marginal rate", formatRate(cur.MarginalCombinedRate)),
		components.NewMetricCard("Effective rate", cur.EffectiveTaxRate.StringFixed(2)+"%"),
		components.NewMetricCard("RRSP room left", FormatCurrency(cur.RemainingRRSPRoom())),
	}

	detail := m.renderBreakdown(cur)
	right := lipgloss.JoinVertical(lipgloss.Left, components.MetricGrid(cards, 3), detail)

	if m.width > 0 && m.width < 120 {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// renderBreakdown lists the components of the current total tax
func (m Model) renderBreakdown(b domain.TaxBreakdown) string {
	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{"Federal tax", b.FederalTax},
		{"Provincial abatement", b.ProvincialAbatement},
		{"Provincial tax", b.ProvincialTax},
		{"Pension plan", b.PensionPlanContribution},
		{"EI premium", b.EIPremium},
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-22s %10s\n", r.label, FormatCurrency(r.value)))
	}
	if m.slider(SliderRRSP) != nil && b.RemainingRRSPRoom().IsPositive() {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%-22s %10s\n", "Max room saves (est.)", FormatCurrency(b.RRSPTaxSavingsIfMaxed)))
		sb.WriteString(fmt.Sprintf("%-22s %10s\n", "Max room saves (exact)", FormatCurrency(m.exactSavings)))
	}
	if !b.ProvincialModeled {
		sb.WriteString(SubtitleStyle.Render(fmt.Sprintf("No provincial rules for %s: provincial tax is not modeled", b.Jurisdiction)))
	}
	return BorderStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// renderScenarios lists the scenarios of the household file
func (m Model) renderScenarios() string {
	if m.scenarioResults == nil {
		return BorderStyle.Render("No scenarios in this household file")
	}

	var baseline *domain.TaxBreakdown
	cards := make([]*components.ScenarioCard, len(m.scenarioResults.Results))
	for i, r := range m.scenarioResults.Results {
		if i == 0 {
			b := r.Breakdown
			baseline = &b
		}
		cards[i] = components.NewScenarioCard(r).CompareTo(baseline).SetSelected(i == m.selected)
	}
	return BorderStyle.Render(components.ScenarioListCompact(cards, m.selected))
}

func (m Model) renderHelp() string {
	all := []key.Binding{
		keys.Up, keys.Down, keys.Left, keys.Right, keys.PageLeft, keys.PageRight,
		keys.Max, keys.Reset, keys.Scenarios, keys.Help, keys.Back, keys.Quit,
	}

	var sb strings.Builder
	sb.WriteString("Move a slider and every figure is recalculated against the\n")
	sb.WriteString("household as loaded. Reset restores the loaded values.\n\n")
	for _, b := range all {
		sb.WriteString(HelpKeyStyle.Render(fmt.Sprintf("%-10s", b.Help().Key)))
		sb.WriteString(" ")
		sb.WriteString(HelpDescStyle.Render(b.Help().Desc))
		sb.WriteString("\n")
	}
	return BorderStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// formatRate renders a fractional rate as a percentage
func formatRate(r decimal.Decimal) string {
	return r.Shift(2).StringFixed(2) + "%"
}
