// Package tui implements taxplan's terminal what-if simulator. Sliders move
// the RRSP contribution and freelance expenses of a household file while the
// tax and after-tax figures are recalculated against the file's baseline.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/transform"
	"github.com/rgehrsitz/taxplan/internal/tui/components"
)

// Slider keys
const (
	SliderRRSP      = "rrsp_contribution"
	SliderFreelance = "freelance_expenses"
)

var (
	rrspStep      = decimal.NewFromInt(500)
	freelanceStep = decimal.NewFromInt(250)
)

// bigStep is the multiplier for page up/down
const bigStep = 10

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PageLeft  key.Binding
	PageRight key.Binding
	Max       key.Binding
	Reset     key.Binding
	Scenarios key.Binding
	Help      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k", "shift+tab"), key.WithHelp("↑/k", "previous slider")),
	Down:      key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "next slider")),
	Left:      key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←/h", "decrease")),
	Right:     key.NewBinding(key.WithKeys("right", "l", "+"), key.WithHelp("→/l", "increase")),
	PageLeft:  key.NewBinding(key.WithKeys("pgdown", "["), key.WithHelp("pgdn/[", "decrease ×10")),
	PageRight: key.NewBinding(key.WithKeys("pgup", "]"), key.WithHelp("pgup/]", "increase ×10")),
	Max:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "max out slider")),
	Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset to baseline")),
	Scenarios: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "file scenarios")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model represents the entire application state
type Model struct {
	currentScene  Scene
	previousScene Scene

	width  int
	height int

	configPath string
	rulesPath  string
	loader     *config.RuleLoader

	config *domain.Configuration
	engine *calculation.Engine

	// base is the household as loaded; baseline is its breakdown
	base     domain.ScenarioInput
	baseline domain.TaxBreakdown
	current  domain.TaxBreakdown

	// exactSavings is the tax saved by contributing the remaining room,
	// recalculated through the brackets
	exactSavings decimal.Decimal

	sliders []*components.ParameterSlider
	focused int

	scenarioResults *domain.ScenarioResults
	selected        int

	err     error
	loading bool
}

// NewModel creates a model that loads configPath on start. An empty
// rulesPath uses the embedded rules for the file's fiscal year.
func NewModel(configPath, rulesPath string, loader *config.RuleLoader) Model {
	if loader == nil {
		loader = config.NewRuleLoader()
	}
	return Model{
		currentScene: SceneSimulator,
		configPath:   configPath,
		rulesPath:    rulesPath,
		loader:       loader,
		loading:      true,
		width:        80,
		height:       24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return loadConfigCmd(m.configPath, m.rulesPath, m.loader)
}

// loadConfigCmd returns a command that loads the household file and its rules
func loadConfigCmd(path, rulesPath string, loader *config.RuleLoader) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.NewInputParser().LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		rules, err := loader.Resolve(rulesPath, cfg.FiscalYear)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ConfigLoadedMsg{Config: cfg, Engine: calculation.NewEngine(rules)}
	}
}

// calculateScenariosCmd runs every scenario of the household file
func calculateScenariosCmd(engine *calculation.Engine, cfg *domain.Configuration) tea.Cmd {
	return func() tea.Msg {
		results, err := engine.RunScenarios(context.Background(), cfg)
		return ScenariosCalculatedMsg{Results: results, Err: err}
	}
}

// load installs a household and builds the sliders around it
func (m *Model) load(cfg *domain.Configuration, engine *calculation.Engine) {
	m.config = cfg
	m.engine = engine
	m.base = cfg.Household
	m.baseline = engine.CalculateTax(m.base)
	m.current = m.baseline
	m.loading = false
	m.err = nil

	m.sliders = []*components.ParameterSlider{
		components.NewParameterSlider(SliderRRSP, "RRSP contribution",
			m.base.RRSPContribution, decimal.Zero, m.baseline.RRSPContributionRoom, rrspStep).
			WithDescription("Deductible up to the contribution room"),
		components.NewParameterSlider(SliderFreelance, "Freelance expenses",
			m.base.FreelanceExpenses, decimal.Zero, m.base.FreelanceIncome, freelanceStep).
			WithDescription("Business expenses claimed against freelance revenue"),
	}
	m.focused = 0
	m.sliders[0].SetFocused(true)
	m.recalculate()
}

// slider returns the slider with the given key
func (m Model) slider(k string) *components.ParameterSlider {
	for _, s := range m.sliders {
		if s.Key == k {
			return s
		}
	}
	return nil
}

// whatIf returns the household with the slider values applied
func (m Model) whatIf() (domain.ScenarioInput, error) {
	return transform.ApplyTransforms(m.base, []transform.ScenarioTransform{
		&transform.SetFreelanceExpenses{Amount: m.slider(SliderFreelance).Value},
		&transform.SetRRSPContribution{Amount: m.slider(SliderRRSP).Value},
	})
}

// recalculate refreshes the current breakdown. Freelance expenses change the
// earned income, so the RRSP slider is re-bounded to the new room first.
func (m *Model) recalculate() {
	if m.engine == nil || len(m.sliders) == 0 {
		return
	}

	input, err := m.whatIf()
	if err != nil {
		m.err = fmt.Errorf("failed to apply sliders: %w", err)
		return
	}
	room := m.engine.CalculateTax(input).RRSPContributionRoom
	m.slider(SliderRRSP).SetMax(room)

	input, err = m.whatIf()
	if err != nil {
		m.err = fmt.Errorf("failed to apply sliders: %w", err)
		return
	}
	m.current = m.engine.CalculateTax(input)
	m.exactSavings = m.engine.DifferentialSavings(input, m.current.RemainingRRSPRoom())
}

// reset puts every slider back to the loaded household
func (m *Model) reset() {
	m.slider(SliderFreelance).SetValue(m.base.FreelanceExpenses)
	m.slider(SliderRRSP).SetMax(m.baseline.RRSPContributionRoom)
	m.slider(SliderRRSP).SetValue(m.base.RRSPContribution)
	m.recalculate()
}

// Current returns the breakdown for the slider positions
func (m Model) Current() domain.TaxBreakdown {
	return m.current
}

// ExactSavingsIfMaxed returns the tax saved by contributing the remaining
// room at the current slider positions
func (m Model) ExactSavingsIfMaxed() decimal.Decimal {
	return m.exactSavings
}

// Baseline returns the breakdown of the household as loaded
func (m Model) Baseline() domain.TaxBreakdown {
	return m.baseline
}

// TaxDelta is the change in total tax against the baseline
func (m Model) TaxDelta() decimal.Decimal {
	return m.current.TotalTax.Sub(m.baseline.TotalTax)
}

// AfterTaxDelta is the change in after-tax income against the baseline
func (m Model) AfterTaxDelta() decimal.Decimal {
	return m.current.AfterTaxIncome.Sub(m.baseline.AfterTaxIncome)
}

// SliderValue returns the value of the slider with the given key
func (m Model) SliderValue(k string) decimal.Decimal {
	if s := m.slider(k); s != nil {
		return s.Value
	}
	return decimal.Zero
}
