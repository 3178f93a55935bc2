package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case NavigateMsg:
		if msg.Scene != m.currentScene {
			m.previousScene = m.currentScene
			m.currentScene = msg.Scene
		}
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		m.loading = false
		return m, nil

	case ConfigLoadedMsg:
		m.load(msg.Config, msg.Engine)
		if len(msg.Config.Scenarios) > 0 {
			return m, calculateScenariosCmd(m.engine, m.config)
		}
		return m, nil

	case ScenariosCalculatedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.scenarioResults = msg.Results
		m.selected = 0
		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	// Any key dismisses an error once a household is loaded
	if m.err != nil {
		if m.engine != nil {
			m.err = nil
		}
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Help):
		return m, navigate(SceneHelp)
	case key.Matches(msg, keys.Back):
		if m.currentScene != SceneSimulator {
			return m, navigate(SceneSimulator)
		}
		return m, nil
	case key.Matches(msg, keys.Scenarios):
		if m.currentScene != SceneScenarios {
			return m, navigate(SceneScenarios)
		}
		return m, nil
	}

	switch m.currentScene {
	case SceneSimulator:
		return m.updateSimulator(msg)
	case SceneScenarios:
		return m.updateScenarios(msg)
	}
	return m, nil
}

func navigate(scene Scene) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Scene: scene}
	}
}

// updateSimulator moves focus between sliders and adjusts the focused one
func (m Model) updateSimulator(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.sliders) == 0 {
		return m, nil
	}
	s := m.sliders[m.focused]

	switch {
	case key.Matches(msg, keys.Up):
		m.focus(m.focused - 1)
		return m, nil
	case key.Matches(msg, keys.Down):
		m.focus(m.focused + 1)
		return m, nil
	case key.Matches(msg, keys.Left):
		s.Decrement(1)
	case key.Matches(msg, keys.Right):
		s.Increment(1)
	case key.Matches(msg, keys.PageLeft):
		s.Decrement(bigStep)
	case key.Matches(msg, keys.PageRight):
		s.Increment(bigStep)
	case key.Matches(msg, keys.Max):
		s.SetValue(s.Max)
	case key.Matches(msg, keys.Reset):
		m.reset()
		return m, nil
	default:
		return m, nil
	}

	m.recalculate()
	return m, nil
}

// focus moves the focus ring, wrapping at both ends
func (m *Model) focus(i int) {
	n := len(m.sliders)
	i = ((i % n) + n) % n
	m.sliders[m.focused].SetFocused(false)
	m.focused = i
	m.sliders[m.focused].SetFocused(true)
}

// updateScenarios moves the selection through the file's scenarios
func (m Model) updateScenarios(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.scenarioResults == nil || len(m.scenarioResults.Results) == 0 {
		return m, nil
	}
	n := len(m.scenarioResults.Results)
	switch {
	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, keys.Down):
		if m.selected < n-1 {
			m.selected++
		}
	}
	return m, nil
}
