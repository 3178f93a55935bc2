package tui

import (
	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneSimulator Scene = iota
	SceneScenarios
	SceneHelp
)

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneSimulator:
		return "Simulator"
	case SceneScenarios:
		return "Scenarios"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// Message types for the Bubble Tea update cycle

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// ConfigLoadedMsg carries the household file and an engine for its fiscal year
type ConfigLoadedMsg struct {
	Config *domain.Configuration
	Engine *calculation.Engine
}

// ScenariosCalculatedMsg carries the results of the file's scenarios
type ScenariosCalculatedMsg struct {
	Results *domain.ScenarioResults
	Err     error
}
