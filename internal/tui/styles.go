package tui

import "github.com/rgehrsitz/taxplan/internal/tui/tuistyles"

// Re-export styles from tuistyles so components and scenes share one palette
var (
	TitleStyle        = tuistyles.TitleStyle
	SubtitleStyle     = tuistyles.SubtitleStyle
	StatusBarStyle    = tuistyles.StatusBarStyle
	StatusKeyStyle    = tuistyles.StatusKeyStyle
	BorderStyle       = tuistyles.BorderStyle
	SelectedItemStyle = tuistyles.SelectedItemStyle
	HelpKeyStyle      = tuistyles.HelpKeyStyle
	HelpDescStyle     = tuistyles.HelpDescStyle
	ErrorStyle        = tuistyles.ErrorStyle
)

var (
	FormatCurrency       = tuistyles.FormatCurrency
	FormatSignedCurrency = tuistyles.FormatSignedCurrency
)
