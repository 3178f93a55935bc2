package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/tui"
)

func main() {
	rulesPath := flag.String("rules", "", "Rule file instead of the embedded rules")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: taxplan-tui [--rules file] <household-file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	configPath := flag.Arg(0)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: household file not found: %s\n", configPath)
		os.Exit(1)
	}

	model := tui.NewModel(configPath, *rulesPath, config.NewRuleLoader())

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
