package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/output"
)

func rulesCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the tax rules for a fiscal year",
		Long: `Print the brackets, credits and contribution limits the engine uses.

Examples:
  taxplan rules
  taxplan rules --year 2026 --format toml > rules_2026.toml
  taxplan rules --rules rules_2026.toml --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, y := range config.AvailableYears() {
					fmt.Fprintln(out, y)
				}
				return nil
			}

			rules, err := opts.ruleLoader().Resolve(opts.rulesPath, opts.year)
			if err != nil {
				return err
			}

			switch f := strings.ToLower(format); f {
			case "markdown", "md", "":
				fmt.Fprint(out, output.RulesReference(rules))
			default:
				data, err := config.EncodeRuleSet(rules, f)
				if err != nil {
					return err
				}
				out.Write(data)
				if len(data) > 0 && data[len(data)-1] != '\n' {
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format (markdown, yaml, json, toml)")
	cmd.Flags().BoolVar(&list, "list", false, "List the fiscal years with embedded rules")
	return cmd
}
