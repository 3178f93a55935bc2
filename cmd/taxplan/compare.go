package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/taxplan/internal/compare"
	"github.com/rgehrsitz/taxplan/internal/output"
	"github.com/rgehrsitz/taxplan/internal/transform"
)

func compareCmd(opts *globalOptions) *cobra.Command {
	var (
		base          string
		with          string
		scenarios     string
		format        string
		listTemplates bool
		summary       bool
	)

	cmd := &cobra.Command{
		Use:   "compare [input-file]",
		Short: "Compare a household against built-in strategy templates",
		Long: `Compare a base scenario against alternative strategies.

Examples:
  taxplan compare household.yaml --with rrsp_10k,move_to_on
  taxplan compare household.yaml --base "RRSP 10k" --with set_rrsp:amount=15000 --format csv
  taxplan compare household.yaml --scenarios "RRSP 10k,Move to Ontario"
  taxplan compare --list-templates
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listTemplates {
				engine, err := opts.engine(0)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), transform.GetTemplateHelp(transform.CreateBuiltInTemplates(engine.Rules.Federal.RRSP)))
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("input file required for comparison (use --list-templates to see available templates)")
			}

			cfg, engine, err := opts.loadHousehold(args[0])
			if err != nil {
				return err
			}
			compareEngine := compare.NewCompareEngine(engine)

			var compSet *compare.ComparisonSet
			switch {
			case scenarios != "":
				compSet, err = compareEngine.CompareScenarios(cmd.Context(), cfg, base, transform.ParseTemplateList(scenarios))
			case with != "":
				compSet, err = compareEngine.Compare(cmd.Context(), cfg, compare.CompareOptions{
					BaseScenarioName: base,
					Templates:        transform.ParseTemplateList(with),
					ConfigPath:       args[0],
				})
			default:
				return fmt.Errorf("--with or --scenarios is required (use --list-templates to see available templates)")
			}
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}
			compSet.ConfigPath = args[0]

			return writeComparison(cmd, compSet, format, summary)
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base scenario name (default: the household baseline)")
	cmd.Flags().StringVar(&with, "with", "", "Comma-separated templates or transform specs to compare")
	cmd.Flags().StringVar(&scenarios, "scenarios", "", "Comma-separated scenario names from the file to compare instead of templates")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, compact, csv, json, or any calculate format)")
	cmd.Flags().BoolVar(&summary, "summary", false, "With --format json, emit only the key metrics")
	cmd.Flags().BoolVar(&listTemplates, "list-templates", false, "List all available scenario templates")
	return cmd
}

func writeComparison(cmd *cobra.Command, compSet *compare.ComparisonSet, format string, summary bool) error {
	out := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case "table", "":
		fmt.Fprint(out, (&compare.TableFormatter{}).Format(compSet))
	case "compact":
		fmt.Fprintln(out, (&compare.TableFormatter{}).FormatCompact(compSet))
	case "csv":
		s, err := (&compare.CSVFormatter{}).Format(compSet)
		if err != nil {
			return fmt.Errorf("failed to format CSV: %w", err)
		}
		fmt.Fprint(out, s)
	case "json":
		s, err := (&compare.JSONFormatter{Pretty: true, Summary: summary}).Format(compSet)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, s)
	default:
		// Any scenario report format works on the converted comparison
		if output.GetFormatterByName(format) == nil {
			return fmt.Errorf("unknown output format: %s (valid: table, compact, csv, json, %s)",
				format, strings.Join(output.AvailableFormatterNames(), ", "))
		}
		return output.GenerateReport(out, compSet.ToScenarioResults(), format)
	}
	return nil
}
