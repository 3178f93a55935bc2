package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/output"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	rulesPath string
	year      int
	debug     bool
}

func (o *globalOptions) logger() calculation.Logger {
	if o.debug {
		return simpleCLILogger{}
	}
	return calculation.NopLogger{}
}

// ruleLoader returns a loader that logs through the CLI logger
func (o *globalOptions) ruleLoader() *config.RuleLoader {
	rl := config.NewRuleLoader()
	rl.SetLogger(o.logger())
	return rl
}

// engine builds a tax engine for year, honouring --rules and --year
func (o *globalOptions) engine(year int) (*calculation.Engine, error) {
	if o.year != 0 {
		year = o.year
	}
	rules, err := o.ruleLoader().Resolve(o.rulesPath, year)
	if err != nil {
		return nil, err
	}
	engine := calculation.NewEngine(rules)
	engine.SetLogger(o.logger())
	engine.Debug = o.debug
	return engine, nil
}

// loadHousehold parses a household file and builds the engine for its year
func (o *globalOptions) loadHousehold(path string) (*domain.Configuration, *calculation.Engine, error) {
	cfg, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	engine, err := o.engine(cfg.FiscalYear)
	if err != nil {
		return nil, nil, err
	}
	cfg.FiscalYear = engine.FiscalYear()
	return cfg, engine, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "taxplan",
		Short: "Income tax planning CLI",
		Long: `Progressive income tax calculator for Canadian households.

Computes federal and provincial tax, payroll contributions and RRSP room for a
household file, compares what-if scenarios, sweeps one input across a range and
finds the RRSP contribution that meets a tax goal.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "Rule file (YAML, JSON or TOML) instead of the embedded rules")
	root.PersistentFlags().IntVar(&opts.year, "year", 0, "Fiscal year of the embedded rules (default: the household file's year)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output for detailed calculations")

	root.AddCommand(
		calculateCmd(opts),
		validateCmd(),
		compareCmd(opts),
		sweepCmd(opts),
		optimizeCmd(opts),
		rulesCmd(opts),
		profileCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

func calculateCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "calculate [input-file]",
		Short: "Calculate the baseline and every scenario of a household file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, err := opts.loadHousehold(args[0])
			if err != nil {
				return err
			}

			results, err := engine.RunScenarios(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			f := output.GetFormatterByName(format)
			if f == nil {
				return fmt.Errorf("unknown output format: %s (valid: %s)", format,
					strings.Join(append(output.AvailableFormatterNames(), output.AvailableFormatAliases()...), ", "))
			}

			if save {
				filename, err := output.WriteFormatted(f, results, reportExtension(f.Name()))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
				return nil
			}

			return output.GenerateReport(cmd.OutOrStdout(), results, f.Name())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "console", "Output format (console, console-lite, csv, detailed-csv, json, html)")
	cmd.Flags().BoolVar(&save, "save", false, "Write the report to tax_report_<timestamp>.<ext> instead of stdout")
	return cmd
}

// reportExtension maps a formatter name to a file extension
func reportExtension(name string) string {
	switch name {
	case "html", "json":
		return name
	case "csv", "detailed-csv":
		return "csv"
	default:
		return "txt"
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate a household file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid (%s, fiscal year %d, %d scenarios)\n",
				filepath.Base(args[0]), cfg.Household.Jurisdiction, cfg.FiscalYear, len(cfg.Scenarios))
			return nil
		},
	}
}

// parseAmount parses a dollar flag value
func parseAmount(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(value), "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return d, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
