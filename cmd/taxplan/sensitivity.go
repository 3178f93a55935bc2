package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/output"
)

func sweepCmd(opts *globalOptions) *cobra.Command {
	var (
		parameter string
		valueRng  string
		steps     int
		scenario  string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "sweep [input-file]",
		Short: "Sweep one input across a range and show how tax responds",
		Long: fmt.Sprintf(`Recalculate a household at evenly spaced values of one input.

Parameters: %s

Examples:
  taxplan sweep household.yaml --parameter rrsp_contribution --range 0-20000 --steps 5
  taxplan sweep household.yaml --parameter freelance_expenses:0-10000:11 --format csv`,
			strings.Join(domain.SweepParameters, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			param, err := parseSweepParameter(parameter, valueRng, steps)
			if err != nil {
				return err
			}

			cfg, engine, err := opts.loadHousehold(args[0])
			if err != nil {
				return err
			}
			base, ok := cfg.FindScenario(scenario)
			if !ok {
				return fmt.Errorf("scenario %s not found in configuration", scenario)
			}

			result, err := calculation.NewSensitivityAnalyzer(engine).Sweep(cmd.Context(), base, param)
			if err != nil {
				return err
			}

			out, err := output.NewSweepFormatter(format).FormatSweep(result)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			if !strings.HasSuffix(out, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&parameter, "parameter", domain.SweepRRSPContribution, "Input to sweep (name, or name:min-max:steps)")
	cmd.Flags().StringVar(&valueRng, "range", "", "Range to sweep (format: min-max)")
	cmd.Flags().IntVar(&steps, "steps", 5, "Number of points, including both ends")
	cmd.Flags().StringVar(&scenario, "scenario", "", "Scenario to sweep (default: the household baseline)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, csv, json)")
	return cmd
}

// parseSweepParameter accepts "name" with --range/--steps, or the combined
// "name:min-max:steps" form
func parseSweepParameter(spec, valueRange string, steps int) (domain.SweepParameter, error) {
	name := spec
	if parts := strings.Split(spec, ":"); len(parts) > 1 {
		if len(parts) != 3 {
			return domain.SweepParameter{}, fmt.Errorf("invalid parameter %q (format: name:min-max:steps)", spec)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return domain.SweepParameter{}, fmt.Errorf("invalid steps in %q: %w", spec, err)
		}
		name, valueRange, steps = parts[0], parts[1], n
	}

	if valueRange == "" {
		return domain.SweepParameter{}, fmt.Errorf("--range is required (format: min-max)")
	}
	bounds := strings.SplitN(valueRange, "-", 2)
	if len(bounds) != 2 {
		return domain.SweepParameter{}, fmt.Errorf("invalid range %q (format: min-max)", valueRange)
	}
	min, err := decimal.NewFromString(strings.TrimSpace(bounds[0]))
	if err != nil {
		return domain.SweepParameter{}, fmt.Errorf("invalid range minimum %q: %w", bounds[0], err)
	}
	max, err := decimal.NewFromString(strings.TrimSpace(bounds[1]))
	if err != nil {
		return domain.SweepParameter{}, fmt.Errorf("invalid range maximum %q: %w", bounds[1], err)
	}

	return domain.SweepParameter{
		Name:        strings.TrimSpace(name),
		MinValue:    min,
		MaxValue:    max,
		Steps:       steps,
		Description: strings.ReplaceAll(strings.TrimSpace(name), "_", " "),
	}, nil
}
