package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/taxplan/internal/breakeven"
)

func optimizeCmd(opts *globalOptions) *cobra.Command {
	var (
		goal          string
		target        string
		minAmount     string
		maxAmount     string
		tolerance     string
		maxIterations int
		scenario      string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "optimize [input-file]",
		Short: "Find the RRSP contribution that meets a tax goal",
		Long: `Search the RRSP contribution for one goal, or for every goal at once.

Goals:
  min_tax       smallest contribution that brings income tax to zero, or the full room
  target_tax    smallest contribution that brings total tax to --target or below
  drop_bracket  contribution that lowers taxable income to the floor of its bracket
  all           every goal, with recommendations

Examples:
  taxplan optimize household.yaml
  taxplan optimize household.yaml --goal target_tax --target 35000
  taxplan optimize household.yaml --goal min_tax --max 15000 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, err := opts.loadHousehold(args[0])
			if err != nil {
				return err
			}
			base, ok := cfg.FindScenario(scenario)
			if !ok {
				return fmt.Errorf("scenario %s not found in configuration", scenario)
			}

			var constraints breakeven.Constraints
			if minAmount != "" {
				v, err := parseAmount("min", minAmount)
				if err != nil {
					return err
				}
				constraints.MinContribution = &v
			}
			if maxAmount != "" {
				v, err := parseAmount("max", maxAmount)
				if err != nil {
					return err
				}
				constraints.MaxContribution = &v
			}
			if target != "" {
				v, err := parseAmount("target", target)
				if err != nil {
					return err
				}
				constraints.TargetTax = &v
			}

			options := breakeven.DefaultSolverOptions()
			if tolerance != "" {
				v, err := parseAmount("tolerance", tolerance)
				if err != nil {
					return err
				}
				options.Tolerance = v
			}
			if maxIterations > 0 {
				options.MaxIterations = maxIterations
			}
			solver := breakeven.NewSolver(engine, options)

			out := cmd.OutOrStdout()
			json := strings.EqualFold(format, "json")
			if !json && !strings.EqualFold(format, "table") {
				return fmt.Errorf("unknown output format: %s (valid: table, json)", format)
			}

			if goal == "" || goal == "all" {
				mg, err := solver.OptimizeAllGoals(cmd.Context(), base, constraints)
				if err != nil {
					return err
				}
				if json {
					s, err := (&breakeven.JSONFormatter{Pretty: true}).FormatMultiGoal(mg)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, s)
					return nil
				}
				fmt.Fprint(out, (&breakeven.TableFormatter{}).FormatMultiGoal(mg))
				return nil
			}

			result, err := solver.Optimize(cmd.Context(), breakeven.OptimizationRequest{
				Base:        base,
				Goal:        breakeven.OptimizationGoal(goal),
				Constraints: constraints,
			})
			if err != nil {
				return err
			}
			if json {
				s, err := (&breakeven.JSONFormatter{Pretty: true}).Format(result)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			fmt.Fprint(out, (&breakeven.TableFormatter{}).Format(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&goal, "goal", "all", "Goal (min_tax, target_tax, drop_bracket, all)")
	cmd.Flags().StringVar(&target, "target", "", "Total tax to reach (target_tax)")
	cmd.Flags().StringVar(&minAmount, "min", "", "Smallest contribution to consider")
	cmd.Flags().StringVar(&maxAmount, "max", "", "Largest contribution to consider (default: the contribution room)")
	cmd.Flags().StringVar(&tolerance, "tolerance", "", "Stop the search once the bounds are this close (default 1)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Iteration cap for the search (default 50)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "Scenario to optimize (default: the household baseline)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	return cmd
}
