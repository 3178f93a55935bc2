package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/output"
	"github.com/rgehrsitz/taxplan/internal/profile"
)

// profileSummary is the JSON shape of the profile command
type profileSummary struct {
	Profile          *profile.UserProfile `json:"profile"`
	TotalIncome      string               `json:"totalAnnualIncome"`
	RegisteredAssets string               `json:"totalRegisteredAssets"`
	RealEstateEquity string               `json:"totalRealEstateEquity"`
	NetWorth         string               `json:"netWorthEstimate"`
	MonthlySpending  string               `json:"monthlySpending"`
	Recommendations  string               `json:"recommendationsImpact,omitempty"`
	Breakdown        domain.TaxBreakdown  `json:"breakdown"`
}

func profileCmd(opts *globalOptions) *cobra.Command {
	var (
		format          string
		recommendations string
	)

	cmd := &cobra.Command{
		Use:   "profile [profile-file]",
		Short: "Summarise a household profile and calculate its tax",
		Long: `Load an onboarding profile (YAML or JSON), check it, and print the
household totals with the tax breakdown the profile's income produces.

Examples:
  taxplan profile profile.yaml
  taxplan profile profile.json --format json
  taxplan profile profile.yaml --recommendations advice.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profile.LoadFromFile(args[0])
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return fmt.Errorf("invalid profile: %w", err)
			}

			engine, err := opts.engine(0)
			if err != nil {
				return err
			}
			bd := engine.CalculateTax(p.ToScenarioInput())

			var recs []profile.Recommendation
			if recommendations != "" {
				data, err := os.ReadFile(recommendations)
				if err != nil {
					return fmt.Errorf("failed to read recommendations: %w", err)
				}
				if err := json.Unmarshal(data, &recs); err != nil {
					return fmt.Errorf("failed to parse recommendations: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				summary := profileSummary{
					Profile:          p,
					TotalIncome:      p.TotalAnnualIncome().StringFixed(2),
					RegisteredAssets: p.TotalRegisteredAssets().StringFixed(2),
					RealEstateEquity: p.TotalRealEstateEquity().StringFixed(2),
					NetWorth:         p.NetWorthEstimate().StringFixed(2),
					MonthlySpending:  p.MonthlyBudget.MonthlySpending().StringFixed(2),
					Breakdown:        bd,
				}
				if recs != nil {
					summary.Recommendations = profile.TotalEstimatedImpact(recs).StringFixed(2)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			case "text", "":
				writeProfileText(out, p, bd, recs)
				return nil
			default:
				return fmt.Errorf("unknown output format: %s (valid: text, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	cmd.Flags().StringVar(&recommendations, "recommendations", "", "JSON file of advice recommendations to total")
	return cmd
}

func writeProfileText(w io.Writer, p *profile.UserProfile, bd domain.TaxBreakdown, recs []profile.Recommendation) {
	fmt.Fprintf(w, "Profile: %s, %d (%s, %s)\n", p.FirstName, p.Age, p.Province, p.FilingStatus)
	fmt.Fprintf(w, "  Total annual income:     %s\n", output.FormatCurrency(p.TotalAnnualIncome()))
	fmt.Fprintf(w, "  Registered assets:       %s\n", output.FormatCurrency(p.TotalRegisteredAssets()))
	fmt.Fprintf(w, "  Real estate equity:      %s\n", output.FormatCurrency(p.TotalRealEstateEquity()))
	fmt.Fprintf(w, "  Net worth estimate:      %s\n", output.FormatCurrency(p.NetWorthEstimate()))
	fmt.Fprintf(w, "  Monthly spending:        %s\n", output.FormatCurrency(p.MonthlyBudget.MonthlySpending()))
	if recs != nil {
		fmt.Fprintf(w, "  Recommendations impact:  %s (%d items)\n", output.FormatCurrency(profile.TotalEstimatedImpact(recs)), len(recs))
	}

	fmt.Fprintf(w, "\nTax (fiscal year %d)\n", bd.FiscalYear)
	fmt.Fprintf(w, "  Taxable income:          %s\n", output.FormatCurrency(bd.TotalTaxableIncome))
	fmt.Fprintf(w, "  Income tax:              %s\n", output.FormatCurrency(bd.IncomeTax()))
	fmt.Fprintf(w, "  Payroll contributions:   %s\n", output.FormatCurrency(bd.PayrollContributions()))
	fmt.Fprintf(w, "  Total tax:               %s\n", output.FormatCurrency(bd.TotalTax))
	fmt.Fprintf(w, "  After-tax income:        %s\n", output.FormatCurrency(bd.AfterTaxIncome))
	fmt.Fprintf(w, "  Marginal rate:           %s\n", output.FormatRate(bd.MarginalCombinedRate))
	fmt.Fprintf(w, "  RRSP room:               %s\n", output.FormatCurrency(bd.RRSPContributionRoom))
}
