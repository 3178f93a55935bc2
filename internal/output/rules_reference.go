package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/taxplan/internal/domain"
)

// RulesReference renders a rule set as markdown. The output only depends on
// the rule set, so it can be handed to an advice service as fixed context.
func RulesReference(rules *domain.RuleSet) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Tax rules %d\n\n", rules.Metadata.FiscalYear)
	if rules.Metadata.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", rules.Metadata.Description)
	}
	if rules.Metadata.ValidUntil != "" {
		fmt.Fprintf(&sb, "Valid until %s.\n\n", rules.Metadata.ValidUntil)
	}

	fed := rules.Federal
	sb.WriteString("## Federal\n\n")
	writeBracketTable(&sb, fed.Brackets)
	fmt.Fprintf(&sb, "\n- Basic personal amount: %s (credit rate %s)\n", FormatCurrency(fed.BasicPersonalAmount), FormatRate(fed.CreditRate))
	fmt.Fprintf(&sb, "- RRSP room: %s of earned income, at most %s\n", FormatRate(fed.RRSP.LimitRate), FormatCurrency(fed.RRSP.MaxContribution))
	fmt.Fprintf(&sb, "- TFSA room: %s\n", FormatCurrency(fed.TFSARoom))
	fmt.Fprintf(&sb, "- FHSA: %s per year, %s lifetime\n", FormatCurrency(fed.FHSA.AnnualLimit), FormatCurrency(fed.FHSA.LifetimeLimit))
	fmt.Fprintf(&sb, "- EI: %s of insurable earnings up to %s, at most %s\n",
		FormatRate(fed.EI.PremiumRate), FormatCurrency(fed.EI.MaxInsurableEarnings), FormatCurrency(fed.EI.MaxPremium))

	codes := make([]string, 0, len(rules.Jurisdictions))
	for j := range rules.Jurisdictions {
		codes = append(codes, string(j))
	}
	sort.Strings(codes)

	for _, code := range codes {
		jr := rules.Jurisdictions[domain.Jurisdiction(code)]
		name := jr.Name
		if name == "" {
			name = code
		}
		fmt.Fprintf(&sb, "\n## %s (%s)\n\n", name, code)
		writeBracketTable(&sb, jr.Brackets)
		fmt.Fprintf(&sb, "\n- Basic personal amount: %s (credit rate %s)\n", FormatCurrency(jr.BasicPersonalAmount), FormatRate(jr.CreditRate))
		if jr.Abatement != nil {
			fmt.Fprintf(&sb, "- Federal abatement: %s of federal tax after credits\n", FormatRate(jr.Abatement.Rate))
		}
		if pp := jr.PensionPlan; pp != nil {
			fmt.Fprintf(&sb, "- Pension plan: %s of employment income between %s and %s, at most %s\n",
				FormatRate(pp.ContributionRate), FormatCurrency(pp.BasicExemption),
				FormatCurrency(pp.MaxPensionableEarnings), FormatCurrency(pp.MaxContribution))
		}
	}

	return sb.String()
}

func writeBracketTable(sb *strings.Builder, brackets []domain.TaxBracket) {
	sb.WriteString("| From | To | Rate |\n")
	sb.WriteString("|---:|---:|---:|\n")
	for _, b := range brackets {
		to := "and up"
		if !b.Unbounded() {
			to = FormatCurrency(*b.Max)
		}
		fmt.Fprintf(sb, "| %s | %s | %s |\n", FormatCurrency(b.Min), to, FormatRate(b.Rate))
	}
}
