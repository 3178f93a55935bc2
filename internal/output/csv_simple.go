package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/taxplan/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per scenario).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(results *domain.ScenarioResults) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Province", "TaxableIncome", "TotalTax", "AfterTaxIncome", "EffectiveRate", "MarginalRate"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range results.Results {
		bd := r.Breakdown
		row := []string{
			r.Label,
			string(bd.Jurisdiction),
			bd.TotalTaxableIncome.StringFixed(2),
			bd.TotalTax.StringFixed(2),
			bd.AfterTaxIncome.StringFixed(2),
			bd.EffectiveTaxRate.StringFixed(2),
			bd.MarginalCombinedRate.StringFixed(4),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// CSVDetailedFormatter writes every breakdown field, one row per scenario
type CSVDetailedFormatter struct{}

func (c CSVDetailedFormatter) Name() string { return "detailed-csv" }

func (c CSVDetailedFormatter) Format(results *domain.ScenarioResults) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Scenario", "ID", "FiscalYear", "Province",
		"EmploymentIncome", "FreelanceIncome", "RentalIncome", "TotalGrossIncome",
		"RRSPDeduction", "FreelanceExpenses", "RentalExpenses", "TotalDeductions", "TaxableIncome",
		"FederalTaxBeforeCredits", "FederalTax", "ProvincialTaxBeforeCredits", "ProvincialAbatement", "ProvincialTax",
		"PensionPlan", "EIPremium", "TotalTax", "AfterTaxIncome",
		"EffectiveRate", "MarginalFederal", "MarginalProvincial", "MarginalCombined",
		"RRSPRoom", "RRSPSavingsIfMaxed", "TFSARoom",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range results.Results {
		bd := r.Breakdown
		row := []string{
			r.Label, r.ID, strconv.Itoa(bd.FiscalYear), string(bd.Jurisdiction),
			bd.EmploymentIncome.StringFixed(2), bd.FreelanceIncome.StringFixed(2), bd.RentalIncome.StringFixed(2), bd.TotalGrossIncome.StringFixed(2),
			bd.RRSPDeduction.StringFixed(2), bd.FreelanceExpenses.StringFixed(2), bd.RentalExpenses.StringFixed(2), bd.TotalDeductions.StringFixed(2), bd.TotalTaxableIncome.StringFixed(2),
			bd.FederalTaxBeforeCredits.StringFixed(2), bd.FederalTax.StringFixed(2), bd.ProvincialTaxBeforeCredits.StringFixed(2), bd.ProvincialAbatement.StringFixed(2), bd.ProvincialTax.StringFixed(2),
			bd.PensionPlanContribution.StringFixed(2), bd.EIPremium.StringFixed(2), bd.TotalTax.StringFixed(2), bd.AfterTaxIncome.StringFixed(2),
			bd.EffectiveTaxRate.StringFixed(2), bd.MarginalFederalRate.String(), bd.MarginalProvincialRate.String(), bd.MarginalCombinedRate.String(),
			bd.RRSPContributionRoom.StringFixed(2), bd.RRSPTaxSavingsIfMaxed.StringFixed(2), bd.TFSARoom.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
