package profile

import (
	"github.com/shopspring/decimal"
)

// Recommendation is one piece of advice produced by the external advice
// service. Only the fields the tax tooling reads are modelled.
type Recommendation struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	Category            string           `json:"category"`
	Priority            int              `json:"priority"`
	EstimatedImpact     *decimal.Decimal `json:"estimatedImpact,omitempty"`
	ConfidenceScore     int              `json:"confidenceScore"`
	RequiresHumanReview bool             `json:"requiresHumanReview"`
}

// TotalEstimatedImpact sums the yearly impact of recommendations, skipping
// those without an estimate
func TotalEstimatedImpact(recs []Recommendation) decimal.Decimal {
	var total decimal.Decimal
	for _, r := range recs {
		if r.EstimatedImpact != nil {
			total = total.Add(*r.EstimatedImpact)
		}
	}
	return total
}
