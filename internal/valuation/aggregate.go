package valuation

import (
	"github.com/fairsight/fairsight/pkg/models"
)

// Aggregate combines the per-method results into the final report. Every
// method appears exactly once, with a value or a reason; the summary
// statistics cover only the available values and are omitted entirely —
// not zeroed — when no method could be computed.
func Aggregate(target models.FinancialSnapshot, results []models.ValuationResult) models.ValuationReport {
	report := models.ValuationReport{
		Ticker:  target.Ticker,
		Name:    target.Name,
		Results: results,
		Status:  models.StatusEmpty,
	}
	if target.Price != nil {
		price := *target.Price
		report.CurrentPrice = &price
	}

	var sum float64
	for _, res := range results {
		if !res.Available() {
			continue
		}
		v := *res.Value
		if report.Summary == nil {
			report.Summary = &models.Summary{Min: v, Max: v}
		} else {
			if v < report.Summary.Min {
				report.Summary.Min = v
			}
			if v > report.Summary.Max {
				report.Summary.Max = v
			}
		}
		sum += v
		report.Summary.Count++
		report.Computed = append(report.Computed, res.Method)
	}

	if report.Summary != nil {
		report.Summary.Mean = sum / float64(report.Summary.Count)
		report.Status = models.StatusOK
	}
	return report
}
