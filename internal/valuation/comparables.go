package valuation

import (
	"github.com/fairsight/fairsight/pkg/models"
)

// Comparables runs the market-multiples analysis: each peer-average
// multiple (P/E, P/BV, EV/EBITDA) is applied to the target and the
// resulting per-share estimates are averaged. A sub-multiple whose
// preconditions fail — for the peers or for the target — drops out
// individually rather than failing the whole method. External multiples
// are deliberately not consulted here: this method exists to summarize
// what the supplied peer set implies.
func Comparables(target models.FinancialSnapshot, peers []models.FinancialSnapshot) models.ValuationResult {
	if len(peers) == 0 {
		return models.Unavailable(models.MethodComparables, models.ReasonNoUsablePeers)
	}

	var estimates []float64
	approximate := false

	if mult, ok := peerAverage(peers, peerPE); ok {
		if eps, ok := target.EarningsPerShare(); ok && eps > 0 {
			estimates = append(estimates, mult*eps)
		}
	}

	if mult, ok := peerAverage(peers, peerPBV); ok {
		if bvps, ok := target.BookPerShare(); ok && bvps > 0 {
			estimates = append(estimates, mult*bvps)
		}
	}

	if mult, ok := peerAverage(peers, peerEVEBITDA); ok {
		if target.EBITDA != nil && *target.EBITDA > 0 &&
			target.SharesOutstanding != nil && *target.SharesOutstanding > 0 {
			equityValue := mult * *target.EBITDA
			if target.TotalDebt != nil {
				equityValue -= *target.TotalDebt
			} else {
				approximate = true
			}
			if target.Cash != nil {
				equityValue += *target.Cash
			} else {
				approximate = true
			}
			estimates = append(estimates, equityValue / *target.SharesOutstanding)
		}
	}

	if len(estimates) == 0 {
		return models.Unavailable(models.MethodComparables, models.ReasonNoUsablePeers)
	}

	var sum float64
	for _, e := range estimates {
		sum += e
	}
	v := sum / float64(len(estimates))
	return models.ValuationResult{
		Method:      models.MethodComparables,
		Value:       &v,
		Approximate: approximate,
	}
}
