package valuation

import (
	"github.com/fairsight/fairsight/pkg/models"
)

// peerAverage computes the mean of ratio(peer) over the peers for which
// the ratio is defined. All three multiple calculators share this one
// filtering pass; the ratio func encapsulates the per-method
// preconditions.
func peerAverage(peers []models.FinancialSnapshot, ratio func(*models.FinancialSnapshot) (float64, bool)) (float64, bool) {
	var sum float64
	n := 0
	for i := range peers {
		if v, ok := ratio(&peers[i]); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// benchmark picks an externally supplied multiple when present, otherwise
// the peer average.
func benchmark(external *float64, peers []models.FinancialSnapshot, ratio func(*models.FinancialSnapshot) (float64, bool)) (float64, bool) {
	if external != nil && *external > 0 {
		return *external, true
	}
	return peerAverage(peers, ratio)
}

// --- Peer ratio extractors ---
// Each returns false for peers whose data cannot form a meaningful
// positive multiple, so they drop out of the average individually.

func peerPE(p *models.FinancialSnapshot) (float64, bool) {
	eps, ok := p.EarningsPerShare()
	if !ok || eps <= 0 || p.Price == nil {
		return 0, false
	}
	pe := *p.Price / eps
	return pe, pe > 0
}

func peerPBV(p *models.FinancialSnapshot) (float64, bool) {
	bvps, ok := p.BookPerShare()
	if !ok || bvps <= 0 || p.Price == nil {
		return 0, false
	}
	pbv := *p.Price / bvps
	return pbv, pbv > 0
}

func peerEVEBITDA(p *models.FinancialSnapshot) (float64, bool) {
	if p.EBITDA == nil || *p.EBITDA <= 0 {
		return 0, false
	}
	mcap, ok := p.MarketCap()
	if !ok || !p.HasBalanceData() {
		// A peer EV needs market cap, debt and cash; a missing component
		// is not a zero.
		return 0, false
	}
	ev := mcap + *p.TotalDebt - *p.Cash
	mult := ev / *p.EBITDA
	return mult, mult > 0
}

// PE values the target as benchmark P/E × trailing EPS. A loss-making
// company has no meaningful earnings multiple, so EPS must be positive.
func PE(target models.FinancialSnapshot, peers []models.FinancialSnapshot, external *float64) models.ValuationResult {
	eps, ok := target.EarningsPerShare()
	if !ok || eps <= 0 {
		return models.Unavailable(models.MethodPE, models.ReasonNonPositiveEPS)
	}
	mult, ok := benchmark(external, peers, peerPE)
	if !ok {
		return models.Unavailable(models.MethodPE, models.ReasonNoBenchmarkMultiple)
	}
	v := mult * eps
	return models.ValuationResult{Method: models.MethodPE, Value: &v}
}

// PBV values the target as benchmark P/BV × book value per share.
func PBV(target models.FinancialSnapshot, peers []models.FinancialSnapshot, external *float64) models.ValuationResult {
	bvps, ok := target.BookPerShare()
	if !ok || bvps <= 0 {
		return models.Unavailable(models.MethodPBV, models.ReasonNonPositiveBookValue)
	}
	mult, ok := benchmark(external, peers, peerPBV)
	if !ok {
		return models.Unavailable(models.MethodPBV, models.ReasonNoBenchmarkMultiple)
	}
	v := mult * bvps
	return models.ValuationResult{Method: models.MethodPBV, Value: &v}
}

// EVEBITDA values the target by applying the benchmark EV/EBITDA multiple
// to its EBITDA, then bridging from the implied enterprise value to
// equity (− debt + cash) and dividing by shares outstanding. As in DCF,
// a missing bridge component is skipped and flagged Approximate.
func EVEBITDA(target models.FinancialSnapshot, peers []models.FinancialSnapshot, external *float64) models.ValuationResult {
	if target.EBITDA == nil || *target.EBITDA <= 0 {
		return models.Unavailable(models.MethodEVEBITDA, models.ReasonNonPositiveEBITDA)
	}
	if target.SharesOutstanding == nil || *target.SharesOutstanding <= 0 {
		return models.Unavailable(models.MethodEVEBITDA, models.ReasonMissingShareCount)
	}
	mult, ok := benchmark(external, peers, peerEVEBITDA)
	if !ok {
		return models.Unavailable(models.MethodEVEBITDA, models.ReasonNoBenchmarkMultiple)
	}

	enterpriseValue := mult * *target.EBITDA
	equityValue := enterpriseValue
	approximate := false
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

	v := equityValue / *target.SharesOutstanding
	return models.ValuationResult{
		Method:      models.MethodEVEBITDA,
		Value:       &v,
		Approximate: approximate,
	}
}
