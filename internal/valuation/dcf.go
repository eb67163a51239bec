package valuation

import (
	"github.com/fairsight/fairsight/pkg/models"
)

// DCF performs a two-stage discounted cash flow valuation: present value
// of the explicit projected free cash flows, plus a Gordon-growth
// terminal value capitalized off the final flow.
//
// Requires a discount rate r in (0,1) and strictly above the terminal
// growth rate g. The equity bridge subtracts debt and adds cash; when
// either component is missing the result falls back toward enterprise
// value and is flagged Approximate rather than discarded.
func DCF(s models.FinancialSnapshot, opts Options) models.ValuationResult {
	if len(s.FreeCashFlows) == 0 {
		return models.Unavailable(models.MethodDCF, models.ReasonMissingCashFlows)
	}

	r := s.DiscountRate
	if opts.DiscountRate != nil {
		r = opts.DiscountRate
	}
	g := s.TerminalGrowth
	if opts.TerminalGrowth != nil {
		g = opts.TerminalGrowth
	}

	if r == nil || *r <= 0 || *r >= 1 {
		return models.Unavailable(models.MethodDCF, models.ReasonInvalidDiscountRate)
	}
	if g == nil {
		return models.Unavailable(models.MethodDCF, models.ReasonMissingGrowthRate)
	}
	if *r <= *g {
		return models.Unavailable(models.MethodDCF, models.ReasonInvalidRateSpread)
	}
	if s.SharesOutstanding == nil || *s.SharesOutstanding <= 0 {
		return models.Unavailable(models.MethodDCF, models.ReasonMissingShareCount)
	}

	// PV of explicit flows; discountFactor ends at 1/(1+r)^n, which also
	// discounts the terminal value.
	var pvFlows float64
	discountFactor := 1.0
	for _, cf := range s.FreeCashFlows {
		discountFactor /= 1 + *r
		pvFlows += cf * discountFactor
	}

	finalFlow := s.FreeCashFlows[len(s.FreeCashFlows)-1]
	terminalValue := finalFlow * (1 + *g) / (*r - *g)

	enterpriseValue := pvFlows + terminalValue*discountFactor

	equityValue := enterpriseValue
	approximate := false
	if s.TotalDebt != nil {
		equityValue -= *s.TotalDebt
	} else {
		approximate = true
	}
	if s.Cash != nil {
		equityValue += *s.Cash
	} else {
		approximate = true
	}

	perShare := equityValue / *s.SharesOutstanding
	return models.ValuationResult{
		Method:      models.MethodDCF,
		Value:       &perShare,
		Approximate: approximate,
	}
}
