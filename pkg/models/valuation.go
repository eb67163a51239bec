package models

// Method identifies one valuation approach.
type Method string

const (
	MethodDCF         Method = "dcf"
	MethodPE          Method = "pe"
	MethodPBV         Method = "pbv"
	MethodEVEBITDA    Method = "ev_ebitda"
	MethodComparables Method = "comparables"
)

// AllMethods returns every method in report order.
func AllMethods() []Method {
	return []Method{MethodDCF, MethodPE, MethodPBV, MethodEVEBITDA, MethodComparables}
}

// DisplayName returns the human-readable method name.
func (m Method) DisplayName() string {
	switch m {
	case MethodDCF:
		return "DCF"
	case MethodPE:
		return "P/E"
	case MethodPBV:
		return "P/BV"
	case MethodEVEBITDA:
		return "EV/EBITDA"
	case MethodComparables:
		return "Comparables"
	}
	return string(m)
}

// Reason explains why a method produced no value. An unavailable result
// is a normal domain outcome, not an error: it is recorded here and shown
// to the user, never raised as a failure of the run.
type Reason string

const (
	ReasonMissingCashFlows     Reason = "missing cash flow projection"
	ReasonInvalidDiscountRate  Reason = "missing or out-of-range discount rate"
	ReasonMissingGrowthRate    Reason = "missing terminal growth rate"
	ReasonInvalidRateSpread    Reason = "discount rate not above terminal growth"
	ReasonMissingShareCount    Reason = "missing or zero share count"
	ReasonNonPositiveEPS       Reason = "non-positive or missing EPS"
	ReasonNonPositiveBookValue Reason = "non-positive or missing book value"
	ReasonNonPositiveEBITDA    Reason = "non-positive or missing EBITDA"
	ReasonNoBenchmarkMultiple  Reason = "no benchmark multiple"
	ReasonNoUsablePeers        Reason = "no usable peer data"
)

// ValuationResult is the outcome of one method for one run. Value is the
// intrinsic per-share estimate, or nil with Reason set when the method
// could not be computed.
type ValuationResult struct {
	Method      Method   `json:"method"`
	Value       *float64 `json:"value,omitempty"`
	Reason      Reason   `json:"reason,omitempty"`
	Approximate bool     `json:"approximate,omitempty"` // equity bridge skipped a missing component
}

// Available reports whether the method produced a value.
func (r ValuationResult) Available() bool { return r.Value != nil }

// Unavailable builds an unavailable result for the given method.
func Unavailable(m Method, reason Reason) ValuationResult {
	return ValuationResult{Method: m, Reason: reason}
}

// Summary holds order statistics over the available per-share values.
type Summary struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// ReportStatus is the top-level outcome of a valuation run.
type ReportStatus string

const (
	// StatusOK means at least one method produced a value.
	StatusOK ReportStatus = "ok"
	// StatusEmpty means every method was unavailable.
	StatusEmpty ReportStatus = "empty"
)

// ValuationReport is the aggregate output of one valuation run. It always
// contains exactly one result per method, in AllMethods order, whether or
// not the method could be computed. Reports carry no timestamps or other
// run-local state: two runs over identical snapshots produce identical
// reports.
type ValuationReport struct {
	Ticker       string            `json:"ticker"`
	Name         string            `json:"name,omitempty"`
	CurrentPrice *float64          `json:"current_price,omitempty"`
	Results      []ValuationResult `json:"results"`
	Summary      *Summary          `json:"summary,omitempty"` // nil when no method available
	Computed     []Method          `json:"computed,omitempty"`
	Status       ReportStatus      `json:"status"`
}

// Result returns the entry for the given method, if present.
func (r *ValuationReport) Result(m Method) (ValuationResult, bool) {
	for _, res := range r.Results {
		if res.Method == m {
			return res, true
		}
	}
	return ValuationResult{}, false
}
