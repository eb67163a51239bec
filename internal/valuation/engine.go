// Package valuation implements the FairSight valuation engine: five
// independent calculators (DCF, P/E, P/BV, EV/EBITDA, comparable
// companies) that map a normalized financial snapshot to a per-share
// value estimate, plus the aggregation that reconciles their outputs
// into a single report.
//
// Every calculator is a pure function over immutable snapshots. A method
// that cannot be computed returns an unavailable result with a reason
// code; it never errors. The engine performs no I/O and holds no state
// across runs.
package valuation

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fairsight/fairsight/pkg/models"
)

// ExternalMultiples are externally supplied benchmark multiples. A set
// value bypasses peer averaging for the corresponding method.
type ExternalMultiples struct {
	PE       *float64 `json:"pe,omitempty"`
	PBV      *float64 `json:"pbv,omitempty"`
	EVEBITDA *float64 `json:"ev_ebitda,omitempty"`
}

// Options tune a valuation run.
type Options struct {
	DiscountRate   *float64          `json:"discount_rate,omitempty"`   // DCF override
	TerminalGrowth *float64          `json:"terminal_growth,omitempty"` // DCF override
	Multiples      ExternalMultiples `json:"multiples,omitempty"`
	Parallel       bool              `json:"parallel,omitempty"` // evaluate calculators concurrently
}

// Run values the target against zero or more peers and returns the full
// report. The only error condition is a structurally invalid snapshot;
// per-method incompleteness is captured inside the report.
func Run(target models.FinancialSnapshot, peers []models.FinancialSnapshot, opts Options) (models.ValuationReport, error) {
	if err := target.Validate(); err != nil {
		return models.ValuationReport{}, fmt.Errorf("target: %w", err)
	}
	for i := range peers {
		if err := peers[i].Validate(); err != nil {
			return models.ValuationReport{}, fmt.Errorf("peer %d: %w", i, err)
		}
	}

	// Fixed report order: DCF, P/E, P/BV, EV/EBITDA, Comparables.
	calcs := []func() models.ValuationResult{
		func() models.ValuationResult { return DCF(target, opts) },
		func() models.ValuationResult { return PE(target, peers, opts.Multiples.PE) },
		func() models.ValuationResult { return PBV(target, peers, opts.Multiples.PBV) },
		func() models.ValuationResult { return EVEBITDA(target, peers, opts.Multiples.EVEBITDA) },
		func() models.ValuationResult { return Comparables(target, peers) },
	}

	results := make([]models.ValuationResult, len(calcs))
	if opts.Parallel {
		// The calculators share no mutable state and only read from the
		// snapshots, so fanning them out is safe.
		var g errgroup.Group
		for i, calc := range calcs {
			i, calc := i, calc
			g.Go(func() error {
				results[i] = calc()
				return nil
			})
		}
		_ = g.Wait() // calculators never error
	} else {
		for i, calc := range calcs {
			results[i] = calc()
		}
	}

	return Aggregate(target, results), nil
}
