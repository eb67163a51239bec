// Package models defines the core data structures used throughout FairSight.
package models

import (
	"fmt"
	"time"
)

// FinancialSnapshot is the normalized input for one company (target or peer).
//
// Upstream data coverage is inconsistent, so every numeric field is a
// pointer: nil means "missing", a non-nil zero is a real zero. Calculators
// must never substitute zero for a missing value — the distinction changes
// every downstream ratio.
type FinancialSnapshot struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`

	// Market data
	Price             *float64 `json:"price,omitempty"`              // current share price
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`

	// Income data (trailing)
	NetIncome *float64 `json:"net_income,omitempty"`
	EPS       *float64 `json:"eps,omitempty"`
	EBITDA    *float64 `json:"ebitda,omitempty"`

	// Balance-sheet data
	TotalDebt         *float64 `json:"total_debt,omitempty"`
	Cash              *float64 `json:"cash,omitempty"` // cash & equivalents
	BookEquity        *float64 `json:"book_equity,omitempty"`
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty"`

	// Cash-flow data: projected free cash flows for periods 1..n.
	// nil means no projection; a non-nil empty slice is a structural error.
	FreeCashFlows  []float64 `json:"free_cash_flows,omitempty"`
	TerminalGrowth *float64  `json:"terminal_growth,omitempty"`
	DiscountRate   *float64  `json:"discount_rate,omitempty"` // cost of capital

	FetchTime time.Time `json:"fetch_time,omitempty"`
}

// Float returns a pointer to v, for building snapshots literally.
func Float(v float64) *float64 { return &v }

// Validate rejects structurally invalid snapshots. Missing fields are
// always fine; only malformed input fails: empty ticker, negative values
// where a negative is meaningless, or a cash-flow projection that is
// claimed present but empty.
func (s *FinancialSnapshot) Validate() error {
	if s.Ticker == "" {
		return fmt.Errorf("snapshot: empty ticker")
	}
	nonNegative := map[string]*float64{
		"price":              s.Price,
		"shares outstanding": s.SharesOutstanding,
		"total debt":         s.TotalDebt,
		"cash":               s.Cash,
	}
	for name, v := range nonNegative {
		if v != nil && *v < 0 {
			return fmt.Errorf("snapshot %s: negative %s (%g)", s.Ticker, name, *v)
		}
	}
	if s.FreeCashFlows != nil && len(s.FreeCashFlows) == 0 {
		return fmt.Errorf("snapshot %s: cash-flow projection present but empty", s.Ticker)
	}
	return nil
}

// --- Accessor predicates, so calculators can short-circuit cleanly ---

// HasMarketData reports whether price and share count are both known.
func (s *FinancialSnapshot) HasMarketData() bool {
	return s.Price != nil && s.SharesOutstanding != nil
}

// HasIncomeData reports whether any income-statement figure is known.
func (s *FinancialSnapshot) HasIncomeData() bool {
	return s.NetIncome != nil || s.EPS != nil || s.EBITDA != nil
}

// HasBalanceData reports whether debt and cash are both known.
func (s *FinancialSnapshot) HasBalanceData() bool {
	return s.TotalDebt != nil && s.Cash != nil
}

// HasCashFlowData reports whether a usable DCF input exists: at least one
// projected flow plus both rates.
func (s *FinancialSnapshot) HasCashFlowData() bool {
	return len(s.FreeCashFlows) > 0 && s.TerminalGrowth != nil && s.DiscountRate != nil
}

// --- Derived figures ---

// MarketCap returns price × shares outstanding when both are known.
func (s *FinancialSnapshot) MarketCap() (float64, bool) {
	if !s.HasMarketData() {
		return 0, false
	}
	return *s.Price * *s.SharesOutstanding, true
}

// EarningsPerShare returns trailing EPS, falling back to
// net income / shares outstanding when EPS itself is missing.
func (s *FinancialSnapshot) EarningsPerShare() (float64, bool) {
	if s.EPS != nil {
		return *s.EPS, true
	}
	if s.NetIncome != nil && s.SharesOutstanding != nil && *s.SharesOutstanding > 0 {
		return *s.NetIncome / *s.SharesOutstanding, true
	}
	return 0, false
}

// BookPerShare returns book value per share, falling back to
// book equity / shares outstanding when the direct field is missing.
func (s *FinancialSnapshot) BookPerShare() (float64, bool) {
	if s.BookValuePerShare != nil {
		return *s.BookValuePerShare, true
	}
	if s.BookEquity != nil && s.SharesOutstanding != nil && *s.SharesOutstanding > 0 {
		return *s.BookEquity / *s.SharesOutstanding, true
	}
	return 0, false
}
