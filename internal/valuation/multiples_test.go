package valuation

import (
	"math"
	"testing"

	"github.com/fairsight/fairsight/pkg/models"
)

// peerWithPE builds a peer whose trailing P/E is exactly pe.
func peerWithPE(ticker string, pe float64) models.FinancialSnapshot {
	return models.FinancialSnapshot{
		Ticker: ticker,
		Price:  models.Float(pe * 4),
		EPS:    models.Float(4),
	}
}

func TestPEWithPeerBenchmark(t *testing.T) {
	// Target EPS 5, peer P/Es {20, 25, 30} → avg 25 → per-share 125.
	target := models.FinancialSnapshot{Ticker: "ACME", EPS: models.Float(5)}
	peers := []models.FinancialSnapshot{
		peerWithPE("P1", 20),
		peerWithPE("P2", 25),
		peerWithPE("P3", 30),
	}
	res := PE(target, peers, nil)
	if !res.Available() {
		t.Fatalf("expected available result, got reason %q", res.Reason)
	}
	if math.Abs(*res.Value-125) > 1e-9 {
		t.Errorf("expected 125, got %.6f", *res.Value)
	}
}

func TestPEExcludesLossMakingPeers(t *testing.T) {
	target := models.FinancialSnapshot{Ticker: "ACME", EPS: models.Float(5)}
	peers := []models.FinancialSnapshot{
		peerWithPE("P1", 20),
		{Ticker: "P2", Price: models.Float(80), EPS: models.Float(-3)}, // excluded
		{Ticker: "P3", Price: models.Float(80)},                       // no EPS, excluded
	}
	res := PE(target, peers, nil)
	if !res.Available() {
		t.Fatalf("expected available result, got reason %q", res.Reason)
	}
	if math.Abs(*res.Value-100) > 1e-9 {
		t.Errorf("only P1 should count: expected 100, got %.6f", *res.Value)
	}
}

func TestPENonPositiveEPS(t *testing.T) {
	peers := []models.FinancialSnapshot{peerWithPE("P1", 20)}
	for _, eps := range []*float64{nil, models.Float(0), models.Float(-2)} {
		target := models.FinancialSnapshot{Ticker: "ACME", EPS: eps}
		res := PE(target, peers, nil)
		if res.Reason != models.ReasonNonPositiveEPS {
			t.Errorf("eps=%v: expected reason %q, got %q", eps, models.ReasonNonPositiveEPS, res.Reason)
		}
	}
}

func TestPEEPSFallbackFromNetIncome(t *testing.T) {
	target := models.FinancialSnapshot{
		Ticker:            "ACME",
		NetIncome:         models.Float(500),
		SharesOutstanding: models.Float(100),
	}
	res := PE(target, nil, models.Float(25))
	if !res.Available() {
		t.Fatalf("expected available result, got reason %q", res.Reason)
	}
	if math.Abs(*res.Value-125) > 1e-9 {
		t.Errorf("EPS should derive as 5: expected 125, got %.6f", *res.Value)
	}
}

func TestPENoBenchmark(t *testing.T) {
	target := models.FinancialSnapshot{Ticker: "ACME", EPS: models.Float(5)}
	res := PE(target, nil, nil)
	if res.Reason != models.ReasonNoBenchmarkMultiple {
		t.Errorf("expected reason %q, got %q", models.ReasonNoBenchmarkMultiple, res.Reason)
	}
}

func TestPBV(t *testing.T) {
	target := models.FinancialSnapshot{
		Ticker:            "ACME",
		BookEquity:        models.Float(400),
		SharesOutstanding: models.Float(100),
	}
	peers := []models.FinancialSnapshot{
		{Ticker: "P1", Price: models.Float(30), BookValuePerShare: models.Float(10)}, // P/BV 3
		{Ticker: "P2", Price: models.Float(10), BookValuePerShare: models.Float(10)}, // P/BV 1
		{Ticker: "P3", Price: models.Float(10), BookValuePerShare: models.Float(-5)}, // excluded
	}
	res := PBV(target, peers, nil)
	if !res.Available() {
		t.Fatalf("expected available result, got reason %q", res.Reason)
	}
	// bvps 4 × avg multiple 2 = 8
	if math.Abs(*res.Value-8) > 1e-9 {
		t.Errorf("expected 8, got %.6f", *res.Value)
	}
}

func TestPBVNonPositiveBookValue(t *testing.T) {
	target := models.FinancialSnapshot{Ticker: "ACME", BookValuePerShare: models.Float(-1)}
	res := PBV(target, nil, models.Float(2))
	if res.Reason != models.ReasonNonPositiveBookValue {
		t.Errorf("expected reason %q, got %q", models.ReasonNonPositiveBookValue, res.Reason)
	}
}

func TestEVEBITDAReferenceScenario(t *testing.T) {
	// Target EBITDA 100, debt 50, cash 20, shares 10, benchmark 8:
	// EV 800 → equity 770 → per-share 77.
	target := models.FinancialSnapshot{
		Ticker:            "ACME",
		EBITDA:            models.Float(100),
		TotalDebt:         models.Float(50),
		Cash:              models.Float(20),
		SharesOutstanding: models.Float(10),
	}
	res := EVEBITDA(target, nil, models.Float(8))
	if !res.Available() {
		t.Fatalf("expected available result, got reason %q", res.Reason)
	}
	if math.Abs(*res.Value-77) > 1e-9 {
		t.Errorf("expected 77, got %.6f", *res.Value)
	}
	if res.Approximate {
		t.Error("full bridge should not be approximate")
	}
}

func TestEVEBITDAPeerBenchmark(t *testing.T) {
	target := models.FinancialSnapshot{
		Ticker:            "ACME",
		EBITDA:            models.Float(100),
		TotalDebt:         models.Float(50),
		Cash:              models.Float(20),
		SharesOutstanding: models.Float(10),
	}
	peers := []models.FinancialSnapshot{
		{
			// mcap 800, EV (800+100−100)/100 = 8
			Ticker:            "P1",
			Price:             models.Float(8),
			SharesOutstanding: models.Float(100),
			TotalDebt:         models.Float(100),
			Cash:              models.Float(100),
			EBITDA:            models.Float(100),
		},
		{
			// EBITDA missing: excluded
			Ticker:            "P2",
			Price:             models.Float(8),
			SharesOutstanding: models.Float(100),
			TotalDebt:         models.Float(0),
			Cash:              models.Float(0),
		},
		{
			// debt/cash missing: EV cannot be formed, excluded
			Ticker:            "P3",
			Price:             models.Float(8),
			SharesOutstanding: models.Float(100),
			EBITDA:            models.Float(100),
		},
	}
	res := EVEBITDA(target, peers, nil)
	if !res.Available() {
		t.Fatalf("expected available result, got reason %q", res.Reason)
	}
	if math.Abs(*res.Value-77) > 1e-9 {
		t.Errorf("expected 77, got %.6f", *res.Value)
	}
}

func TestEVEBITDAPreconditions(t *testing.T) {
	res := EVEBITDA(models.FinancialSnapshot{Ticker: "ACME"}, nil, models.Float(8))
	if res.Reason != models.ReasonNonPositiveEBITDA {
		t.Errorf("expected reason %q, got %q", models.ReasonNonPositiveEBITDA, res.Reason)
	}

	target := models.FinancialSnapshot{Ticker: "ACME", EBITDA: models.Float(-10)}
	if res := EVEBITDA(target, nil, models.Float(8)); res.Reason != models.ReasonNonPositiveEBITDA {
		t.Errorf("expected reason %q, got %q", models.ReasonNonPositiveEBITDA, res.Reason)
	}

	target = models.FinancialSnapshot{Ticker: "ACME", EBITDA: models.Float(100)}
	if res := EVEBITDA(target, nil, models.Float(8)); res.Reason != models.ReasonMissingShareCount {
		t.Errorf("expected reason %q, got %q", models.ReasonMissingShareCount, res.Reason)
	}
}

func TestExternalMultipleBypassesPeers(t *testing.T) {
	target := models.FinancialSnapshot{Ticker: "ACME", EPS: models.Float(5)}
	peers := []models.FinancialSnapshot{peerWithPE("P1", 100)} // would give 500
	res := PE(target, peers, models.Float(10))
	if math.Abs(*res.Value-50) > 1e-9 {
		t.Errorf("external multiple should win: expected 50, got %.6f", *res.Value)
	}
}
