package valuation

import (
	"math"
	"testing"

	"github.com/fairsight/fairsight/pkg/models"
)

func TestAggregateSummary(t *testing.T) {
	target := models.FinancialSnapshot{Ticker: "ACME", Price: models.Float(90)}
	v1, v2 := 100.0, 150.0
	results := []models.ValuationResult{
		{Method: models.MethodDCF, Value: &v1},
		models.Unavailable(models.MethodPE, models.ReasonNonPositiveEPS),
		{Method: models.MethodPBV, Value: &v2},
		models.Unavailable(models.MethodEVEBITDA, models.ReasonNonPositiveEBITDA),
		models.Unavailable(models.MethodComparables, models.ReasonNoUsablePeers),
	}

	report := Aggregate(target, results)

	if report.Status != models.StatusOK {
		t.Errorf("expected status %q, got %q", models.StatusOK, report.Status)
	}
	if report.Summary == nil {
		t.Fatal("expected summary")
	}
	if report.Summary.Min != 100 || report.Summary.Max != 150 {
		t.Errorf("expected min 100 max 150, got %g/%g", report.Summary.Min, report.Summary.Max)
	}
	if math.Abs(report.Summary.Mean-125) > 1e-9 {
		t.Errorf("expected mean 125, got %g", report.Summary.Mean)
	}
	if report.Summary.Count != 2 {
		t.Errorf("expected count 2, got %d", report.Summary.Count)
	}
	if len(report.Computed) != 2 || report.Computed[0] != models.MethodDCF || report.Computed[1] != models.MethodPBV {
		t.Errorf("unexpected computed set: %v", report.Computed)
	}
	if report.CurrentPrice == nil || *report.CurrentPrice != 90 {
		t.Error("current price should carry over from the snapshot")
	}
}

func TestAggregateAllUnavailable(t *testing.T) {
	var results []models.ValuationResult
	for _, m := range models.AllMethods() {
		results = append(results, models.Unavailable(m, models.ReasonNoUsablePeers))
	}
	report := Aggregate(models.FinancialSnapshot{Ticker: "ACME"}, results)
	if report.Status != models.StatusEmpty {
		t.Errorf("expected status %q, got %q", models.StatusEmpty, report.Status)
	}
	if report.Summary != nil {
		t.Error("summary must be absent, not zeroed")
	}
	if len(report.Results) != 5 {
		t.Errorf("every method must still appear: got %d", len(report.Results))
	}
}

func TestAggregateSingleValue(t *testing.T) {
	v := 42.0
	results := []models.ValuationResult{{Method: models.MethodDCF, Value: &v}}
	report := Aggregate(models.FinancialSnapshot{Ticker: "ACME"}, results)
	s := report.Summary
	if s == nil || s.Min != 42 || s.Max != 42 || s.Mean != 42 || s.Count != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
}
