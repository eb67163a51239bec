package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fairsight/fairsight/internal/config"
	"github.com/fairsight/fairsight/internal/datasource"
	"github.com/fairsight/fairsight/pkg/models"
)

// fakeSource serves canned snapshots keyed by ticker.
type fakeSource struct {
	snapshots map[string]*models.FinancialSnapshot
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) GetSnapshot(_ context.Context, ticker string) (*models.FinancialSnapshot, error) {
	s, ok := f.snapshots[strings.ToUpper(ticker)]
	if !ok {
		return nil, datasource.ErrTickerNotFound
	}
	return s, nil
}

func testSnapshot(ticker string, price float64) *models.FinancialSnapshot {
	return &models.FinancialSnapshot{
		Ticker:            ticker,
		Name:              ticker + " Inc",
		Price:             models.Float(price),
		SharesOutstanding: models.Float(100),
		EPS:               models.Float(4),
		BookValuePerShare: models.Float(20),
		FreeCashFlows:     []float64{10, 12, 14},
		TerminalGrowth:    models.Float(0.02),
		DiscountRate:      models.Float(0.10),
		TotalDebt:         models.Float(0),
		Cash:              models.Float(0),
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	src := &fakeSource{snapshots: map[string]*models.FinancialSnapshot{
		"ACME": testSnapshot("ACME", 60),
		"PEER": testSnapshot("PEER", 50),
	}}
	return NewServer(cfg, src, datasource.NewNews(""))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("health check should succeed")
	}
}

func TestHandleValue(t *testing.T) {
	srv := testServer(t)

	body, err := json.Marshal(ValueRequest{
		Target: *testSnapshot("ACME", 60),
		Peers:  []models.FinancialSnapshot{*testSnapshot("PEER", 50)},
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/valuations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool                   `json:"success"`
		Data    models.ValuationReport `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if resp.Data.Ticker != "ACME" {
		t.Errorf("report ticker: got %q", resp.Data.Ticker)
	}
	if len(resp.Data.Results) != len(models.AllMethods()) {
		t.Errorf("expected %d results, got %d", len(models.AllMethods()), len(resp.Data.Results))
	}
	if resp.Data.Summary == nil {
		t.Error("full snapshot should produce a summary")
	}
}

func TestHandleValueBadRequest(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing ticker", `{"target":{}}`},
		{"negative price", `{"target":{"ticker":"ACME","price":-5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/valuations", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Success || resp.Error == "" {
				t.Error("error responses must carry an error message")
			}
		})
	}
}

func TestHandleValueTicker(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/valuations/ACME?peers=PEER", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool                   `json:"success"`
		Data    models.ValuationReport `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if resp.Data.Ticker != "ACME" {
		t.Errorf("report ticker: got %q", resp.Data.Ticker)
	}
	if resp.Data.Status != models.StatusOK {
		t.Errorf("report status: got %q", resp.Data.Status)
	}
}

func TestHandleValueTickerNotFound(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/valuations/NOPE", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleValueTickerPeerFailureSurfaces(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/valuations/ACME?peers=NOPE", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
	if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "NOPE") {
		t.Errorf("error should name the failed peer: %q", resp.Error)
	}
}

func TestHandleNewsBadLimit(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/news/ACME?limit=abc", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestSplitPeers(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"A", 1},
		{"A,B,C", 3},
		{"A, B , ,C", 3},
	}
	for _, tt := range tests {
		if got := splitPeers(tt.in); len(got) != tt.want {
			t.Errorf("splitPeers(%q): got %d peers (%v), want %d", tt.in, len(got), got, tt.want)
		}
	}
}

func TestValueRequestJSON(t *testing.T) {
	raw := `{
		"target": {"ticker":"ACME","price":60.5,"free_cash_flows":[10,12,14]},
		"options": {"discount_rate":0.12,"multiples":{"pe":18.5},"parallel":true}
	}`
	var req ValueRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Target.Ticker != "ACME" {
		t.Errorf("ticker: got %q", req.Target.Ticker)
	}
	if req.Options.DiscountRate == nil || *req.Options.DiscountRate != 0.12 {
		t.Errorf("discount rate: got %v", req.Options.DiscountRate)
	}
	if req.Options.Multiples.PE == nil || *req.Options.Multiples.PE != 18.5 {
		t.Errorf("PE multiple: got %v", req.Options.Multiples.PE)
	}
	if !req.Options.Parallel {
		t.Error("parallel flag lost")
	}
}
