package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fairsight/fairsight/pkg/models"
)

const stockAnalysisURL = "https://stockanalysis.com/stocks/%s/statistics/"

// StockAnalysis implements the DataSource interface by scraping the
// statistics page of stockanalysis.com. It serves as a fallback when the
// Yahoo API is unavailable; coverage is thinner, which is fine — missing
// fields simply stay missing.
type StockAnalysis struct {
	cache   *Cache
	limiter *RateLimiter
	proj    Projection
}

// NewStockAnalysis creates a new StockAnalysis data source.
func NewStockAnalysis(proj Projection) *StockAnalysis {
	return &StockAnalysis{
		cache:   NewCache(30 * time.Minute),
		limiter: NewRateLimiter(1, time.Second), // conservative: 1 req/s
		proj:    proj,
	}
}

// Name returns the data source name.
func (s *StockAnalysis) Name() string { return "StockAnalysis" }

// GetSnapshot scrapes the statistics tables for the given ticker.
func (s *StockAnalysis) GetSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	symbol := strings.ToLower(strings.TrimSpace(ticker))
	cacheKey := "sa:snap:" + symbol
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.FinancialSnapshot), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := doGet(ctx, fmt.Sprintf(stockAnalysisURL, symbol), nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse statistics HTML: %w", err)
	}

	snap := snapshotFromStatistics(strings.ToUpper(strings.TrimSpace(ticker)), doc, s.proj)
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("stockanalysis returned malformed data: %w", err)
	}

	s.cache.Set(cacheKey, snap)
	return snap, nil
}

// snapshotFromStatistics maps the label/value statistic tables onto a
// snapshot. Labels not present on the page leave their fields nil.
func snapshotFromStatistics(ticker string, doc *goquery.Document, proj Projection) *models.FinancialSnapshot {
	stats := make(map[string]float64)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		if label == "" {
			return
		}
		if v, ok := parseMetric(cells.Eq(1).Text()); ok {
			stats[label] = v
		}
	})

	lookup := func(labels ...string) *float64 {
		for _, l := range labels {
			if v, ok := stats[l]; ok {
				return models.Float(v)
			}
		}
		return nil
	}

	snap := &models.FinancialSnapshot{
		Ticker:            ticker,
		FetchTime:         time.Now(),
		Price:             lookup("Current Stock Price", "Stock Price"),
		SharesOutstanding: lookup("Shares Outstanding"),
		NetIncome:         lookup("Net Income", "Net Income (ttm)"),
		EPS:               lookup("EPS (ttm)", "EPS"),
		EBITDA:            lookup("EBITDA"),
		TotalDebt:         lookup("Total Debt"),
		Cash:              lookup("Cash & Cash Equivalents", "Total Cash", "Cash & Equivalents"),
		BookValuePerShare: lookup("Book Value Per Share"),
	}

	snap.FreeCashFlows = projectFlows(lookup("Free Cash Flow"), proj)
	if len(snap.FreeCashFlows) > 0 {
		snap.DiscountRate = models.Float(proj.DiscountRate)
		snap.TerminalGrowth = models.Float(proj.TerminalGrowth)
	}
	return snap
}

// parseMetric parses display values like "1,234.5", "18.5B", "40.2M" or
// "5.10%". Returns false for placeholders ("n/a", "-", "") so absent
// metrics never become zeros.
func parseMetric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return 0, false
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		mult = 1e12
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		mult = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		mult = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult = 1e3
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "%"):
		mult = 0.01
		s = strings.TrimSuffix(s, "%")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}
