package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/fairsight/fairsight/pkg/models"
)

const yfQuoteSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=price,defaultKeyStatistics,financialData,incomeStatementHistory"

// Projection controls how the latest reported free cash flow is turned
// into the forward flows a DCF needs.
type Projection struct {
	GrowthRate     float64 // annual FCF growth applied to each projected year
	Years          int
	DiscountRate   float64
	TerminalGrowth float64
}

// YFinance implements the DataSource interface using the Yahoo Finance
// quoteSummary API.
type YFinance struct {
	cache   *Cache
	limiter *RateLimiter
	proj    Projection
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(proj Projection) *YFinance {
	return NewYFinanceWithPolicy(proj, 5*time.Minute, 5)
}

// NewYFinanceWithPolicy creates a Yahoo Finance data source with explicit
// cache TTL and requests-per-second settings.
func NewYFinanceWithPolicy(proj Projection, cacheTTL time.Duration, ratePerSec int) *YFinance {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	return &YFinance{
		cache:   NewCache(cacheTTL),
		limiter: NewRateLimiter(ratePerSec, time.Second),
		proj:    proj,
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance quoteSummary API types ---
// Yahoo omits fields it has no data for, so every numeric leaf is a
// pointer: absence survives into the snapshot.

type yfNum struct {
	Raw float64 `json:"raw"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

type yfQuoteSummaryResult struct {
	Price *struct {
		Symbol             string `json:"symbol"`
		LongName           string `json:"longName"`
		ShortName          string `json:"shortName"`
		RegularMarketPrice *yfNum `json:"regularMarketPrice"`
		MarketCap          *yfNum `json:"marketCap"`
	} `json:"price"`
	DefaultKeyStatistics *struct {
		SharesOutstanding *yfNum `json:"sharesOutstanding"`
		TrailingEps       *yfNum `json:"trailingEps"`
		BookValue         *yfNum `json:"bookValue"` // per share
	} `json:"defaultKeyStatistics"`
	FinancialData *struct {
		TotalDebt    *yfNum `json:"totalDebt"`
		TotalCash    *yfNum `json:"totalCash"`
		Ebitda       *yfNum `json:"ebitda"`
		FreeCashflow *yfNum `json:"freeCashflow"`
	} `json:"financialData"`
	IncomeStatementHistory *struct {
		Statements []struct {
			NetIncome *yfNum `json:"netIncome"`
		} `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
}

// GetSnapshot assembles a snapshot from the quoteSummary modules.
func (y *YFinance) GetSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	cacheKey := "yf:snap:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.FinancialSnapshot), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := doGet(ctx, fmt.Sprintf(yfQuoteSummaryURL, url.PathEscape(symbol)), nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp yfQuoteSummaryResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode quoteSummary for %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo finance: %s: %s", resp.QuoteSummary.Error.Code, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, ErrTickerNotFound
	}

	snap := snapshotFromSummary(symbol, &resp.QuoteSummary.Result[0], y.proj)
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("yahoo finance returned malformed data: %w", err)
	}

	y.cache.Set(cacheKey, snap)
	return snap, nil
}

// snapshotFromSummary maps a quoteSummary result onto a snapshot. Missing
// upstream fields stay nil.
func snapshotFromSummary(ticker string, r *yfQuoteSummaryResult, proj Projection) *models.FinancialSnapshot {
	opt := func(n *yfNum) *float64 {
		if n == nil {
			return nil
		}
		return models.Float(n.Raw)
	}

	snap := &models.FinancialSnapshot{
		Ticker:    ticker,
		FetchTime: time.Now(),
	}

	if p := r.Price; p != nil {
		if p.LongName != "" {
			snap.Name = p.LongName
		} else {
			snap.Name = p.ShortName
		}
		snap.Price = opt(p.RegularMarketPrice)
	}
	if ks := r.DefaultKeyStatistics; ks != nil {
		snap.SharesOutstanding = opt(ks.SharesOutstanding)
		snap.EPS = opt(ks.TrailingEps)
		snap.BookValuePerShare = opt(ks.BookValue)
	}
	if fd := r.FinancialData; fd != nil {
		snap.TotalDebt = opt(fd.TotalDebt)
		snap.Cash = opt(fd.TotalCash)
		snap.EBITDA = opt(fd.Ebitda)
		snap.FreeCashFlows = projectFlows(opt(fd.FreeCashflow), proj)
	}
	if ih := r.IncomeStatementHistory; ih != nil && len(ih.Statements) > 0 {
		snap.NetIncome = opt(ih.Statements[0].NetIncome)
	}

	if len(snap.FreeCashFlows) > 0 {
		snap.DiscountRate = models.Float(proj.DiscountRate)
		snap.TerminalGrowth = models.Float(proj.TerminalGrowth)
	}
	return snap
}

// projectFlows grows the latest reported free cash flow forward. A
// missing or non-positive base flow yields no projection at all — the
// DCF then reports itself unavailable instead of valuing garbage.
func projectFlows(latest *float64, proj Projection) []float64 {
	if latest == nil || *latest <= 0 || proj.Years <= 0 {
		return nil
	}
	flows := make([]float64, proj.Years)
	for i := range flows {
		flows[i] = *latest * math.Pow(1+proj.GrowthRate, float64(i+1))
	}
	return flows
}
