// FairSight — multi-method fair value estimation for public equities.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairsight/fairsight/api"
	"github.com/fairsight/fairsight/internal/config"
	"github.com/fairsight/fairsight/internal/datasource"
	"github.com/fairsight/fairsight/internal/render"
	"github.com/fairsight/fairsight/internal/valuation"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fairsight",
	Short: "FairSight — multi-method fair value estimation for stocks",
	Long: `FairSight estimates the fair value of a public company by running
five independent valuation methods (DCF, P/E, P/BV, EV/EBITDA and
comparable companies) over public financial data and reconciling
their outputs into a single report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("FairSight %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Value Command ---

var valueCmd = &cobra.Command{
	Use:   "value [ticker]",
	Short: "Estimate the fair value of a stock",
	Long: `Fetch financial data for a ticker, run all valuation methods and
print the resulting report.

Examples:
  fairsight value AAPL
  fairsight value AAPL --peers MSFT,GOOG
  fairsight value AAPL --format markdown --news`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := strings.ToUpper(strings.TrimSpace(args[0]))

		peersFlag, _ := cmd.Flags().GetString("peers")
		formatFlag, _ := cmd.Flags().GetString("format")
		withNews, _ := cmd.Flags().GetBool("news")
		sourceFlag, _ := cmd.Flags().GetString("source")

		format, err := render.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		src, err := buildSource(sourceFlag)
		if err != nil {
			return err
		}

		var peerTickers []string
		for _, p := range strings.Split(peersFlag, ",") {
			if p = strings.TrimSpace(p); p != "" {
				peerTickers = append(peerTickers, strings.ToUpper(p))
			}
		}

		ctx := cmd.Context()
		target, peers, err := datasource.FetchSet(ctx, src, ticker, peerTickers)
		if err != nil {
			return err
		}

		report, err := valuation.Run(target, peers, cfg.Valuation.EngineOptions())
		if err != nil {
			return err
		}

		if err := render.Render(os.Stdout, report, format); err != nil {
			return err
		}

		if withNews {
			news := datasource.NewNews(cfg.Datasource.NewsFeedURL)
			articles, err := news.GetHeadlines(ctx, ticker, cfg.Datasource.NewsLimit)
			if err != nil {
				// Headlines are garnish; a dead feed should not fail the run.
				fmt.Fprintf(os.Stderr, "warning: could not fetch headlines: %v\n", err)
				return nil
			}
			return render.RenderHeadlines(os.Stdout, articles, format)
		}
		return nil
	},
}

func init() {
	valueCmd.Flags().String("peers", "", "comma-separated peer tickers for multiple-based methods")
	valueCmd.Flags().String("format", "text", "output format: text, markdown or json")
	valueCmd.Flags().Bool("news", false, "append recent headlines to the report")
	valueCmd.Flags().String("source", "yahoo", "data source: yahoo or stockanalysis")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceFlag, _ := cmd.Flags().GetString("source")
		src, err := buildSource(sourceFlag)
		if err != nil {
			return err
		}

		news := datasource.NewNews(cfg.Datasource.NewsFeedURL)
		srv := api.NewServer(cfg, src, news)

		addr := cfg.API.Addr()
		fmt.Printf("Starting FairSight API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().String("source", "yahoo", "data source: yahoo or stockanalysis")
}

// buildSource constructs the configured data source with the projection
// parameters from config.
func buildSource(name string) (datasource.DataSource, error) {
	proj := datasource.Projection{
		GrowthRate:     cfg.Valuation.GrowthRate,
		Years:          cfg.Valuation.ProjectionYears,
		DiscountRate:   cfg.Valuation.DiscountRate,
		TerminalGrowth: cfg.Valuation.TerminalGrowth,
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yahoo", "yfinance":
		ttl := time.Duration(cfg.Datasource.CacheTTL) * time.Second
		return datasource.NewYFinanceWithPolicy(proj, ttl, cfg.Datasource.RateLimit), nil
	case "stockanalysis", "sa":
		// Scraping stays on the source's own conservative limits.
		return datasource.NewStockAnalysis(proj), nil
	}
	return nil, fmt.Errorf("unknown data source %q", name)
}
