// Package api provides the HTTP REST API server for FairSight.
//
// It exposes endpoints for running valuations on caller-supplied
// snapshots, fetch-then-value runs for a live ticker, headline lookups,
// and WebSocket streaming of per-method results.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fairsight/fairsight/internal/config"
	"github.com/fairsight/fairsight/internal/datasource"
	"github.com/fairsight/fairsight/internal/valuation"
	"github.com/fairsight/fairsight/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	src    datasource.DataSource
	news   *datasource.News
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, src datasource.DataSource, news *datasource.News) *Server {
	srv := &Server{
		cfg:  cfg,
		src:  src,
		news: news,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/valuations", s.handleValue)
		r.Get("/valuations/{ticker}", s.handleValueTicker)
		r.Get("/valuations/{ticker}/stream", s.handleValuationStream)

		r.Get("/news/{ticker}", s.handleNews)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ValueRequest is the body for POST /api/v1/valuations. The caller
// supplies the snapshots; no fetching happens on this path.
type ValueRequest struct {
	Target  models.FinancialSnapshot   `json:"target"`
	Peers   []models.FinancialSnapshot `json:"peers,omitempty"`
	Options valuation.Options          `json:"options,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status": "ok",
			"source": s.src.Name(),
		},
	})
}

func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Target.Ticker == "" {
		writeError(w, http.StatusBadRequest, "target.ticker is required")
		return
	}

	report, err := valuation.Run(req.Target, req.Peers, req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    report,
	})
}

func (s *Server) handleValueTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	peerTickers := splitPeers(r.URL.Query().Get("peers"))

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	target, peers, err := datasource.FetchSet(ctx, s.src, ticker, peerTickers)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, datasource.ErrTickerNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	opts := s.cfg.Valuation.EngineOptions()
	report, err := valuation.Run(target, peers, opts)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    report,
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	limit := s.cfg.Datasource.NewsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	articles, err := s.news.GetHeadlines(ctx, ticker, limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    articles,
	})
}

// ============================================================
// Helpers
// ============================================================

// splitPeers parses the comma-separated peers query parameter.
func splitPeers(raw string) []string {
	if raw == "" {
		return nil
	}
	var peers []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			peers = append(peers, p)
		}
	}
	return peers
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
