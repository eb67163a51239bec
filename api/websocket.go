package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fairsight/fairsight/internal/datasource"
	"github.com/fairsight/fairsight/internal/valuation"
	"github.com/fairsight/fairsight/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; restrict in production
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
)

// WSMessage is a message sent over the valuation stream.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// handleValuationStream upgrades the connection and pushes each method's
// result as it completes, followed by the aggregate summary. The methods
// are evaluated serially so the stream order matches the report order.
func (s *Server) handleValuationStream(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	peerTickers := splitPeers(r.URL.Query().Get("peers"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	send := func(msg WSMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			return false
		}
		return true
	}

	target, peers, err := datasource.FetchSet(ctx, s.src, ticker, peerTickers)
	if err != nil {
		code := "fetch_failed"
		if errors.Is(err, datasource.ErrTickerNotFound) {
			code = "ticker_not_found"
		}
		send(WSMessage{Type: "error", Data: map[string]string{"code": code, "message": err.Error()}})
		return
	}

	opts := s.cfg.Valuation.EngineOptions()
	opts.Parallel = false

	if !send(WSMessage{Type: "started", Data: map[string]interface{}{
		"ticker":  target.Ticker,
		"methods": models.AllMethods(),
	}}) {
		return
	}

	results := make([]models.ValuationResult, 0, len(models.AllMethods()))
	for _, m := range models.AllMethods() {
		var res models.ValuationResult
		switch m {
		case models.MethodDCF:
			res = valuation.DCF(target, opts)
		case models.MethodPE:
			res = valuation.PE(target, peers, opts.Multiples.PE)
		case models.MethodPBV:
			res = valuation.PBV(target, peers, opts.Multiples.PBV)
		case models.MethodEVEBITDA:
			res = valuation.EVEBITDA(target, peers, opts.Multiples.EVEBITDA)
		case models.MethodComparables:
			res = valuation.Comparables(target, peers)
		}
		results = append(results, res)
		if !send(WSMessage{Type: "result", Data: res}) {
			return
		}
	}

	report := valuation.Aggregate(target, results)
	if !send(WSMessage{Type: "report", Data: report}) {
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
