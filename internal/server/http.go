package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"rtd-gateway/internal/store"
)

// Server exposes the snapshot store: pull over HTTP, push over
// WebSocket. It never touches the feed; before the first successful
// poll it serves the store's empty defaults.
type Server struct {
	st   *store.Store
	push time.Duration
	log  *slog.Logger
	mux  *http.ServeMux
}

func NewServer(st *store.Store, pushInterval time.Duration, logger *slog.Logger) *Server {
	s := &Server{
		st:   st,
		push: pushInterval,
		log:  logger,
		mux:  http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Router() http.Handler { return s.mux }

func (s *Server) routes() {
	// API
	s.mux.HandleFunc("/api/health", s.apiHealth)
	s.mux.HandleFunc("/api/ranking", s.apiRanking)
	s.mux.HandleFunc("/api/data", s.apiData)

	// WS
	s.mux.HandleFunc("/ws", s.serveWS)
}

func (s *Server) apiHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"ok": true})
}

func (s *Server) apiRanking(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.st.Ranking())
}

func (s *Server) apiData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.st.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
