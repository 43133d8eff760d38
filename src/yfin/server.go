package yfin

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// Server exposes the quoter as the provider REST surface:
// GET {base}/market/tickers/{ticker}/price/realtime and GET {base}/health.
type Server struct {
	quoter    Quoter
	baseRoute string
	mux       *http.ServeMux
}

func NewServer(quoter Quoter, baseRoute string) *Server {
	baseRoute = strings.TrimRight(baseRoute, "/")
	s := &Server{quoter: quoter, baseRoute: baseRoute, mux: http.NewServeMux()}
	s.mux.HandleFunc(baseRoute+"/market/tickers/", s.handleRealtime)
	s.mux.HandleFunc(baseRoute+"/health", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, s.baseRoute+"/market/tickers/")
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] != "price" || parts[2] != "realtime" || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	ticker := parts[0]

	price := s.quoter.Quote(r.Context(), ticker)
	if price.Error != "" {
		log.Printf("yfin: quote %s failed: %s", ticker, price.Error)
	}
	writeJSON(w, http.StatusOK, price)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
