package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/logger"

	"github.com/maru-games/gacha-settlement-engine/config"
	"github.com/maru-games/gacha-settlement-engine/settle"
)

type Server struct {
	cfg   *config.Config
	coord *settle.Coordinator
	store settle.SettlementStore
}

func New(cfg *config.Config, coord *settle.Coordinator, store settle.SettlementStore) *Server {
	return &Server{cfg: cfg, coord: coord, store: store}
}

func (s *Server) Run() error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /api/draw", s.drawSingle)
	mux.HandleFunc("POST /api/draw/batch", s.drawBatch)
	mux.HandleFunc("GET /api/balance", s.getBalance)
	mux.HandleFunc("POST /api/credit", s.credit)
	mux.HandleFunc("GET /api/draws", s.listDraws)
	mux.HandleFunc("GET /api/ledger", s.listLedger)

	port := s.cfg.Port
	if port <= 0 {
		port = 8082
	}
	addr := ":" + strconv.Itoa(port)
	logger.Infof("settlement engine listening on %s", addr)
	return http.ListenAndServe(addr, cors(requestLogger(mux)))
}

func cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// requestLogger logs method and path for each request (no body or secrets).
func requestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Infof("%s %s", r.Method, r.URL.Path)
		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "gacha-settlement"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
