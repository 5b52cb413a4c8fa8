package httpapi

import (
	"net/http"

	"github.com/pomai-cache/corekv/internal/telemetry"
)

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", telemetry.MetricsHandler()).Methods("GET")

	s.router.Handle("/set", telemetry.Instrument("set", http.HandlerFunc(s.handleSet))).Methods("POST")
	s.router.Handle("/get", telemetry.Instrument("get", http.HandlerFunc(s.handleGet))).Methods("GET")
	s.router.Handle("/del", telemetry.Instrument("del", http.HandlerFunc(s.handleDel))).Methods("POST")

	s.router.Handle("/zadd", telemetry.Instrument("zadd", http.HandlerFunc(s.handleZAdd))).Methods("POST")
	s.router.Handle("/zrem", telemetry.Instrument("zrem", http.HandlerFunc(s.handleZRem))).Methods("POST")
	s.router.Handle("/zscore", telemetry.Instrument("zscore", http.HandlerFunc(s.handleZScore))).Methods("GET")
	s.router.Handle("/zrangeByScore", telemetry.Instrument("zrangeByScore", http.HandlerFunc(s.handleZRangeByScore))).Methods("GET")

	s.router.Handle("/sadd", telemetry.Instrument("sadd", http.HandlerFunc(s.handleSAdd))).Methods("POST")
	s.router.Handle("/smembers", telemetry.Instrument("smembers", http.HandlerFunc(s.handleSMembers))).Methods("GET")

	s.router.Handle("/stats", telemetry.Instrument("stats", http.HandlerFunc(s.handleStats))).Methods("GET")
}
