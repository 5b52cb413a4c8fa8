package httpapi

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/pomai-cache/corekv/internal/cache"
	"github.com/pomai-cache/corekv/internal/telemetry"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeCacheErr maps a coordinator error to its HTTP status, returning
// true if err was non-nil and a response was written.
func writeCacheErr(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	if err == cache.ErrWrongType {
		writeError(w, http.StatusBadRequest, "WRONGTYPE")
		return true
	}
	writeError(w, http.StatusInternalServerError, err.Error())
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type setRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	PxMs  int64  `json:"px"`
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	if err := s.cache.Set(req.Key, []byte(req.Value), req.PxMs); writeCacheErr(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	val, err := s.cache.Get(key)
	if writeCacheErr(w, err) {
		return
	}
	if val == nil {
		writeJSON(w, http.StatusOK, map[string]any{"value": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": string(val)})
}

type delRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleDel(w http.ResponseWriter, r *http.Request) {
	var req delRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": s.cache.Del(req.Key)})
}

type zaddRequest struct {
	Key    string  `json:"key"`
	Score  float64 `json:"score"`
	Member string  `json:"member"`
}

func (s *Server) handleZAdd(w http.ResponseWriter, r *http.Request) {
	var req zaddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	added, err := s.cache.ZAdd(req.Key, req.Member, req.Score)
	if writeCacheErr(w, err) {
		return
	}
	n := 0
	if added {
		n = 1
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": n})
}

type zremRequest struct {
	Key    string `json:"key"`
	Member string `json:"member"`
}

func (s *Server) handleZRem(w http.ResponseWriter, r *http.Request) {
	var req zremRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	removed, err := s.cache.ZRem(req.Key, req.Member)
	if writeCacheErr(w, err) {
		return
	}
	n := 0
	if removed {
		n = 1
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleZScore(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	member := r.URL.Query().Get("member")
	score, ok, err := s.cache.ZScore(key, member)
	if writeCacheErr(w, err) {
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"score": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"score": score})
}

func (s *Server) handleZRangeByScore(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	min, err := strconv.ParseFloat(r.URL.Query().Get("min"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid min")
		return
	}
	max, err := strconv.ParseFloat(r.URL.Query().Get("max"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid max")
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	results, err := s.cache.ZRangeByScore(key, min, max, limit)
	if writeCacheErr(w, err) {
		return
	}
	items := make([][2]any, len(results))
	for i, r := range results {
		items[i] = [2]any{r.Member, r.Score}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type saddRequest struct {
	Key     string   `json:"key"`
	Members []string `json:"members"`
}

func (s *Server) handleSAdd(w http.ResponseWriter, r *http.Request) {
	var req saddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	added := 0
	for _, m := range req.Members {
		ok, err := s.cache.SAdd(req.Key, m)
		if writeCacheErr(w, err) {
			return
		}
		if ok {
			added++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) handleSMembers(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	members, err := s.cache.SMembers(key)
	if writeCacheErr(w, err) {
		return
	}
	if members == nil {
		members = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.cache.GetStats()
	telemetry.ObserveCacheStats(telemetry.CacheStats{
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		Expirations: stats.Expirations,
		KeyCount:    stats.KeyCount,
		MemoryUsed:  stats.MemoryUsed,
	})
	writeJSON(w, http.StatusOK, stats)
}
