package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/logbuf"
	"github.com/hirewatch-dev/hirewatch/internal/model"
	"github.com/hirewatch-dev/hirewatch/internal/monitor"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// monitorOr503 returns the monitor, or answers 503 with the degradation
// reason and returns false.
func (s *Server) monitorOr503(w http.ResponseWriter) (*monitor.Monitor, bool) {
	m, ok := s.handle.Monitor()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "monitor unavailable: "+s.handle.Reason())
		return nil, false
	}
	return m, true
}

func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}

func (s *Server) handlePostings(w http.ResponseWriter, r *http.Request) {
	m, ok := s.monitorOr503(w)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit, ok := parseLimit(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		postings := m.Postings(limit)
		if postings == nil {
			postings = []model.Posting{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":    len(postings),
			"postings": postings,
		})
	case http.MethodDelete:
		if err := m.ClearPostings(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "postings cleared"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m, ok := s.monitorOr503(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.Status())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	m, ok := s.monitorOr503(w)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit, ok := parseLimit(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		logs := m.Logs(limit)
		if logs == nil {
			logs = []logbuf.Event{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count": len(logs),
			"logs":  logs,
		})
	case http.MethodDelete:
		m.ClearLogs()
		writeJSON(w, http.StatusOK, map[string]string{"message": "logs cleared"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m, ok := s.monitorOr503(w)
	if !ok {
		return
	}
	if m.Running() {
		writeJSON(w, http.StatusOK, map[string]string{"message": "monitoring already running"})
		return
	}
	m.Start()
	writeJSON(w, http.StatusOK, map[string]string{"message": "monitoring started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m, ok := s.monitorOr503(w)
	if !ok {
		return
	}
	m.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"message": "monitoring stopped"})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m, ok := s.monitorOr503(w)
	if !ok {
		return
	}
	m.Restart()
	writeJSON(w, http.StatusOK, map[string]string{"message": "monitoring restarted"})
}

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m, ok := s.monitorOr503(w)
	if !ok {
		return
	}

	var req struct {
		Interval string `json:"interval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	d, err := time.ParseDuration(req.Interval)
	if err != nil {
		writeError(w, http.StatusBadRequest, "interval must be a duration string like \"15m\"")
		return
	}
	if err := m.SetPollInterval(d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "poll interval updated",
		"interval": d.String(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.handle.IsDegraded() {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "degraded",
			"reason": s.handle.Reason(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
