package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Data routes
	mux.HandleFunc("/api/postings", s.handlePostings) // GET (list), DELETE (clear)
	mux.HandleFunc("/api/status", s.handleStatus)     // GET - monitor status snapshot
	mux.HandleFunc("/api/logs", s.handleLogs)         // GET (recent), DELETE (clear)

	// Control routes
	mux.HandleFunc("/api/start", s.handleStart)       // POST - start polling
	mux.HandleFunc("/api/stop", s.handleStop)         // POST - stop polling
	mux.HandleFunc("/api/restart", s.handleRestart)   // POST - restart polling
	mux.HandleFunc("/api/interval", s.handleInterval) // PUT - change poll interval

	// System routes
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}
