package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/vulnmap/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires every API route with its middleware chain.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Rate limiter for login attempts
	loginLimiter := middleware.NewRateLimiter(5, 1*time.Minute)

	// Public API (with rate limiting)
	r.Handle("/api/login", middleware.RateLimitMiddleware(loginLimiter)(http.HandlerFunc(s.AuthHandler.HandleLogin))).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.AuthHandler.HandleLogout).Methods(http.MethodPost)

	// Protected API
	auth := middleware.AuthMiddleware(s.AuthService)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	// RBAC helper: analyst level for data-shaping endpoints
	requireAnalyst := middleware.RoleMiddleware(domain.RoleAnalyst)
	protectAnalyst := func(h http.HandlerFunc) http.Handler {
		return auth(requireAnalyst(h))
	}

	// WebSocket endpoint (protected)
	r.Handle("/ws", protect(s.WSManager.HandleWebSocket))

	r.Handle("/api/me", protect(s.AuthHandler.HandleMe)).Methods(http.MethodGet)

	// Findings read API
	r.Handle("/api/vulnerabilities", protect(s.VulnHandler.HandleList)).Methods(http.MethodGet)
	r.Handle("/api/vulnerabilities/{cve}", protect(s.VulnHandler.HandleGet)).Methods(http.MethodGet)

	// Asset read API
	r.Handle("/api/assets", protect(s.AssetHandler.HandleList)).Methods(http.MethodGet)
	r.Handle("/api/assets/{id:[0-9]+}", protect(s.AssetHandler.HandleGet)).Methods(http.MethodGet)

	// Loader run history and store totals
	r.Handle("/api/runs", protect(s.RunHandler.HandleList)).Methods(http.MethodGet)
	r.Handle("/api/stats", protect(s.StatsHandler.HandleStats)).Methods(http.MethodGet)

	// Exports and reports (restricted to Analyst/Admin)
	r.Handle("/api/export", protectAnalyst(s.ExportHandler.HandleExport)).Methods(http.MethodGet)
	r.Handle("/api/reports/download", protectAnalyst(s.ReportHandler.HandleDownload)).Methods(http.MethodGet)

	// Metrics endpoint (protected - requires authentication)
	r.Handle("/metrics", protect(func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	}))

	return r
}
