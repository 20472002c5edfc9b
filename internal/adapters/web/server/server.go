package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/adapters/reporting"
	"github.com/lcalzada-xor/vulnmap/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/vulnmap/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	reportingService "github.com/lcalzada-xor/vulnmap/internal/core/services/reporting"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr        string
	AuthService ports.AuthService
	WSManager   *websocket.WSManager

	AuthHandler   *handlers.AuthHandler
	VulnHandler   *handlers.VulnerabilityHandler
	AssetHandler  *handlers.AssetHandler
	RunHandler    *handlers.RunHandler
	StatsHandler  *handlers.StatsHandler
	ExportHandler *handlers.ExportHandler
	ReportHandler *handlers.ReportHandler

	srv *http.Server
}

// Deps bundles the repositories and services the server reads from.
type Deps struct {
	Assets ports.AssetRepository
	Vulns  ports.VulnerabilityRepository
	Runs   ports.RunRepository
	Auth   ports.AuthService
}

// NewServer creates a new web server.
func NewServer(addr string, deps Deps) *Server {
	generator := reportingService.NewReportGenerator(deps.Assets, deps.Vulns)

	return &Server{
		Addr:        addr,
		AuthService: deps.Auth,
		WSManager:   websocket.NewWSManager(deps.Vulns, deps.Runs),

		AuthHandler:   handlers.NewAuthHandler(deps.Auth),
		VulnHandler:   handlers.NewVulnerabilityHandler(deps.Vulns),
		AssetHandler:  handlers.NewAssetHandler(deps.Assets, deps.Vulns),
		RunHandler:    handlers.NewRunHandler(deps.Runs),
		StatsHandler:  handlers.NewStatsHandler(deps.Vulns),
		ExportHandler: handlers.NewExportHandler(deps.Assets, deps.Vulns),
		ReportHandler: handlers.NewReportHandler(generator, reporting.NewPDFExporter()),
	}
}

// Run starts the server and the broadcaster, blocking until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	handler := SetupRoutes(s)

	// Instrument with OpenTelemetry
	instrumentedHandler := otelhttp.NewHandler(handler, "vulnmap-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
