package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/vulnmap/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/vulnmap/internal/adapters/web/server"
	"github.com/lcalzada-xor/vulnmap/internal/config"
	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/services/auth"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and
// infrastructure.
type Application struct {
	Config      *config.Config
	Store       *storage.SQLiteAdapter
	AuthService *auth.AuthService
	WebServer   *webserver.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	store, err := app.initStorage()
	if err != nil {
		return err
	}
	app.Store = store

	app.AuthService = auth.NewAuthService(store)

	if err := app.ensureDefaultAdmin(); err != nil {
		log.Printf("Warning: could not ensure default admin: %v", err)
	}

	app.WebServer = webserver.NewServer(app.Config.Addr, webserver.Deps{
		Assets: store,
		Vulns:  store,
		Runs:   store,
		Auth:   app.AuthService,
	})

	return nil
}

func (app *Application) initStorage() (*storage.SQLiteAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	return store, nil
}

// ensureDefaultAdmin provisions the initial admin account on an empty user
// table. The generated password is printed once; it is never stored in
// plain text.
func (app *Application) ensureDefaultAdmin() error {
	ctx := context.Background()

	users, err := app.Store.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	password := os.Getenv("VMAP_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
		log.Println("WARNING: default admin created with password 'changeme'; set VMAP_ADMIN_PASSWORD and rotate it")
	}

	admin, err := domain.NewUser("", "admin", domain.RoleAdmin)
	if err != nil {
		return err
	}

	return app.AuthService.CreateUser(ctx, *admin, password)
}

// Run starts the web server and blocks until the context is cancelled.
func (app *Application) Run(ctx context.Context) error {
	defer app.Store.Close()
	return app.WebServer.Run(ctx)
}
