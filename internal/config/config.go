package config

import (
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Addr        string
	DBPath      string
	CacheDBPath string

	// Enrichment sources
	EnrichEnabled bool
	NVDAPIKey     string
	KEVFilePath   string

	Debug bool
}

// ErrMissingNVDKey is returned when enrichment is enabled without an API key.
var ErrMissingNVDKey = errors.New("enrichment is enabled but VMAP_NVD_API_KEY is not set")

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("VMAP_ADDR", ":8080")
	cfg.DBPath = getEnv("VMAP_DB", getDefaultDBPath("vulnmap.db"))
	cfg.CacheDBPath = getEnv("VMAP_CACHE_DB", getDefaultDBPath("enrichment.db"))
	cfg.EnrichEnabled = getEnvBool("VMAP_ENRICH", false)
	cfg.NVDAPIKey = getEnv("VMAP_NVD_API_KEY", "")
	cfg.KEVFilePath = getEnv("VMAP_KEV_FILE", "")

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	flag.StringVar(&cfg.CacheDBPath, "cache-db", cfg.CacheDBPath, "Path to enrichment cache database")
	flag.BoolVar(&cfg.EnrichEnabled, "enrich", cfg.EnrichEnabled, "Enable external enrichment sources")
	flag.StringVar(&cfg.KEVFilePath, "kev-file", cfg.KEVFilePath, "Local KEV catalog snapshot (empty to download)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	flag.Parse()

	return cfg
}

// Validate rejects configurations that cannot work at startup rather than
// failing mid-run.
func (c *Config) Validate() error {
	if c.EnrichEnabled && c.NVDAPIKey == "" {
		return ErrMissingNVDKey
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default path for a database file under the
// user's ~/.vulnmap directory, creating the directory if missing.
func getDefaultDBPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return name
	}

	dir := filepath.Join(home, ".vulnmap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .vulnmap directory, using current dir: %v", err)
		return name
	}

	return filepath.Join(dir, name)
}
