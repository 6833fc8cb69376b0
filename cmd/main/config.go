package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/CTAG07/Libation/pkg/dataset"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// ServerConfig holds the configuration for the HTTP server.
type ServerConfig struct {
	ServerAddr         string `json:"server_addr"`
	LogLevel           string `json:"log_level"`
	StaticDir          string `json:"static_dir"`
	TemplateDir        string `json:"template_dir"`
	ShutdownTimeoutSec int    `json:"shutdown_timeout_sec"`
}

// DataConfig holds the locations of the dataset sources.
type DataConfig struct {
	CSVPath    string `json:"csv_path"`
	NameColumn string `json:"name_column"`

	// DatabasePath points at an optional SQLite file, opened read-only.
	DatabasePath  string `json:"database_path"`
	DatabaseTable string `json:"database_table"`
	// DatabaseFallback loads records from DatabaseTable when the CSV file
	// yields none. When false the database is opened but never read.
	DatabaseFallback bool `json:"database_fallback"`
}

// Category is one ranked table view, served at "/<slug>".
type Category struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Column string `json:"column"`
	Label  string `json:"label"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server     *ServerConfig `json:"server_config"`
	Data       *DataConfig   `json:"data_config"`
	Categories []Category    `json:"categories"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:         ":8080",
		LogLevel:           "info",
		StaticDir:          "./data/static",
		TemplateDir:        "./data/templates",
		ShutdownTimeoutSec: 10,
	}
}

// DefaultDataConfig creates a data configuration with default values.
func DefaultDataConfig() *DataConfig {
	return &DataConfig{
		CSVPath:          "./data/drinks.csv",
		NameColumn:       dataset.DefaultNameColumn,
		DatabasePath:     "./data/drinks.db",
		DatabaseTable:    dataset.DefaultTable,
		DatabaseFallback: false,
	}
}

// DefaultCategories returns the beer, wine and spirits views.
func DefaultCategories() []Category {
	return []Category{
		{Slug: "beer", Title: "Beer", Column: "beer_servings", Label: "Beer servings"},
		{Slug: "wine", Title: "Wine", Column: "wine_servings", Label: "Wine servings"},
		{Slug: "spirits", Title: "Spirits", Column: "spirit_servings", Label: "Spirit servings"},
	}
}

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Data:       DefaultDataConfig(),
		Categories: DefaultCategories(),
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// Comments and trailing commas are accepted. If the file doesn't exist, it
// creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The server can still run with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	standardized, err := hujson.Standardize(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = json.Unmarshal(standardized, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	// A file holding only null unmarshals to a nil *Config.
	if config == nil {
		config = DefaultConfig()
	}
	if config.Server == nil {
		config.Server = DefaultServerConfig()
	}
	if config.Data == nil {
		config.Data = DefaultDataConfig()
	}

	return config, nil
}

// parseLogLevel maps the configured level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// reservedSlugs are first path segments owned by fixed routes.
var reservedSlugs = map[string]struct{}{
	"country": {},
	"static":  {},
}

// validCategories drops categories whose slug is empty, not URL-safe, reserved
// or repeated, logging each one it drops.
func validCategories(categories []Category, logger *slog.Logger) []Category {
	seen := make(map[string]struct{}, len(categories))
	valid := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.Slug == "" || dataset.Slugify(c.Slug) != c.Slug {
			logger.Warn("Ignoring category with invalid slug", "slug", c.Slug)
			continue
		}
		if _, ok := reservedSlugs[c.Slug]; ok {
			logger.Warn("Ignoring category with reserved slug", "slug", c.Slug)
			continue
		}
		if _, ok := seen[c.Slug]; ok {
			logger.Warn("Ignoring duplicate category", "slug", c.Slug)
			continue
		}
		seen[c.Slug] = struct{}{}
		if c.Title == "" {
			c.Title = c.Slug
		}
		if c.Label == "" {
			c.Label = columnLabel(c.Column)
		}
		valid = append(valid, c)
	}
	return valid
}
