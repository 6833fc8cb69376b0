package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/CTAG07/Libation/pkg/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

const defaultConfigPath = "./config.json"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "libation",
		Short: "Serve the drinks-by-country site",
		Long: `Libation serves a small website over a drinks-by-country dataset:
ranked tables per drink category and a detail page per country.

The dataset is read once at startup from a CSV file, with an optional
read-only SQLite database as a fallback source.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addConfigFlag(rootCmd.PersistentFlags(), &configPath)

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(slugsCmd(&configPath))
	return rootCmd
}

func addConfigFlag(flags *pflag.FlagSet, target *string) {
	flags.StringVarP(target, "config", "c", defaultConfigPath, "path to the JSON config file")
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := newLogger(os.Stdout, config.Server.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err = run(ctx, config, logger); err != nil {
				logger.Error("An error occurred during server run, shutting down.", "error", err)
				return err
			}
			logger.Info("Libation has shut down.")
			return nil
		},
	}
}

func slugsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "slugs",
		Short: "List every country slug in canonical order",
		Long: `Print one "slug<TAB>name" line per record, in the order used for
previous/next navigation. Slugs shared by more than one name are reported
on stderr; only the last-loaded of those names is reachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := newLogger(cmd.ErrOrStderr(), config.Server.LogLevel)

			store, err := openStore(cmd.Context(), config.Data.DatabasePath)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				logger.Debug("No database found, continuing without it", "path", config.Data.DatabasePath)
			case err != nil:
				logger.Warn("Failed to open database, continuing without it", "path", config.Data.DatabasePath, "error", err)
			default:
				defer func() { _ = store.Close() }()
			}
			index := loadIndex(cmd.Context(), config, logger, store)

			out := cmd.OutOrStdout()
			for _, name := range index.Order() {
				_, _ = fmt.Fprintf(out, "%s\t%s\n", dataset.Slugify(name), name)
			}

			collisions := slugCollisions(index)
			slugs := make([]string, 0, len(collisions))
			for slug := range collisions {
				slugs = append(slugs, slug)
			}
			sort.Strings(slugs)
			for _, slug := range slugs {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "collision: %s is shared by %q\n", slug, collisions[slug])
			}
			return nil
		},
	}
}

// run loads the data, serves until ctx is cancelled and then shuts the server
// down gracefully.
func run(ctx context.Context, config *Config, logger *slog.Logger) error {
	logger.Info("Starting server cycle...", "version", Version)

	store, err := openStore(ctx, config.Data.DatabasePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("No database found, continuing without it", "path", config.Data.DatabasePath)
	case err != nil:
		logger.Warn("Failed to open database, continuing without it", "path", config.Data.DatabasePath, "error", err)
	default:
		logger.Info("Opened database read-only", "path", config.Data.DatabasePath)
		defer func() {
			logger.Info("Closing database connection.")
			if err := store.Close(); err != nil {
				logger.Error("Failed to close database", "error", err)
			}
		}()
	}

	index := loadIndex(ctx, config, logger, store)
	server := NewServer(config, logger, index)

	httpServer := &http.Server{
		Addr:              config.Server.ServerAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)
		logger.Info("Starting Libation server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Stopping server...")
	timeout := time.Duration(config.Server.ShutdownTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	<-serveErr
	logger.Info("HTTP server stopped.")
	return nil
}
