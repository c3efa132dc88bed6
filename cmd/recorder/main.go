package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/l2-recorder/internal/colfile"
	"github.com/rickgao/l2-recorder/internal/config"
	"github.com/rickgao/l2-recorder/internal/feed"
	"github.com/rickgao/l2-recorder/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/recorder.local.yaml", "path to config file (missing file = defaults)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting recorder",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"pair", cfg.Feed.Pair,
		"data_root", cfg.Storage.Root,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Build the capture pipeline: writer first, then the feed that owns it.
	writer := colfile.NewWriter(colfile.Options{
		BaseDir:        cfg.Storage.Root,
		Product:        cfg.Feed.Pair,
		FsyncEveryRows: cfg.Storage.FsyncEveryRows,
	}, logger)

	f := feed.New(feed.Config{
		URL:    cfg.Feed.WSURL,
		Pair:   cfg.Feed.Pair,
		PinCPU: *cfg.Feed.PinCPU,
	}, writer, logger)

	// Optional health server
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Health.Port > 0 {
		healthServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
			Handler: createHealthHandler(cfg, f, writer),
		}

		g.Go(func() error {
			logger.Info("starting health server", "port", cfg.Health.Port)
			if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return healthServer.Shutdown(shutdownCtx)
		})
	}

	f.Start()

	logger.Info("recording",
		"pair", cfg.Feed.Pair,
		"data_root", cfg.Storage.Root,
	)

	// Wait for a shutdown signal, or for the feed to die on its own
	// (connection closed or errored; there is no auto-reconnect).
wait:
	for {
		select {
		case <-ctx.Done():
			break wait
		case <-time.After(100 * time.Millisecond):
			if !f.Running() {
				logger.Error("feed terminated, shutting down")
				break wait
			}
		}
	}

	logger.Info("shutting down...")

	f.Stop()
	f.Join()

	cancel()
	if err := g.Wait(); err != nil {
		logger.Error("health server error", "error", err)
	}

	logger.Info("recorder stopped",
		"dropped", writer.Dropped(),
		"data_root", cfg.Storage.Root,
	)
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(cfg *config.RecorderConfig, f *feed.Feed, writer *colfile.Writer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string                 `json:"status"`
			Instance   string                 `json:"instance"`
			Version    string                 `json:"version"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Instance:   cfg.Instance.ID,
			Version:    version.String(),
			Components: make(map[string]interface{}),
		}

		if f.Running() {
			health.Components["feed"] = "connected"
		} else {
			health.Status = "unhealthy"
			health.Components["feed"] = "disconnected"
		}

		writerStats := map[string]interface{}{
			"rows":    writer.Rows(),
			"dropped": writer.Dropped(),
		}
		if hour := writer.HourStart(); hour != ^uint64(0) {
			writerStats["hour_epoch_start"] = hour
		}
		health.Components["writer"] = writerStats

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
