package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/EdgesSeeker/ma-monitor/internal/alert"
	"github.com/EdgesSeeker/ma-monitor/internal/api"
	"github.com/EdgesSeeker/ma-monitor/internal/api/handlers"
	"github.com/EdgesSeeker/ma-monitor/internal/marketdata"
	"github.com/EdgesSeeker/ma-monitor/internal/monitor"
	"github.com/EdgesSeeker/ma-monitor/pkg/config"
	"github.com/EdgesSeeker/ma-monitor/pkg/database"
	"github.com/EdgesSeeker/ma-monitor/pkg/httputil"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
	"github.com/EdgesSeeker/ma-monitor/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the monitor and its API server",
	Long: `Starts the position monitoring engine and the REST API.

Endpoints:
  GET    /health              - Health check
  POST   /api/positions       - Watch a new position
  GET    /api/positions       - List watched positions
  DELETE /api/positions/{id}  - Stop watching a position
  GET    /api/status          - Engine status
  POST   /api/check           - Run a check pass now
  GET    /api/stream          - WebSocket alert stream

Example:
  go run ./cmd/monitor serve
  go run ./cmd/monitor serve --port 8089`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if servePort != "" {
		cfg.Port = servePort
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"env":      cfg.Env,
		"interval": cfg.Monitor.CheckInterval.String(),
	}).Info("Initializing position monitor")

	// 3. Connect to database when configured
	var store monitor.Store
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		pgStore := monitor.NewPostgresStore(db, log)
		if err := pgStore.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		store = pgStore

		log.Info("Connected to database")
	} else {
		log.Info("No database configured, positions are memory-only")
	}

	// 4. Snapshot cache, shared via Redis when enabled
	var cache marketdata.SnapshotCache
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	if redisClient.Enabled() {
		cache = marketdata.NewRedisCache(redisClient, cfg.Monitor.CacheTTL, log)
		log.Info("Using Redis snapshot cache")
	} else {
		cache = marketdata.NewMemoryCache(cfg.Monitor.CacheTTL)
	}

	// 5. HTTP client, rate limited so provider throttling stays away
	httpClient := httputil.New(cfg, log).
		WithRateLimiter(rate.NewLimiter(rate.Limit(5), 5))

	// 6. Market data gateway
	yahoo := marketdata.NewYahooClient(cfg, httpClient, log)
	alphaVantage := marketdata.NewAlphaVantageClient(cfg, httpClient, log)
	gateway := marketdata.NewGateway(yahoo, alphaVantage, cache, log)

	// 7. Notifiers: webhook plus the live stream
	discord, err := alert.NewDiscordNotifier(cfg, httpClient, log)
	if err != nil {
		return fmt.Errorf("create webhook notifier: %w", err)
	}
	if !discord.Enabled() {
		log.Warn("No webhook URL configured, alerts will only reach the stream")
	}

	hub := alert.NewHub(log)
	defer hub.Close()

	notifier := alert.NewMulti(discord, hub)

	// 8. Monitoring engine
	engine, err := monitor.New(cfg, gateway, notifier, store, log)
	if err != nil {
		return fmt.Errorf("create monitor: %w", err)
	}

	if err := engine.LoadFromStore(cmd.Context()); err != nil {
		return fmt.Errorf("restore positions: %w", err)
	}

	if err := engine.Start(); err != nil {
		return fmt.Errorf("start monitor: %w", err)
	}
	defer engine.Stop()

	// 9. API server
	positionHandler := handlers.NewPositionHandler(engine, log)
	router := api.NewRouter(positionHandler, hub, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Monitor running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Monitor stopped")
	return nil
}
