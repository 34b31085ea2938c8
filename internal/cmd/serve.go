package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/config"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/dataset"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/derived"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/explorer"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/hub"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/retry"
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/selection"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket service",
	Long: `Serve loads the configured dataset, restores the locked players from the
selection store and serves the explorer API under /api/v1 plus live updates
on /ws.

Environment:
  SERVER_ADDR, CORS_ORIGINS, REDIS_URL, REDIS_PASSWORD, DATASET_SOURCE,
  DATASET_TABLE, COLUMN_TRANSFORMS, SELECTION_STORE, SELECTION_KEY,
  SELECTION_SQLITE_PATH, HEATMAP_LIMIT, CLIPPED_DOMAINS, DASHBOARD_CONFIG`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides SERVER_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Starting Player Explorer...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	transforms, err := dataset.ParseTransforms(cfg.Dataset.Transforms)
	if err != nil {
		return err
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlot()

	eval := derived.NewEvaluator()
	manager := explorer.NewManager(dataset.NewLoader(cfg.Dataset.Table), eval, selection.NewStore(slot), cfg.Filters)

	// Create hub
	h := hub.NewHub()
	go h.Run(ctx)

	manager.Subscribe(h.ViewListener(manager))
	manager.SubscribeSelection(h.SelectionListener())

	// A failed initial load leaves an empty dataset; POST /api/v1/dataset/reload retries
	loadCtx, loadCancel := context.WithTimeout(ctx, 60*time.Second)
	if err := manager.Load(loadCtx, cfg.Dataset.Source, transforms); err != nil {
		fmt.Printf("⚠️  Starting with an empty dataset\n")
	}
	loadCancel()

	handler := handlers.NewHandler(ctx, manager, h, handlers.Options{
		Source:         cfg.Dataset.Source,
		Transforms:     transforms,
		HeatmapLimit:   cfg.Views.HeatmapLimit,
		ClippedDomains: cfg.Views.ClippedDomains,
		RadarGroups:    cfg.Views.RadarGroups,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handlers.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("✓ Player Explorer listening on %s\n", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Println("\n🛑 Shutting down...")

	// Cancel context to stop the hub and client pumps
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("⚠️  Server shutdown error: %v\n", err)
	}

	fmt.Println("✓ Shutdown complete")
	return nil
}

// openSlot connects the configured selection store
func openSlot(ctx context.Context, cfg *config.Config) (selection.Slot, func(), error) {
	switch cfg.Selection.Store {
	case config.SelectionStoreRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		client := redis.NewClient(opts)

		policy := retry.NewRetryPolicy(5, 500*time.Millisecond)
		if err := policy.Execute(ctx, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		fmt.Println("✓ Connected to Redis")

		return selection.NewRedisSlot(client, cfg.Selection.Key), func() { client.Close() }, nil

	case config.SelectionStoreSQLite:
		slot, err := selection.OpenSQLiteSlot(ctx, cfg.Selection.SQLitePath, cfg.Selection.Key)
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("✓ Opened selection store %s\n", cfg.Selection.SQLitePath)
		return slot, func() { slot.Close() }, nil

	default:
		fmt.Println("⚠️  Using in-memory selection store; locked players will not survive a restart")
		return selection.NewMemorySlot(), func() {}, nil
	}
}
