package app

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/queue"
	"github.com/ovenline/pizzeria/internal/handler"
	"github.com/ovenline/pizzeria/internal/storage/postgres"
	"github.com/ovenline/pizzeria/internal/storage/snapshotfile"
	"github.com/ovenline/pizzeria/pkg/health"
	"github.com/ovenline/pizzeria/pkg/httpmiddleware"
)

// snapshotStore is the persistence surface the application needs: both the
// queue snapshot and the catalog live behind one backend.
type snapshotStore interface {
	queue.Store
	menu.Store
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
	)

	healthSvc := health.New()

	var store snapshotStore
	switch cfg.Store {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		store = postgres.NewStore(pool)
	default:
		store = snapshotfile.NewInDir(cfg.DataDir)
	}

	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	catalog := loadCatalog(ctx, lg, store)

	// A corrupt or unreadable order snapshot must not keep the shop closed.
	// The queue falls back to an empty state and the failure is logged.
	q := queue.New(catalog, store)
	if err := q.Restore(ctx); err != nil {
		lg.Warn("Order snapshot unavailable, starting with an empty queue", zap.Error(err))
	} else {
		lg.Info("Order snapshot restored",
			zap.Int("pending", q.Len()),
			zap.Int("history", len(q.History())),
		)
	}

	h := handler.NewHandler(q, catalog, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Routes(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type"},
				MaxAge:       86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// loadCatalog restores the persisted menu, seeding the default one on first
// start. An empty snapshot (fresh database) counts as first start too. Like
// the order snapshot, a corrupt or unreadable catalog must not keep the shop
// closed: it is logged and replaced with the seed catalog.
func loadCatalog(ctx context.Context, lg *zap.Logger, store snapshotStore) *menu.Catalog {
	snap, err := store.LoadCatalog(ctx)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		lg.Info("No stored menu found, seeding the default catalog")
		return seedCatalog(ctx, lg, store)
	case err != nil:
		lg.Warn("Catalog snapshot unreadable, falling back to the default catalog", zap.Error(err))
		return seedCatalog(ctx, lg, store)
	case len(snap.Sizes) == 0:
		lg.Info("Stored menu is empty, seeding the default catalog")
		return seedCatalog(ctx, lg, store)
	}

	catalog, err := menu.FromSnapshot(snap)
	if err != nil {
		lg.Warn("Catalog snapshot invalid, falling back to the default catalog", zap.Error(err))
		return seedCatalog(ctx, lg, store)
	}
	return catalog
}

// seedCatalog writes the default catalog through the store, replacing
// whatever was there. A failed write is logged, not fatal: the in-memory
// seed still lets the shop take orders.
func seedCatalog(ctx context.Context, lg *zap.Logger, store snapshotStore) *menu.Catalog {
	catalog := menu.Default()
	if err := store.SaveCatalog(ctx, catalog.Snapshot()); err != nil {
		lg.Warn("Seeded catalog could not be persisted", zap.Error(err))
	}
	return catalog
}
