// Command seed-menu writes the default pizzeria catalog into a snapshot
// backend, so a fresh deployment starts with a sellable menu.
package main

import (
	"context"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/storage/postgres"
	"github.com/ovenline/pizzeria/internal/storage/snapshotfile"
)

func main() {
	var (
		backend     string
		dataDir     string
		databaseURL string
		force       bool
	)

	flag.StringVar(&backend, "store", "file", "snapshot backend: file or postgres")
	flag.StringVar(&dataDir, "data-dir", "./data", "directory for file snapshots")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&force, "force", false, "overwrite an existing catalog")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, backend, dataDir, databaseURL, force); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, backend, dataDir, databaseURL string, force bool) error {
	store, err := openStore(ctx, backend, dataDir, databaseURL)
	if err != nil {
		return err
	}

	if !force {
		snap, err := store.LoadCatalog(ctx)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return errors.Wrap(err, "inspect existing catalog")
		case len(snap.Sizes) > 0:
			return errors.New("a catalog already exists, pass --force to overwrite")
		}
	}

	catalog := menu.Default()
	snap := catalog.Snapshot()

	slog.Info("writing default catalog",
		slog.Int("sizes", len(snap.Sizes)),
		slog.Int("flavors", len(snap.Flavors)),
		slog.Int("add_ons", len(snap.AddOns)),
	)

	if err := store.SaveCatalog(ctx, snap); err != nil {
		return errors.Wrap(err, "save catalog")
	}
	return nil
}

func openStore(ctx context.Context, backend, dataDir, databaseURL string) (menu.Store, error) {
	switch backend {
	case "file":
		return snapshotfile.NewInDir(dataDir), nil
	case "postgres":
		if databaseURL == "" {
			databaseURL = os.Getenv("DATABASE_URL")
		}
		if databaseURL == "" {
			return nil, errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		pool, err := postgres.NewPool(ctx, databaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "connect to database")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return nil, errors.Wrap(err, "run migrations")
		}
		return postgres.NewStore(pool), nil
	default:
		return nil, errors.Errorf("unknown store backend %q", backend)
	}
}
