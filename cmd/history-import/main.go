// Command history-import merges legacy order exports into the snapshot
// history. Exports are gzip-compressed JSON lines, one order per line, as
// produced by the previous point-of-sale system. Files are parsed
// concurrently and merged in one pass.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/ovenline/pizzeria/internal/domain/order"
	"github.com/ovenline/pizzeria/internal/domain/queue"
	"github.com/ovenline/pizzeria/internal/storage/postgres"
	"github.com/ovenline/pizzeria/internal/storage/snapshotfile"
)

// orderLine is one exported order record. Unknown statuses and zero numbers
// mark records the old system never completed; those are skipped.
type orderLine struct {
	Number        int64    `json:"number"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	Flavor        string   `json:"flavor"`
	Size          string   `json:"size"`
	AddOns        []string `json:"add_ons"`
	Notes         string   `json:"notes"`
	CreatedAt     string   `json:"created_at"`
	Status        string   `json:"status"`
	PrepMinutes   int      `json:"prep_minutes"`
}

func main() {
	var (
		backend     string
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&backend, "store", "file", "snapshot backend: file or postgres")
	flag.StringVar(&dataDir, "data-dir", "./data", "directory for file snapshots")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if flag.NArg() == 0 {
		slog.Error("no export files given, pass one or more .jsonl.gz paths")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, backend, dataDir, databaseURL, flag.Args()); err != nil {
		slog.Error("history import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("history import completed successfully")
}

func run(ctx context.Context, backend, dataDir, databaseURL string, files []string) error {
	store, err := openStore(ctx, backend, dataDir, databaseURL)
	if err != nil {
		return err
	}

	// Parse every export concurrently, then merge.
	parsed := make([][]*order.Order, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(parseFile(gctx, i, path, parsed))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load current snapshot")
	}

	merged, skipped := merge(snap, parsed)
	slog.Info("merged exports",
		slog.Int("imported", merged),
		slog.Int("skipped", skipped),
		slog.Int("history_total", len(snap.History)),
	)

	if err := store.Save(ctx, snap); err != nil {
		return errors.Wrap(err, "save snapshot")
	}
	return nil
}

func parseFile(ctx context.Context, idx int, path string, out [][]*order.Order) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var orders []*order.Order
		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var line orderLine
			if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
				return errors.Wrapf(err, "parse line in %s", path)
			}
			o, ok := toOrder(line)
			if !ok {
				continue
			}
			orders = append(orders, o)
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("parsed export", slog.String("path", path), slog.Int("orders", len(orders)))
		out[idx] = orders
		return nil
	}
}

// toOrder converts an export line. Only finished records belong in history,
// so anything not delivered or cancelled is dropped.
func toOrder(line orderLine) (*order.Order, bool) {
	status := order.Status(line.Status)
	if line.Number < 1 || !status.Valid() || !status.Terminal() {
		return nil, false
	}
	createdAt, err := time.Parse(time.RFC3339Nano, line.CreatedAt)
	if err != nil {
		return nil, false
	}
	return &order.Order{
		Number:      line.Number,
		Customer:    order.Customer{Name: line.CustomerName, Phone: line.CustomerPhone},
		Flavor:      line.Flavor,
		Size:        line.Size,
		AddOns:      order.NewAddOnSet(line.AddOns...),
		Notes:       line.Notes,
		CreatedAt:   createdAt,
		Status:      status,
		PrepMinutes: line.PrepMinutes,
	}, true
}

// merge appends imported orders to the snapshot history, skipping numbers
// already present anywhere in the snapshot, and advances the counter past
// the highest number seen.
func merge(snap *queue.Snapshot, parsed [][]*order.Order) (merged, skipped int) {
	taken := make(map[int64]struct{})
	for _, o := range snap.Pending {
		taken[o.Number] = struct{}{}
	}
	for _, o := range snap.History {
		taken[o.Number] = struct{}{}
	}

	var imported []*order.Order
	for _, orders := range parsed {
		for _, o := range orders {
			if _, ok := taken[o.Number]; ok {
				skipped++
				continue
			}
			taken[o.Number] = struct{}{}
			imported = append(imported, o)
		}
	}
	sort.Slice(imported, func(i, j int) bool {
		return imported[i].CreatedAt.Before(imported[j].CreatedAt)
	})

	snap.History = append(snap.History, imported...)
	merged = len(imported)

	for n := range taken {
		if n >= snap.NextNumber {
			snap.NextNumber = n + 1
		}
	}
	return merged, skipped
}

func openStore(ctx context.Context, backend, dataDir, databaseURL string) (queue.Store, error) {
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
