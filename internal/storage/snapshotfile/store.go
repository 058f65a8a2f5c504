// Package snapshotfile persists queue and catalog snapshots as JSON files.
// Files whose path ends in ".gz" are transparently compressed. Writes go
// through a temp file and rename, so a crash mid-save leaves the previous
// snapshot intact.
package snapshotfile

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/queue"
)

// Default file names inside a data directory.
const (
	OrdersFile  = "orders.json.gz"
	CatalogFile = "menu.json.gz"
)

// Store reads and writes snapshot files. It implements queue.Store and
// menu.Store.
type Store struct {
	ordersPath  string
	catalogPath string
}

var (
	_ queue.Store = (*Store)(nil)
	_ menu.Store  = (*Store)(nil)
)

// New creates a store over explicit file paths.
func New(ordersPath, catalogPath string) *Store {
	return &Store{ordersPath: ordersPath, catalogPath: catalogPath}
}

// NewInDir creates a store using the default file names under dir.
func NewInDir(dir string) *Store {
	return New(filepath.Join(dir, OrdersFile), filepath.Join(dir, CatalogFile))
}

// Load reads the queue snapshot. A missing file is a fresh install and
// yields an empty snapshot; a corrupt file is an error the caller may
// degrade from.
func (s *Store) Load(ctx context.Context) (*queue.Snapshot, error) {
	data, err := readFile(s.ordersPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &queue.Snapshot{NextNumber: 1}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read orders snapshot")
	}

	snap, err := decodeQueueSnapshot(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode orders snapshot")
	}
	return snap, nil
}

// Save writes the queue snapshot atomically.
func (s *Store) Save(ctx context.Context, snap *queue.Snapshot) error {
	data := encodeQueueSnapshot(snap)
	if err := writeFile(s.ordersPath, data); err != nil {
		return errors.Wrap(err, "write orders snapshot")
	}
	return nil
}

// LoadCatalog reads the catalog snapshot. A missing file surfaces as
// fs.ErrNotExist so the caller can fall back to the seed catalog.
func (s *Store) LoadCatalog(ctx context.Context) (menu.Snapshot, error) {
	data, err := readFile(s.catalogPath)
	if err != nil {
		return menu.Snapshot{}, errors.Wrap(err, "read catalog snapshot")
	}

	snap, err := decodeCatalogSnapshot(data)
	if err != nil {
		return menu.Snapshot{}, errors.Wrap(err, "decode catalog snapshot")
	}
	return snap, nil
}

// SaveCatalog writes the catalog snapshot atomically.
func (s *Store) SaveCatalog(ctx context.Context, snap menu.Snapshot) error {
	if err := writeFile(s.catalogPath, encodeCatalogSnapshot(snap)); err != nil {
		return errors.Wrap(err, "write catalog snapshot")
	}
	return nil
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if compressed(path) {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return io.ReadAll(r)
}

func writeFile(path string, data []byte) error {
	if compressed(path) {
		var buf bytes.Buffer
		gz := pgzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			return errors.Wrap(err, "gzip write")
		}
		if err := gz.Close(); err != nil {
			return errors.Wrap(err, "gzip close")
		}
		data = buf.Bytes()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
