package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/order"
	"github.com/ovenline/pizzeria/internal/domain/queue"
)

const (
	selectOrdersSQL = `SELECT number, customer_name, customer_phone, flavor, size, add_ons, notes, created_at, status, prep_minutes
		FROM orders WHERE archived = $1 ORDER BY position`

	insertOrderSQL = `INSERT INTO orders (number, customer_name, customer_phone, flavor, size, add_ons, notes, created_at, status, archived, position, prep_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	selectCounterSQL = `SELECT next_number FROM order_counter WHERE id = 1`
	upsertCounterSQL = `INSERT INTO order_counter (id, next_number) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET next_number = EXCLUDED.next_number`
)

var (
	_ queue.Store = (*Store)(nil)
	_ menu.Store  = (*Store)(nil)
)

// Store implements the queue and catalog snapshot contracts backed by
// PostgreSQL. Saves replace table contents wholesale inside a transaction,
// matching the snapshot semantics of the file store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store that uses the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Load reads the full queue snapshot.
func (s *Store) Load(ctx context.Context) (*queue.Snapshot, error) {
	snap := &queue.Snapshot{NextNumber: 1}

	pending, err := s.loadOrders(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, "load pending orders")
	}
	snap.Pending = pending

	history, err := s.loadOrders(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "load history")
	}
	snap.History = history

	err = s.pool.QueryRow(ctx, selectCounterSQL).Scan(&snap.NextNumber)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(err, "load order counter")
	}
	return snap, nil
}

func (s *Store) loadOrders(ctx context.Context, archived bool) ([]*order.Order, error) {
	rows, err := s.pool.Query(ctx, selectOrdersSQL, archived)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (*order.Order, error) {
	var (
		o      order.Order
		addOns []string
		status string
	)
	err := row.Scan(
		&o.Number, &o.Customer.Name, &o.Customer.Phone, &o.Flavor, &o.Size,
		&addOns, &o.Notes, &o.CreatedAt, &status, &o.PrepMinutes,
	)
	if err != nil {
		return nil, err
	}
	o.AddOns = order.NewAddOnSet(addOns...)
	o.Status = order.Status(status)
	if !o.Status.Valid() {
		return nil, errors.Errorf("order #%d has unknown status %q", o.Number, status)
	}
	return &o, nil
}

// Save replaces the persisted queue state with snap.
func (s *Store) Save(ctx context.Context, snap *queue.Snapshot) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM orders`); err != nil {
			return errors.Wrap(err, "clear orders")
		}
		if err := insertOrders(ctx, tx, snap.Pending, false); err != nil {
			return errors.Wrap(err, "insert pending orders")
		}
		if err := insertOrders(ctx, tx, snap.History, true); err != nil {
			return errors.Wrap(err, "insert history")
		}
		if _, err := tx.Exec(ctx, upsertCounterSQL, snap.NextNumber); err != nil {
			return errors.Wrap(err, "store order counter")
		}
		return nil
	})
}

func insertOrders(ctx context.Context, tx pgx.Tx, orders []*order.Order, archived bool) error {
	for i, o := range orders {
		_, err := tx.Exec(ctx, insertOrderSQL,
			o.Number, o.Customer.Name, o.Customer.Phone, o.Flavor, o.Size,
			o.AddOns.Names(), o.Notes, o.CreatedAt, string(o.Status), archived, i, o.PrepMinutes,
		)
		if err != nil {
			return errors.Wrapf(err, "order #%d", o.Number)
		}
	}
	return nil
}

// LoadCatalog reads the full catalog snapshot.
func (s *Store) LoadCatalog(ctx context.Context) (menu.Snapshot, error) {
	var snap menu.Snapshot

	rows, err := s.pool.Query(ctx, `SELECT label, base_prep_minutes FROM sizes ORDER BY position`)
	if err != nil {
		return snap, errors.Wrap(err, "load sizes")
	}
	snap.Sizes, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (menu.Size, error) {
		var size menu.Size
		err := row.Scan(&size.Label, &size.BasePrepMinutes)
		return size, err
	})
	if err != nil {
		return snap, errors.Wrap(err, "scan sizes")
	}

	rows, err = s.pool.Query(ctx, `SELECT name, ingredients FROM flavors ORDER BY position`)
	if err != nil {
		return snap, errors.Wrap(err, "load flavors")
	}
	snap.Flavors, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (menu.Flavor, error) {
		f := menu.Flavor{Prices: make(map[string]decimal.Decimal)}
		err := row.Scan(&f.Name, &f.Ingredients)
		return f, err
	})
	if err != nil {
		return snap, errors.Wrap(err, "scan flavors")
	}

	if err := s.loadFlavorPrices(ctx, snap.Flavors); err != nil {
		return snap, err
	}

	rows, err = s.pool.Query(ctx, `SELECT name, price FROM add_ons ORDER BY position`)
	if err != nil {
		return snap, errors.Wrap(err, "load add-ons")
	}
	snap.AddOns, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (menu.AddOn, error) {
		var a menu.AddOn
		err := row.Scan(&a.Name, &a.Price)
		return a, err
	})
	if err != nil {
		return snap, errors.Wrap(err, "scan add-ons")
	}
	return snap, nil
}

func (s *Store) loadFlavorPrices(ctx context.Context, flavors []menu.Flavor) error {
	rows, err := s.pool.Query(ctx, `SELECT flavor_name, size_label, price FROM flavor_prices`)
	if err != nil {
		return errors.Wrap(err, "load flavor prices")
	}
	defer rows.Close()

	byName := make(map[string]*menu.Flavor, len(flavors))
	for i := range flavors {
		byName[flavors[i].Name] = &flavors[i]
	}

	for rows.Next() {
		var (
			name, label string
			price       decimal.Decimal
		)
		if err := rows.Scan(&name, &label, &price); err != nil {
			return errors.Wrap(err, "scan flavor price")
		}
		if f, ok := byName[name]; ok {
			f.Prices[label] = price
		}
	}
	return errors.Wrap(rows.Err(), "flavor prices")
}

// SaveCatalog replaces the persisted catalog with snap.
func (s *Store) SaveCatalog(ctx context.Context, snap menu.Snapshot) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, table := range []string{"flavor_prices", "flavors", "add_ons", "sizes"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
				return errors.Wrapf(err, "clear %s", table)
			}
		}

		for i, size := range snap.Sizes {
			_, err := tx.Exec(ctx, `INSERT INTO sizes (label, base_prep_minutes, position) VALUES ($1, $2, $3)`,
				size.Label, size.BasePrepMinutes, i)
			if err != nil {
				return errors.Wrapf(err, "size %q", size.Label)
			}
		}

		for i, f := range snap.Flavors {
			_, err := tx.Exec(ctx, `INSERT INTO flavors (name, ingredients, position) VALUES ($1, $2, $3)`,
				f.Name, f.Ingredients, i)
			if err != nil {
				return errors.Wrapf(err, "flavor %q", f.Name)
			}
			for _, size := range snap.Sizes {
				p, ok := f.Prices[size.Label]
				if !ok {
					continue
				}
				_, err := tx.Exec(ctx, `INSERT INTO flavor_prices (flavor_name, size_label, price) VALUES ($1, $2, $3)`,
					f.Name, size.Label, p)
				if err != nil {
					return errors.Wrapf(err, "price for %q/%q", f.Name, size.Label)
				}
			}
		}

		for i, a := range snap.AddOns {
			_, err := tx.Exec(ctx, `INSERT INTO add_ons (name, price, position) VALUES ($1, $2, $3)`,
				a.Name, a.Price, i)
			if err != nil {
				return errors.Wrapf(err, "add-on %q", a.Name)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit")
}
