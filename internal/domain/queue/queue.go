// Package queue manages the pizzeria's pending orders and the append-only
// history of delivered and cancelled ones. A single Queue owns both
// collections plus the order-number counter; every order number lives in
// exactly one of the two collections at any time.
//
// The queue is not safe for concurrent use. Callers (one CLI or one HTTP
// adapter) serialize access; see the handler package.
package queue

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/order"
)

// Location tells a caller which collection an order was found in, and
// therefore whether it is still mutable.
type Location string

const (
	LocationPending Location = "pending"
	LocationHistory Location = "history"
)

// QueuedOrder is a pending order annotated with how long it has waited.
type QueuedOrder struct {
	Order   *order.Order
	Waiting time.Duration
}

// Queue holds the pending orders (insertion-ordered, FIFO by default), the
// delivery-ordered history and the monotonic number counter.
type Queue struct {
	catalog *menu.Catalog
	store   Store
	now     func() time.Time

	pending    []*order.Order
	history    []*order.Order
	nextNumber int64
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates an empty queue bound to a catalog and a snapshot store.
func New(catalog *menu.Catalog, store Store, opts ...Option) *Queue {
	q := &Queue{
		catalog:    catalog,
		store:      store,
		now:        time.Now,
		nextNumber: 1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Restore loads the persisted snapshot into the queue. On any load failure
// the queue keeps its empty default state and the error is returned for the
// caller to report; startup never aborts on a corrupt snapshot.
func (q *Queue) Restore(ctx context.Context) error {
	s, err := q.store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load snapshot")
	}
	q.pending = s.Pending
	q.history = s.History
	q.nextNumber = s.NextNumber
	if q.nextNumber < 1 {
		q.nextNumber = 1
	}
	return nil
}

// Snapshot returns a deep copy of the full queue state.
func (q *Queue) Snapshot() *Snapshot {
	s := &Snapshot{
		Pending:    q.pending,
		History:    q.history,
		NextNumber: q.nextNumber,
	}
	return s.Clone()
}

// Len returns the number of pending orders.
func (q *Queue) Len() int {
	return len(q.pending)
}

// PeekAll returns copies of all pending orders in queue order, each
// annotated with its elapsed wait time.
func (q *Queue) PeekAll() []QueuedOrder {
	now := q.now()
	out := make([]QueuedOrder, len(q.pending))
	for i, o := range q.pending {
		out[i] = QueuedOrder{
			Order:   o.Clone(),
			Waiting: now.Sub(o.CreatedAt),
		}
	}
	return out
}

// History returns copies of all history entries in delivery order.
func (q *Queue) History() []*order.Order {
	out := make([]*order.Order, len(q.history))
	for i, o := range q.history {
		out[i] = o.Clone()
	}
	return out
}

// Find locates an order by number, searching pending first, then history.
// The returned order is a copy; Location tells the caller whether the
// original is still mutable.
func (q *Queue) Find(number int64) (*order.Order, Location, error) {
	if o := q.findPending(number); o != nil {
		return o.Clone(), LocationPending, nil
	}
	for _, o := range q.history {
		if o.Number == number {
			return o.Clone(), LocationHistory, nil
		}
	}
	return nil, "", errors.Wrapf(ErrOrderNotFound, "order #%d", number)
}

func (q *Queue) findPending(number int64) *order.Order {
	for _, o := range q.pending {
		if o.Number == number {
			return o
		}
	}
	return nil
}

// persist writes the current state through the store. A failure is wrapped
// in ErrSnapshotSave; the in-memory state is already applied at that point
// and stays applied.
func (q *Queue) persist(ctx context.Context) error {
	if err := q.store.Save(ctx, q.Snapshot()); err != nil {
		return errors.Wrapf(ErrSnapshotSave, "%v", err)
	}
	return nil
}
