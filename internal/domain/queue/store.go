package queue

import (
	"context"

	"github.com/ovenline/pizzeria/internal/domain/order"
)

// Snapshot is the full persistable queue state. Its wire encoding is owned
// by the Store implementation, not by this package.
type Snapshot struct {
	Pending    []*order.Order
	History    []*order.Order
	NextNumber int64
}

// Store persists queue snapshots. Save is invoked after every mutating
// operation, so a crash loses at most the most recent single mutation.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Pending:    make([]*order.Order, len(s.Pending)),
		History:    make([]*order.Order, len(s.History)),
		NextNumber: s.NextNumber,
	}
	for i, o := range s.Pending {
		out.Pending[i] = o.Clone()
	}
	for i, o := range s.History {
		out.History[i] = o.Clone()
	}
	return out
}
