package queue

import (
	"context"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/order"
	"github.com/ovenline/pizzeria/internal/domain/pricing"
)

// EnqueueRequest holds the input for placing an order.
type EnqueueRequest struct {
	Customer order.Customer
	Flavor   string
	Size     string
	AddOns   []string
	Notes    string
}

// Enqueue validates the request against the catalog, assigns the next order
// number, derives the prep estimate and appends the order to the pending
// queue. The snapshot is persisted before returning.
func (q *Queue) Enqueue(ctx context.Context, req EnqueueRequest) (*order.Order, error) {
	if !q.catalog.HasFlavor(req.Flavor) {
		return nil, &UnknownFlavorError{Name: req.Flavor}
	}
	if !q.catalog.HasSize(req.Size) {
		return nil, &menu.UnknownSizeError{Label: req.Size}
	}

	addOns := order.AddOnSet{}
	for _, name := range req.AddOns {
		if _, ok := q.catalog.AddOnPrice(name); !ok {
			return nil, &UnknownAddOnError{Name: name}
		}
		if !addOns.Add(name) {
			return nil, &DuplicateAddOnError{Name: name}
		}
	}

	prep, err := pricing.PrepMinutes(q.catalog, req.Size, addOns.Len())
	if err != nil {
		return nil, err
	}

	o := &order.Order{
		Number:      q.nextNumber,
		Customer:    req.Customer,
		Flavor:      req.Flavor,
		Size:        req.Size,
		AddOns:      addOns,
		Notes:       req.Notes,
		CreatedAt:   q.now(),
		Status:      order.StatusPending,
		PrepMinutes: prep,
	}
	q.nextNumber++
	q.pending = append(q.pending, o)

	if err := q.persist(ctx); err != nil {
		return o.Clone(), err
	}
	return o.Clone(), nil
}

// Deliver removes the pending order at position (0 is the oldest), marks it
// Delivered and appends it to history. Any pending order may be delivered
// out of queue order.
func (q *Queue) Deliver(ctx context.Context, position int) (*order.Order, error) {
	if len(q.pending) == 0 {
		return nil, ErrEmptyQueue
	}
	if position < 0 || position >= len(q.pending) {
		return nil, &PositionError{Position: position, Length: len(q.pending)}
	}

	o := q.pending[position]
	q.pending = append(q.pending[:position], q.pending[position+1:]...)
	o.Status = order.StatusDelivered
	q.history = append(q.history, o)

	if err := q.persist(ctx); err != nil {
		return o.Clone(), err
	}
	return o.Clone(), nil
}

// DeliverNext delivers the oldest pending order (FIFO default).
func (q *Queue) DeliverNext(ctx context.Context) (*order.Order, error) {
	return q.Deliver(ctx, 0)
}

// UpdateStatus applies a status transition to a pending order. A transition
// into a terminal state (Delivered or Cancelled) transfers the order to
// history; after that it is immutable.
func (q *Queue) UpdateStatus(ctx context.Context, number int64, next order.Status) (*order.Order, error) {
	o, err := q.mutable(number)
	if err != nil {
		return nil, err
	}
	if err := o.TransitionTo(next); err != nil {
		return nil, err
	}

	if next.Terminal() {
		q.removePending(number)
		q.history = append(q.history, o)
	}

	if err := q.persist(ctx); err != nil {
		return o.Clone(), err
	}
	return o.Clone(), nil
}

// Cancel moves a pending order to history marked Cancelled. Cancelled
// entries are kept for the record but excluded from every sales aggregate.
func (q *Queue) Cancel(ctx context.Context, number int64) (*order.Order, error) {
	return q.UpdateStatus(ctx, number, order.StatusCancelled)
}

func (q *Queue) removePending(number int64) {
	for i, o := range q.pending {
		if o.Number == number {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}
