package queue

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/order"
	"github.com/ovenline/pizzeria/internal/domain/pricing"
)

// mutable returns the pending order with the given number. History entries
// are append-only records: targeting one fails with ErrImmutableRecord.
func (q *Queue) mutable(number int64) (*order.Order, error) {
	if o := q.findPending(number); o != nil {
		return o, nil
	}
	for _, o := range q.history {
		if o.Number == number {
			return nil, errors.Wrapf(ErrImmutableRecord, "order #%d", number)
		}
	}
	return nil, errors.Wrapf(ErrOrderNotFound, "order #%d", number)
}

// SetFlavor changes a pending order's flavor. The new flavor must exist in
// the catalog. Prep time does not depend on flavor, so it is unchanged.
func (q *Queue) SetFlavor(ctx context.Context, number int64, flavor string) (*order.Order, error) {
	o, err := q.mutable(number)
	if err != nil {
		return nil, err
	}
	if !q.catalog.HasFlavor(flavor) {
		return nil, &UnknownFlavorError{Name: flavor}
	}
	o.Flavor = flavor
	return q.finish(ctx, o)
}

// SetSize changes a pending order's size and recomputes the prep estimate.
func (q *Queue) SetSize(ctx context.Context, number int64, size string) (*order.Order, error) {
	o, err := q.mutable(number)
	if err != nil {
		return nil, err
	}
	if !q.catalog.HasSize(size) {
		return nil, &menu.UnknownSizeError{Label: size}
	}
	o.Size = size
	return q.recompute(ctx, o)
}

// AddAddOn attaches a catalog add-on to a pending order. Attaching one the
// order already has fails with DuplicateAddOnError and changes nothing.
func (q *Queue) AddAddOn(ctx context.Context, number int64, name string) (*order.Order, error) {
	o, err := q.mutable(number)
	if err != nil {
		return nil, err
	}
	if _, ok := q.catalog.AddOnPrice(name); !ok {
		return nil, &UnknownAddOnError{Name: name}
	}
	if !o.AddOns.Add(name) {
		return nil, &DuplicateAddOnError{Name: name}
	}
	return q.recompute(ctx, o)
}

// RemoveAddOn detaches an add-on from a pending order.
func (q *Queue) RemoveAddOn(ctx context.Context, number int64, name string) (*order.Order, error) {
	o, err := q.mutable(number)
	if err != nil {
		return nil, err
	}
	if !o.AddOns.Remove(name) {
		return nil, &AddOnNotOnOrderError{Name: name}
	}
	return q.recompute(ctx, o)
}

// ReplaceAddOns swaps a pending order's add-ons wholesale. Every name must
// exist in the catalog; duplicates in the replacement list collapse.
func (q *Queue) ReplaceAddOns(ctx context.Context, number int64, names []string) (*order.Order, error) {
	o, err := q.mutable(number)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if _, ok := q.catalog.AddOnPrice(name); !ok {
			return nil, &UnknownAddOnError{Name: name}
		}
	}
	o.AddOns = order.NewAddOnSet(names...)
	return q.recompute(ctx, o)
}

// SetNotes replaces a pending order's free-text notes.
func (q *Queue) SetNotes(ctx context.Context, number int64, notes string) (*order.Order, error) {
	o, err := q.mutable(number)
	if err != nil {
		return nil, err
	}
	o.Notes = notes
	return q.finish(ctx, o)
}

// recompute refreshes the prep estimate after a size or add-on change, then
// persists.
func (q *Queue) recompute(ctx context.Context, o *order.Order) (*order.Order, error) {
	prep, err := pricing.PrepMinutes(q.catalog, o.Size, o.AddOns.Len())
	if err != nil {
		return nil, err
	}
	o.PrepMinutes = prep
	return q.finish(ctx, o)
}

func (q *Queue) finish(ctx context.Context, o *order.Order) (*order.Order, error) {
	if err := q.persist(ctx); err != nil {
		return o.Clone(), err
	}
	return o.Clone(), nil
}
