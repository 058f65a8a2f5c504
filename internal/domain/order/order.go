// Package order defines the order entity, its status machine and the
// order-preserving add-on set.
package order

import (
	"time"
)

// Customer identifies who placed an order.
type Customer struct {
	Name  string
	Phone string
}

// Order is a single customer order. Number is assigned once at creation and
// never reused. PrepMinutes is derived from size and add-on count and is
// recomputed by the queue whenever either changes.
type Order struct {
	Number      int64
	Customer    Customer
	Flavor      string
	Size        string
	AddOns      AddOnSet
	Notes       string
	CreatedAt   time.Time
	Status      Status
	PrepMinutes int
}

// Clone returns a deep copy. Read operations hand out clones so callers can
// never mutate queue-owned state.
func (o *Order) Clone() *Order {
	out := *o
	out.AddOns = o.AddOns.Clone()
	return &out
}

// TransitionTo moves the order to next, failing with InvalidTransitionError
// when the status machine does not allow the step.
func (o *Order) TransitionTo(next Status) error {
	if !next.Valid() || !o.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: o.Status, To: next}
	}
	o.Status = next
	return nil
}
