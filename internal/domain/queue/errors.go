package queue

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrEmptyQueue is returned by delivery against an empty queue.
	ErrEmptyQueue = errors.New("no pending orders")
	// ErrOrderNotFound is returned when no order carries the given number.
	ErrOrderNotFound = errors.New("order not found")
	// ErrImmutableRecord is returned when a mutation targets a history
	// entry. History is append-only.
	ErrImmutableRecord = errors.New("order is in history and cannot be changed")
	// ErrSnapshotSave wraps persistence failures after a mutation. The
	// in-memory change is already applied when this is returned.
	ErrSnapshotSave = errors.New("snapshot save failed")
)

// PositionError indicates a delivery position outside [0, pending length).
type PositionError struct {
	Position int
	Length   int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d out of range, queue has %d orders", e.Position, e.Length)
}

// UnknownFlavorError indicates an order referenced a flavor the catalog
// does not have.
type UnknownFlavorError struct {
	Name string
}

func (e *UnknownFlavorError) Error() string {
	return fmt.Sprintf("flavor %q is not on the menu", e.Name)
}

// UnknownAddOnError indicates an order referenced an add-on the catalog
// does not have.
type UnknownAddOnError struct {
	Name string
}

func (e *UnknownAddOnError) Error() string {
	return fmt.Sprintf("add-on %q is not on the menu", e.Name)
}

// DuplicateAddOnError indicates an attempt to attach an add-on the order
// already has.
type DuplicateAddOnError struct {
	Name string
}

func (e *DuplicateAddOnError) Error() string {
	return fmt.Sprintf("add-on %q is already on the order", e.Name)
}

// AddOnNotOnOrderError indicates a removal of an add-on the order does not
// carry.
type AddOnNotOnOrderError struct {
	Name string
}

func (e *AddOnNotOnOrderError) Error() string {
	return fmt.Sprintf("add-on %q is not on the order", e.Name)
}
