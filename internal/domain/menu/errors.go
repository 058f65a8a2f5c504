package menu

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrFlavorNotFound is returned when a referenced flavor does not exist.
	ErrFlavorNotFound = errors.New("flavor not found")
	// ErrAddOnNotFound is returned when a referenced add-on does not exist.
	ErrAddOnNotFound = errors.New("add-on not found")
)

// DuplicateNameError indicates a catalog entry name collision on create.
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

// UnknownSizeError indicates a size label the catalog does not recognize.
type UnknownSizeError struct {
	Label string
}

func (e *UnknownSizeError) Error() string {
	return fmt.Sprintf("unknown size %q", e.Label)
}

// MissingPriceError indicates a flavor has no price entry for a size.
type MissingPriceError struct {
	Flavor string
	Size   string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("flavor %q has no price for size %q", e.Flavor, e.Size)
}
