// Package pricing derives an order's monetary value and preparation
// estimate from catalog state at the moment of computation. Nothing here is
// cached: both functions are re-evaluated on demand so catalog edits take
// effect immediately.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ovenline/pizzeria/internal/domain/menu"
)

// MinutesPerAddOn is the prep-time surcharge for each add-on.
const MinutesPerAddOn = 2

// PrepMinutes returns the preparation estimate for a size with addOnCount
// add-ons: the size's base plus MinutesPerAddOn per add-on. An unrecognized
// size fails loud; there is no default size.
func PrepMinutes(catalog *menu.Catalog, size string, addOnCount int) (int, error) {
	s, ok := catalog.SizeByLabel(size)
	if !ok {
		return 0, &menu.UnknownSizeError{Label: size}
	}
	return s.BasePrepMinutes + MinutesPerAddOn*addOnCount, nil
}

// Value returns the order's price: the flavor's price for the size plus the
// sum of add-on prices. The flavor/size lookup is strict because a missing
// entry means a broken order; add-on lookups are tolerant because a missing
// add-on only means the catalog was edited after the order was created, and
// contributes zero.
func Value(catalog *menu.Catalog, flavor, size string, addOns []string) (decimal.Decimal, error) {
	total, err := catalog.Price(flavor, size)
	if err != nil {
		return decimal.Zero, err
	}
	for _, name := range addOns {
		if p, ok := catalog.AddOnPrice(name); ok {
			total = total.Add(p)
		}
	}
	return total, nil
}
