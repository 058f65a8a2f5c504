// Package menu holds the pizzeria's mutable catalog of flavors, add-ons and
// recognized sizes. The catalog is the single source of truth for prices and
// prep-time bases; orders reference flavors and add-ons by name only, so
// removing a catalog entry never touches existing orders.
package menu

import (
	"github.com/shopspring/decimal"
)

// Size is a recognized pizza size with its preparation-time base.
type Size struct {
	Label           string
	BasePrepMinutes int
}

// Flavor is a named recipe with ingredients and one price per size.
type Flavor struct {
	Name        string
	Ingredients []string
	Prices      map[string]decimal.Decimal
}

// AddOn is an optional priced extra.
type AddOn struct {
	Name  string
	Price decimal.Decimal
}

// Catalog is the in-memory menu. It is not safe for concurrent use; the
// caller serializes access.
type Catalog struct {
	sizes       []Size
	flavors     map[string]*Flavor
	flavorOrder []string
	addOns      map[string]decimal.Decimal
	addOnOrder  []string
}

// New creates an empty catalog with a fixed set of recognized sizes.
// Sizes are extended only by replacing the catalog wholesale.
func New(sizes []Size) *Catalog {
	c := &Catalog{
		sizes:   make([]Size, len(sizes)),
		flavors: make(map[string]*Flavor),
		addOns:  make(map[string]decimal.Decimal),
	}
	copy(c.sizes, sizes)
	return c
}

// Sizes returns the recognized sizes in catalog order.
func (c *Catalog) Sizes() []Size {
	out := make([]Size, len(c.sizes))
	copy(out, c.sizes)
	return out
}

// SizeByLabel returns the size definition for label.
func (c *Catalog) SizeByLabel(label string) (Size, bool) {
	for _, s := range c.sizes {
		if s.Label == label {
			return s, true
		}
	}
	return Size{}, false
}

// HasSize reports whether label is a recognized size.
func (c *Catalog) HasSize(label string) bool {
	_, ok := c.SizeByLabel(label)
	return ok
}

// HasFlavor reports whether name is a known flavor.
func (c *Catalog) HasFlavor(name string) bool {
	_, ok := c.flavors[name]
	return ok
}

// Flavor returns a copy of the named flavor definition.
func (c *Catalog) Flavor(name string) (Flavor, bool) {
	f, ok := c.flavors[name]
	if !ok {
		return Flavor{}, false
	}
	return copyFlavor(f), true
}

// Flavors returns copies of all flavor definitions in insertion order.
func (c *Catalog) Flavors() []Flavor {
	out := make([]Flavor, 0, len(c.flavorOrder))
	for _, name := range c.flavorOrder {
		out = append(out, copyFlavor(c.flavors[name]))
	}
	return out
}

// AddOns returns all add-on definitions in insertion order.
func (c *Catalog) AddOns() []AddOn {
	out := make([]AddOn, 0, len(c.addOnOrder))
	for _, name := range c.addOnOrder {
		out = append(out, AddOn{Name: name, Price: c.addOns[name]})
	}
	return out
}

// AddFlavor registers a new flavor. The price map must cover every
// recognized size so that the flavor is immediately usable for orders.
func (c *Catalog) AddFlavor(name string, ingredients []string, prices map[string]decimal.Decimal) error {
	if _, ok := c.flavors[name]; ok {
		return &DuplicateNameError{Kind: "flavor", Name: name}
	}
	for _, s := range c.sizes {
		if _, ok := prices[s.Label]; !ok {
			return &MissingPriceError{Flavor: name, Size: s.Label}
		}
	}

	f := &Flavor{
		Name:        name,
		Ingredients: append([]string(nil), ingredients...),
		Prices:      make(map[string]decimal.Decimal, len(prices)),
	}
	for label, p := range prices {
		f.Prices[label] = p
	}

	c.flavors[name] = f
	c.flavorOrder = append(c.flavorOrder, name)
	return nil
}

// RemoveFlavor deletes a flavor. Orders already referencing it keep the
// name as a plain string.
func (c *Catalog) RemoveFlavor(name string) error {
	if _, ok := c.flavors[name]; !ok {
		return ErrFlavorNotFound
	}
	delete(c.flavors, name)
	c.flavorOrder = remove(c.flavorOrder, name)
	return nil
}

// AddAddOn registers a new priced add-on.
func (c *Catalog) AddAddOn(name string, price decimal.Decimal) error {
	if _, ok := c.addOns[name]; ok {
		return &DuplicateNameError{Kind: "add-on", Name: name}
	}
	c.addOns[name] = price
	c.addOnOrder = append(c.addOnOrder, name)
	return nil
}

// RemoveAddOn deletes an add-on.
func (c *Catalog) RemoveAddOn(name string) error {
	if _, ok := c.addOns[name]; !ok {
		return ErrAddOnNotFound
	}
	delete(c.addOns, name)
	c.addOnOrder = remove(c.addOnOrder, name)
	return nil
}

// RepriceFlavor sets a new price for one size of an existing flavor.
func (c *Catalog) RepriceFlavor(name, size string, price decimal.Decimal) error {
	f, ok := c.flavors[name]
	if !ok {
		return ErrFlavorNotFound
	}
	if !c.HasSize(size) {
		return &UnknownSizeError{Label: size}
	}
	f.Prices[size] = price
	return nil
}

// RepriceAddOn sets a new price for an existing add-on.
func (c *Catalog) RepriceAddOn(name string, price decimal.Decimal) error {
	if _, ok := c.addOns[name]; !ok {
		return ErrAddOnNotFound
	}
	c.addOns[name] = price
	return nil
}

// Price returns the configured price for the flavor at the given size.
// Lookup is strict: a missing flavor or a missing size entry is an error,
// never a silent default.
func (c *Catalog) Price(flavor, size string) (decimal.Decimal, error) {
	f, ok := c.flavors[flavor]
	if !ok {
		return decimal.Zero, ErrFlavorNotFound
	}
	p, ok := f.Prices[size]
	if !ok {
		return decimal.Zero, &MissingPriceError{Flavor: flavor, Size: size}
	}
	return p, nil
}

// AddOnPrice returns the price of an add-on. Unlike Price, absence is not an
// error: add-ons may be removed from the catalog after orders referenced
// them, so callers treat a missing entry as contributing zero.
func (c *Catalog) AddOnPrice(name string) (decimal.Decimal, bool) {
	p, ok := c.addOns[name]
	return p, ok
}

func copyFlavor(f *Flavor) Flavor {
	out := Flavor{
		Name:        f.Name,
		Ingredients: append([]string(nil), f.Ingredients...),
		Prices:      make(map[string]decimal.Decimal, len(f.Prices)),
	}
	for label, p := range f.Prices {
		out.Prices[label] = p
	}
	return out
}

func remove(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
