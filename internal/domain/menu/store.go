package menu

import "context"

// Snapshot is a plain-data view of a catalog, used by persistence adapters.
// The encoding on the other side of a Store is opaque to this package.
type Snapshot struct {
	Sizes   []Size
	Flavors []Flavor
	AddOns  []AddOn
}

// Store persists whole catalogs. A catalog is never patched in place: loads
// and saves replace it wholesale.
type Store interface {
	LoadCatalog(ctx context.Context) (Snapshot, error)
	SaveCatalog(ctx context.Context, s Snapshot) error
}

// Snapshot returns a deep plain-data copy of the catalog.
func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{
		Sizes:   c.Sizes(),
		Flavors: c.Flavors(),
		AddOns:  c.AddOns(),
	}
}

// FromSnapshot rebuilds a catalog from a persisted snapshot.
func FromSnapshot(s Snapshot) (*Catalog, error) {
	c := New(s.Sizes)
	for _, f := range s.Flavors {
		if err := c.AddFlavor(f.Name, f.Ingredients, f.Prices); err != nil {
			return nil, err
		}
	}
	for _, a := range s.AddOns {
		if err := c.AddAddOn(a.Name, a.Price); err != nil {
			return nil, err
		}
	}
	return c, nil
}
