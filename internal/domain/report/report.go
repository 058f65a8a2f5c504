// Package report aggregates the completed-order history into sales
// statistics over a time window.
//
// Revenue is computed with the catalog prices current at report time, not
// the prices in effect when each order was placed. Reports over the same
// window are therefore not reproducible across catalog edits; this is a
// known limitation of the pricing model, kept deliberately.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/domain/order"
	"github.com/ovenline/pizzeria/internal/domain/pricing"
)

// TopN is how many flavors and add-ons the popularity rankings keep.
const TopN = 3

// dayFormat keys the per-day counts by the order's creation calendar day.
const dayFormat = "2006-01-02"

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// LastDay returns the 24-hour window ending at now.
func LastDay(now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -1), End: now}
}

// LastWeek returns the 7-day window ending at now.
func LastWeek(now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -7), End: now}
}

// LastMonth returns the 30-day window ending at now.
func LastMonth(now time.Time) Window {
	return Window{Start: now.AddDate(0, 0, -30), End: now}
}

// AllHistory returns a window covering every recorded order up to now.
func AllHistory(now time.Time) Window {
	return Window{Start: time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC), End: now}
}

// Count is a named tally, used for flavor and add-on rankings.
type Count struct {
	Name  string
	Count int
}

// SizeShare is a size tally with its share of the total order count.
type SizeShare struct {
	Label   string
	Count   int
	Percent float64
}

// DailyCount is the number of orders created on one calendar day.
type DailyCount struct {
	Day   string
	Count int
}

// Summary holds the aggregate statistics for one window.
type Summary struct {
	Window       Window
	TotalOrders  int
	TotalRevenue decimal.Decimal
	TopFlavors   []Count
	TopAddOns    []Count
	Sizes        []SizeShare
	Daily        []DailyCount
}

// Build runs a single pass over history, keeping only entries delivered
// (not cancelled) inside the window, and computes counts, revenue and
// popularity rankings. Cancelled orders are excluded from every aggregate.
// An empty filtered set yields a zero summary; there is no division by a
// zero total.
func Build(history []*order.Order, catalog *menu.Catalog, window Window) Summary {
	s := Summary{Window: window, TotalRevenue: decimal.Zero}

	flavors := newTally()
	addOns := newTally()
	sizes := newTally()
	days := make(map[string]int)

	for _, o := range history {
		if o.Status == order.StatusCancelled || !window.Contains(o.CreatedAt) {
			continue
		}
		s.TotalOrders++

		// Orphaned orders (flavor or size no longer priced) still count
		// toward popularity but contribute zero revenue.
		if v, err := pricing.Value(catalog, o.Flavor, o.Size, o.AddOns.Names()); err == nil {
			s.TotalRevenue = s.TotalRevenue.Add(v)
		}

		flavors.add(o.Flavor)
		sizes.add(o.Size)
		for _, a := range o.AddOns.Names() {
			addOns.add(a)
		}
		days[o.CreatedAt.Format(dayFormat)]++
	}

	if s.TotalOrders == 0 {
		return s
	}

	s.TopFlavors = top(flavors.ranked(), TopN)
	s.TopAddOns = top(addOns.ranked(), TopN)

	for _, c := range sizes.ranked() {
		s.Sizes = append(s.Sizes, SizeShare{
			Label:   c.Name,
			Count:   c.Count,
			Percent: 100 * float64(c.Count) / float64(s.TotalOrders),
		})
	}

	for day := range days {
		s.Daily = append(s.Daily, DailyCount{Day: day, Count: days[day]})
	}
	sort.Slice(s.Daily, func(i, j int) bool { return s.Daily[i].Day < s.Daily[j].Day })

	return s
}

// tally counts names while remembering first-seen order, so that ranking
// ties break deterministically in favor of the earlier occurrence.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(name string) {
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

// ranked returns the tallies sorted by count descending. The sort is stable
// over first-seen order.
func (t *tally) ranked() []Count {
	out := make([]Count, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Count{Name: name, Count: t.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func top(counts []Count, n int) []Count {
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
