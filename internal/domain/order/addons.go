package order

// AddOnSet is an order-preserving set of add-on names. Duplicates are
// rejected at the edge, so iteration order is exactly the order in which
// add-ons were attached.
type AddOnSet struct {
	names []string
	seen  map[string]struct{}
}

// NewAddOnSet builds a set from names, silently dropping duplicates.
func NewAddOnSet(names ...string) AddOnSet {
	var s AddOnSet
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name and reports whether it was newly added. Adding an
// existing name is a no-op returning false, never a silent duplicate.
func (s *AddOnSet) Add(name string) bool {
	if s.Contains(name) {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Remove deletes name and reports whether it was present.
func (s *AddOnSet) Remove(name string) bool {
	if !s.Contains(name) {
		return false
	}
	delete(s.seen, name)
	out := s.names[:0]
	for _, n := range s.names {
		if n != name {
			out = append(out, n)
		}
	}
	s.names = out
	return true
}

// Contains reports whether name is in the set.
func (s *AddOnSet) Contains(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Len returns the number of add-ons.
func (s *AddOnSet) Len() int {
	return len(s.names)
}

// Names returns the add-on names in insertion order.
func (s *AddOnSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Clone returns an independent copy.
func (s AddOnSet) Clone() AddOnSet {
	return NewAddOnSet(s.names...)
}
