package mapping

import "strings"

// PersistentPropertyPath is an ordered property chain resolved from a
// dotted path such as "address.city". The inverse of resolution is
// DotPath.
type PersistentPropertyPath struct {
	segments []*PersistentProperty
}

// Segments returns a copy of the property chain, base first.
func (p *PersistentPropertyPath) Segments() []*PersistentProperty {
	out := make([]*PersistentProperty, len(p.segments))
	copy(out, p.segments)
	return out
}

// Base returns the first property of the path.
func (p *PersistentPropertyPath) Base() *PersistentProperty {
	return p.segments[0]
}

// Leaf returns the last property of the path.
func (p *PersistentPropertyPath) Leaf() *PersistentProperty {
	return p.segments[len(p.segments)-1]
}

// Len returns the number of segments.
func (p *PersistentPropertyPath) Len() int {
	return len(p.segments)
}

// DotPath renders the path back into dotted-string form.
func (p *PersistentPropertyPath) DotPath() string {
	names := make([]string, len(p.segments))
	for i, s := range p.segments {
		names[i] = s.Name()
	}
	return strings.Join(names, ".")
}

// String implements fmt.Stringer.
func (p *PersistentPropertyPath) String() string {
	return p.DotPath()
}
