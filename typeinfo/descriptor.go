package typeinfo

// Marker is a capability flag attached to a field or constructor by the
// front end that produced the descriptor (struct tags, builder calls).
// The mapping layer only consumes the resulting flags; it never inspects
// annotations itself.
type Marker uint8

const (
	// MarkerTransient excludes a field from mapping entirely.
	MarkerTransient Marker = 1 << iota

	// MarkerID designates a field as the identifier property.
	MarkerID

	// MarkerValue marks a computed/expression field. Presence forces
	// transience: a computed value is never a persisted one.
	MarkerValue

	// MarkerInjected marks a framework-injected dependency. Forces
	// transience.
	MarkerInjected

	// MarkerReference forces a field to be treated as an association
	// regardless of the active association policy.
	MarkerReference

	// MarkerSynthetic marks compiler-generated members (outer-class
	// back-references and the like). Synthetic fields are skipped before
	// transience is even considered.
	MarkerSynthetic
)

// Has reports whether all flags in m are set.
func (s Marker) Has(m Marker) bool {
	return s&m == m
}

// String renders the set for diagnostics.
func (s Marker) String() string {
	names := []struct {
		m    Marker
		name string
	}{
		{MarkerTransient, "transient"},
		{MarkerID, "id"},
		{MarkerValue, "value"},
		{MarkerInjected, "injected"},
		{MarkerReference, "reference"},
		{MarkerSynthetic, "synthetic"},
	}
	out := ""
	for _, n := range names {
		if s.Has(n.m) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// Field describes one declared member of a class.
type Field struct {
	Name    string
	Type    Type
	Markers Marker

	// StorageName overrides the derived storage field name when set.
	StorageName string
}

// Param describes one constructor parameter.
type Param struct {
	Name string
	Type Type
}

// Constructor describes one declared constructor. A constructor with no
// parameters is the default constructor.
type Constructor struct {
	Params []Param

	// Persistence marks the constructor explicitly designated for
	// persistence instantiation.
	Persistence bool
}

// IsDefault reports whether the constructor takes no arguments.
func (c Constructor) IsDefault() bool {
	return len(c.Params) == 0
}

// Class is the descriptor for one declared type: its generic parameters,
// supertype, fields, and constructors. Descriptors are identified by
// pointer; the front end that produces them is responsible for handing out
// one descriptor per type.
type Class struct {
	Name       string
	TypeParams []string

	// Super is the declared supertype: a ClassRef or a Parameterized
	// whose arguments bind the supertype's variables. Nil for roots.
	Super Type

	Fields       []Field
	Constructors []Constructor

	// Simple marks terminal scalar types that are never decomposed into
	// properties (primitives, strings, date/time, identifiers).
	Simple bool

	// CollectionLike marks classes implementing the sequence/iterable
	// contract; MapLike marks key-value containers.
	CollectionLike bool
	MapLike        bool
}

// NewClass creates a class descriptor with the given generic parameter
// names.
func NewClass(name string, typeParams ...string) *Class {
	return &Class{Name: name, TypeParams: typeParams}
}

// Extends sets the declared supertype and returns the class for chaining.
func (c *Class) Extends(super Type) *Class {
	c.Super = super
	return c
}

// WithField appends a field and returns the class for chaining.
func (c *Class) WithField(name string, t Type, markers ...Marker) *Class {
	var set Marker
	for _, m := range markers {
		set |= m
	}
	c.Fields = append(c.Fields, Field{Name: name, Type: t, Markers: set})
	return c
}

// WithStoredField appends a field with an explicit storage name.
func (c *Class) WithStoredField(name, storageName string, t Type, markers ...Marker) *Class {
	c.WithField(name, t, markers...)
	c.Fields[len(c.Fields)-1].StorageName = storageName
	return c
}

// WithConstructor appends a constructor.
func (c *Class) WithConstructor(params ...Param) *Class {
	c.Constructors = append(c.Constructors, Constructor{Params: params})
	return c
}

// WithPersistenceConstructor appends a constructor explicitly marked as the
// persistence constructor.
func (c *Class) WithPersistenceConstructor(params ...Param) *Class {
	c.Constructors = append(c.Constructors, Constructor{Params: params, Persistence: true})
	return c
}

// FieldNamed returns the field declared on this class or inherited from its
// erased supertype chain. Subclass fields shadow supertype fields of the
// same name.
func (c *Class) FieldNamed(name string) (Field, bool) {
	for cur := c; cur != nil; cur = erasedSuper(cur) {
		for _, f := range cur.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}

// AllFields returns the declared fields of this class and its erased
// supertype chain, subclass-first, with shadowed supertype fields omitted.
func (c *Class) AllFields() []Field {
	var out []Field
	seen := make(map[string]bool)
	for cur := c; cur != nil; cur = erasedSuper(cur) {
		for _, f := range cur.Fields {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}

// erasedSuper returns the raw class of the declared supertype, or nil.
func erasedSuper(c *Class) *Class {
	switch s := c.Super.(type) {
	case ClassRef:
		return s.Class
	case Parameterized:
		return s.Raw
	default:
		return nil
	}
}
