package mapping

import (
	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

// PersistentEntity is the metadata for one mapped type: its non-transient
// properties, the subset that are associations, its identifier property,
// and its preferred constructor.
//
// Entities are mutated only by the owning Context during population and
// must be treated as immutable once published; Verified reports whether
// publication has happened.
type PersistentEntity struct {
	class    *typeinfo.Class
	typeInfo *typeinfo.TypeInformation

	properties map[string]*PersistentProperty
	order      []string
	assocs     map[string]*Association

	idProperty   *PersistentProperty
	idCandidates []*PersistentProperty

	ctor    *PreferredConstructor
	ctorErr error

	verified bool
}

func newPersistentEntity(ti *typeinfo.TypeInformation) *PersistentEntity {
	return &PersistentEntity{
		class:      ti.Type(),
		typeInfo:   ti,
		properties: make(map[string]*PersistentProperty),
		assocs:     make(map[string]*Association),
	}
}

// Name returns the mapped type's name.
func (e *PersistentEntity) Name() string {
	return e.class.Name
}

// Type returns the resolved class descriptor.
func (e *PersistentEntity) Type() *typeinfo.Class {
	return e.class
}

// TypeInformation returns the entity's type information node.
func (e *PersistentEntity) TypeInformation() *typeinfo.TypeInformation {
	return e.typeInfo
}

// PersistentProperty returns the named property, association or not.
func (e *PersistentEntity) PersistentProperty(name string) (*PersistentProperty, bool) {
	p, ok := e.properties[name]
	return p, ok
}

// Properties returns all properties in declaration order.
func (e *PersistentEntity) Properties() []*PersistentProperty {
	out := make([]*PersistentProperty, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.properties[name])
	}
	return out
}

// Associations returns all associations in declaration order.
func (e *PersistentEntity) Associations() []*Association {
	out := make([]*Association, 0, len(e.assocs))
	for _, name := range e.order {
		if a, ok := e.assocs[name]; ok {
			out = append(out, a)
		}
	}
	return out
}

// IDProperty returns the identifier property, if one is designated.
func (e *PersistentEntity) IDProperty() (*PersistentProperty, bool) {
	if e.idProperty == nil {
		return nil, false
	}
	return e.idProperty, true
}

// PreferredConstructor returns the constructor chosen for instantiation, or
// nil when the type declares none.
func (e *PersistentEntity) PreferredConstructor() *PreferredConstructor {
	return e.ctor
}

// DoWithProperties invokes fn once per plain property: non-transient and
// not an association.
func (e *PersistentEntity) DoWithProperties(fn func(*PersistentProperty)) {
	for _, name := range e.order {
		p := e.properties[name]
		if p.IsAssociation() {
			continue
		}
		fn(p)
	}
}

// DoWithAssociations invokes fn once per association.
func (e *PersistentEntity) DoWithAssociations(fn func(*Association)) {
	for _, name := range e.order {
		if a, ok := e.assocs[name]; ok {
			fn(a)
		}
	}
}

// Verified reports whether the entity passed verification and was
// published.
func (e *PersistentEntity) Verified() bool {
	return e.verified
}

func (e *PersistentEntity) addProperty(p *PersistentProperty) {
	if _, exists := e.properties[p.name]; !exists {
		e.order = append(e.order, p.name)
	}
	e.properties[p.name] = p
}

func (e *PersistentEntity) addAssociation(a *Association) {
	e.assocs[a.inverse.name] = a
}

func (e *PersistentEntity) recordIDCandidate(p *PersistentProperty) {
	p.isID = true
	e.idCandidates = append(e.idCandidates, p)
	if e.idProperty == nil {
		e.idProperty = p
	}
}
