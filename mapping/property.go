package mapping

import (
	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

// PersistentProperty is one non-transient declared member of an entity. The
// container-related attributes are derived once from the resolved type
// information, consistent with the resolver's component-type rules.
type PersistentProperty struct {
	name  string
	field typeinfo.Field

	typeInfo  *typeinfo.TypeInformation
	component *typeinfo.TypeInformation
	target    *typeinfo.TypeInformation

	// owner is a lookup-only back-reference; it never manages the
	// property's lifetime.
	owner *PersistentEntity

	isID          bool
	isAssociation bool
	collection    bool
	mapLike       bool
}

func newProperty(owner *PersistentEntity, field typeinfo.Field, ti *typeinfo.TypeInformation) *PersistentProperty {
	p := &PersistentProperty{
		name:       field.Name,
		field:      field,
		typeInfo:   ti,
		owner:      owner,
		collection: ti.IsCollectionLike(),
		mapLike:    ti.IsMap(),
	}

	if p.mapLike {
		if value, err := ti.MapValueType(); err == nil {
			p.component = value
		}
	} else if p.collection {
		if component, ok := ti.ComponentType(); ok {
			p.component = component
		}
	}

	// The entity-bearing type: the element/value type for containers, the
	// property type itself otherwise.
	p.target = ti
	if p.component != nil {
		p.target = p.component
	}

	return p
}

// Name returns the property name, unique within the owning entity.
func (p *PersistentProperty) Name() string {
	return p.name
}

// TypeInformation returns the resolved declared type of the property.
func (p *PersistentProperty) TypeInformation() *typeinfo.TypeInformation {
	return p.typeInfo
}

// Owner returns the entity declaring this property.
func (p *PersistentProperty) Owner() *PersistentEntity {
	return p.owner
}

// Markers returns the capability flags attached to the underlying field.
func (p *PersistentProperty) Markers() typeinfo.Marker {
	return p.field.Markers
}

// IsID reports whether the property is the designated identifier.
func (p *PersistentProperty) IsID() bool {
	return p.isID
}

// IsAssociation reports whether the property denotes a reference to another
// entity rather than an embedded or simple value.
func (p *PersistentProperty) IsAssociation() bool {
	return p.isAssociation
}

// IsCollectionLike reports whether the property type is an array or
// sequence.
func (p *PersistentProperty) IsCollectionLike() bool {
	return p.collection
}

// IsMap reports whether the property type is map-like.
func (p *PersistentProperty) IsMap() bool {
	return p.mapLike
}

// ComponentType returns the element type for collection-typed properties
// and the value type for map-typed ones.
func (p *PersistentProperty) ComponentType() (*typeinfo.TypeInformation, bool) {
	if p.component == nil {
		return nil, false
	}
	return p.component, true
}

// TargetTypeInformation returns the type a reference to this property leads
// to: the component/value type for containers, the property type itself
// otherwise.
func (p *PersistentProperty) TargetTypeInformation() *typeinfo.TypeInformation {
	return p.target
}

// FieldName returns the storage field name: the explicit override from the
// descriptor when present, else the snake_case form of the property name.
func (p *PersistentProperty) FieldName() string {
	if p.field.StorageName != "" {
		return p.field.StorageName
	}
	return toSnakeCase(p.name)
}

// String implements fmt.Stringer.
func (p *PersistentProperty) String() string {
	return p.owner.Name() + "." + p.name
}

// toSnakeCase converts a string to snake_case
func toSnakeCase(s string) string {
	var result []rune
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if prev >= 'a' && prev <= 'z' {
				result = append(result, '_')
			} else if i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z' {
				result = append(result, '_')
			} else if prev >= 'A' && prev <= 'Z' {
				result = append(result, '_')
			}
		}
		if r >= 'A' && r <= 'Z' {
			result = append(result, r+('a'-'A'))
		} else {
			result = append(result, r)
		}
	}
	return string(result)
}
