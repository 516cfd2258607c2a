package typeinfo

// Built-in class descriptors. These are the canonical descriptors for the
// terminal scalar types and the generic container families; both front ends
// resolve to these same pointers so that identity comparisons hold across
// independently described types.
var (
	// ObjectClass is the resolution fallback for unbound type variables.
	ObjectClass = &Class{Name: "Object"}

	StringClass  = &Class{Name: "String", Simple: true}
	BoolClass    = &Class{Name: "Bool", Simple: true}
	IntClass     = &Class{Name: "Int", Simple: true}
	Int64Class   = &Class{Name: "Int64", Simple: true}
	Float64Class = &Class{Name: "Float64", Simple: true}
	BytesClass   = &Class{Name: "Bytes", Simple: true}

	// TimeClass and UUIDClass cover the date/time and identifier scalars
	// that are non-primitive classes but must never be decomposed.
	TimeClass = &Class{Name: "Time", Simple: true}
	UUIDClass = &Class{Name: "UUID", Simple: true}

	// ListClass and SetClass are the generic sequence contracts;
	// MapClass is the generic key-value contract.
	ListClass = &Class{Name: "List", TypeParams: []string{"E"}, CollectionLike: true}
	SetClass  = &Class{Name: "Set", TypeParams: []string{"E"}, CollectionLike: true}
	MapClass  = &Class{Name: "Map", TypeParams: []string{"K", "V"}, MapLike: true}
)

// ListOf is shorthand for Generic(ListClass, elem).
func ListOf(elem Type) Type {
	return Generic(ListClass, elem)
}

// SetOf is shorthand for Generic(SetClass, elem).
func SetOf(elem Type) Type {
	return Generic(SetClass, elem)
}

// MapOf is shorthand for Generic(MapClass, key, value).
func MapOf(key, value Type) Type {
	return Generic(MapClass, key, value)
}
