package mapping

import (
	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

// Association is a directed reference edge from a property to another
// entity. Inverse is the property on the owning side; Target is the type
// information the mapping context uses to resolve the referenced entity.
type Association struct {
	inverse *PersistentProperty
	target  *typeinfo.TypeInformation
}

// Inverse returns the owning-side property.
func (a *Association) Inverse() *PersistentProperty {
	return a.inverse
}

// TargetTypeInformation returns the referenced entity type.
func (a *Association) TargetTypeInformation() *typeinfo.TypeInformation {
	return a.target
}

// String implements fmt.Stringer.
func (a *Association) String() string {
	return a.inverse.String() + " -> " + a.target.Name()
}
