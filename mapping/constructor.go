package mapping

import (
	"errors"
	"fmt"

	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

// ErrAmbiguousConstructor is returned when no single constructor can be
// designated for persistence instantiation. It is recorded during
// population and surfaced through verification.
var ErrAmbiguousConstructor = errors.New("ambiguous persistence constructor")

// ConstructorParameter carries the name and resolved type of one preferred
// constructor argument.
type ConstructorParameter struct {
	name       string
	typeInfo   *typeinfo.TypeInformation
	entityType *typeinfo.TypeInformation
}

// Name returns the declared parameter name, or the positional fallback
// (param0, param1, ...) when the descriptor carries none.
func (p ConstructorParameter) Name() string {
	return p.name
}

// TypeInformation returns the parameter's resolved declared type.
func (p ConstructorParameter) TypeInformation() *typeinfo.TypeInformation {
	return p.typeInfo
}

// EntityType returns the parameter type with one level of container nesting
// unwrapped: the element type for sequences, the value type for maps, the
// parameter type itself otherwise.
func (p ConstructorParameter) EntityType() *typeinfo.TypeInformation {
	return p.entityType
}

// PreferredConstructor is the constructor selected for instantiating an
// entity.
type PreferredConstructor struct {
	params   []ConstructorParameter
	explicit bool
}

// Parameters returns the constructor arguments in declaration order.
func (c *PreferredConstructor) Parameters() []ConstructorParameter {
	out := make([]ConstructorParameter, len(c.params))
	copy(out, c.params)
	return out
}

// IsExplicit reports whether the constructor was explicitly marked as the
// persistence constructor rather than selected by defaulting rules.
func (c *PreferredConstructor) IsExplicit() bool {
	return c.explicit
}

// IsNoArg reports whether the constructor takes no arguments.
func (c *PreferredConstructor) IsNoArg() bool {
	return len(c.params) == 0
}

// selectPreferredConstructor applies the selection rules: an explicitly
// marked persistence constructor wins; otherwise a sole non-default
// constructor; otherwise the default constructor. More than one marked
// constructor, or several unmarked non-default ones, is ambiguous.
func selectPreferredConstructor(cls *typeinfo.Class, root *typeinfo.TypeInformation) (*PreferredConstructor, error) {
	if len(cls.Constructors) == 0 {
		return nil, nil
	}

	var marked, nonDefault []typeinfo.Constructor
	hasDefault := false
	for _, ctor := range cls.Constructors {
		if ctor.Persistence {
			marked = append(marked, ctor)
		}
		if ctor.IsDefault() {
			hasDefault = true
		} else {
			nonDefault = append(nonDefault, ctor)
		}
	}

	var chosen typeinfo.Constructor
	explicit := false
	switch {
	case len(marked) > 1:
		return nil, fmt.Errorf("%w: %d constructors marked for %s", ErrAmbiguousConstructor, len(marked), cls.Name)
	case len(marked) == 1:
		chosen, explicit = marked[0], true
	case len(nonDefault) == 1:
		chosen = nonDefault[0]
	case len(nonDefault) == 0 && hasDefault:
		chosen = typeinfo.Constructor{}
	default:
		return nil, fmt.Errorf("%w: %d candidate constructors for %s", ErrAmbiguousConstructor, len(nonDefault), cls.Name)
	}

	pc := &PreferredConstructor{explicit: explicit}
	for i, param := range chosen.Params {
		name := param.Name
		if name == "" {
			name = fmt.Sprintf("param%d", i)
		}
		ti, err := root.Resolve(param.Type)
		if err != nil {
			return nil, fmt.Errorf("resolving constructor parameter %s of %s: %w", name, cls.Name, err)
		}
		pc.params = append(pc.params, ConstructorParameter{
			name:       name,
			typeInfo:   ti,
			entityType: unwrapContainer(ti),
		})
	}
	return pc, nil
}

func unwrapContainer(ti *typeinfo.TypeInformation) *typeinfo.TypeInformation {
	if ti.IsMap() {
		if value, err := ti.MapValueType(); err == nil {
			return value
		}
		return ti
	}
	if ti.IsCollectionLike() {
		if component, ok := ti.ComponentType(); ok {
			return component
		}
	}
	return ti
}
