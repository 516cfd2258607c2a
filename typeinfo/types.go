package typeinfo

import (
	"fmt"
	"strings"
)

// Type is a raw type expression as it appears in a declaration. It is a
// closed sum: ClassRef, Parameterized, Variable, and Array are the only
// implementations.
type Type interface {
	typeExpr()
}

// ClassRef references a class without usage-site parameterization.
type ClassRef struct {
	Class *Class
}

// Parameterized is a usage-site parameterization of a generic class,
// e.g. Map<String, Address>.
type Parameterized struct {
	Raw  *Class
	Args []Type
}

// Variable is an occurrence of a generic type variable. Owner is the class
// that declares the variable; it qualifies the name so that identically
// named variables of different classes never collide in a binding
// environment.
type Variable struct {
	Name  string
	Owner *Class
}

// Array is an array or slice of Elem.
type Array struct {
	Elem Type
}

func (ClassRef) typeExpr()      {}
func (Parameterized) typeExpr() {}
func (Variable) typeExpr()      {}
func (Array) typeExpr()         {}

// Ref wraps a class into a type expression.
func Ref(c *Class) Type {
	return ClassRef{Class: c}
}

// Generic parameterizes a generic class with concrete (or variable) arguments.
func Generic(raw *Class, args ...Type) Type {
	return Parameterized{Raw: raw, Args: args}
}

// Var creates a type-variable occurrence declared by owner.
func Var(owner *Class, name string) Type {
	return Variable{Name: name, Owner: owner}
}

// ArrayOf creates an array type expression.
func ArrayOf(elem Type) Type {
	return Array{Elem: elem}
}

// TypeName renders a type expression for diagnostics and cache keys.
func TypeName(t Type) string {
	switch v := t.(type) {
	case ClassRef:
		return v.Class.Name
	case Parameterized:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = TypeName(a)
		}
		return fmt.Sprintf("%s<%s>", v.Raw.Name, strings.Join(args, ", "))
	case Variable:
		if v.Owner != nil {
			return v.Owner.Name + "." + v.Name
		}
		return v.Name
	case Array:
		return TypeName(v.Elem) + "[]"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// qualifiedName is the binding-environment key for a variable declared by
// owner.
func qualifiedName(owner *Class, name string) string {
	if owner == nil {
		return name
	}
	return owner.Name + "." + name
}
