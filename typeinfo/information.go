package typeinfo

import (
	"fmt"
	"strings"
	"sync"
)

// TypeInformation is an immutable, queryable description of one type
// occurrence. Nodes form a directed graph through their parent links, which
// exist purely to supply generic binding context; they never model
// ownership. The graph may be cyclic at the semantic level (type A has a
// field of type B which has a field of type A) - cycles resolve lazily, one
// navigation step at a time.
type TypeInformation struct {
	declared Type
	resolved Type
	class    *Class
	parent   *TypeInformation

	// bindings is the owned binding environment, keyed by qualified
	// variable name. Nil when the node defers entirely to its parent.
	bindings map[string]Type

	key string

	// fieldMemo caches property lookups per node. Writes are idempotent,
	// so racing goroutines may both build a child; LoadOrStore keeps the
	// winner and the structure stays consistent.
	fieldMemo sync.Map
}

// From resolves a plain class into its root TypeInformation node. The
// binding environment is computed from the class's declared generic
// supertype chain.
func From(c *Class) (*TypeInformation, error) {
	if c == nil {
		return nil, &ResolutionError{Expr: "<nil>", Reason: "nil class descriptor"}
	}
	return newNode(Ref(c), nil)
}

// newNode builds a TypeInformation for a declared type expression in the
// generic context of parent.
func newNode(t Type, parent *TypeInformation) (*TypeInformation, error) {
	resolved, err := chase(t, parent)
	if err != nil {
		return nil, err
	}

	ti := &TypeInformation{declared: t, resolved: resolved, parent: parent}

	switch r := resolved.(type) {
	case ClassRef:
		ti.class = r.Class
		env, err := bindingsFor(r.Class, nil)
		if err != nil {
			return nil, err
		}
		if len(env) > 0 {
			ti.bindings = env
		}
	case Parameterized:
		ti.class = r.Raw
		env, err := bindingsFor(r.Raw, r.Args)
		if err != nil {
			return nil, err
		}
		if len(env) > 0 {
			ti.bindings = env
		}
	case Array:
		ti.class = arrayClass(r.Elem)
	default:
		return nil, &ResolutionError{Expr: TypeName(t), Reason: "unexpected type expression kind"}
	}

	ti.key = renderKey(resolved, ti, 0)
	return ti, nil
}

// Type returns the erased resolved class. For a type-variable occurrence the
// variable has already been resolved against the binding environment, or
// fallen back to ObjectClass when unbound.
func (ti *TypeInformation) Type() *Class {
	return ti.class
}

// Name returns the resolved class name.
func (ti *TypeInformation) Name() string {
	return ti.class.Name
}

// DeclaredType returns the raw type expression as it appeared at the
// declaration site.
func (ti *TypeInformation) DeclaredType() Type {
	return ti.declared
}

// Parent returns the node whose binding environment this node inherits, or
// nil for roots.
func (ti *TypeInformation) Parent() *TypeInformation {
	return ti.parent
}

// IsCollectionLike reports whether the type is an array or implements the
// sequence contract.
func (ti *TypeInformation) IsCollectionLike() bool {
	if _, ok := ti.resolved.(Array); ok {
		return true
	}
	return ti.class.CollectionLike
}

// IsMap reports whether the type implements the key-value-map contract.
func (ti *TypeInformation) IsMap() bool {
	return ti.class.MapLike
}

// Property is the lenient point probe: it returns the TypeInformation of
// the named field, or false when the field does not exist or its declared
// type cannot be resolved. Use RequiredProperty or PropertyPath when
// absence is an error.
func (ti *TypeInformation) Property(name string) (*TypeInformation, bool) {
	child, err := ti.property(name)
	if err != nil || child == nil {
		return nil, false
	}
	return child, true
}

// RequiredProperty resolves the named field or fails with a
// PropertyNotFoundError carrying the segment and owning type.
func (ti *TypeInformation) RequiredProperty(name string) (*TypeInformation, error) {
	child, err := ti.property(name)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, &PropertyNotFoundError{Owner: ti.Name(), Segment: name}
	}
	return child, nil
}

// PropertyPath navigates a dotted path, resolving each segment strictly.
func (ti *TypeInformation) PropertyPath(path string) (*TypeInformation, error) {
	cur := ti
	for _, segment := range strings.Split(path, ".") {
		next, err := cur.RequiredProperty(segment)
		if err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", path, err)
		}
		cur = next
	}
	return cur, nil
}

func (ti *TypeInformation) property(name string) (*TypeInformation, error) {
	if v, ok := ti.fieldMemo.Load(name); ok {
		return v.(*TypeInformation), nil
	}
	f, ok := ti.class.FieldNamed(name)
	if !ok {
		return nil, nil
	}
	child, err := newNode(f.Type, ti)
	if err != nil {
		return nil, err
	}
	actual, _ := ti.fieldMemo.LoadOrStore(name, child)
	return actual.(*TypeInformation), nil
}

// ComponentType returns the element type for arrays and the first actual
// type argument for parameterized containers. For a plain generic class
// with no usage-site parameterization, the first declared type parameter is
// resolved as a variable node (the unbound-generic fallback). Returns false
// when the type carries no component.
func (ti *TypeInformation) ComponentType() (*TypeInformation, bool) {
	switch r := ti.resolved.(type) {
	case Array:
		return ti.nested(r.Elem)
	case Parameterized:
		if len(r.Args) == 0 {
			return nil, false
		}
		return ti.nested(r.Args[0])
	case ClassRef:
		if len(r.Class.TypeParams) == 0 {
			return nil, false
		}
		return ti.nested(Var(r.Class, r.Class.TypeParams[0]))
	}
	return nil, false
}

// MapValueType returns the value-position type argument. It is only valid
// for map-like types; anything else fails with ErrNotAMap.
func (ti *TypeInformation) MapValueType() (*TypeInformation, error) {
	if !ti.IsMap() {
		return nil, fmt.Errorf("%w: %s", ErrNotAMap, ti.Name())
	}
	switch r := ti.resolved.(type) {
	case Parameterized:
		if len(r.Args) >= 2 {
			return newNode(r.Args[1], ti)
		}
	case ClassRef:
		if len(r.Class.TypeParams) >= 2 {
			return newNode(Var(r.Class, r.Class.TypeParams[1]), ti)
		}
	}
	return nil, &ResolutionError{Expr: ti.Name(), Reason: "map type without a value argument"}
}

// Resolve builds a TypeInformation for an arbitrary type expression in this
// node's generic context. Used for constructor parameters, whose declared
// types live in the scope of the owning class.
func (ti *TypeInformation) Resolve(t Type) (*TypeInformation, error) {
	return newNode(t, ti)
}

func (ti *TypeInformation) nested(t Type) (*TypeInformation, bool) {
	n, err := newNode(t, ti)
	if err != nil {
		return nil, false
	}
	return n, true
}

// Key returns the canonical cache key: the fully resolved rendering of the
// type in its binding context. Two independently constructed nodes
// describing the same type in the same context produce the same key.
func (ti *TypeInformation) Key() string {
	return ti.key
}

// Equal reports structural equality of the resolved type and its binding
// context.
func (ti *TypeInformation) Equal(other *TypeInformation) bool {
	return other != nil && ti.key == other.key
}

// String implements fmt.Stringer.
func (ti *TypeInformation) String() string {
	return ti.key
}

// chase resolves a type-variable occurrence to a concrete expression using
// the nearest enclosing context that can answer for it: usage-site
// parameterized arguments take precedence over inherited binding maps.
// Unbound variables fall back to ObjectClass.
func chase(t Type, ctx *TypeInformation) (Type, error) {
	visited := make(map[string]bool)
	for {
		v, ok := t.(Variable)
		if !ok {
			return t, nil
		}
		q := qualifiedName(v.Owner, v.Name)
		if visited[q] {
			return nil, &ResolutionError{Expr: q, Reason: "cyclic type-variable binding"}
		}
		visited[q] = true

		next, nextCtx, found := lookupVariable(v, ctx)
		if !found {
			return Ref(ObjectClass), nil
		}
		t, ctx = next, nextCtx
	}
}

// lookupVariable walks outward through the node chain. A parameterized
// declaration whose raw class declares the variable answers with the actual
// argument at the matching index; otherwise the nearest owned binding map
// answers. Returns the context the answer must itself be interpreted in.
func lookupVariable(v Variable, ctx *TypeInformation) (Type, *TypeInformation, bool) {
	q := qualifiedName(v.Owner, v.Name)
	for n := ctx; n != nil; n = n.parent {
		if p, ok := n.declared.(Parameterized); ok && (v.Owner == nil || v.Owner == p.Raw) {
			for i, name := range p.Raw.TypeParams {
				if name == v.Name && i < len(p.Args) {
					return p.Args[i], n.parent, true
				}
			}
		}
		if n.bindings != nil {
			if t, ok := n.bindings[q]; ok {
				return t, n, true
			}
		}
	}
	return nil, nil, false
}

// bindingsFor collects the binding environment a class introduces: its own
// usage-site arguments (when given) plus the bindings its generic supertype
// chain establishes, each substituted against the environment accumulated
// so far so that indirect bindings chain through intermediate classes.
func bindingsFor(c *Class, args []Type) (map[string]Type, error) {
	env := make(map[string]Type)
	for i, p := range c.TypeParams {
		if args != nil && i < len(args) {
			env[qualifiedName(c, p)] = args[i]
		}
	}

	seen := map[*Class]bool{c: true}
	cur := c
	for cur != nil {
		switch s := cur.Super.(type) {
		case nil:
			cur = nil
		case ClassRef:
			cur = s.Class
		case Parameterized:
			for i, p := range s.Raw.TypeParams {
				if i < len(s.Args) {
					env[qualifiedName(s.Raw, p)] = substituteEnv(s.Args[i], env)
				}
			}
			cur = s.Raw
		default:
			return nil, &ResolutionError{
				Expr:   c.Name,
				Reason: "unsupported supertype expression " + TypeName(cur.Super),
			}
		}
		if cur != nil {
			if seen[cur] {
				return nil, &ResolutionError{Expr: c.Name, Reason: "cyclic supertype chain"}
			}
			seen[cur] = true
		}
	}
	return env, nil
}

// substituteEnv replaces every variable occurrence bound in env, leaving
// unbound variables intact for later resolution through the parent chain.
func substituteEnv(t Type, env map[string]Type) Type {
	switch v := t.(type) {
	case Variable:
		if r, ok := env[qualifiedName(v.Owner, v.Name)]; ok {
			return r
		}
		return t
	case Parameterized:
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = substituteEnv(a, env)
		}
		return Parameterized{Raw: v.Raw, Args: args}
	case Array:
		return Array{Elem: substituteEnv(v.Elem, env)}
	default:
		return t
	}
}

// maxKeyDepth bounds key rendering for pathological self-referential
// generic signatures; past the bound the raw declaration is used verbatim.
const maxKeyDepth = 32

func renderKey(t Type, ctx *TypeInformation, depth int) string {
	if depth > maxKeyDepth {
		return TypeName(t)
	}
	switch v := t.(type) {
	case ClassRef:
		return v.Class.Name
	case Parameterized:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			resolved, err := chase(a, ctx)
			if err != nil {
				args[i] = TypeName(a)
				continue
			}
			args[i] = renderKey(resolved, ctx, depth+1)
		}
		return fmt.Sprintf("%s<%s>", v.Raw.Name, strings.Join(args, ", "))
	case Variable:
		resolved, err := chase(v, ctx)
		if err != nil {
			return TypeName(v)
		}
		return renderKey(resolved, ctx, depth+1)
	case Array:
		return renderKey(v.Elem, ctx, depth+1) + "[]"
	default:
		return TypeName(t)
	}
}

// arrayClasses memoizes the synthetic erased classes for array types.
var arrayClasses sync.Map

func arrayClass(elem Type) *Class {
	name := TypeName(elem) + "[]"
	if v, ok := arrayClasses.Load(name); ok {
		return v.(*Class)
	}
	c := &Class{Name: name, CollectionLike: true}
	actual, _ := arrayClasses.LoadOrStore(name, c)
	return actual.(*Class)
}
