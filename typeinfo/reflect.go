package typeinfo

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Introspector produces class descriptors for runtime types. The reflect
// implementation below covers ordinary Go structs; declarations Go
// reflection cannot express (unbound type variables, parameterized
// supertypes, constructors with parameters) go through the builder API
// instead.
type Introspector interface {
	Describe(t reflect.Type) (*Class, error)
}

// DefaultTag is the struct tag consulted for mapping directives.
const DefaultTag = "mapping"

// Tag grammar, comma separated: the first component overrides the property
// name, the rest are flags (id, transient, ref, value, injected) or a
// store:<name> storage override.
//
//	Name string `mapping:"name,id"`
//	Temp string `mapping:",transient"`
//	Home Address `mapping:"home,ref,store:home_address"`
//	Skip string `mapping:"-"`

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// ReflectIntrospector derives class descriptors from Go struct types.
// Descriptors are memoized per reflect.Type. A description runs as one
// mutex-serialized critical section; cyclic field types find the
// in-progress descriptor through a per-call in-flight set, and the set is
// committed to the shared cache only once the whole description succeeds.
// A failed description leaves no trace, so a later call fails the same way
// instead of serving a half-populated descriptor, and no goroutine ever
// observes a descriptor whose fields are still being appended.
type ReflectIntrospector struct {
	tag string

	mu       sync.Mutex
	cache    map[reflect.Type]*Class
	inFlight map[reflect.Type]*Class
}

// NewReflectIntrospector creates an introspector using DefaultTag.
func NewReflectIntrospector() *ReflectIntrospector {
	return &ReflectIntrospector{
		tag:      DefaultTag,
		cache:    make(map[reflect.Type]*Class),
		inFlight: make(map[reflect.Type]*Class),
	}
}

// DescribeOf describes the struct type T.
func DescribeOf[T any](ri *ReflectIntrospector) (*Class, error) {
	return ri.Describe(reflect.TypeOf((*T)(nil)).Elem())
}

// Describe returns the class descriptor for a struct type, following
// pointers first. The same reflect.Type always yields the same *Class.
func (ri *ReflectIntrospector) Describe(t reflect.Type) (*Class, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return TimeClass, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, &ResolutionError{Expr: t.String(), Reason: "not a struct type"}
	}

	ri.mu.Lock()
	defer ri.mu.Unlock()

	c, err := ri.describeLocked(t)
	if err == nil {
		for rt, cls := range ri.inFlight {
			ri.cache[rt] = cls
		}
	}
	clear(ri.inFlight)
	return c, err
}

// describeLocked builds the descriptor for t, recursing into field types
// inside the same critical section. The descriptor is registered in the
// in-flight set before its fields are described so self-referential and
// mutually referential structs terminate.
func (ri *ReflectIntrospector) describeLocked(t reflect.Type) (*Class, error) {
	if c, ok := ri.cache[t]; ok {
		return c, nil
	}
	if c, ok := ri.inFlight[t]; ok {
		return c, nil
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	}
	c := &Class{Name: name, Constructors: []Constructor{{}}}
	ri.inFlight[t] = c

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(ri.tag)
		if tag == "-" {
			continue
		}

		if f.Anonymous && derefKind(f.Type) == reflect.Struct && c.Super == nil && tag == "" {
			// The first embedded struct plays the supertype role; its
			// fields are inherited through the erased super chain.
			super, err := ri.structLocked(f.Type)
			if err != nil {
				return nil, err
			}
			c.Super = Ref(super)
			continue
		}

		ft, err := ri.typeOfLocked(f.Type)
		if err != nil {
			return nil, fmt.Errorf("describing %s.%s: %w", name, f.Name, err)
		}

		field := Field{Name: lowerFirst(f.Name), Type: ft}
		applyTag(&field, tag)
		c.Fields = append(c.Fields, field)
	}

	return c, nil
}

// structLocked is the in-section counterpart of Describe for nested struct
// types.
func (ri *ReflectIntrospector) structLocked(t reflect.Type) (*Class, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return TimeClass, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, &ResolutionError{Expr: t.String(), Reason: "not a struct type"}
	}
	return ri.describeLocked(t)
}

// typeOfLocked maps a reflect.Type to a symbolic type expression.
func (ri *ReflectIntrospector) typeOfLocked(t reflect.Type) (Type, error) {
	switch t {
	case timeType:
		return Ref(TimeClass), nil
	case uuidType:
		return Ref(UUIDClass), nil
	}

	switch t.Kind() {
	case reflect.Ptr:
		return ri.typeOfLocked(t.Elem())
	case reflect.String:
		return Ref(StringClass), nil
	case reflect.Bool:
		return Ref(BoolClass), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Ref(IntClass), nil
	case reflect.Int64, reflect.Uint64:
		return Ref(Int64Class), nil
	case reflect.Float32, reflect.Float64:
		return Ref(Float64Class), nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return Ref(BytesClass), nil
		}
		elem, err := ri.typeOfLocked(t.Elem())
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case reflect.Map:
		key, err := ri.typeOfLocked(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := ri.typeOfLocked(t.Elem())
		if err != nil {
			return nil, err
		}
		return MapOf(key, value), nil
	case reflect.Struct:
		c, err := ri.describeLocked(t)
		if err != nil {
			return nil, err
		}
		return Ref(c), nil
	case reflect.Interface:
		return Ref(ObjectClass), nil
	default:
		return nil, &ResolutionError{
			Expr:   t.String(),
			Reason: fmt.Sprintf("unsupported kind %s", t.Kind()),
		}
	}
}

func applyTag(field *Field, tag string) {
	if tag == "" {
		return
	}
	for i, part := range strings.Split(tag, ",") {
		if i == 0 {
			if part != "" {
				field.Name = part
			}
			continue
		}
		switch {
		case part == "id":
			field.Markers |= MarkerID
		case part == "transient":
			field.Markers |= MarkerTransient
		case part == "ref":
			field.Markers |= MarkerReference
		case part == "value":
			field.Markers |= MarkerValue
		case part == "injected":
			field.Markers |= MarkerInjected
		case strings.HasPrefix(part, "store:"):
			field.StorageName = strings.TrimPrefix(part, "store:")
		}
	}
}

func derefKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind()
}

// lowerFirst lowercases the leading capital run, leaving its last letter
// intact when it starts the next word: ID -> id, HTMLBody -> htmlBody,
// CreatedAt -> createdAt.
func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return s
	}
	i := 0
	for i < len(r) && unicode.IsUpper(r[i]) {
		i++
	}
	if i < len(r) && i > 1 {
		i--
	}
	for j := 0; j < i; j++ {
		r[j] = unicode.ToLower(r[j])
	}
	return string(r)
}
