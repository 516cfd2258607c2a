// Package typeinfo resolves raw type declarations - classes, parameterized
// types, type variables, and arrays - into navigable TypeInformation nodes.
//
// # Overview
//
// The package models type declarations symbolically as a small sum type
// (ClassRef, Parameterized, Variable, Array) over Class descriptors. A
// descriptor carries a type's generic parameters, its supertype, its fields,
// and its constructors. Descriptors come from one of two front ends:
//
//   - the explicit builder API (NewClass, WithField, ...), which can express
//     declarations Go reflection cannot, such as unbound type variables and
//     parameterized supertypes
//   - the ReflectIntrospector, which derives descriptors from ordinary Go
//     structs and their `mapping` tags
//
// # TypeInformation
//
// From turns a Class into the root TypeInformation node for that type.
// Navigating to a field with Property or PropertyPath produces child nodes
// that inherit the root's generic binding environment through their parent
// link, so a field declared as a type variable in a generic supertype
// resolves to the concrete type bound by the subclass.
//
// Nodes are value-like: two independently constructed nodes describing the
// same type in the same binding context compare equal and produce the same
// Key, which is what allows them to serve as cache keys in the mapping
// layer. Field lookups are memoized per node; the memo map is concurrency
// safe so nodes can be shared across goroutines.
//
// Property lookup has two deliberate contracts: Property is a lenient probe
// that reports absence, while RequiredProperty and PropertyPath fail with a
// PropertyNotFoundError naming the offending segment and owner.
package typeinfo
