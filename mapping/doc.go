// Package mapping builds and caches the persistent-entity graph: for each
// mapped type a PersistentEntity holding its PersistentProperty members,
// partitioned into plain properties and associations, discovered by
// introspecting the type's declared fields through the typeinfo resolver.
//
// # Core Structures
//
//   - Context: the process-wide TypeInformation -> PersistentEntity cache
//     and the only construction entry point. Safe for concurrent use.
//   - PersistentEntity: one mapped type with its properties, associations,
//     identifier property, and preferred constructor.
//   - PersistentProperty: one non-transient declared field.
//   - Association: a reference edge from a property to another entity.
//   - PersistentPropertyPath: a resolved dotted path such as "address.city".
//   - EntityGraph / DependencyReport: association-edge analysis over the
//     cached entities (cycle detection, safe creation order).
//
// # Construction Discipline
//
// A cache miss takes the write lock for the entire recursive construction:
// the under-construction entity is published into the cache before its
// properties are discovered, so cyclic back-references attach to the same
// in-progress instance, and a second goroutine requesting an overlapping
// type blocks until the whole subgraph is settled. Readers never observe an
// unverified entity through the public API. Verification failures evict the
// half-built entity so a corrected retry is possible.
package mapping
