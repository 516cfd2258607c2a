package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

// AssociationPolicy decides whether a property denotes an association to
// the given target class. The default policy treats every entity-eligible
// (non-simple, non-container) target as an association; a MarkerReference
// on the field forces one regardless of policy.
type AssociationPolicy func(prop *PersistentProperty, target *typeinfo.Class) bool

// EntityCallback is invoked once per newly verified entity, synchronously
// after the entity is cached and before the triggering lookup returns. The
// callback runs outside the context lock and may call back into the
// context.
type EntityCallback func(*PersistentEntity)

// ContextOption configures a Context. All configuration happens at
// construction; none of it is safe to change concurrently with lookups.
type ContextOption func(*Context)

// WithStrictMode makes lookups of unregistered types fail with
// ErrUnknownEntity instead of auto-registering them. Pre-register the
// known set through Initialize.
func WithStrictMode() ContextOption {
	return func(c *Context) { c.strict = true }
}

// WithSimpleTypes replaces the simple-type holder.
func WithSimpleTypes(h *SimpleTypeHolder) ContextOption {
	return func(c *Context) { c.simpleTypes = h }
}

// WithVerifier replaces the default entity verifier.
func WithVerifier(v Verifier) ContextOption {
	return func(c *Context) { c.verifier = v }
}

// WithAssociationPolicy replaces the default association predicate.
func WithAssociationPolicy(p AssociationPolicy) ContextOption {
	return func(c *Context) { c.policy = p }
}

// WithEntityCallback registers a listener for newly verified entities.
func WithEntityCallback(fn EntityCallback) ContextOption {
	return func(c *Context) { c.callbacks = append(c.callbacks, fn) }
}

// WithLogger sets the logger; the default is a no-op logger.
func WithLogger(log *zap.Logger) ContextOption {
	return func(c *Context) { c.log = log }
}

// Context owns the process-wide TypeInformation -> PersistentEntity cache
// and orchestrates entity construction. Many goroutines may look up
// overlapping or unrelated types concurrently; cached reads never block on
// each other, and a cache miss holds the write lock for the whole recursive
// construction so no caller ever observes a half-populated entity.
type Context struct {
	mu       sync.RWMutex
	entities map[string]*PersistentEntity

	strict      bool
	simpleTypes *SimpleTypeHolder
	verifier    Verifier
	policy      AssociationPolicy
	callbacks   []EntityCallback
	log         *zap.Logger

	constructions atomic.Int64
}

// NewContext creates a mapping context. Independent contexts share no
// state, so tests and multi-tenant setups can each hold their own.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		entities:    make(map[string]*PersistentEntity),
		simpleTypes: NewSimpleTypeHolder(),
		verifier:    defaultVerifier{},
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPersistentEntity returns the entity for a class, constructing and
// caching it (and every entity transitively reachable from it) on first
// use. In strict mode unregistered types fail with ErrUnknownEntity.
func (c *Context) GetPersistentEntity(cls *typeinfo.Class) (*PersistentEntity, error) {
	ti, err := typeinfo.From(cls)
	if err != nil {
		return nil, err
	}
	return c.GetPersistentEntityOf(ti)
}

// GetPersistentEntityOf is GetPersistentEntity keyed by a resolved
// TypeInformation node.
func (c *Context) GetPersistentEntityOf(ti *typeinfo.TypeInformation) (*PersistentEntity, error) {
	return c.lookup(ti, c.strict)
}

// GetPersistentEntityForProperty is the lenient convenience lookup keyed by
// a property's target type. It reports false when the property is not an
// association or its target has no cached entity.
func (c *Context) GetPersistentEntityForProperty(p *PersistentProperty) (*PersistentEntity, bool) {
	if p == nil || !p.IsAssociation() {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entities[p.TargetTypeInformation().Key()]
	return e, ok
}

// GetPersistentPropertyPath resolves a dotted path against the entity for
// root, advancing into the target entity of each intermediate segment.
func (c *Context) GetPersistentPropertyPath(root *typeinfo.Class, path string) (*PersistentPropertyPath, error) {
	entity, err := c.GetPersistentEntity(root)
	if err != nil {
		return nil, err
	}

	segments := strings.Split(path, ".")
	props := make([]*PersistentProperty, 0, len(segments))
	for i, segment := range segments {
		prop, ok := entity.PersistentProperty(segment)
		if !ok {
			return nil, &InvalidPathError{Path: path, Segment: segment, Entity: entity.Name()}
		}
		props = append(props, prop)

		if i == len(segments)-1 {
			break
		}
		next, err := c.GetPersistentEntityOf(prop.TargetTypeInformation())
		if err != nil {
			if errors.Is(err, ErrNotAnEntity) {
				// The next segment navigates into a terminal type.
				return nil, &InvalidPathError{
					Path:    path,
					Segment: segments[i+1],
					Entity:  prop.TargetTypeInformation().Name(),
				}
			}
			return nil, err
		}
		entity = next
	}

	return &PersistentPropertyPath{segments: props}, nil
}

// Initialize eagerly populates entities for the given root types, resolving
// relationship cycles among them up front. In strict mode this is also the
// registration mechanism: initialized types are the known set.
func (c *Context) Initialize(roots ...*typeinfo.Class) error {
	for _, cls := range roots {
		ti, err := typeinfo.From(cls)
		if err != nil {
			return err
		}
		if _, err := c.lookup(ti, false); err != nil {
			return err
		}
	}
	return nil
}

// Entities returns a point-in-time snapshot of all cached entities, sorted
// by name. The snapshot never exposes partially built state.
func (c *Context) Entities() []*PersistentEntity {
	c.mu.RLock()
	out := make([]*PersistentEntity, 0, len(c.entities))
	for _, e := range c.entities {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// lookup is the single cache entry point. The fast path is a read-locked
// hit; a miss takes the write lock for the entire recursive construction.
func (c *Context) lookup(ti *typeinfo.TypeInformation, strict bool) (*PersistentEntity, error) {
	key := ti.Key()

	c.mu.RLock()
	e, ok := c.entities[key]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	if !c.entityEligible(ti.Type()) {
		return nil, fmt.Errorf("%w: %s", ErrNotAnEntity, ti.Name())
	}
	if strict {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, ti.Name())
	}

	c.mu.Lock()
	var created []*PersistentEntity
	e, err := c.addEntityLocked(ti, &created)
	c.mu.Unlock()

	// Callbacks fire after the lock is released so listeners may call back
	// into the context; nested entities that completed before a failure
	// are cached and still announced.
	for _, fresh := range created {
		for _, fn := range c.callbacks {
			fn(fresh)
		}
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// addEntityLocked constructs and caches the entity for ti, recursing into
// every reachable entity type. Callers hold the write lock; recursion stays
// inside the critical section, which is what stands in for lock reentrancy.
// The entity is published into the cache before its properties are
// populated so cyclic back-references on the same call stack find the
// in-progress instance instead of recursing forever.
func (c *Context) addEntityLocked(ti *typeinfo.TypeInformation, created *[]*PersistentEntity) (*PersistentEntity, error) {
	key := ti.Key()
	if e, ok := c.entities[key]; ok {
		return e, nil
	}
	if !c.entityEligible(ti.Type()) {
		return nil, nil
	}

	c.constructions.Add(1)
	entity := newPersistentEntity(ti)
	c.entities[key] = entity

	if err := c.populateLocked(entity, created); err != nil {
		delete(c.entities, key)
		return nil, err
	}
	if err := c.verifier.Verify(entity); err != nil {
		delete(c.entities, key)
		c.log.Warn("persistent entity failed verification",
			zap.String("entity", entity.Name()),
			zap.Error(err))
		return nil, &VerificationError{Entity: entity.Name(), Err: err}
	}

	entity.verified = true
	*created = append(*created, entity)
	c.log.Debug("registered persistent entity",
		zap.String("entity", entity.Name()),
		zap.Int("properties", len(entity.properties)),
		zap.Int("associations", len(entity.assocs)))
	return entity, nil
}

func (c *Context) populateLocked(entity *PersistentEntity, created *[]*PersistentEntity) error {
	cls := entity.class

	ctor, err := selectPreferredConstructor(cls, entity.typeInfo)
	if err != nil {
		if !errors.Is(err, ErrAmbiguousConstructor) {
			return err
		}
		// Ambiguity is a structural defect; recorded here, surfaced by
		// verification.
		entity.ctorErr = err
	}
	entity.ctor = ctor

	for _, field := range cls.AllFields() {
		if field.Markers.Has(typeinfo.MarkerSynthetic) {
			continue
		}
		if isTransient(field.Markers) {
			continue
		}

		pti, err := entity.typeInfo.RequiredProperty(field.Name)
		if err != nil {
			return fmt.Errorf("resolving property %s.%s: %w", entity.Name(), field.Name, err)
		}

		prop := newProperty(entity, field, pti)
		entity.addProperty(prop)
		if field.Markers.Has(typeinfo.MarkerID) {
			entity.recordIDCandidate(prop)
		}

		target := prop.TargetTypeInformation()
		targetCls := target.Type()

		if field.Markers.Has(typeinfo.MarkerReference) || c.isAssociation(prop, targetCls) {
			prop.isAssociation = true
			entity.addAssociation(&Association{inverse: prop, target: target})
		}

		if targetCls == cls {
			// Self reference: the in-progress entity is already cached.
			continue
		}
		if c.entityEligible(targetCls) {
			if _, err := c.addEntityLocked(target, created); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Context) isAssociation(prop *PersistentProperty, target *typeinfo.Class) bool {
	if c.policy != nil {
		return c.policy(prop, target)
	}
	return c.entityEligible(target)
}

// entityEligible is the "should create entity for" predicate: terminal
// simple types, container types, and the unbound-variable fallback never
// get entities of their own.
func (c *Context) entityEligible(cls *typeinfo.Class) bool {
	if cls == typeinfo.ObjectClass {
		return false
	}
	if c.simpleTypes.IsSimple(cls) {
		return false
	}
	if cls.CollectionLike || cls.MapLike {
		return false
	}
	return true
}

func isTransient(m typeinfo.Marker) bool {
	return m.Has(typeinfo.MarkerTransient) ||
		m.Has(typeinfo.MarkerValue) ||
		m.Has(typeinfo.MarkerInjected)
}
