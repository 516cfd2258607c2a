package mapping

import (
	"sync"

	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

// SimpleTypeHolder decides which types are terminal: never decomposed into
// properties and never given their own entity. The built-in scalar classes
// (primitives, strings, time, UUID, bytes) are always simple; callers
// register additional scalar classes of their own.
type SimpleTypeHolder struct {
	mu     sync.RWMutex
	custom map[*typeinfo.Class]bool
}

// NewSimpleTypeHolder creates a holder with the given custom simple classes
// on top of the built-in defaults.
func NewSimpleTypeHolder(custom ...*typeinfo.Class) *SimpleTypeHolder {
	h := &SimpleTypeHolder{custom: make(map[*typeinfo.Class]bool)}
	h.Register(custom...)
	return h
}

// Register adds classes to the simple set. Not safe to call concurrently
// with entity construction for types referencing them; configure before
// first use.
func (h *SimpleTypeHolder) Register(classes ...*typeinfo.Class) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range classes {
		h.custom[c] = true
	}
}

// IsSimple reports whether the class is terminal.
func (h *SimpleTypeHolder) IsSimple(c *typeinfo.Class) bool {
	if c.Simple {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.custom[c]
}
