// Package storage provides the per-component-type containers a universe owns.
// One store instance holds one component type's data for every entity in a
// single universe.
package storage

import (
	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/types"
)

var (
	ErrComponentAlreadyPresent = eris.New("component already present on entity")
	ErrComponentNotPresent     = eris.New("component not present on entity")
)

// Hooks carries the owning universe's callbacks into a store. OnAdd and
// OnRemove dispatch the component type's lifecycle hooks; Invalidate stamps
// the universe's invalidation clock. Any of them may be nil.
//
// OnAdd runs after the value is stored; OnRemove runs while the value is
// still readable.
type Hooks struct {
	OnAdd      func(id types.EntityID)
	OnRemove   func(id types.EntityID)
	Invalidate func()
}

// Store holds one component type's data across all entities of a universe.
//
// Pointers returned by Add, Get, TryGet and Overwrite are valid only until
// the next mutating call on the same store. Mutations may relocate the
// backing container; callers that keep pointers across mutations must detect
// staleness through the universe's invalidation clock and re-fetch.
type Store[T any] interface {
	Kind() types.StorageKind
	// Has reports whether the slot for id.Local holds a value stored for
	// id's generation. The caller is responsible for only passing ids owned
	// by the store's universe.
	Has(id types.EntityID) bool
	// Add stores value for id. It is an error if the entity already has the
	// component.
	Add(id types.EntityID, value T) (*T, error)
	// Remove drops the value for id. It is an error if the entity does not
	// have the component. Backing memory is not necessarily released.
	Remove(id types.EntityID) error
	// Get returns the live value pointer. It is an error if the entity does
	// not have the component.
	Get(id types.EntityID) (*T, error)
	// TryGet is Get without the presence precondition.
	TryGet(id types.EntityID) (*T, bool)
	// Overwrite replaces the value if present (remove hook, then add hook,
	// so lifecycle observers see a clean add), or behaves as Add.
	Overwrite(id types.EntityID, value T) (*T, error)
	// Len returns the number of values currently stored.
	Len() int
	// Reset drops every value without running hooks.
	Reset()
}

// pair is one storage record: the generation the value was stored for plus
// the value itself. generation == types.DeadGeneration means the slot is
// empty; this is how stale handles to a recycled slot are rejected without a
// separate liveness bitmap.
type pair[T any] struct {
	generation types.Generation
	value      T
}

func (h Hooks) added(id types.EntityID) {
	if h.OnAdd != nil {
		h.OnAdd(id)
	}
}

func (h Hooks) removed(id types.EntityID) {
	if h.OnRemove != nil {
		h.OnRemove(id)
	}
}

func (h Hooks) invalidate() {
	if h.Invalidate != nil {
		h.Invalidate()
	}
}
