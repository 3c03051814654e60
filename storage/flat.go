package storage

import (
	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/types"
)

var _ Store[int] = &Flat[int]{}

// Flat stores values in an array indexed directly by LocalID. The array
// grows to the highest LocalID that ever held the component, so it suits
// components carried by nearly every entity. Growth can relocate the backing
// array, which is one of the reasons returned pointers are only valid until
// the next mutation.
type Flat[T any] struct {
	slots []pair[T]
	hooks Hooks
	count int
}

func NewFlat[T any](hooks Hooks) *Flat[T] {
	return &Flat[T]{hooks: hooks}
}

func (s *Flat[T]) Kind() types.StorageKind { return types.StorageFlat }

func (s *Flat[T]) Has(id types.EntityID) bool {
	i := int(id.Local)
	return i < len(s.slots) && s.slots[i].generation == id.Generation
}

func (s *Flat[T]) Add(id types.EntityID, value T) (*T, error) {
	if s.Has(id) {
		return nil, eris.Wrapf(ErrComponentAlreadyPresent, "entity %s", id)
	}
	s.grow(int(id.Local) + 1)
	s.slots[id.Local] = pair[T]{generation: id.Generation, value: value}
	s.count++
	s.hooks.added(id)
	s.hooks.invalidate()
	return &s.slots[id.Local].value, nil
}

func (s *Flat[T]) Remove(id types.EntityID) error {
	if !s.Has(id) {
		return eris.Wrapf(ErrComponentNotPresent, "entity %s", id)
	}
	s.hooks.removed(id)
	// The slot is kept; only the generation marks it dead.
	s.slots[id.Local].generation = types.DeadGeneration
	s.count--
	s.hooks.invalidate()
	return nil
}

func (s *Flat[T]) Get(id types.EntityID) (*T, error) {
	if !s.Has(id) {
		return nil, eris.Wrapf(ErrComponentNotPresent, "entity %s", id)
	}
	return &s.slots[id.Local].value, nil
}

func (s *Flat[T]) TryGet(id types.EntityID) (*T, bool) {
	if !s.Has(id) {
		return nil, false
	}
	return &s.slots[id.Local].value, true
}

func (s *Flat[T]) Overwrite(id types.EntityID, value T) (*T, error) {
	if !s.Has(id) {
		return s.Add(id, value)
	}
	s.hooks.removed(id)
	s.slots[id.Local].value = value
	s.hooks.added(id)
	s.hooks.invalidate()
	return &s.slots[id.Local].value, nil
}

func (s *Flat[T]) Len() int { return s.count }

func (s *Flat[T]) Reset() {
	s.slots = s.slots[:0]
	s.count = 0
}

func (s *Flat[T]) grow(size int) {
	for len(s.slots) < size {
		s.slots = append(s.slots, pair[T]{generation: types.DeadGeneration})
	}
}
