package storage

import (
	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/types"
)

var _ Store[int] = &Hashed[int]{}

// Hashed stores values in a map keyed by LocalID. It balances memory against
// lookup cost and is the default backend for non-empty component types.
type Hashed[T any] struct {
	slots map[types.LocalID]*pair[T]
	hooks Hooks
}

func NewHashed[T any](hooks Hooks) *Hashed[T] {
	return &Hashed[T]{
		slots: make(map[types.LocalID]*pair[T]),
		hooks: hooks,
	}
}

func (s *Hashed[T]) Kind() types.StorageKind { return types.StorageHashed }

func (s *Hashed[T]) Has(id types.EntityID) bool {
	p, ok := s.slots[id.Local]
	return ok && p.generation == id.Generation
}

func (s *Hashed[T]) Add(id types.EntityID, value T) (*T, error) {
	if s.Has(id) {
		return nil, eris.Wrapf(ErrComponentAlreadyPresent, "entity %s", id)
	}
	p := &pair[T]{generation: id.Generation, value: value}
	s.slots[id.Local] = p
	s.hooks.added(id)
	s.hooks.invalidate()
	return &p.value, nil
}

func (s *Hashed[T]) Remove(id types.EntityID) error {
	if !s.Has(id) {
		return eris.Wrapf(ErrComponentNotPresent, "entity %s", id)
	}
	s.hooks.removed(id)
	delete(s.slots, id.Local)
	s.hooks.invalidate()
	return nil
}

func (s *Hashed[T]) Get(id types.EntityID) (*T, error) {
	if !s.Has(id) {
		return nil, eris.Wrapf(ErrComponentNotPresent, "entity %s", id)
	}
	return &s.slots[id.Local].value, nil
}

func (s *Hashed[T]) TryGet(id types.EntityID) (*T, bool) {
	if !s.Has(id) {
		return nil, false
	}
	return &s.slots[id.Local].value, true
}

func (s *Hashed[T]) Overwrite(id types.EntityID, value T) (*T, error) {
	if !s.Has(id) {
		return s.Add(id, value)
	}
	s.hooks.removed(id)
	p := s.slots[id.Local]
	p.value = value
	s.hooks.added(id)
	s.hooks.invalidate()
	return &p.value, nil
}

func (s *Hashed[T]) Len() int { return len(s.slots) }

func (s *Hashed[T]) Reset() {
	s.slots = make(map[types.LocalID]*pair[T])
}
