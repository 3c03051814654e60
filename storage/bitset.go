package storage

import (
	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/types"
)

var _ Store[struct{}] = &Bitset[struct{}]{}

// Bitset stores presence only: one bit per LocalID in a growable bit vector.
// It backs zero-field marker components, where every access returns a
// pointer to a single shared instance since the type carries no data.
//
// The vector holds no generations. The owning universe strips components
// when an entity is freed, so a set bit always belongs to the slot's live
// incarnation; callers validate entity liveness before reaching the store.
type Bitset[T any] struct {
	bits  []uint64
	dummy T
	hooks Hooks
	count int
}

func NewBitset[T any](hooks Hooks) *Bitset[T] {
	return &Bitset[T]{hooks: hooks}
}

func (s *Bitset[T]) Kind() types.StorageKind { return types.StorageBitset }

func (s *Bitset[T]) Has(id types.EntityID) bool {
	word := int(id.Local >> 6)
	return word < len(s.bits) && s.bits[word]&(1<<(id.Local&63)) != 0
}

func (s *Bitset[T]) Add(id types.EntityID, _ T) (*T, error) {
	if s.Has(id) {
		return nil, eris.Wrapf(ErrComponentAlreadyPresent, "entity %s", id)
	}
	word := int(id.Local >> 6)
	for len(s.bits) <= word {
		s.bits = append(s.bits, 0)
	}
	s.bits[word] |= 1 << (id.Local & 63)
	s.count++
	s.hooks.added(id)
	s.hooks.invalidate()
	return &s.dummy, nil
}

func (s *Bitset[T]) Remove(id types.EntityID) error {
	if !s.Has(id) {
		return eris.Wrapf(ErrComponentNotPresent, "entity %s", id)
	}
	s.hooks.removed(id)
	s.bits[id.Local>>6] &^= 1 << (id.Local & 63)
	s.count--
	s.hooks.invalidate()
	return nil
}

func (s *Bitset[T]) Get(id types.EntityID) (*T, error) {
	if !s.Has(id) {
		return nil, eris.Wrapf(ErrComponentNotPresent, "entity %s", id)
	}
	return &s.dummy, nil
}

func (s *Bitset[T]) TryGet(id types.EntityID) (*T, bool) {
	if !s.Has(id) {
		return nil, false
	}
	return &s.dummy, true
}

func (s *Bitset[T]) Overwrite(id types.EntityID, value T) (*T, error) {
	if !s.Has(id) {
		return s.Add(id, value)
	}
	s.hooks.removed(id)
	s.hooks.added(id)
	s.hooks.invalidate()
	return &s.dummy, nil
}

func (s *Bitset[T]) Len() int { return s.count }

func (s *Bitset[T]) Reset() {
	s.bits = s.bits[:0]
	s.count = 0
}
