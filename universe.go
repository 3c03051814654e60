package uverse

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/calderagames/uverse/types"
)

// slot tracks one entity slot's current state. Slots move between the free
// and used lists; a slot's generation increments every time it is recycled.
type slot struct {
	generation types.Generation
	used       bool
	// usedPos is the slot's position in usedEnts while used is true.
	usedPos int
}

// Universe is an isolated grouping of entities and their component storages.
// It owns one storage per registered component type behind a type-erased
// record, the free/used entity slot lists, and the per-component
// invalidation clock. Universes are allocated from a Registry and reset on
// free, never destructed.
//
// A universe is not safe for concurrent use; all mutation is assumed to be
// driven by a single logical tick.
type Universe struct {
	id    types.UniverseID
	guid  uuid.UUID
	reg   *Registry
	log   zerolog.Logger
	freed bool

	chunkSize int
	nextLocal types.LocalID
	slots     []slot
	usedEnts  []types.EntityID
	freeEnts  []types.EntityID

	comps      map[string]*componentRecord
	nextCompID types.ComponentID

	// seq is the invalidation clock: a logical monotonic time advanced on
	// every storage mutation. maxStamp is the clock time of the most recent
	// mutation of any component type.
	seq      uint64
	maxStamp uint64
}

func (u *Universe) ID() types.UniverseID { return u.id }

// GUID identifies this acquisition of the universe slot; a fresh one is
// assigned every time the slot is handed out by the registry.
func (u *Universe) GUID() uuid.UUID { return u.guid }

func (u *Universe) Logger() *zerolog.Logger { return &u.log }

// EntityCount returns the number of live entities.
func (u *Universe) EntityCount() int { return len(u.usedEnts) }

// EntityIDs returns the live entities in iteration order. The order is
// stable for a given universe state but may change when entities are freed.
func (u *Universe) EntityIDs() []types.EntityID {
	out := make([]types.EntityID, len(u.usedEnts))
	copy(out, u.usedEnts)
	return out
}

// MaxInvalidationStamp returns the invalidation-clock time of the most
// recent mutation of any registered component type.
func (u *Universe) MaxInvalidationStamp() uint64 { return u.maxStamp }

// AllocEntity pops a slot from the free-list, growing the list by a fixed
// chunk when empty, and returns a handle to the new live entity.
func (u *Universe) AllocEntity() (Entity, error) {
	if u.freed {
		return Entity{}, eris.Wrap(ErrUniverseFreed, "")
	}
	if len(u.freeEnts) == 0 {
		u.growFreeList()
	}
	id := u.freeEnts[len(u.freeEnts)-1]
	u.freeEnts = u.freeEnts[:len(u.freeEnts)-1]
	s := &u.slots[id.Local]
	s.generation = id.Generation
	s.used = true
	s.usedPos = len(u.usedEnts)
	u.usedEnts = append(u.usedEnts, id)
	u.log.Debug().Stringer("entity_id", id).Msg("entity allocated")
	return Entity{ID: id, universe: u}, nil
}

// FreeEntity tears down every component the entity has (remove hooks fire
// through the per-type records) and returns the slot to the free-list with
// its generation bumped, invalidating outstanding handles. The used list is
// compacted with a swap-with-last, so live-entity ordering is not preserved.
func (u *Universe) FreeEntity(id types.EntityID) error {
	if u.freed {
		return eris.Wrap(ErrUniverseFreed, "")
	}
	if err := u.validateLive(id); err != nil {
		return err
	}
	for _, rec := range u.recordsByID() {
		if rec.despawn != nil && rec.has(id) {
			rec.despawn(id)
		}
	}
	for _, rec := range u.recordsByID() {
		if rec.has(id) {
			if err := rec.removeFrom(id); err != nil {
				return err
			}
		}
	}

	s := &u.slots[id.Local]
	last := len(u.usedEnts) - 1
	moved := u.usedEnts[last]
	u.usedEnts[s.usedPos] = moved
	u.slots[moved.Local].usedPos = s.usedPos
	u.usedEnts = u.usedEnts[:last]
	s.used = false

	next := id.Generation + 1
	if next == types.DeadGeneration {
		// The sentinel must keep meaning "empty slot"; wrap past it.
		next = 0
	}
	s.generation = next
	u.freeEnts = append(u.freeEnts, types.EntityID{Local: id.Local, Universe: u.id, Generation: next})
	u.log.Debug().Stringer("entity_id", id).Msg("entity freed")
	return nil
}

// DestroyAllEntities frees every live entity.
func (u *Universe) DestroyAllEntities() error {
	for len(u.usedEnts) > 0 {
		if err := u.FreeEntity(u.usedEnts[len(u.usedEnts)-1]); err != nil {
			return err
		}
	}
	return nil
}

// IsLive reports whether id refers to a currently live entity of this
// universe.
func (u *Universe) IsLive(id types.EntityID) bool {
	return u.validateLive(id) == nil
}

// CopyEntity copies every component present on src onto dst with overwrite
// semantics. dst may live in a different universe of the same registry.
// Component types the destination universe has not registered are skipped;
// this is deliberate best-effort, not an error.
func (u *Universe) CopyEntity(src, dst types.EntityID) error {
	if u.freed {
		return eris.Wrap(ErrUniverseFreed, "")
	}
	if err := u.validateLive(src); err != nil {
		return err
	}
	du := u
	if dst.Universe != u.id {
		var err error
		du, err = u.reg.Get(dst.Universe)
		if err != nil {
			return err
		}
	}
	if err := du.validateLive(dst); err != nil {
		return err
	}
	for _, rec := range u.recordsByID() {
		if !rec.has(src) {
			continue
		}
		if _, ok := du.comps[rec.name]; !ok {
			u.log.Debug().
				Str("component_name", rec.name).
				Uint16("destination_universe", uint16(du.id)).
				Msg("destination lacks component type, skipping")
			continue
		}
		if err := rec.copyTo(src, du, dst); err != nil {
			return err
		}
	}
	return nil
}

// CloneEntity allocates a fresh entity in this universe and copies every
// component of src onto it.
func (u *Universe) CloneEntity(src types.EntityID) (Entity, error) {
	e, err := u.AllocEntity()
	if err != nil {
		return Entity{}, err
	}
	if err := u.CopyEntity(src, e.ID); err != nil {
		return Entity{}, err
	}
	return e, nil
}

// Dup allocates a new universe from the same registry, registers every
// component type this universe has with the same backend choice, and copies
// every live entity into it. The result is structurally independent.
func (u *Universe) Dup() (*Universe, error) {
	if u.freed {
		return nil, eris.Wrap(ErrUniverseFreed, "")
	}
	nu, err := u.reg.Alloc()
	if err != nil {
		return nil, err
	}
	for _, rec := range u.recordsByID() {
		if err := rec.registerInto(nu); err != nil {
			return nil, err
		}
	}
	for _, id := range u.usedEnts {
		ne, err := nu.AllocEntity()
		if err != nil {
			return nil, err
		}
		if err := u.CopyEntity(id, ne.ID); err != nil {
			return nil, err
		}
		nu.fireSpawnHooks(ne.ID)
	}
	return nu, nil
}

// stampComponent advances the invalidation clock and records the new time on
// the component's record and the universe-wide maximum. Every mutating
// storage operation ends up here via the store's Invalidate hook.
func (u *Universe) stampComponent(rec *componentRecord) {
	u.seq++
	rec.stamp = u.seq
	u.maxStamp = u.seq
}

// now advances and returns the invalidation clock. Because the clock is a
// logical sequence, distinct readings never collide, and the staleness
// comparison can stay inclusive (>=) as the protocol requires.
func (u *Universe) now() uint64 {
	u.seq++
	return u.seq
}

func (u *Universe) validateLive(id types.EntityID) error {
	if id.Universe != u.id {
		return eris.Wrapf(ErrWrongUniverse, "entity %s", id)
	}
	if int(id.Local) >= len(u.slots) {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %s", id)
	}
	s := u.slots[id.Local]
	if !s.used || s.generation != id.Generation {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %s", id)
	}
	return nil
}

func (u *Universe) growFreeList() {
	for i := 0; i < u.chunkSize; i++ {
		local := u.nextLocal
		u.nextLocal++
		u.slots = append(u.slots, slot{})
		u.freeEnts = append(u.freeEnts, types.EntityID{Local: local, Universe: u.id})
	}
}

func (u *Universe) fireSpawnHooks(id types.EntityID) {
	for _, rec := range u.recordsByID() {
		if rec.spawn != nil && rec.has(id) {
			rec.spawn(id)
		}
	}
}

// reset returns the universe to its pristine state: all entities are freed
// (lifecycle hooks fire), all storages dropped, all slot bookkeeping and the
// invalidation clock cleared. Called by the registry when the universe is
// returned to the pool.
func (u *Universe) reset() error {
	if err := u.DestroyAllEntities(); err != nil {
		return err
	}
	for _, rec := range u.comps {
		rec.reset()
	}
	u.comps = make(map[string]*componentRecord)
	u.nextCompID = 0
	u.slots = nil
	u.usedEnts = nil
	u.freeEnts = nil
	u.nextLocal = 0
	u.seq = 0
	u.maxStamp = 0
	u.freed = true
	return nil
}

func (u *Universe) logComponentChange(rec *componentRecord, id types.EntityID, msg string) {
	u.log.Debug().
		Stringer("entity_id", id).
		Str("component_name", rec.name).
		Int("component_id", int(rec.id)).
		Msg(msg)
}
