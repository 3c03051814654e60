package uverse

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/codec"
	"github.com/calderagames/uverse/storage"
	"github.com/calderagames/uverse/types"
)

// componentRecord is the type-erased record the universe keeps per
// registered component type. The closures capture the concrete
// storage.Store[T] built at registration, so the universe itself holds no
// compile-time knowledge of component types.
type componentRecord struct {
	name   string
	id     types.ComponentID
	kind   types.StorageKind
	schema []byte

	// stamp is the invalidation-clock time of the last mutation of this
	// component type. Initialized to registration time.
	stamp uint64

	has          func(id types.EntityID) bool
	pointer      func(id types.EntityID) (any, bool)
	removeFrom   func(id types.EntityID) error
	copyTo       func(src types.EntityID, dst *Universe, dstID types.EntityID) error
	registerInto func(dst *Universe) error
	serialize    func(id types.EntityID) (SerializedComponent, error)
	deserialize  func(id types.EntityID, in SerializedComponent) error
	spawn        func(id types.EntityID)
	despawn      func(id types.EntityID)
	reset        func()

	// store holds the concrete storage.Store[T] for same-type access from
	// the generic API.
	store any
}

// RegisterComponent builds a storage of the requested kind for T and wires
// it into the universe. Zero-field marker types are always backed by the
// bitset store, overriding the requested kind. It is an error to register
// the same component name twice in one universe.
func RegisterComponent[T types.Component](u *Universe, kind types.StorageKind) error {
	if u.freed {
		return eris.Wrap(ErrUniverseFreed, "")
	}
	var t T
	name := t.Name()
	if _, ok := u.comps[name]; ok {
		return eris.Wrapf(ErrComponentAlreadyRegistered, "component %q", name)
	}
	if err := validateHooks[T](); err != nil {
		return err
	}
	schema, err := types.SerializeComponentSchema(t)
	if err != nil {
		return err
	}

	if typ := reflect.TypeOf(t); typ != nil && typ.Kind() == reflect.Struct &&
		typ.NumField() == 0 && kind != types.StorageBitset {
		u.log.Debug().
			Str("component_name", name).
			Str("requested_storage", kind.String()).
			Msg("marker component, forcing bitset storage")
		kind = types.StorageBitset
	}

	rec := &componentRecord{
		name:   name,
		id:     u.nextCompID,
		kind:   kind,
		schema: schema,
	}
	u.nextCompID++

	// Hook implementation is detected here, once, so the per-operation path
	// never pays for reflection.
	var (
		_, hasAdded        = any((*T)(nil)).(Added)
		_, hasRemoved      = any((*T)(nil)).(Removed)
		_, hasSerialized   = any((*T)(nil)).(Serialized)
		_, hasDeserialized = any((*T)(nil)).(Deserialized)
		_, hasSpawned      = any((*T)(nil)).(Spawned)
		_, hasDespawned    = any((*T)(nil)).(Despawned)
	)

	// The store variable is captured by the hook closures before it is
	// assigned; every hook fires from inside a store operation, after
	// construction completes.
	var store storage.Store[T]
	hooks := storage.Hooks{
		Invalidate: func() { u.stampComponent(rec) },
	}
	if hasAdded {
		hooks.OnAdd = func(id types.EntityID) {
			if p, ok := store.TryGet(id); ok {
				any(p).(Added).OnAdded(u, id)
			}
		}
	}
	if hasRemoved {
		hooks.OnRemove = func(id types.EntityID) {
			if p, ok := store.TryGet(id); ok {
				any(p).(Removed).OnRemoved(u, id)
			}
		}
	}

	switch kind {
	case types.StorageFlat:
		store = storage.NewFlat[T](hooks)
	case types.StorageBitset:
		store = storage.NewBitset[T](hooks)
	default:
		store = storage.NewHashed[T](hooks)
	}
	rec.store = store

	rec.has = store.Has
	rec.removeFrom = store.Remove
	rec.reset = store.Reset
	rec.pointer = func(id types.EntityID) (any, bool) {
		p, ok := store.TryGet(id)
		if !ok {
			return nil, false
		}
		return p, true
	}
	rec.registerInto = func(dst *Universe) error {
		return RegisterComponent[T](dst, kind)
	}
	rec.copyTo = func(src types.EntityID, dst *Universe, dstID types.EntityID) error {
		drec, ok := dst.comps[name]
		if !ok {
			return eris.Wrapf(ErrComponentNotRegistered, "component %q", name)
		}
		dstStore, ok := drec.store.(storage.Store[T])
		if !ok {
			return eris.Wrapf(ErrComponentNotRegistered,
				"component %q is registered with a different type in universe %d", name, dst.id)
		}
		p, err := store.Get(src)
		if err != nil {
			return err
		}
		_, err = dstStore.Overwrite(dstID, *p)
		return err
	}
	rec.serialize = func(id types.EntityID) (SerializedComponent, error) {
		p, err := store.Get(id)
		if err != nil {
			return SerializedComponent{}, err
		}
		bz, err := codec.Encode(*p)
		if err != nil {
			return SerializedComponent{}, err
		}
		out := SerializedComponent{Type: name, Schema: rec.schema, Data: bz}
		if hasSerialized {
			any(p).(Serialized).OnSerialized(u, id, &out)
		}
		return out, nil
	}
	rec.deserialize = func(id types.EntityID, in SerializedComponent) error {
		if len(in.Schema) > 0 {
			ok, err := types.IsComponentValid(t, in.Schema)
			if err != nil {
				return err
			}
			if !ok {
				return eris.Wrapf(ErrSchemaMismatch, "component %q", name)
			}
		}
		value, err := codec.Decode[T](in.Data)
		if err != nil {
			return err
		}
		p, err := store.Overwrite(id, value)
		if err != nil {
			return err
		}
		if hasDeserialized {
			any(p).(Deserialized).OnDeserialized(u, id, in)
		}
		return nil
	}
	if hasSpawned {
		rec.spawn = func(id types.EntityID) {
			if p, ok := store.TryGet(id); ok {
				any(p).(Spawned).OnSpawned(u, id)
			}
		}
	}
	if hasDespawned {
		rec.despawn = func(id types.EntityID) {
			if p, ok := store.TryGet(id); ok {
				any(p).(Despawned).OnDespawned(u, id)
			}
		}
	}

	u.comps[name] = rec
	u.stampComponent(rec)
	u.log.Debug().
		Str("component_name", name).
		Int("component_id", int(rec.id)).
		Str("storage", kind.String()).
		Msg("component registered")
	return nil
}

// DeregisterComponent sweeps the component off every live entity that has it
// (remove hooks fire) and then drops the storage.
func DeregisterComponent[T types.Component](u *Universe) error {
	rec, _, err := resolve[T](u)
	if err != nil {
		return err
	}
	for _, id := range u.usedEnts {
		if rec.has(id) {
			if err := rec.removeFrom(id); err != nil {
				return err
			}
		}
	}
	delete(u.comps, rec.name)
	u.log.Debug().Str("component_name", rec.name).Msg("component deregistered")
	return nil
}

// resolve finds the registered record and concrete store for T.
func resolve[T types.Component](u *Universe) (*componentRecord, storage.Store[T], error) {
	if u.freed {
		return nil, nil, eris.Wrap(ErrUniverseFreed, "")
	}
	var t T
	rec, ok := u.comps[t.Name()]
	if !ok {
		return nil, nil, eris.Wrapf(ErrComponentNotRegistered, "component %q", t.Name())
	}
	store, ok := rec.store.(storage.Store[T])
	if !ok {
		return nil, nil, eris.Wrapf(ErrComponentNotRegistered,
			"component %q is registered with a different type", t.Name())
	}
	return rec, store, nil
}

// Has reports whether the entity currently has component T.
func Has[T types.Component](u *Universe, id types.EntityID) (bool, error) {
	_, store, err := resolve[T](u)
	if err != nil {
		return false, err
	}
	if err := u.validateLive(id); err != nil {
		return false, err
	}
	return store.Has(id), nil
}

// Add stores value as the entity's component T. The entity must not already
// have the component. The returned pointer is valid until the next mutation
// of T's storage.
func Add[T types.Component](u *Universe, id types.EntityID, value T) (*T, error) {
	rec, store, err := resolve[T](u)
	if err != nil {
		return nil, err
	}
	if err := u.validateLive(id); err != nil {
		return nil, err
	}
	p, err := store.Add(id, value)
	if err != nil {
		return nil, err
	}
	u.logComponentChange(rec, id, "component added")
	return p, nil
}

// Remove drops the entity's component T. The entity must have the component.
func Remove[T types.Component](u *Universe, id types.EntityID) error {
	rec, store, err := resolve[T](u)
	if err != nil {
		return err
	}
	if err := u.validateLive(id); err != nil {
		return err
	}
	if err := store.Remove(id); err != nil {
		return err
	}
	u.logComponentChange(rec, id, "component removed")
	return nil
}

// Get returns the live pointer to the entity's component T. The entity must
// have the component.
func Get[T types.Component](u *Universe, id types.EntityID) (*T, error) {
	_, store, err := resolve[T](u)
	if err != nil {
		return nil, err
	}
	if err := u.validateLive(id); err != nil {
		return nil, err
	}
	return store.Get(id)
}

// TryGet is Get without the presence precondition; the bool reports whether
// the component was there. Unregistered types and dead entities are still
// errors.
func TryGet[T types.Component](u *Universe, id types.EntityID) (*T, bool, error) {
	_, store, err := resolve[T](u)
	if err != nil {
		return nil, false, err
	}
	if err := u.validateLive(id); err != nil {
		return nil, false, err
	}
	p, ok := store.TryGet(id)
	return p, ok, nil
}

// Overwrite replaces the entity's component T if present (lifecycle
// observers see a remove followed by an add) or stores it fresh.
func Overwrite[T types.Component](u *Universe, id types.EntityID, value T) (*T, error) {
	rec, store, err := resolve[T](u)
	if err != nil {
		return nil, err
	}
	if err := u.validateLive(id); err != nil {
		return nil, err
	}
	p, err := store.Overwrite(id, value)
	if err != nil {
		return nil, err
	}
	u.logComponentChange(rec, id, "component overwritten")
	return p, nil
}

// EffectiveStorage returns the storage kind actually backing T, which may
// differ from the requested kind for marker components.
func EffectiveStorage[T types.Component](u *Universe) (types.StorageKind, error) {
	rec, _, err := resolve[T](u)
	if err != nil {
		return 0, err
	}
	return rec.kind, nil
}

// InvalidationStamp returns the invalidation-clock time of the last mutation
// of component type T in this universe.
func InvalidationStamp[T types.Component](u *Universe) (uint64, error) {
	rec, _, err := resolve[T](u)
	if err != nil {
		return 0, err
	}
	return rec.stamp, nil
}

// recordsByID returns the registered records ordered by registration, for
// deterministic iteration over the vtable map.
func (u *Universe) recordsByID() []*componentRecord {
	recs := make([]*componentRecord, 0, len(u.comps))
	for _, rec := range u.comps {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].id < recs[j].id })
	return recs
}
