package uverse

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/types"
)

// SerializedComponent is one encoded component record. Type carries the
// component's type tag (its registered name) and routes the blob back to the
// correct storage on deserialize. Schema carries the producing type's JSON
// schema; when present, deserialize checks it against the consuming type so
// a same-name component with a different shape is skipped instead of being
// silently misread.
type SerializedComponent struct {
	Type   string          `json:"$type"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Data   json.RawMessage `json:"data"`
}

// SerializedEntity is one encoded entity. The id is only meaningful inside
// the blob it was serialized with; batch deserialize remaps it to a freshly
// allocated entity.
type SerializedEntity struct {
	ID         types.EntityID        `json:"id"`
	Components []SerializedComponent `json:"components"`
}

// SerializedUniverse is the opaque whole-universe form.
type SerializedUniverse struct {
	GUID     string             `json:"guid"`
	Entities []SerializedEntity `json:"entities"`
}

// SerializeEntity encodes every component the entity has, in component
// registration order.
func (u *Universe) SerializeEntity(id types.EntityID) (SerializedEntity, error) {
	if u.freed {
		return SerializedEntity{}, eris.Wrap(ErrUniverseFreed, "")
	}
	if err := u.validateLive(id); err != nil {
		return SerializedEntity{}, err
	}
	se := SerializedEntity{ID: id}
	for _, rec := range u.recordsByID() {
		if !rec.has(id) {
			continue
		}
		sc, err := rec.serialize(id)
		if err != nil {
			return SerializedEntity{}, err
		}
		se.Components = append(se.Components, sc)
	}
	return se, nil
}

// DeserializeEntity loads the serialized components onto an existing live
// entity with overwrite semantics. Records with an unknown type tag or a
// schema that does not match the registered type are skipped with a
// diagnostic rather than failing the batch. Spawn hooks fire once the entity
// is fully populated.
func (u *Universe) DeserializeEntity(id types.EntityID, se SerializedEntity) error {
	if u.freed {
		return eris.Wrap(ErrUniverseFreed, "")
	}
	if err := u.validateLive(id); err != nil {
		return err
	}
	for _, sc := range se.Components {
		rec, ok := u.comps[sc.Type]
		if !ok {
			u.log.Warn().
				Str("component_type", sc.Type).
				Stringer("entity_id", id).
				Msg("skipping unknown component type tag")
			continue
		}
		if err := rec.deserialize(id, sc); err != nil {
			if eris.Is(err, ErrSchemaMismatch) {
				u.log.Warn().
					Str("component_type", sc.Type).
					Stringer("entity_id", id).
					Msg("skipping component with mismatched schema")
				continue
			}
			return err
		}
	}
	u.fireSpawnHooks(id)
	return nil
}

// Serialize encodes the whole universe in live-entity iteration order.
func (u *Universe) Serialize() (SerializedUniverse, error) {
	if u.freed {
		return SerializedUniverse{}, eris.Wrap(ErrUniverseFreed, "")
	}
	su := SerializedUniverse{GUID: u.guid.String()}
	for _, id := range u.usedEnts {
		se, err := u.SerializeEntity(id)
		if err != nil {
			return SerializedUniverse{}, err
		}
		su.Entities = append(su.Entities, se)
	}
	return su, nil
}

// Deserialize loads a serialized universe into u, allocating a fresh entity
// for every serialized one. The returned map translates serialized entity
// ids to the live ids they were remapped to.
func (u *Universe) Deserialize(su SerializedUniverse) (map[types.EntityID]types.EntityID, error) {
	if u.freed {
		return nil, eris.Wrap(ErrUniverseFreed, "")
	}
	remap := make(map[types.EntityID]types.EntityID, len(su.Entities))
	for _, se := range su.Entities {
		e, err := u.AllocEntity()
		if err != nil {
			return nil, err
		}
		remap[se.ID] = e.ID
		if err := u.DeserializeEntity(e.ID, se); err != nil {
			return nil, err
		}
	}
	return remap, nil
}
