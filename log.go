package uverse

import (
	"github.com/rs/zerolog"

	"github.com/calderagames/uverse/types"
)

func loadComponentIntoArrayLogger(rec *componentRecord, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(rec.id))
	dictLogger = dictLogger.Str("component_name", rec.name)
	dictLogger = dictLogger.Str("storage", rec.kind.String())
	return arrayLogger.Dict(dictLogger)
}

func (u *Universe) loadComponentsToEvent(zeroLoggerEvent *zerolog.Event) *zerolog.Event {
	recs := u.recordsByID()
	zeroLoggerEvent.Int("total_components", len(recs))
	arrayLogger := zerolog.Arr()
	for _, rec := range recs {
		arrayLogger = loadComponentIntoArrayLogger(rec, arrayLogger)
	}
	return zeroLoggerEvent.Array("components", arrayLogger)
}

// LogComponents logs every registered component type.
func (u *Universe) LogComponents(level zerolog.Level) {
	zeroLoggerEvent := u.log.WithLevel(level)
	zeroLoggerEvent = u.loadComponentsToEvent(zeroLoggerEvent)
	zeroLoggerEvent.Send()
}

// LogEntity logs an entity and the component types it currently has.
func (u *Universe) LogEntity(level zerolog.Level, id types.EntityID) error {
	if err := u.validateLive(id); err != nil {
		return err
	}
	zeroLoggerEvent := u.log.WithLevel(level)
	arrayLogger := zerolog.Arr()
	for _, rec := range u.recordsByID() {
		if rec.has(id) {
			arrayLogger = loadComponentIntoArrayLogger(rec, arrayLogger)
		}
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	zeroLoggerEvent.Stringer("entity_id", id)
	zeroLoggerEvent.Send()
	return nil
}

// LogUniverse logs everything about the universe: its registered component
// types and entity counts.
func (u *Universe) LogUniverse(level zerolog.Level) {
	zeroLoggerEvent := u.log.WithLevel(level)
	zeroLoggerEvent = u.loadComponentsToEvent(zeroLoggerEvent)
	zeroLoggerEvent.Int("total_entities", len(u.usedEnts))
	zeroLoggerEvent.Int("free_slots", len(u.freeEnts))
	zeroLoggerEvent.Send()
}
