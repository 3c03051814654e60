package uverse

import "github.com/rotisserie/eris"

// These are contract violations, not recoverable runtime conditions. Callers
// are expected to treat them as bugs; they are surfaced as errors rather
// than panics so that they are never silently swallowed.
var (
	ErrEntityDoesNotExist         = eris.New("entity does not exist")
	ErrWrongUniverse              = eris.New("entity belongs to a different universe")
	ErrComponentAlreadyRegistered = eris.New("component type already registered")
	ErrComponentNotRegistered     = eris.New("component type not registered")
	ErrBadHookSignature           = eris.New("lifecycle hook has the wrong signature")
	ErrSchemaMismatch             = eris.New("serialized component schema mismatch")
	ErrUniverseFreed              = eris.New("universe has been freed")
	ErrUniverseDoesNotExist       = eris.New("universe does not exist")
	ErrRegistryExhausted          = eris.New("universe registry has no free slots")
)
