package uverse

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/calderagames/uverse/types"
)

// Registry is a process-wide pool of reusable universe slots. Universes are
// logically reset on Free and handed back out by Alloc rather than
// destructed, to avoid reallocation churn. The registry itself is guarded by
// a mutex; the universes it hands out are single-threaded.
type Registry struct {
	mu        sync.Mutex
	log       zerolog.Logger
	cfg       Config
	universes []*Universe
	free      []types.UniverseID
}

// NewRegistry loads configuration from the environment and returns an empty
// registry.
func NewRegistry() (*Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(cfg.UverseLogLevel)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid log level %q", cfg.UverseLogLevel)
	}
	return &Registry{
		cfg: *cfg,
		log: log.Logger.Level(level),
	}, nil
}

// Alloc hands out a universe: a pooled one if any slot is free, otherwise a
// newly created slot. Every acquisition gets a fresh GUID.
func (r *Registry) Alloc() (*Universe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.free); n > 0 {
		id := r.free[n-1]
		r.free = r.free[:n-1]
		u := r.universes[id]
		u.freed = false
		u.guid = uuid.New()
		u.log.Debug().Msg("universe reused from pool")
		return u, nil
	}
	if len(r.universes) > math.MaxUint16 {
		return nil, eris.Wrap(ErrRegistryExhausted, "")
	}
	id := types.UniverseID(len(r.universes))
	u := &Universe{
		id:        id,
		guid:      uuid.New(),
		reg:       r,
		chunkSize: r.cfg.UverseEntityChunkSize,
		comps:     make(map[string]*componentRecord),
		log:       r.log.With().Uint16("universe_id", uint16(id)).Logger(),
	}
	r.universes = append(r.universes, u)
	u.log.Debug().Msg("universe created")
	return u, nil
}

// Free resets the universe (freeing every entity, with lifecycle hooks) and
// returns its slot to the pool. Operating on a freed universe is an error
// until the slot is handed out again.
func (r *Registry) Free(u *Universe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.reg != r {
		return eris.Wrap(ErrUniverseDoesNotExist, "universe belongs to a different registry")
	}
	if u.freed {
		return eris.Wrap(ErrUniverseFreed, "")
	}
	if err := u.reset(); err != nil {
		return err
	}
	r.free = append(r.free, u.id)
	u.log.Debug().Msg("universe returned to pool")
	return nil
}

// Get returns the live universe for the given id.
func (r *Registry) Get(id types.UniverseID) (*Universe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) >= len(r.universes) {
		return nil, eris.Wrapf(ErrUniverseDoesNotExist, "universe %d", id)
	}
	u := r.universes[id]
	if u.freed {
		return nil, eris.Wrapf(ErrUniverseFreed, "universe %d", id)
	}
	return u, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
	defaultRegistryErr  error
)

// DefaultRegistry returns the lazily initialized process-wide registry.
func DefaultRegistry() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = NewRegistry()
	})
	return defaultRegistry, defaultRegistryErr
}

// AllocUniverse allocates from the process-wide registry.
func AllocUniverse() (*Universe, error) {
	r, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}
	return r.Alloc()
}

// FreeUniverse returns a universe to the process-wide registry.
func FreeUniverse(u *Universe) error {
	r, err := DefaultRegistry()
	if err != nil {
		return err
	}
	return r.Free(u)
}
