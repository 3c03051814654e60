package uverse

import (
	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/types"
)

// ColumnRef names one component column of a cache. Optional columns yield
// nil pointers for entities lacking the component instead of excluding the
// entity from the join.
type ColumnRef struct {
	name     string
	optional bool
}

// Col declares a required column for component T.
func Col[T types.Component]() ColumnRef {
	var t T
	return ColumnRef{name: t.Name()}
}

// Opt declares an optional (nullable) column for component T.
func Opt[T types.Component]() ColumnRef {
	var t T
	return ColumnRef{name: t.Name(), optional: true}
}

// Row is one joined result: an entity plus one component pointer per column
// in declaration order. Optional columns hold nil when the entity lacks the
// component. Pointers are borrowed from the storages and are valid only
// until the next mutation of any column's storage; never retain them across
// a Refresh.
type Row struct {
	ID       types.EntityID
	pointers []any
}

// Pointer returns the column's pointer as stored, or nil for an absent
// optional column.
func (r Row) Pointer(col int) any { return r.pointers[col] }

// Cache is a materialized join over N storages of one universe: the set of
// live entities that have every required column. It is a point-in-time
// result, refreshed on demand through the invalidation-clock staleness
// protocol, never partially updated.
type Cache struct {
	universe *Universe
	cols     []ColumnRef
	rows     []Row

	// lastRefresh is the invalidation-clock reading taken at the end of the
	// last Refresh.
	lastRefresh uint64
}

// NewCache builds a cache over the given columns. Required columns must name
// registered component types.
func (u *Universe) NewCache(cols ...ColumnRef) (*Cache, error) {
	if u.freed {
		return nil, eris.Wrap(ErrUniverseFreed, "")
	}
	if len(cols) == 0 {
		return nil, eris.New("cache needs at least one column")
	}
	for _, col := range cols {
		if _, ok := u.comps[col.name]; !ok && !col.optional {
			return nil, eris.Wrapf(ErrComponentNotRegistered, "cache column %q", col.name)
		}
	}
	return &Cache{universe: u, cols: cols}, nil
}

// Stale reports whether any tracked column mutated at or after the last
// refresh. A never-refreshed cache is always stale, even when none of its
// columns resolve to a registered type yet. The universe-wide stamp is
// checked first so that caches of unrelated components skip the per-column
// scan. The comparison is inclusive; a reading equal to the refresh time
// counts as stale.
func (c *Cache) Stale() bool {
	u := c.universe
	if c.lastRefresh == 0 {
		return true
	}
	if u.maxStamp < c.lastRefresh {
		return false
	}
	for _, col := range c.cols {
		if rec, ok := u.comps[col.name]; ok && rec.stamp >= c.lastRefresh {
			return true
		}
	}
	return false
}

// Refresh recomputes the joined rows by scanning the universe's live
// entities. Without force, a non-stale cache is left untouched and Refresh
// reports false. Entities missing any required column are skipped entirely.
// Row ordering follows the universe's live-entity iteration order.
func (c *Cache) Refresh(force bool) (bool, error) {
	u := c.universe
	if u.freed {
		return false, eris.Wrap(ErrUniverseFreed, "")
	}
	if !force && !c.Stale() {
		return false, nil
	}
	recs := make([]*componentRecord, len(c.cols))
	for i, col := range c.cols {
		rec, ok := u.comps[col.name]
		if !ok {
			if !col.optional {
				return false, eris.Wrapf(ErrComponentNotRegistered, "cache column %q", col.name)
			}
			continue
		}
		recs[i] = rec
	}

	c.rows = c.rows[:0]
entities:
	for _, id := range u.usedEnts {
		pointers := make([]any, len(c.cols))
		for i, rec := range recs {
			var p any
			ok := false
			if rec != nil {
				p, ok = rec.pointer(id)
			}
			if !ok {
				if !c.cols[i].optional {
					continue entities
				}
				p = nil
			}
			pointers[i] = p
		}
		c.rows = append(c.rows, Row{ID: id, pointers: pointers})
	}
	c.lastRefresh = u.now()
	return true, nil
}

// Rows returns the current joined rows. The slice is owned by the cache and
// is rewritten by the next Refresh.
func (c *Cache) Rows() []Row { return c.rows }

func (c *Cache) Len() int { return len(c.rows) }

// Cache1 is a typed view over a single-column cache.
type Cache1[A types.Component] struct {
	join *Cache
}

func NewCache1[A types.Component](u *Universe) (*Cache1[A], error) {
	join, err := u.NewCache(Col[A]())
	if err != nil {
		return nil, err
	}
	return &Cache1[A]{join: join}, nil
}

func (c *Cache1[A]) Stale() bool                      { return c.join.Stale() }
func (c *Cache1[A]) Refresh(force bool) (bool, error) { return c.join.Refresh(force) }
func (c *Cache1[A]) Len() int                         { return c.join.Len() }

// Each unpacks every row into typed arguments. Returning false stops the
// iteration.
func (c *Cache1[A]) Each(fn func(id types.EntityID, a *A) bool) {
	for _, row := range c.join.rows {
		a, _ := row.pointers[0].(*A)
		if !fn(row.ID, a) {
			return
		}
	}
}

// Cache2 is a typed view over a two-column cache.
type Cache2[A, B types.Component] struct {
	join *Cache
}

func NewCache2[A, B types.Component](u *Universe) (*Cache2[A, B], error) {
	join, err := u.NewCache(Col[A](), Col[B]())
	if err != nil {
		return nil, err
	}
	return &Cache2[A, B]{join: join}, nil
}

// NewCache2Opt builds a two-column cache whose B column is optional.
func NewCache2Opt[A, B types.Component](u *Universe) (*Cache2[A, B], error) {
	join, err := u.NewCache(Col[A](), Opt[B]())
	if err != nil {
		return nil, err
	}
	return &Cache2[A, B]{join: join}, nil
}

func (c *Cache2[A, B]) Stale() bool                      { return c.join.Stale() }
func (c *Cache2[A, B]) Refresh(force bool) (bool, error) { return c.join.Refresh(force) }
func (c *Cache2[A, B]) Len() int                         { return c.join.Len() }

func (c *Cache2[A, B]) Each(fn func(id types.EntityID, a *A, b *B) bool) {
	for _, row := range c.join.rows {
		a, _ := row.pointers[0].(*A)
		b, _ := row.pointers[1].(*B)
		if !fn(row.ID, a, b) {
			return
		}
	}
}

// Cache3 is a typed view over a three-column cache.
type Cache3[A, B, C types.Component] struct {
	join *Cache
}

func NewCache3[A, B, C types.Component](u *Universe) (*Cache3[A, B, C], error) {
	join, err := u.NewCache(Col[A](), Col[B](), Col[C]())
	if err != nil {
		return nil, err
	}
	return &Cache3[A, B, C]{join: join}, nil
}

func (c *Cache3[A, B, C]) Stale() bool                      { return c.join.Stale() }
func (c *Cache3[A, B, C]) Refresh(force bool) (bool, error) { return c.join.Refresh(force) }
func (c *Cache3[A, B, C]) Len() int                         { return c.join.Len() }

func (c *Cache3[A, B, C]) Each(fn func(id types.EntityID, a *A, b *B, cc *C) bool) {
	for _, row := range c.join.rows {
		a, _ := row.pointers[0].(*A)
		b, _ := row.pointers[1].(*B)
		cp, _ := row.pointers[2].(*C)
		if !fn(row.ID, a, b, cp) {
			return
		}
	}
}
