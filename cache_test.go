package uverse_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/calderagames/uverse"
	"github.com/calderagames/uverse/types"
)

func TestCacheRefreshAndStaleness(t *testing.T) {
	u := newUniverse(t)
	assert.NilError(t, uverse.RegisterComponent[Position](u, types.StorageFlat))

	e, err := u.AllocEntity()
	assert.NilError(t, err)
	_, err = uverse.AddTo(e, Position{X: 1, Y: 2})
	assert.NilError(t, err)

	cache, err := uverse.NewCache1[Position](u)
	assert.NilError(t, err)
	assert.Assert(t, cache.Stale(), "a never-refreshed cache is stale")

	did, err := cache.Refresh(false)
	assert.NilError(t, err)
	assert.Assert(t, did)
	assert.Assert(t, !cache.Stale(), "a freshly refreshed cache is not stale")
	assert.Equal(t, cache.Len(), 1)

	found := false
	cache.Each(func(id types.EntityID, p *Position) bool {
		found = true
		assert.Equal(t, id, e.ID)
		assert.Assert(t, p != nil)
		assert.Equal(t, *p, Position{X: 1, Y: 2})
		return true
	})
	assert.Assert(t, found)

	// A non-stale refresh without force is a no-op.
	did, err = cache.Refresh(false)
	assert.NilError(t, err)
	assert.Assert(t, !did)

	// Removing a tracked component makes the cache stale; after refresh the
	// entity is gone.
	assert.NilError(t, uverse.RemoveFrom[Position](e))
	assert.Assert(t, cache.Stale())
	did, err = cache.Refresh(false)
	assert.NilError(t, err)
	assert.Assert(t, did)
	assert.Equal(t, cache.Len(), 0)
}

func TestCacheIgnoresUnrelatedChurn(t *testing.T) {
	u := newUniverse(t)
	assert.NilError(t, uverse.RegisterComponent[Position](u, types.StorageFlat))
	assert.NilError(t, uverse.RegisterComponent[Velocity](u, types.StorageHashed))

	e, err := u.AllocEntity()
	assert.NilError(t, err)
	_, err = uverse.AddTo(e, Position{})
	assert.NilError(t, err)

	cache, err := uverse.NewCache1[Position](u)
	assert.NilError(t, err)
	_, err = cache.Refresh(false)
	assert.NilError(t, err)

	// Churn on a type the cache does not track.
	_, err = uverse.AddTo(e, Velocity{DX: 1})
	assert.NilError(t, err)
	assert.NilError(t, uverse.RemoveFrom[Velocity](e))

	assert.Assert(t, !cache.Stale(), "unrelated component churn must not stale the cache")

	// Force still recomputes.
	did, err := cache.Refresh(true)
	assert.NilError(t, err)
	assert.Assert(t, did)
}

func TestCacheJoinSkipsEntitiesMissingRequired(t *testing.T) {
	u := newUniverse(t)
	assert.NilError(t, uverse.RegisterComponent[Position](u, types.StorageFlat))
	assert.NilError(t, uverse.RegisterComponent[Velocity](u, types.StorageHashed))

	both, err := u.AllocEntity()
	assert.NilError(t, err)
	_, err = uverse.AddTo(both, Position{X: 1})
	assert.NilError(t, err)
	_, err = uverse.AddTo(both, Velocity{DX: 2})
	assert.NilError(t, err)

	posOnly, err := u.AllocEntity()
	assert.NilError(t, err)
	_, err = uverse.AddTo(posOnly, Position{X: 3})
	assert.NilError(t, err)

	cache, err := uverse.NewCache2[Position, Velocity](u)
	assert.NilError(t, err)
	_, err = cache.Refresh(false)
	assert.NilError(t, err)
	assert.Equal(t, cache.Len(), 1)

	cache.Each(func(id types.EntityID, p *Position, v *Velocity) bool {
		assert.Equal(t, id, both.ID)
		assert.Equal(t, p.X, 1.0)
		assert.Equal(t, v.DX, 2.0)
		return true
	})
}

func TestCacheOptionalColumnYieldsNil(t *testing.T) {
	u := newUniverse(t)
	assert.NilError(t, uverse.RegisterComponent[Position](u, types.StorageFlat))
	assert.NilError(t, uverse.RegisterComponent[Label](u, types.StorageHashed))

	named, err := u.AllocEntity()
	assert.NilError(t, err)
	_, err = uverse.AddTo(named, Position{X: 1})
	assert.NilError(t, err)
	_, err = uverse.AddTo(named, Label{Value: "foo"})
	assert.NilError(t, err)

	anon, err := u.AllocEntity()
	assert.NilError(t, err)
	_, err = uverse.AddTo(anon, Position{X: 2})
	assert.NilError(t, err)

	cache, err := uverse.NewCache2Opt[Position, Label](u)
	assert.NilError(t, err)
	_, err = cache.Refresh(false)
	assert.NilError(t, err)
	assert.Equal(t, cache.Len(), 2, "optional column must not exclude entities")

	labels := map[types.EntityID]*Label{}
	cache.Each(func(id types.EntityID, _ *Position, l *Label) bool {
		labels[id] = l
		return true
	})
	assert.Assert(t, labels[named.ID] != nil)
	assert.Equal(t, labels[named.ID].Value, "foo")
	assert.Assert(t, labels[anon.ID] == nil)
}

func TestCacheRequiresRegisteredColumns(t *testing.T) {
	u := newUniverse(t)
	_, err := uverse.NewCache1[Position](u)
	assert.ErrorIs(t, err, uverse.ErrComponentNotRegistered)

	// Optional columns may reference a type that is not registered yet.
	assert.NilError(t, uverse.RegisterComponent[Position](u, types.StorageFlat))
	c, err := u.NewCache(uverse.Col[Position](), uverse.Opt[Label]())
	assert.NilError(t, err)
	_, err = c.Refresh(false)
	assert.NilError(t, err)
}

func TestCacheAllOptionalColumnsStillRefreshes(t *testing.T) {
	u := newUniverse(t)
	for i := 0; i < 2; i++ {
		_, err := u.AllocEntity()
		assert.NilError(t, err)
	}

	// Every column is optional and none resolves to a registered type yet.
	cache, err := u.NewCache(uverse.Opt[Velocity]())
	assert.NilError(t, err)
	assert.Assert(t, cache.Stale(), "a never-refreshed cache is stale even with unresolved columns")

	did, err := cache.Refresh(false)
	assert.NilError(t, err)
	assert.Assert(t, did)
	assert.Equal(t, cache.Len(), 2, "all entities join with nil optional columns")
	for _, row := range cache.Rows() {
		assert.Assert(t, row.Pointer(0) == nil)
	}
	assert.Assert(t, !cache.Stale())

	// Registering the column's type counts as a mutation of it.
	assert.NilError(t, uverse.RegisterComponent[Velocity](u, types.StorageHashed))
	assert.Assert(t, cache.Stale())
}

func TestCacheRowsFollowEntityIterationOrder(t *testing.T) {
	u := newUniverse(t)
	assert.NilError(t, uverse.RegisterComponent[Position](u, types.StorageFlat))

	var ids []types.EntityID
	for i := 0; i < 4; i++ {
		e, err := u.AllocEntity()
		assert.NilError(t, err)
		_, err = uverse.AddTo(e, Position{X: float64(i)})
		assert.NilError(t, err)
		ids = append(ids, e.ID)
	}

	cache, err := u.NewCache(uverse.Col[Position]())
	assert.NilError(t, err)
	_, err = cache.Refresh(false)
	assert.NilError(t, err)

	var got []types.EntityID
	for _, row := range cache.Rows() {
		got = append(got, row.ID)
	}
	assert.DeepEqual(t, got, u.EntityIDs())
	assert.Equal(t, len(got), len(ids))
}
