package snapshot_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gotest.tools/v3/assert"

	"github.com/calderagames/uverse"
	"github.com/calderagames/uverse/snapshot"
	"github.com/calderagames/uverse/types"
)

type health struct {
	HP int
}

func (health) Name() string { return "health" }

func newStore(t *testing.T) *snapshot.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return snapshot.NewStore(client, "uverse-test")
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	r, err := uverse.NewRegistry()
	assert.NilError(t, err)
	src, err := r.Alloc()
	assert.NilError(t, err)
	assert.NilError(t, uverse.RegisterComponent[health](src, types.StorageFlat))

	var ids []types.EntityID
	for hp := 1; hp <= 3; hp++ {
		e, err := src.AllocEntity()
		assert.NilError(t, err)
		_, err = uverse.AddTo(e, health{HP: hp})
		assert.NilError(t, err)
		ids = append(ids, e.ID)
	}

	guid, err := store.Save(ctx, src)
	assert.NilError(t, err)
	assert.Equal(t, guid, src.GUID().String())

	dst, err := r.Alloc()
	assert.NilError(t, err)
	assert.NilError(t, uverse.RegisterComponent[health](dst, types.StorageFlat))

	remap, err := store.Restore(ctx, dst, guid)
	assert.NilError(t, err)
	assert.Equal(t, dst.EntityCount(), 3)

	for _, old := range ids {
		fresh, ok := remap[old]
		assert.Assert(t, ok)
		want, err := uverse.Get[health](src, old)
		assert.NilError(t, err)
		got, err := uverse.Get[health](dst, fresh)
		assert.NilError(t, err)
		assert.Equal(t, got.HP, want.HP)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	store := newStore(t)
	_, err := store.Load(context.Background(), "no-such-guid")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
}

func TestSnapshotSurvivesUniverseReuse(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	r, err := uverse.NewRegistry()
	assert.NilError(t, err)
	u, err := r.Alloc()
	assert.NilError(t, err)
	assert.NilError(t, uverse.RegisterComponent[health](u, types.StorageHashed))
	e, err := u.AllocEntity()
	assert.NilError(t, err)
	_, err = uverse.AddTo(e, health{HP: 42})
	assert.NilError(t, err)

	guid, err := store.Save(ctx, u)
	assert.NilError(t, err)

	// Recycle the slot; the snapshot is keyed by guid, not slot id.
	assert.NilError(t, r.Free(u))
	u2, err := r.Alloc()
	assert.NilError(t, err)
	assert.NilError(t, uverse.RegisterComponent[health](u2, types.StorageHashed))

	remap, err := store.Restore(ctx, u2, guid)
	assert.NilError(t, err)
	assert.Equal(t, len(remap), 1)
	got, err := uverse.Get[health](u2, remap[e.ID])
	assert.NilError(t, err)
	assert.Equal(t, got.HP, 42)
}
