// Package snapshot persists the opaque serialized form of a universe to
// redis, keyed by the universe's GUID.
package snapshot

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse"
	"github.com/calderagames/uverse/codec"
	"github.com/calderagames/uverse/types"
)

var ErrSnapshotNotFound = eris.New("snapshot not found")

// Store writes and reads universe snapshots through a redis client.
type Store struct {
	client redis.Cmdable
	prefix string
}

func NewStore(client redis.Cmdable, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(guid string) string {
	return fmt.Sprintf("%s:SNAPSHOT:%s", s.prefix, guid)
}

// Save serializes the universe and stores the blob under its GUID. The GUID
// is returned so callers can load the snapshot after the universe slot has
// been reused.
func (s *Store) Save(ctx context.Context, u *uverse.Universe) (string, error) {
	su, err := u.Serialize()
	if err != nil {
		return "", err
	}
	bz, err := codec.Encode(su)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(su.GUID), bz, 0).Err(); err != nil {
		return "", eris.Wrap(err, "")
	}
	return su.GUID, nil
}

// Load fetches a stored snapshot by GUID.
func (s *Store) Load(ctx context.Context, guid string) (uverse.SerializedUniverse, error) {
	bz, err := s.client.Get(ctx, s.key(guid)).Bytes()
	if err != nil {
		if eris.Is(err, redis.Nil) {
			return uverse.SerializedUniverse{}, eris.Wrapf(ErrSnapshotNotFound, "guid %s", guid)
		}
		return uverse.SerializedUniverse{}, eris.Wrap(err, "")
	}
	return codec.Decode[uverse.SerializedUniverse](bz)
}

// Restore loads the snapshot and deserializes it into the given universe,
// returning the entity id remapping.
func (s *Store) Restore(ctx context.Context, u *uverse.Universe, guid string) (
	map[types.EntityID]types.EntityID, error,
) {
	su, err := s.Load(ctx, guid)
	if err != nil {
		return nil, err
	}
	return u.Deserialize(su)
}
