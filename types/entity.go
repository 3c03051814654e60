package types

import (
	"fmt"
	"math"
)

type (
	// LocalID indexes an entity slot. It is only meaningful within the
	// universe that allocated it.
	LocalID uint32

	// UniverseID identifies a universe slot in the process-wide registry.
	UniverseID uint16

	// Generation counts how many times an entity slot has been recycled.
	Generation uint16
)

// DeadGeneration marks an empty or freed storage slot. A live entity never
// carries this generation; the allocator skips it when a slot's counter
// wraps around.
const DeadGeneration Generation = math.MaxUint16

// EntityID identifies one incarnation of an entity slot. Two EntityIDs refer
// to the same live entity iff all three fields match; a matching Local and
// Universe with a different Generation is a handle to a dead incarnation of
// a reused slot.
type EntityID struct {
	Local      LocalID    `json:"local"`
	Universe   UniverseID `json:"universe"`
	Generation Generation `json:"generation"`
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d@%d", id.Universe, id.Local, id.Generation)
}
