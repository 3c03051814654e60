package uverse

import (
	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/types"
)

// Entity couples an EntityID with the universe that allocated it. It is a
// validating convenience wrapper, not a separate identity.
type Entity struct {
	ID       types.EntityID
	universe *Universe
}

func (e Entity) Universe() *Universe { return e.universe }

// Valid reports whether the handle is bound to a universe that considers the
// id live. Handles captured before a FreeEntity report false afterward.
func (e Entity) Valid() bool {
	return e.universe != nil && e.universe.IsLive(e.ID)
}

// Free returns the entity's slot to its universe's free-list.
func (e Entity) Free() error {
	if e.universe == nil {
		return eris.Wrap(ErrEntityDoesNotExist, "unbound entity handle")
	}
	return e.universe.FreeEntity(e.ID)
}

// HasOn reports whether the entity has component T.
func HasOn[T types.Component](e Entity) (bool, error) {
	return Has[T](e.universe, e.ID)
}

// AddTo stores value as the entity's component T.
func AddTo[T types.Component](e Entity, value T) (*T, error) {
	return Add[T](e.universe, e.ID, value)
}

// RemoveFrom drops the entity's component T.
func RemoveFrom[T types.Component](e Entity) error {
	return Remove[T](e.universe, e.ID)
}

// GetFrom returns the live pointer to the entity's component T.
func GetFrom[T types.Component](e Entity) (*T, error) {
	return Get[T](e.universe, e.ID)
}

// TryGetFrom is GetFrom without the presence precondition.
func TryGetFrom[T types.Component](e Entity) (*T, bool, error) {
	return TryGet[T](e.universe, e.ID)
}

// OverwriteOn replaces or stores the entity's component T.
func OverwriteOn[T types.Component](e Entity, value T) (*T, error) {
	return Overwrite[T](e.universe, e.ID, value)
}
