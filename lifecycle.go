package uverse

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/calderagames/uverse/types"
)

// Lifecycle capabilities a component type may implement. Implementation is
// detected once at registration, never per call. Hooks receive the owning
// universe and the entity; the receiver is the stored component value, so a
// pointer receiver may mutate it in place.
type (
	// Added is called after the component has been stored for the entity.
	Added interface {
		OnAdded(u *Universe, id types.EntityID)
	}

	// Removed is called before the component is dropped; the stored value is
	// still readable.
	Removed interface {
		OnRemoved(u *Universe, id types.EntityID)
	}

	// Serialized is called after the component has been encoded, with the
	// output record open for mutation.
	Serialized interface {
		OnSerialized(u *Universe, id types.EntityID, out *SerializedComponent)
	}

	// Deserialized is called after a decoded value has been stored for the
	// entity.
	Deserialized interface {
		OnDeserialized(u *Universe, id types.EntityID, in SerializedComponent)
	}

	// Spawned is called once an entity created by a batch operation (whole
	// universe deserialize, Dup) is fully populated.
	Spawned interface {
		OnSpawned(u *Universe, id types.EntityID)
	}

	// Despawned is called when the owning entity is about to be freed,
	// before any component removal runs.
	Despawned interface {
		OnDespawned(u *Universe, id types.EntityID)
	}
)

// hookSpecs pairs each hook method name with the interface that defines its
// required signature.
var hookSpecs = []struct {
	name  string
	iface reflect.Type
}{
	{"OnAdded", reflect.TypeOf((*Added)(nil)).Elem()},
	{"OnRemoved", reflect.TypeOf((*Removed)(nil)).Elem()},
	{"OnSerialized", reflect.TypeOf((*Serialized)(nil)).Elem()},
	{"OnDeserialized", reflect.TypeOf((*Deserialized)(nil)).Elem()},
	{"OnSpawned", reflect.TypeOf((*Spawned)(nil)).Elem()},
	{"OnDespawned", reflect.TypeOf((*Despawned)(nil)).Elem()},
}

// validateHooks rejects component types that declare a method with a hook's
// name but the wrong signature. Catching this at registration keeps a typo
// from silently disabling the hook.
func validateHooks[T any]() error {
	pt := reflect.TypeOf((*T)(nil))
	for _, spec := range hookSpecs {
		if _, found := pt.MethodByName(spec.name); found && !pt.Implements(spec.iface) {
			return eris.Wrapf(ErrBadHookSignature, "%s.%s", pt.Elem().String(), spec.name)
		}
	}
	return nil
}
