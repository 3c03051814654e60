package types

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

type ComponentID int

// Component is the interface that the user needs to implement to create a new component type.
type Component interface {
	// Name returns the name of the component. It doubles as the type tag on
	// serialized component records, so it must be unique within a universe.
	Name() string
}

// StorageKind selects the backing container used for one component type.
type StorageKind int

const (
	// StorageHashed backs the component with a map keyed by LocalID. This is
	// the default for non-empty component types.
	StorageHashed StorageKind = iota
	// StorageFlat backs the component with a flat array indexed by LocalID.
	// Appropriate for components carried by nearly every entity.
	StorageFlat
	// StorageBitset backs a zero-field marker component with a bit vector.
	// Universes force this kind for empty component types.
	StorageBitset
)

func (k StorageKind) String() string {
	switch k {
	case StorageHashed:
		return "hashed"
	case StorageFlat:
		return "flat"
	case StorageBitset:
		return "bitset"
	}
	return "unknown"
}

func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

func IsComponentValid(component Component, jsonSchemaBytes []byte) (bool, error) {
	componentSchema := jsonschema.Reflect(component)
	componentSchemaBytes, err := componentSchema.MarshalJSON()
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return IsSchemaValid(componentSchemaBytes, jsonSchemaBytes)
}

func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}
