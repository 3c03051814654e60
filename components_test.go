package uverse_test

import (
	"fmt"

	"github.com/calderagames/uverse"
	"github.com/calderagames/uverse/types"
)

type Position struct {
	X, Y float64
}

func (Position) Name() string { return "position" }

type Label struct {
	Value string
}

func (Label) Name() string { return "label" }

type Velocity struct {
	DX, DY float64
}

func (Velocity) Name() string { return "velocity" }

type Tag struct{}

func (Tag) Name() string { return "tag" }

// hookLog records lifecycle hook invocations from Tracked components. Tests
// that use it reset it first; the suite is single-threaded.
var hookLog []string

type Tracked struct {
	HP int
}

func (Tracked) Name() string { return "tracked" }

func (t *Tracked) OnAdded(_ *uverse.Universe, id types.EntityID) {
	hookLog = append(hookLog, fmt.Sprintf("added:%s", id))
}

func (t *Tracked) OnRemoved(_ *uverse.Universe, id types.EntityID) {
	hookLog = append(hookLog, fmt.Sprintf("removed:%s", id))
}

func (t *Tracked) OnSerialized(_ *uverse.Universe, id types.EntityID, _ *uverse.SerializedComponent) {
	hookLog = append(hookLog, fmt.Sprintf("serialized:%s", id))
}

func (t *Tracked) OnDeserialized(_ *uverse.Universe, id types.EntityID, _ uverse.SerializedComponent) {
	hookLog = append(hookLog, fmt.Sprintf("deserialized:%s", id))
}

func (t *Tracked) OnSpawned(_ *uverse.Universe, id types.EntityID) {
	hookLog = append(hookLog, fmt.Sprintf("spawned:%s", id))
}

func (t *Tracked) OnDespawned(_ *uverse.Universe, id types.EntityID) {
	hookLog = append(hookLog, fmt.Sprintf("despawned:%s", id))
}

// BadHook declares OnAdded with the wrong signature; registration must
// reject it.
type BadHook struct{}

func (BadHook) Name() string { return "badhook" }

func (BadHook) OnAdded(notAUniverse string) {} //nolint:unused // signature is the point
