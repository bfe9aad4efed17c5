package component

import (
	"errors"
	"sync/atomic"
)

// ComponentID numbers component columns. IDs come from one process-wide
// counter, so kinds registered anywhere in the binary never collide even
// when several worlds run side by side.
type ComponentID uint32

var kindCounter atomic.Uint32

// ComponentKind is the typed id for one column. The zero value is invalid;
// kinds only come out of NewComponent.
type ComponentKind[T any] struct {
	id ComponentID
}

func (k ComponentKind[T]) ID() ComponentID { return k.id }

func (k ComponentKind[T]) Valid() bool { return k.id != 0 }

// ComponentHandle pairs a component type with its kind. Every footing
// component registers one package-level handle, TransformComponent style,
// and systems reach the column through its Kind.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

// NewComponent registers a fresh kind for T.
func NewComponent[T any]() ComponentHandle[T] {
	id := ComponentID(kindCounter.Add(1))
	return ComponentHandle[T]{kind: ComponentKind[T]{id: id}}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] { return h.kind }

// Sentinel errors for component writes the world refuses.
var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)
