package ecs

import "github.com/milk9111/footing/ecs/component"

// Kind identifies a component column without naming its element type.
// component.ComponentKind[T] satisfies it for every T.
type Kind interface {
	ID() component.ComponentID
	Valid() bool
}

// World owns entities and one column per registered component kind.
type World struct {
	alloc  entityAllocator
	stores map[component.ComponentID]store
	events EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]store)}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.alloc.create()
}

// DestroyEntity kills e and drops all of its components. It reports
// whether e was alive.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.alloc.destroy(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return true
}

// IsAlive reports whether an entity handle is still valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.alloc.isAlive(e)
}

// Entities returns all live entities in creation order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.alloc.all()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}
