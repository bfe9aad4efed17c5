package entity

import (
	"fmt"

	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ground"
	"github.com/milk9111/footing/prefabs"
)

// NewSolidPlatform creates plain static geometry.
func NewSolidPlatform(w *ecs.World, name string, x, y, width, height float64) (ecs.Entity, error) {
	return newStaticPlatform(w, name, x, y, width, height, &component.PhysicsBody{
		Width:    width,
		Height:   height,
		Static:   true,
		Friction: 0.8,
	})
}

// NewGhostPlatform creates a static pass-through platform: casts see it and
// characters can stand on it through the float spring, but the solver never
// pushes back so they can also drop through.
func NewGhostPlatform(w *ecs.World, name string, x, y, width, height float64) (ecs.Entity, error) {
	e, err := newStaticPlatform(w, name, x, y, width, height, &component.PhysicsBody{
		Width:  width,
		Height: height,
		Static: true,
		Ghost:  true,
	})
	if err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.GhostPlatformComponent.Kind(), &component.GhostPlatform{}); err != nil {
		return 0, fmt.Errorf("platform %q: add ghost tag: %w", name, err)
	}
	return e, nil
}

// NewFilteredPlatform creates solid geometry on its own collision group.
// Bodies outside the group pass through it physically and their sensors
// never report it as ground.
func NewFilteredPlatform(w *ecs.World, name string, x, y, width, height float64, group uint32) (ecs.Entity, error) {
	if group == 0 {
		return 0, fmt.Errorf("platform %q: filtered platform needs a group bit", name)
	}
	groups := ground.InteractionGroups{Memberships: group, Filter: group}
	return newStaticPlatform(w, name, x, y, width, height, &component.PhysicsBody{
		Width:     width,
		Height:    height,
		Static:    true,
		Friction:  0.8,
		Collision: &groups,
		Solver:    &groups,
	})
}

// NewZone creates a detect-only sensor volume. Sensors are invisible to
// grounding casts, so characters fall straight through without ever
// grounding on it.
func NewZone(w *ecs.World, name string, x, y, width, height float64) (ecs.Entity, error) {
	return newStaticPlatform(w, name, x, y, width, height, &component.PhysicsBody{
		Width:  width,
		Height: height,
		Static: true,
		Sensor: true,
	})
}

// NewMovingPlatform creates a script-driven kinematic platform from a prefab.
func NewMovingPlatform(w *ecs.World, name, prefab string, x, y float64) (ecs.Entity, error) {
	spec, err := prefabs.LoadPlatformSpec(prefab)
	if err != nil {
		return 0, fmt.Errorf("platform %q: load spec: %w", name, err)
	}
	if spec.Script == "" {
		return 0, fmt.Errorf("platform %q: prefab %s names no script", name, prefab)
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name}); err != nil {
		return 0, fmt.Errorf("platform %q: add name: %w", name, err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("platform %q: add transform: %w", name, err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:     spec.Width,
		Height:    spec.Height,
		Kinematic: true,
		Ghost:     spec.Ghost,
		Friction:  0.8,
	}); err != nil {
		return 0, fmt.Errorf("platform %q: add physics body: %w", name, err)
	}
	if err := ecs.Add(w, e, component.MovingPlatformComponent.Kind(), &component.MovingPlatform{
		Script:  spec.Script,
		OriginX: x,
		OriginY: y,
	}); err != nil {
		return 0, fmt.Errorf("platform %q: add moving platform: %w", name, err)
	}
	if spec.Ghost {
		if err := ecs.Add(w, e, component.GhostPlatformComponent.Kind(), &component.GhostPlatform{}); err != nil {
			return 0, fmt.Errorf("platform %q: add ghost tag: %w", name, err)
		}
	}
	return e, nil
}

func newStaticPlatform(w *ecs.World, name string, x, y, width, height float64, body *component.PhysicsBody) (ecs.Entity, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("platform %q: needs positive width and height", name)
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name}); err != nil {
		return 0, fmt.Errorf("platform %q: add name: %w", name, err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("platform %q: add transform: %w", name, err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), body); err != nil {
		return 0, fmt.Errorf("platform %q: add physics body: %w", name, err)
	}
	return e, nil
}
