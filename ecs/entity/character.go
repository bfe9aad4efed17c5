package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ground"
	"github.com/milk9111/footing/prefabs"
)

// CharacterGroup is the collision group bit characters live on. Filtered
// platforms pick a different bit so only matching bodies interact with them.
const CharacterGroup uint32 = 1 << 0

// NewCharacter spawns a playable character at x, y from a prefab spec.
func NewCharacter(w *ecs.World, prefab string, x, y float64) (ecs.Entity, error) {
	spec, err := prefabs.LoadCharacterSpec(prefab)
	if err != nil {
		return 0, fmt.Errorf("character: load spec: %w", err)
	}

	e := ecs.CreateEntity(w)

	if err := ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		return 0, fmt.Errorf("character: add player tag: %w", err)
	}
	if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name}); err != nil {
		return 0, fmt.Errorf("character: add name: %w", err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("character: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{}); err != nil {
		return 0, fmt.Errorf("character: add input: %w", err)
	}

	mass := spec.Body.Mass
	if mass <= 0 {
		mass = 1
	}
	groups := ground.InteractionGroups{Memberships: CharacterGroup, Filter: ^uint32(0)}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:     spec.Body.Width,
		Height:    spec.Body.Height,
		Radius:    spec.Body.Radius,
		Mass:      mass,
		Friction:  spec.Body.Friction,
		Collision: &groups,
		Solver:    &groups,
	}); err != nil {
		return 0, fmt.Errorf("character: add physics body: %w", err)
	}

	if err := ecs.Add(w, e, component.GroundSensorComponent.Kind(), &component.GroundSensor{
		Sensor: newSensorFromSpec(spec.Sensor),
		Toggle: ground.Enabled,
	}); err != nil {
		return 0, fmt.Errorf("character: add ground sensor: %w", err)
	}
	if err := ecs.Add(w, e, component.FallThroughComponent.Kind(), &component.FallThrough{}); err != nil {
		return 0, fmt.Errorf("character: add fall through: %w", err)
	}
	if err := ecs.Add(w, e, component.MotorComponent.Kind(), &component.Motor{}); err != nil {
		return 0, fmt.Errorf("character: add motor: %w", err)
	}

	motion, err := motionFromSpec(spec.Motion)
	if err != nil {
		return 0, fmt.Errorf("character: motion spec: %w", err)
	}
	if err := ecs.Add(w, e, component.CharacterMotionComponent.Kind(), motion); err != nil {
		return 0, fmt.Errorf("character: add motion: %w", err)
	}
	if err := ecs.Add(w, e, component.CharacterStateMachineComponent.Kind(), &component.CharacterStateMachine{
		AirActionsLeft: motion.ActionsInAir,
	}); err != nil {
		return 0, fmt.Errorf("character: add state machine: %w", err)
	}

	return e, nil
}

// ApplyCharacterSpec re-applies sensor and motion tuning to a live character,
// used by prefab hot reload. The collider is left alone since resizing a
// body mid-simulation is more disruptive than a stale hitbox.
func ApplyCharacterSpec(w *ecs.World, e ecs.Entity, spec prefabs.CharacterSpec) error {
	sensor, ok := ecs.Get(w, e, component.GroundSensorComponent.Kind())
	if !ok {
		return fmt.Errorf("character: entity %d has no ground sensor", e)
	}
	motion, ok := ecs.Get(w, e, component.CharacterMotionComponent.Kind())
	if !ok {
		return fmt.Errorf("character: entity %d has no motion", e)
	}

	next, err := motionFromSpec(spec.Motion)
	if err != nil {
		return fmt.Errorf("character: motion spec: %w", err)
	}
	*motion = *next

	if sensor.Sensor == nil {
		sensor.Sensor = newSensorFromSpec(spec.Sensor)
		return nil
	}
	sensor.Sensor.CastOrigin = mgl64.Vec3{spec.Sensor.OriginX, spec.Sensor.OriginY, 0}
	sensor.Sensor.CastRange = spec.Sensor.Range
	sensor.Sensor.Shape = sensorShape(spec.Sensor)
	if spec.Sensor.Cutoff != 0 {
		sensor.Sensor.IntersectionMatchPreventionCutoff = spec.Sensor.Cutoff
	}
	return nil
}

func newSensorFromSpec(spec prefabs.SensorSpec) *ground.Sensor {
	s := ground.NewSensor(mgl64.Vec3{spec.OriginX, spec.OriginY, 0}, spec.Range)
	s.Shape = sensorShape(spec)
	if spec.Cutoff != 0 {
		s.IntersectionMatchPreventionCutoff = spec.Cutoff
	}
	return s
}

func sensorShape(spec prefabs.SensorSpec) *ground.CastShape {
	if spec.ShapeRadius <= 0 {
		return nil
	}
	return &ground.CastShape{Radius: spec.ShapeRadius}
}

func motionFromSpec(spec prefabs.MotionSpec) (*component.CharacterMotion, error) {
	policy, err := ground.ParseFallThroughPolicy(spec.Policy)
	if err != nil {
		return nil, err
	}
	return &component.CharacterMotion{
		Speed:             spec.Speed,
		Acceleration:      spec.Acceleration,
		AirAcceleration:   spec.AirAcceleration,
		FloatHeight:       spec.FloatHeight,
		CrouchFloatOffset: spec.CrouchFloatOffset,
		CrouchSpeedFactor: spec.CrouchSpeedFactor,
		SpringStrength:    spec.SpringStrength,
		SpringDampening:   spec.SpringDampening,
		JumpHeight:        spec.JumpHeight,
		DashDistance:      spec.DashDistance,
		DashSpeed:         spec.DashSpeed,
		ActionsInAir:      spec.ActionsInAir,
		MinGhostProximity: spec.MinGhostProximity,
		Policy:            policy,
	}, nil
}
