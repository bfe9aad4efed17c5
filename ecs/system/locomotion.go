package system

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/footing/chipmunk"
	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ground"
)

// LocomotionSystem runs each character's state machine and turns the
// resolved grounding state into a motor for this tick.
type LocomotionSystem struct {
	backend *chipmunk.Backend
}

func NewLocomotionSystem(backend *chipmunk.Backend) *LocomotionSystem {
	return &LocomotionSystem{backend: backend}
}

func (ls *LocomotionSystem) Update(w *ecs.World) {
	if ls == nil || w == nil {
		return
	}

	ecs.ForEach4(w,
		component.CharacterStateMachineComponent.Kind(),
		component.CharacterMotionComponent.Kind(),
		component.GroundSensorComponent.Kind(),
		component.InputComponent.Kind(),
		func(e ecs.Entity, machine *component.CharacterStateMachine, motion *component.CharacterMotion, sensor *component.GroundSensor, input *component.Input) {
			motorComp, ok := ecs.Get(w, e, component.MotorComponent.Kind())
			if !ok {
				return
			}
			bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
			if !ok || bodyComp.Body == nil {
				return
			}
			if sensor.Toggle == ground.Disabled {
				motorComp.Current = neutralMotor()
				return
			}

			motor := neutralMotor()

			// Boosts fold into the local velocity so states read their own
			// writes within the tick.
			vel := bodyComp.Body.Velocity()
			vx, vy := vel.X, vel.Y

			ctx := &component.CharacterStateContext{
				Input:   input,
				Motion:  motion,
				Machine: machine,
				Dt:      func() float64 { return Timestep },
				Grounded: func() bool {
					return sensor.Resolved != nil
				},
				Crouching: func() bool {
					return sensor.Crouch
				},
				Proximity: func() (float64, bool) {
					if sensor.Resolved == nil {
						return 0, false
					}
					return sensor.Resolved.Proximity, true
				},
				Velocity: func() (float64, float64) {
					return vx, vy
				},
				SurfaceVelocity: func() (float64, float64) {
					if sensor.Resolved == nil {
						return 0, 0
					}
					return sensor.Resolved.Linvel.X(), sensor.Resolved.Linvel.Y()
				},
				Gravity: func() float64 {
					if ls.backend == nil {
						return 0
					}
					return ls.backend.Gravity().Y()
				},
				SetLinearBoost: func(x, y float64) {
					motor.Linear.Boost = mgl64.Vec3{x, y, 0}
					vx += x
					vy += y
				},
				SetLinearAccel: func(x, y float64) {
					motor.Linear.Acceleration = mgl64.Vec3{x, y, 0}
				},
			}
			ctx.ChangeState = func(next component.CharacterState) {
				if next == nil || next == machine.State {
					return
				}
				machine.Pending = next
			}

			if input.MoveX > 0 {
				machine.Facing = 1
			} else if input.MoveX < 0 {
				machine.Facing = -1
			}

			if machine.State == nil {
				machine.State = characterStateFalling
				machine.State.Enter(ctx)
			}

			machine.State.HandleInput(ctx)
			applyPending(machine, ctx)
			machine.State.Update(ctx)
			applyPending(machine, ctx)

			motorComp.Current = motor
		})
}

func applyPending(machine *component.CharacterStateMachine, ctx *component.CharacterStateContext) {
	if machine.Pending == nil || machine.Pending == machine.State {
		machine.Pending = nil
		return
	}
	if machine.State != nil {
		machine.State.Exit(ctx)
	}
	machine.State = machine.Pending
	machine.Pending = nil
	machine.State.Enter(ctx)
}

// neutralMotor leaves every channel non-finite so the motor consumer
// skips axes no state wrote to.
func neutralMotor() ground.Motor {
	return ground.Motor{
		Linear:  ground.AxisCommand{Boost: ground.NaNVec3(), Acceleration: ground.NaNVec3()},
		Angular: ground.AxisCommand{Boost: ground.NaNVec3(), Acceleration: ground.NaNVec3()},
	}
}
