package system

import (
	"github.com/milk9111/footing/chipmunk"
	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ground"
)

// MotorSystem writes each character's motor command into the physics body.
// Only Enabled characters reach the backend: SenseOnly keeps sensing but
// leaves the body to the simulation, Disabled entities get no writes at all.
type MotorSystem struct {
	backend *chipmunk.Backend
}

func NewMotorSystem(backend *chipmunk.Backend) *MotorSystem {
	return &MotorSystem{backend: backend}
}

func (ms *MotorSystem) Update(w *ecs.World) {
	if ms == nil || w == nil || ms.backend == nil {
		return
	}

	ecs.ForEach2(w,
		component.MotorComponent.Kind(),
		component.GroundSensorComponent.Kind(),
		func(e ecs.Entity, motor *component.Motor, sensor *component.GroundSensor) {
			if sensor.Toggle != ground.Enabled {
				return
			}
			ms.backend.ApplyMotor(e, motor.Current, Timestep)
		})
}
