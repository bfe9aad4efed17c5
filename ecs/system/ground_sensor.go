package system

import (
	"sync"

	"github.com/milk9111/footing/chipmunk"
	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ground"
)

// GroundSensorSystem refreshes each character's rigid body snapshot from the
// stepped space and runs the proximity sensor pass. Characters only read
// their own state and the shared space, so the casts fan out across
// goroutines and join before the fall-through pass needs their results.
type GroundSensorSystem struct {
	backend *chipmunk.Backend
}

func NewGroundSensorSystem(backend *chipmunk.Backend) *GroundSensorSystem {
	return &GroundSensorSystem{backend: backend}
}

type sensorJob struct {
	entity ecs.Entity
	sensor *component.GroundSensor
	state  ground.RigidBodyState
}

func (gs *GroundSensorSystem) Update(w *ecs.World) {
	if gs == nil || w == nil || gs.backend == nil {
		return
	}

	jobs := make([]sensorJob, 0, 8)
	ecs.ForEach(w, component.GroundSensorComponent.Kind(), func(e ecs.Entity, sensor *component.GroundSensor) {
		if sensor.Sensor == nil || sensor.Toggle == ground.Disabled {
			return
		}
		state, ok := gs.backend.BodyState(e)
		if !ok {
			// Body not registered yet; the sensor keeps last tick's output.
			return
		}
		jobs = append(jobs, sensorJob{entity: e, sensor: sensor, state: state})
	})
	if len(jobs) == 0 {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i := range jobs {
		job := &jobs[i]
		go func() {
			defer wg.Done()
			job.sensor.Sensor.Update(gs.backend, job.entity, job.state, job.sensor.Toggle)
		}()
	}
	wg.Wait()
}
