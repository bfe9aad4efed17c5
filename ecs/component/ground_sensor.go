package component

import "github.com/milk9111/footing/ground"

// GroundSensor owns a character's proximity sensor plus the per-tick
// outputs left behind by the sensing and fall-through passes.
type GroundSensor struct {
	Sensor *ground.Sensor
	Toggle ground.Toggle

	// Resolved is the sensor output after fall-through filtering; nil
	// while airborne or while dropping through a platform.
	Resolved *ground.CastResult
	// Crouch is the resolved crouch decision for this tick.
	Crouch bool
}

var GroundSensorComponent = NewComponent[GroundSensor]()
