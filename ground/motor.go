package ground

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AxisCommand is one motor channel. Boost is applied as a direct velocity
// change; Acceleration as a force over the tick. Non-finite components mean
// "no contribution on this axis" and are skipped rather than applied as zero,
// preserving whatever motion the backend already drives there.
type AxisCommand struct {
	Boost        mgl64.Vec3
	Acceleration mgl64.Vec3
}

// Motor is the command record handed to the motor consumer each tick. The
// zero value applies zero change on every axis; use NaNVec3 to leave an axis
// alone entirely.
type Motor struct {
	Linear  AxisCommand
	Angular AxisCommand
}

// NaNVec3 marks a motor channel as contributing nothing.
func NaNVec3() mgl64.Vec3 {
	nan := math.NaN()
	return mgl64.Vec3{nan, nan, nan}
}

// Finite reports whether every component of v is finite.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
