package component

import "github.com/milk9111/footing/ground"

// CharacterMotion holds per-character locomotion tuning, normally loaded
// from a prefab spec.
type CharacterMotion struct {
	Speed             float64
	Acceleration      float64
	AirAcceleration   float64
	FloatHeight       float64
	CrouchFloatOffset float64
	CrouchSpeedFactor float64
	SpringStrength    float64
	SpringDampening   float64
	JumpHeight        float64
	DashDistance      float64
	DashSpeed         float64
	ActionsInAir      int
	MinGhostProximity float64
	Policy            ground.FallThroughPolicy
}

var CharacterMotionComponent = NewComponent[CharacterMotion]()
