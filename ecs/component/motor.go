package component

import "github.com/milk9111/footing/ground"

// Motor carries the locomotion output of the current tick, consumed by
// the motor system after the state machine has run.
type Motor struct {
	Current ground.Motor
}

var MotorComponent = NewComponent[Motor]()
