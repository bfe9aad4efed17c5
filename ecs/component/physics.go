package component

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/footing/ground"
)

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Ghost shapes keep an open collision filter so casts still see them while
// the solver never pushes back; Sensor shapes detect without colliding.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Width      float64
	Height     float64
	Radius     float64
	Mass       float64
	Friction   float64
	Elasticity float64
	Static     bool
	Kinematic  bool
	Ghost      bool
	Sensor     bool

	// Optional interaction groups; nil means member of all groups.
	Collision *ground.InteractionGroups
	Solver    *ground.InteractionGroups
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
