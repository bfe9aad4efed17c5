package component

import "github.com/go-gl/mathgl/mgl64"

// Transform is an entity's pose in screen space: x grows right, y grows
// down, Rotation is radians about the axis out of the screen. For anything
// with a physics body the sync pass owns these values; spinning platforms
// carry their live angle here so rendering matches the collider.
type Transform struct {
	X, Y     float64
	Rotation float64
}

// Position embeds the pose in the z = 0 plane the grounding math runs in.
func (t *Transform) Position() mgl64.Vec3 {
	if t == nil {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{t.X, t.Y, 0}
}

var TransformComponent = NewComponent[Transform]()
