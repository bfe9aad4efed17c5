package ground

import "github.com/go-gl/mathgl/mgl64"

// Toggle switches a character's grounding pipeline on and off. The zero value
// is Enabled.
type Toggle int

const (
	// Enabled senses and applies motor output.
	Enabled Toggle = iota
	// SenseOnly senses but suppresses motor output.
	SenseOnly
	// Disabled skips sensing and motor output entirely. Sensor output keeps
	// whatever value the last enabled tick produced.
	Disabled
)

func (t Toggle) String() string {
	switch t {
	case Enabled:
		return "enabled"
	case SenseOnly:
		return "sense-only"
	case Disabled:
		return "disabled"
	}
	return "unknown"
}

// RigidBodyState is one character's physics snapshot: world transform,
// velocities, and the gravity acting on it. It is overwritten wholesale every
// tick and keeps no history.
type RigidBodyState struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Linvel      mgl64.Vec3
	Angvel      mgl64.Vec3
	Gravity     mgl64.Vec3
}

// NewRigidBodyState returns a state with an identity rotation.
func NewRigidBodyState() RigidBodyState {
	return RigidBodyState{Rotation: mgl64.QuatIdent()}
}

// CastResult describes a surface a cast found. Linvel is the surface velocity
// sampled at Point, so a character standing there inherits platform motion;
// Angvel is the raw angular velocity of the hit body.
type CastResult struct {
	Target    Handle
	Proximity float64
	Point     mgl64.Vec3
	Normal    mgl64.Vec3
	Linvel    mgl64.Vec3
	Angvel    mgl64.Vec3
}

// GhostList holds every ghost platform the last cast passed through, nearest
// first. It is rebuilt from empty on every sensor update and never persists
// across ticks.
type GhostList []CastResult

// First returns the nearest entry at or beyond minProximity. The comparison
// is inclusive: an entry exactly at minProximity qualifies.
func (g GhostList) First(minProximity float64) (CastResult, bool) {
	for _, ghost := range g {
		if minProximity <= ghost.Proximity {
			return ghost, true
		}
	}
	return CastResult{}, false
}

// Contains reports whether a platform appears in the list.
func (g GhostList) Contains(target Handle) bool {
	for i := range g {
		if g[i].Target == target {
			return true
		}
	}
	return false
}
