package ground

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultIntersectionMatchPreventionCutoff suits upright characters standing
// on flat or moderately sloped ground.
const DefaultIntersectionMatchPreventionCutoff = 0.5

// Descent returns the unit direction a free body accelerates toward, falling
// back to negative Y when gravity is zero or degenerate.
func Descent(gravity mgl64.Vec3) mgl64.Vec3 {
	l := gravity.Len()
	if l > 0 && !math.IsInf(l, 1) {
		return gravity.Mul(1 / l)
	}
	return mgl64.Vec3{0, -1, 0}
}

// Sensor casts from a character along the gravity direction and reports the
// nearest qualifying surface within range. Ghost platforms on the way are
// recorded into Ghosts and skipped, re-casting past each one until a solid
// hit lands or the range runs out.
type Sensor struct {
	// CastOrigin is the cast's start point in the character's local space.
	CastOrigin mgl64.Vec3
	// CastRange is the maximum distance sensed along the cast direction.
	CastRange float64
	// Shape, when set, is swept instead of casting a ray.
	Shape *CastShape
	// IntersectionMatchPreventionCutoff rejects candidates the character is
	// already resting flush against: a candidate is discarded when any active
	// contact normal between it and the owner has a dot product with the cast
	// direction exceeding this value.
	IntersectionMatchPreventionCutoff float64

	// CastDirection is refreshed from gravity on every update.
	CastDirection mgl64.Vec3
	// Output is what the character currently stands on, nil while airborne.
	Output *CastResult
	// Ghosts lists the ghost platforms the last update passed through.
	Ghosts GhostList

	visited map[Handle]struct{}
}

// NewSensor returns a sensor casting straight down by default.
func NewSensor(castOrigin mgl64.Vec3, castRange float64) *Sensor {
	return &Sensor{
		CastOrigin:                        castOrigin,
		CastRange:                         castRange,
		CastDirection:                     mgl64.Vec3{0, -1, 0},
		IntersectionMatchPreventionCutoff: DefaultIntersectionMatchPreventionCutoff,
	}
}

// Update runs one sensing pass for the owner. Disabled leaves Output and
// Ghosts untouched from the previous tick; SenseOnly and Enabled both cast.
func (s *Sensor) Update(b Backend, owner Handle, state RigidBodyState, toggle Toggle) {
	if s == nil || b == nil || toggle == Disabled {
		return
	}

	s.CastDirection = Descent(state.Gravity)
	castOrigin := state.Translation.Add(state.Rotation.Rotate(s.CastOrigin))

	// A character whose collider is not registered yet interacts with
	// everything until it shows up.
	ownerGroups := GroupsAll()
	var queryGroups *InteractionGroups
	if cg, ok := b.ColliderGroups(owner); ok {
		ownerGroups = cg.Solver
		collision := cg.Collision
		queryGroups = &collision
	}

	if s.visited == nil {
		s.visited = make(map[Handle]struct{})
	} else {
		clear(s.visited)
	}
	s.Ghosts = s.Ghosts[:0]

	var rotation mgl64.Quat
	if s.Shape != nil {
		rotation = alignedRotation(state.Rotation, s.CastDirection)
	}

	pred := func(h Handle) bool {
		return s.admit(b, owner, ownerGroups, h)
	}

	skip := 0.0
	for {
		remaining := s.CastRange - skip
		if remaining <= 0 {
			s.Output = nil
			return
		}
		hit, ok := b.Cast(CastInput{
			Origin:    castOrigin.Add(s.CastDirection.Mul(skip)),
			Direction: s.CastDirection,
			Range:     remaining,
			Shape:     s.Shape,
			Rotation:  rotation,
			Exclude:   owner,
			Groups:    queryGroups,
		}, pred)
		if !ok {
			s.Output = nil
			return
		}
		result := s.resolve(b, hit, skip)
		if b.IsGhostPlatform(hit.Target) {
			s.Ghosts = append(s.Ghosts, result)
			s.visited[hit.Target] = struct{}{}
			skip = result.Proximity
			continue
		}
		s.Output = &result
		return
	}
}

// admit decides whether a cast may land on candidate. Rejected candidates are
// passed through as if absent. Candidates with no collider data skip the
// group and sensor checks entirely.
func (s *Sensor) admit(b Backend, owner Handle, ownerGroups InteractionGroups, candidate Handle) bool {
	if groups, ok := b.ColliderGroups(candidate); ok {
		if !groups.Solver.Test(ownerGroups) {
			if b.IsGhostPlatform(candidate) {
				if _, seen := s.visited[candidate]; seen {
					return false
				}
			} else {
				return false
			}
		}
		if b.IsSensor(candidate) {
			return false
		}
	}
	// A contact normal pointing along the cast means the cast origin already
	// rests on or inside the candidate; landing on it would ground the
	// character against a wall in front of its nose. Strictly exceeding the
	// cutoff rejects.
	for _, normal := range b.ContactNormals(owner, candidate) {
		if s.IntersectionMatchPreventionCutoff < normal.Dot(s.CastDirection) {
			return false
		}
	}
	return true
}

// resolve turns a raw hit into a CastResult with an absolute proximity and
// the surface velocity sampled at the hit point.
func (s *Sensor) resolve(b Backend, hit CastHit, skip float64) CastResult {
	normal := hit.Normal
	if normal == (mgl64.Vec3{}) {
		normal = s.CastDirection.Mul(-1)
	}
	linvel, angvel, ok := b.BodyVelocity(hit.Target)
	if !ok {
		linvel, angvel = mgl64.Vec3{}, mgl64.Vec3{}
	} else if angvel.Dot(angvel) > 0 {
		if center, ok := b.BodyCenter(hit.Target); ok {
			linvel = linvel.Add(angvel.Cross(hit.Point.Sub(center)))
		}
	}
	return CastResult{
		Target:    hit.Target,
		Proximity: skip + hit.Proximity,
		Point:     hit.Point,
		Normal:    normal,
		Linvel:    linvel,
		Angvel:    angvel,
	}
}

// alignedRotation keeps only the component of rotation that spins around the
// cast axis, so a tilted character does not tip its swept shape sideways.
func alignedRotation(rotation mgl64.Quat, axis mgl64.Vec3) mgl64.Quat {
	twist := scaledAxis(rotation).Dot(axis)
	return quatFromScaledAxis(axis.Mul(twist))
}

// scaledAxis is the rotation's axis scaled by its angle in radians.
func scaledAxis(q mgl64.Quat) mgl64.Vec3 {
	q = q.Normalize()
	w := mgl64.Clamp(q.W, -1, 1)
	s := math.Sqrt(1 - w*w)
	if s < 1e-9 {
		return mgl64.Vec3{}
	}
	return q.V.Mul(2 * math.Acos(w) / s)
}

func quatFromScaledAxis(v mgl64.Vec3) mgl64.Quat {
	angle := v.Len()
	if angle < 1e-9 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, v.Mul(1/angle))
}
