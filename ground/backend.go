package ground

import "github.com/go-gl/mathgl/mgl64"

// Handle identifies a rigid body or collider inside a Backend. Backends pick
// the concrete type; the engine only compares handles for equality and hands
// them back to the backend that produced them.
type Handle any

// InteractionGroups is a membership/filter bit pair. Two groups interact when
// each side's memberships overlap the other side's filter.
type InteractionGroups struct {
	Memberships uint32
	Filter      uint32
}

// GroupsAll interacts with everything.
func GroupsAll() InteractionGroups {
	return InteractionGroups{Memberships: ^uint32(0), Filter: ^uint32(0)}
}

// GroupsNone interacts with nothing. Ghost platforms use it as their solver
// groups so they never physically collide with characters.
func GroupsNone() InteractionGroups {
	return InteractionGroups{}
}

// Test reports whether the two groups interact.
func (g InteractionGroups) Test(other InteractionGroups) bool {
	return g.Memberships&other.Filter != 0 && other.Memberships&g.Filter != 0
}

// ColliderGroups splits a collider's filtering into the broad groups used by
// queries and the solver groups used for contact resolution. The two differ
// for ghost platforms, which stay visible to casts while their solver groups
// are empty.
type ColliderGroups struct {
	Collision InteractionGroups
	Solver    InteractionGroups
}

// CastShape is the volume swept by a shape cast.
type CastShape struct {
	Radius float64
}

// CastInput describes one cast against the backend.
type CastInput struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3         // unit length
	Range     float64
	Shape     *CastShape         // nil casts a ray
	Rotation  mgl64.Quat         // swept shape orientation, ignored for rays
	Exclude   Handle             // the casting body, never reported as a hit
	Groups    *InteractionGroups // matched against candidate collision groups, nil matches all
}

// CastHit is the nearest accepted hit of a cast. Proximity is measured from
// the cast's origin. A zero Normal means the backend could not produce one;
// the sensor substitutes a fallback.
type CastHit struct {
	Target    Handle
	Proximity float64
	Point     mgl64.Vec3
	Normal    mgl64.Vec3
}

// Backend is the read side of a physics engine as seen by the sensing pass.
// Every method is a synchronous snapshot query against already-stepped state.
// Implementations tolerate handles whose bodies no longer exist and report
// them as absent instead of failing.
type Backend interface {
	// Cast sweeps along in.Direction for in.Range and returns the nearest hit
	// accepted by pred. Candidates rejected by pred are passed through as if
	// absent.
	Cast(in CastInput, pred func(Handle) bool) (CastHit, bool)
	// ColliderGroups returns the handle's group pair, or ok=false when no
	// collider is registered for it yet.
	ColliderGroups(h Handle) (ColliderGroups, bool)
	// IsSensor reports whether the collider only detects and never collides.
	IsSensor(h Handle) bool
	// IsGhostPlatform reports whether the handle carries the ghost platform tag.
	IsGhostPlatform(h Handle) bool
	// ContactNormals returns the normals of the active contact manifolds
	// between owner and other, oriented from other toward owner.
	ContactNormals(owner, other Handle) []mgl64.Vec3
	// BodyVelocity returns the body's velocities, or ok=false for static
	// geometry with no velocity record.
	BodyVelocity(h Handle) (linvel, angvel mgl64.Vec3, ok bool)
	// BodyCenter returns the body's world-space center.
	BodyCenter(h Handle) (mgl64.Vec3, bool)
}
