package chipmunk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/footing/ground"
)

// Options describe how a registered collider participates in sensing.
type Options struct {
	// Ghost marks the collider as a pass-through platform. Ghosts default to
	// empty solver groups so they never count as solid for the cast's
	// compatibility check; keeping them physically pass-through is the shape
	// filter's job and stays with the caller.
	Ghost bool
	// Sensor marks the collider as detect-only. Register forwards it to the
	// chipmunk shape as well.
	Sensor bool
	// Collision overrides the groups casts match against. Defaults to all.
	Collision *ground.InteractionGroups
	// Solver overrides the groups used for contact compatibility. Defaults
	// to all, or to none for ghosts.
	Solver *ground.InteractionGroups
}

type colliderEntry struct {
	body   *cp.Body
	shape  *cp.Shape
	groups ground.ColliderGroups
	ghost  bool
	sensor bool
}

// Backend adapts a chipmunk space to the ground sensing interfaces. Handles
// are whatever the caller registers bodies under; the sensing core only needs
// them to be comparable.
type Backend struct {
	space   *cp.Space
	gravity mgl64.Vec3

	// Space queries bump an internal reentrancy counter, so concurrent
	// casts from the parallel sensor pass serialize here.
	queryMu sync.Mutex

	bodies map[ground.Handle]*colliderEntry
	shapes map[*cp.Shape]ground.Handle
}

func NewBackend(space *cp.Space) *Backend {
	return &Backend{
		space:  space,
		bodies: make(map[ground.Handle]*colliderEntry),
		shapes: make(map[*cp.Shape]ground.Handle),
	}
}

func (b *Backend) Space() *cp.Space {
	if b == nil {
		return nil
	}
	return b.space
}

// SetGravity applies gravity to the space and keeps it for tracker snapshots.
// Only the X/Y components reach the 2D simulation.
func (b *Backend) SetGravity(gravity mgl64.Vec3) {
	if b == nil || b.space == nil {
		return
	}
	b.gravity = gravity
	b.space.SetGravity(cp.Vector{X: gravity.X(), Y: gravity.Y()})
}

func (b *Backend) Gravity() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.gravity
}

// Register makes a body/shape pair visible to the sensing layer under the
// given handle. Shapes that are never registered stay invisible to casts.
func (b *Backend) Register(h ground.Handle, body *cp.Body, shape *cp.Shape, opts Options) {
	if b == nil || h == nil || shape == nil {
		return
	}
	groups := ground.ColliderGroups{Collision: ground.GroupsAll(), Solver: ground.GroupsAll()}
	if opts.Ghost {
		groups.Solver = ground.GroupsNone()
	}
	if opts.Collision != nil {
		groups.Collision = *opts.Collision
	}
	if opts.Solver != nil {
		groups.Solver = *opts.Solver
	}
	if opts.Sensor {
		shape.SetSensor(true)
	}
	b.bodies[h] = &colliderEntry{
		body:   body,
		shape:  shape,
		groups: groups,
		ghost:  opts.Ghost,
		sensor: opts.Sensor,
	}
	b.shapes[shape] = h
}

// Unregister forgets a handle. Removing the body and shape from the space
// remains the caller's responsibility.
func (b *Backend) Unregister(h ground.Handle) {
	if b == nil {
		return
	}
	if e, ok := b.bodies[h]; ok {
		delete(b.shapes, e.shape)
		delete(b.bodies, h)
	}
}

// Cast runs a segment query through the space, sweeping a ball when the input
// carries a shape. The space-level filter stays wide open: group filtering
// happens here against registered collision groups so ghost platforms remain
// visible to casts even though their shape filters keep them from colliding.
func (b *Backend) Cast(in ground.CastInput, pred func(ground.Handle) bool) (ground.CastHit, bool) {
	if b == nil || b.space == nil || in.Range <= 0 {
		return ground.CastHit{}, false
	}
	start := cpVec(in.Origin)
	end := cpVec(in.Origin.Add(in.Direction.Mul(in.Range)))
	radius := 0.0
	if in.Shape != nil {
		radius = in.Shape.Radius
	}

	best := ground.CastHit{}
	bestAlpha := 0.0
	found := false
	b.queryMu.Lock()
	defer b.queryMu.Unlock()
	b.space.SegmentQuery(start, end, radius, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, point, normal cp.Vector, alpha float64, _ interface{}) {
		h, ok := b.shapes[shape]
		if !ok {
			return
		}
		if in.Exclude != nil && h == in.Exclude {
			return
		}
		if found && alpha >= bestAlpha {
			return
		}
		if in.Groups != nil {
			if e := b.bodies[h]; e != nil && !in.Groups.Test(e.groups.Collision) {
				return
			}
		}
		if pred != nil && !pred(h) {
			return
		}
		best = ground.CastHit{
			Target:    h,
			Proximity: alpha * in.Range,
			Point:     vec3(point),
			Normal:    vec3(normal),
		}
		bestAlpha = alpha
		found = true
	}, nil)
	return best, found
}

func (b *Backend) ColliderGroups(h ground.Handle) (ground.ColliderGroups, bool) {
	e := b.entry(h)
	if e == nil {
		return ground.ColliderGroups{}, false
	}
	return e.groups, true
}

func (b *Backend) IsSensor(h ground.Handle) bool {
	e := b.entry(h)
	return e != nil && e.sensor
}

func (b *Backend) IsGhostPlatform(h ground.Handle) bool {
	e := b.entry(h)
	return e != nil && e.ghost
}

// ContactNormals reports the active contact normals between owner and other,
// oriented from other toward owner. Chipmunk's arbiter normal points from the
// first shape toward the second, so it flips when owner comes first.
func (b *Backend) ContactNormals(owner, other ground.Handle) []mgl64.Vec3 {
	oe := b.entry(owner)
	te := b.entry(other)
	if oe == nil || te == nil || oe.body == nil {
		return nil
	}
	var normals []mgl64.Vec3
	oe.body.EachArbiter(func(arb *cp.Arbiter) {
		if arb.Count() == 0 {
			return
		}
		first, second := arb.Shapes()
		var ownerFirst bool
		switch {
		case b.shapes[first] == owner && b.shapes[second] == other:
			ownerFirst = true
		case b.shapes[second] == owner && b.shapes[first] == other:
			ownerFirst = false
		default:
			return
		}
		n := arb.Normal()
		if ownerFirst {
			n = n.Neg()
		}
		normals = append(normals, vec3(n))
	})
	return normals
}

// BodyVelocity reports a body's velocities. The space's shared static body
// has no velocity record.
func (b *Backend) BodyVelocity(h ground.Handle) (mgl64.Vec3, mgl64.Vec3, bool) {
	e := b.entry(h)
	if e == nil || e.body == nil || b.isStatic(e.body) {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return vec3(e.body.Velocity()), mgl64.Vec3{0, 0, e.body.AngularVelocity()}, true
}

func (b *Backend) BodyCenter(h ground.Handle) (mgl64.Vec3, bool) {
	e := b.entry(h)
	if e == nil || e.body == nil {
		return mgl64.Vec3{}, false
	}
	return vec3(e.body.Position()), true
}

// BodyState snapshots a body into a tracker record, embedding the simulation
// plane at z = 0 with rotation and angular velocity about the Z axis.
func (b *Backend) BodyState(h ground.Handle) (ground.RigidBodyState, bool) {
	e := b.entry(h)
	if e == nil || e.body == nil {
		return ground.RigidBodyState{}, false
	}
	st := ground.NewRigidBodyState()
	st.Translation = vec3(e.body.Position())
	st.Rotation = mgl64.QuatRotate(e.body.Angle(), mgl64.Vec3{0, 0, 1})
	st.Linvel = vec3(e.body.Velocity())
	st.Angvel = mgl64.Vec3{0, 0, e.body.AngularVelocity()}
	st.Gravity = b.gravity
	return st, true
}

// ApplyMotor writes one tick of motor output to the body. Boost channels add
// to velocity directly; acceleration channels integrate over dt, which over a
// single step is the force the acceleration stands for. Non-finite channels
// are skipped, leaving the axis to whatever the simulation already does.
func (b *Backend) ApplyMotor(h ground.Handle, m ground.Motor, dt float64) {
	e := b.entry(h)
	if e == nil || e.body == nil || b.isStatic(e.body) {
		return
	}
	body := e.body
	if ground.Finite(m.Linear.Boost) {
		v := body.Velocity()
		body.SetVelocityVector(cp.Vector{X: v.X + m.Linear.Boost.X(), Y: v.Y + m.Linear.Boost.Y()})
	}
	if dt > 0 && ground.Finite(m.Linear.Acceleration) {
		v := body.Velocity()
		body.SetVelocityVector(cp.Vector{
			X: v.X + m.Linear.Acceleration.X()*dt,
			Y: v.Y + m.Linear.Acceleration.Y()*dt,
		})
	}
	if ground.Finite(m.Angular.Boost) {
		body.SetAngularVelocity(body.AngularVelocity() + m.Angular.Boost.Z())
	}
	if dt > 0 && ground.Finite(m.Angular.Acceleration) {
		body.SetAngularVelocity(body.AngularVelocity() + m.Angular.Acceleration.Z()*dt)
	}
}

func (b *Backend) entry(h ground.Handle) *colliderEntry {
	if b == nil || h == nil {
		return nil
	}
	return b.bodies[h]
}

func (b *Backend) isStatic(body *cp.Body) bool {
	return b.space != nil && body == b.space.StaticBody
}

func cpVec(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Y()}
}

func vec3(v cp.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, 0}
}
