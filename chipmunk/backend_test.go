package chipmunk

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/footing/ground"
)

// Tests run in the demo's screen coordinates: y grows downward, gravity is
// positive y, and the sensor casts toward larger y.

func newTestBackend() *Backend {
	b := NewBackend(cp.NewSpace())
	b.SetGravity(mgl64.Vec3{0, 900, 0})
	return b
}

func addFloor(b *Backend, handle string, top, bottom float64) *cp.Shape {
	bb := cp.BB{L: -500, B: top, R: 500, T: bottom}
	shape := cp.NewBox2(b.Space().StaticBody, bb, 0)
	b.Space().AddShape(shape)
	b.Register(handle, b.Space().StaticBody, shape, Options{})
	return shape
}

func addGhost(b *Backend, handle string, top, bottom float64) *cp.Shape {
	bb := cp.BB{L: -500, B: top, R: 500, T: bottom}
	shape := cp.NewBox2(b.Space().StaticBody, bb, 0)
	b.Space().AddShape(shape)
	b.Register(handle, b.Space().StaticBody, shape, Options{Ghost: true})
	return shape
}

func addPlayer(b *Backend, handle string, x, y float64) *cp.Body {
	body := cp.NewBody(1, cp.MomentForCircle(1, 0, 10, cp.Vector{}))
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := cp.NewCircle(body, 10, cp.Vector{})
	b.Space().AddBody(body)
	b.Space().AddShape(shape)
	b.Register(handle, body, shape, Options{})
	return body
}

func castDown(b *Backend, origin mgl64.Vec3, rng float64, exclude ground.Handle) (ground.CastHit, bool) {
	return b.Cast(ground.CastInput{
		Origin:    origin,
		Direction: mgl64.Vec3{0, 1, 0},
		Range:     rng,
		Exclude:   exclude,
	}, func(ground.Handle) bool { return true })
}

func TestBackendCast(t *testing.T) {
	t.Run("hit_reports_distance_point_normal", func(t *testing.T) {
		b := newTestBackend()
		addFloor(b, "floor", 100, 120)

		hit, ok := castDown(b, mgl64.Vec3{0, 50, 0}, 200, nil)
		if !ok {
			t.Fatalf("expected a hit")
		}
		if hit.Target != "floor" {
			t.Fatalf("expected floor, got %v", hit.Target)
		}
		if math.Abs(hit.Proximity-50) > 1e-6 {
			t.Fatalf("expected proximity 50, got %v", hit.Proximity)
		}
		if !vecNear(hit.Point, mgl64.Vec3{0, 100, 0}, 1e-6) {
			t.Fatalf("expected hit point at floor top, got %v", hit.Point)
		}
		// Box surface normal faces the cast origin, up the screen.
		if hit.Normal.Y() > -0.9 {
			t.Fatalf("expected upward-facing normal, got %v", hit.Normal)
		}
	})

	t.Run("owner_excluded", func(t *testing.T) {
		b := newTestBackend()
		addFloor(b, "floor", 100, 120)
		addPlayer(b, "player", 0, 50)

		hit, ok := castDown(b, mgl64.Vec3{0, 50, 0}, 200, "player")
		if !ok || hit.Target != "floor" {
			t.Fatalf("expected cast to skip its owner and hit floor, got %+v ok=%v", hit, ok)
		}
	})

	t.Run("unregistered_shape_invisible", func(t *testing.T) {
		b := newTestBackend()
		addFloor(b, "floor", 100, 120)
		decor := cp.NewBox2(b.Space().StaticBody, cp.BB{L: -500, B: 70, R: 500, T: 80}, 0)
		b.Space().AddShape(decor)

		hit, ok := castDown(b, mgl64.Vec3{0, 50, 0}, 200, nil)
		if !ok || hit.Target != "floor" {
			t.Fatalf("expected unregistered decor ignored, got %+v ok=%v", hit, ok)
		}
	})

	t.Run("predicate_rejects", func(t *testing.T) {
		b := newTestBackend()
		addFloor(b, "floor", 100, 120)

		_, ok := b.Cast(ground.CastInput{
			Origin:    mgl64.Vec3{0, 50, 0},
			Direction: mgl64.Vec3{0, 1, 0},
			Range:     200,
		}, func(ground.Handle) bool { return false })
		if ok {
			t.Fatalf("expected no hit with rejecting predicate")
		}
	})

	t.Run("zero_range_no_hit", func(t *testing.T) {
		b := newTestBackend()
		addFloor(b, "floor", 100, 120)
		if _, ok := castDown(b, mgl64.Vec3{0, 50, 0}, 0, nil); ok {
			t.Fatalf("expected no hit for empty range")
		}
	})
}

func TestBackendSensorGhostTraversal(t *testing.T) {
	b := newTestBackend()
	addGhost(b, "ghost", 200, 210)
	addFloor(b, "floor", 300, 320)
	addPlayer(b, "player", 0, 100)

	state, ok := b.BodyState("player")
	if !ok {
		t.Fatalf("expected body state for player")
	}
	s := ground.NewSensor(mgl64.Vec3{}, 500)
	s.Update(b, "player", state, ground.Enabled)

	if len(s.Ghosts) != 1 || s.Ghosts[0].Target != "ghost" {
		t.Fatalf("expected one ghost platform, got %+v", s.Ghosts)
	}
	if math.Abs(s.Ghosts[0].Proximity-100) > 1e-6 {
		t.Fatalf("expected ghost at proximity 100, got %v", s.Ghosts[0].Proximity)
	}
	if s.Output == nil || s.Output.Target != "floor" {
		t.Fatalf("expected solid floor under ghost, got %+v", s.Output)
	}
	if math.Abs(s.Output.Proximity-200) > 1e-6 {
		t.Fatalf("expected floor at proximity 200, got %v", s.Output.Proximity)
	}
}

func TestBackendSensorZoneSkipped(t *testing.T) {
	b := newTestBackend()
	zoneShape := cp.NewBox2(b.Space().StaticBody, cp.BB{L: -500, B: 150, R: 500, T: 160}, 0)
	b.Space().AddShape(zoneShape)
	b.Register("zone", b.Space().StaticBody, zoneShape, Options{Sensor: true})
	addFloor(b, "floor", 300, 320)
	addPlayer(b, "player", 0, 100)

	state, _ := b.BodyState("player")
	s := ground.NewSensor(mgl64.Vec3{}, 500)
	s.Update(b, "player", state, ground.Enabled)

	if s.Output == nil || s.Output.Target != "floor" {
		t.Fatalf("expected detect-only zone skipped, got %+v", s.Output)
	}
	if len(s.Ghosts) != 0 {
		t.Fatalf("expected no ghosts, got %+v", s.Ghosts)
	}
}

func TestBackendQueryGroupFilter(t *testing.T) {
	groupA := ground.InteractionGroups{Memberships: 0b01, Filter: 0b01}
	groupB := ground.InteractionGroups{Memberships: 0b10, Filter: 0b10}

	b := newTestBackend()
	obstacle := cp.NewBox2(b.Space().StaticBody, cp.BB{L: -500, B: 150, R: 500, T: 160}, 0)
	b.Space().AddShape(obstacle)
	b.Register("obstacle", b.Space().StaticBody, obstacle, Options{Collision: &groupB})
	addFloor(b, "floor", 300, 320)

	body := cp.NewBody(1, cp.MomentForCircle(1, 0, 10, cp.Vector{}))
	body.SetPosition(cp.Vector{X: 0, Y: 100})
	shape := cp.NewCircle(body, 10, cp.Vector{})
	b.Space().AddBody(body)
	b.Space().AddShape(shape)
	b.Register("player", body, shape, Options{Collision: &groupA})

	state, _ := b.BodyState("player")
	s := ground.NewSensor(mgl64.Vec3{}, 500)
	s.Update(b, "player", state, ground.Enabled)

	if s.Output == nil || s.Output.Target != "floor" {
		t.Fatalf("expected group-filtered obstacle invisible, got %+v", s.Output)
	}
}

func TestBackendContactNormals(t *testing.T) {
	b := newTestBackend()
	floorShape := addFloor(b, "floor", 100, 120)
	floorShape.SetFriction(0.8)
	addPlayer(b, "player", 0, 85)

	for i := 0; i < 120; i++ {
		b.Space().Step(1.0 / 60.0)
	}

	normals := b.ContactNormals("player", "floor")
	if len(normals) == 0 {
		t.Fatalf("expected an active contact after settling")
	}
	for _, n := range normals {
		// Oriented from the floor toward the player: up the screen.
		if n.Y() > -0.5 {
			t.Fatalf("expected contact normal toward player, got %v", n)
		}
	}

	// Resting flush on the floor must not reject it as ground: the contact
	// normal opposes the cast.
	state, _ := b.BodyState("player")
	s := ground.NewSensor(mgl64.Vec3{}, 500)
	s.Update(b, "player", state, ground.Enabled)
	if s.Output == nil || s.Output.Target != "floor" {
		t.Fatalf("expected floor under resting player, got %+v", s.Output)
	}
}

func TestBackendBodyState(t *testing.T) {
	b := newTestBackend()
	body := cp.NewBody(2, cp.MomentForBox(2, 20, 20))
	body.SetPosition(cp.Vector{X: 30, Y: -40})
	body.SetAngle(0.5)
	body.SetVelocity(3, 4)
	body.SetAngularVelocity(1.5)
	shape := cp.NewBox(body, 20, 20, 0)
	b.Space().AddBody(body)
	b.Space().AddShape(shape)
	b.Register("platform", body, shape, Options{})

	state, ok := b.BodyState("platform")
	if !ok {
		t.Fatalf("expected a state")
	}
	if !vecNear(state.Translation, mgl64.Vec3{30, -40, 0}, 1e-9) {
		t.Fatalf("unexpected translation %v", state.Translation)
	}
	if !vecNear(state.Linvel, mgl64.Vec3{3, 4, 0}, 1e-9) {
		t.Fatalf("unexpected linvel %v", state.Linvel)
	}
	if !vecNear(state.Angvel, mgl64.Vec3{0, 0, 1.5}, 1e-9) {
		t.Fatalf("unexpected angvel %v", state.Angvel)
	}
	if !vecNear(state.Gravity, mgl64.Vec3{0, 900, 0}, 1e-9) {
		t.Fatalf("unexpected gravity %v", state.Gravity)
	}
	// Rotation embeds the body angle about Z.
	rotated := state.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{math.Cos(0.5), math.Sin(0.5), 0}
	if !vecNear(rotated, want, 1e-9) {
		t.Fatalf("expected rotation about Z by 0.5, got %v", rotated)
	}

	if _, ok := b.BodyState("missing"); ok {
		t.Fatalf("expected no state for unknown handle")
	}
}

func TestBackendSurfaceVelocityInheritance(t *testing.T) {
	b := newTestBackend()
	platform := cp.NewBody(5, cp.MomentForBox(5, 1000, 20))
	platform.SetPosition(cp.Vector{X: 0, Y: 210})
	platform.SetVelocity(30, 0)
	shape := cp.NewBox(platform, 1000, 20, 0)
	b.Space().AddBody(platform)
	b.Space().AddShape(shape)
	b.Register("belt", platform, shape, Options{})

	addPlayer(b, "player", 0, 100)
	state, _ := b.BodyState("player")
	s := ground.NewSensor(mgl64.Vec3{}, 500)
	s.Update(b, "player", state, ground.Enabled)

	if s.Output == nil || s.Output.Target != "belt" {
		t.Fatalf("expected moving platform hit, got %+v", s.Output)
	}
	if !vecNear(s.Output.Linvel, mgl64.Vec3{30, 0, 0}, 1e-9) {
		t.Fatalf("expected inherited platform velocity, got %v", s.Output.Linvel)
	}
}

func TestBackendSpinSurfaceVelocity(t *testing.T) {
	b := newTestBackend()
	hub := cp.NewKinematicBody()
	hub.SetPosition(cp.Vector{X: 0, Y: 210})
	hub.SetAngularVelocity(2)
	shape := cp.NewBox(hub, 1000, 20, 0)
	b.Space().AddBody(hub)
	b.Space().AddShape(shape)
	b.Register("spinner", hub, shape, Options{})

	addPlayer(b, "player", 100, 100)
	state, _ := b.BodyState("player")
	s := ground.NewSensor(mgl64.Vec3{}, 500)
	s.Update(b, "player", state, ground.Enabled)

	if s.Output == nil || s.Output.Target != "spinner" {
		t.Fatalf("expected spinner hit, got %+v", s.Output)
	}
	// The hit lands at (100, 200), so r = (100, -10) off the hub and the
	// angular velocity alone contributes omega cross r = (20, 200).
	if !vecNear(s.Output.Linvel, mgl64.Vec3{20, 200, 0}, 1e-9) {
		t.Fatalf("expected spin surface velocity, got %v", s.Output.Linvel)
	}
	if !vecNear(s.Output.Angvel, mgl64.Vec3{0, 0, 2}, 1e-9) {
		t.Fatalf("expected raw angular velocity, got %v", s.Output.Angvel)
	}
}

func TestBackendApplyMotor(t *testing.T) {
	b := newTestBackend()
	body := cp.NewBody(1, cp.MomentForCircle(1, 0, 10, cp.Vector{}))
	shape := cp.NewCircle(body, 10, cp.Vector{})
	b.Space().AddBody(body)
	b.Space().AddShape(shape)
	b.Register("player", body, shape, Options{})

	t.Run("boost_adds_velocity", func(t *testing.T) {
		body.SetVelocity(0, 0)
		b.ApplyMotor("player", ground.Motor{
			Linear: ground.AxisCommand{Boost: mgl64.Vec3{5, -3, 0}, Acceleration: ground.NaNVec3()},
			Angular: ground.AxisCommand{
				Boost:        ground.NaNVec3(),
				Acceleration: ground.NaNVec3(),
			},
		}, 1.0/60.0)
		v := body.Velocity()
		if math.Abs(v.X-5) > 1e-9 || math.Abs(v.Y+3) > 1e-9 {
			t.Fatalf("expected boosted velocity, got %+v", v)
		}
	})

	t.Run("acceleration_integrates_over_dt", func(t *testing.T) {
		body.SetVelocity(0, 0)
		b.ApplyMotor("player", ground.Motor{
			Linear: ground.AxisCommand{Boost: ground.NaNVec3(), Acceleration: mgl64.Vec3{10, 0, 0}},
			Angular: ground.AxisCommand{
				Boost:        ground.NaNVec3(),
				Acceleration: ground.NaNVec3(),
			},
		}, 0.5)
		v := body.Velocity()
		if math.Abs(v.X-5) > 1e-9 {
			t.Fatalf("expected accelerated velocity 5, got %+v", v)
		}
	})

	t.Run("non_finite_channels_skipped", func(t *testing.T) {
		body.SetVelocity(7, 8)
		body.SetAngularVelocity(0.25)
		b.ApplyMotor("player", ground.Motor{
			Linear:  ground.AxisCommand{Boost: ground.NaNVec3(), Acceleration: ground.NaNVec3()},
			Angular: ground.AxisCommand{Boost: ground.NaNVec3(), Acceleration: ground.NaNVec3()},
		}, 1.0/60.0)
		v := body.Velocity()
		if v.X != 7 || v.Y != 8 || body.AngularVelocity() != 0.25 {
			t.Fatalf("expected untouched motion, got %+v %v", v, body.AngularVelocity())
		}
	})

	t.Run("angular_boost", func(t *testing.T) {
		body.SetAngularVelocity(0)
		b.ApplyMotor("player", ground.Motor{
			Linear:  ground.AxisCommand{Boost: ground.NaNVec3(), Acceleration: ground.NaNVec3()},
			Angular: ground.AxisCommand{Boost: mgl64.Vec3{0, 0, 2}, Acceleration: ground.NaNVec3()},
		}, 1.0/60.0)
		if math.Abs(body.AngularVelocity()-2) > 1e-9 {
			t.Fatalf("expected angular boost applied, got %v", body.AngularVelocity())
		}
	})
}

func TestBackendRegistry(t *testing.T) {
	b := newTestBackend()
	addGhost(b, "ghost", 200, 210)

	if !b.IsGhostPlatform("ghost") {
		t.Fatalf("expected ghost tag")
	}
	if b.IsGhostPlatform("nope") || b.IsSensor("ghost") {
		t.Fatalf("unexpected tags")
	}
	groups, ok := b.ColliderGroups("ghost")
	if !ok {
		t.Fatalf("expected registered groups")
	}
	if groups.Solver != ground.GroupsNone() {
		t.Fatalf("expected ghost solver groups empty, got %+v", groups.Solver)
	}
	if groups.Collision != ground.GroupsAll() {
		t.Fatalf("expected ghost collision groups open, got %+v", groups.Collision)
	}

	b.Unregister("ghost")
	if _, ok := b.ColliderGroups("ghost"); ok {
		t.Fatalf("expected groups gone after unregister")
	}
	if hit, ok := castDown(b, mgl64.Vec3{0, 100, 0}, 500, nil); ok {
		t.Fatalf("expected unregistered shape invisible, got %+v", hit)
	}
}

func vecNear(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
