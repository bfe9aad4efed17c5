package ground

import (
	"math"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// fakeSurface sits at a fixed depth along the cast direction, measured from
// the backend's base origin.
type fakeSurface struct {
	handle string
	depth  float64
	normal mgl64.Vec3
	ghost  bool
	sensor bool

	hasGroups bool
	groups    ColliderGroups
}

type fakeVelocity struct {
	lin mgl64.Vec3
	ang mgl64.Vec3
}

// fakeBackend models a one-dimensional world along whatever direction it is
// cast in: every surface lies on the cast line at its configured depth.
type fakeBackend struct {
	base     mgl64.Vec3
	surfaces []fakeSurface

	ownerGroups map[Handle]ColliderGroups
	contacts    map[Handle][]mgl64.Vec3
	velocities  map[Handle]fakeVelocity
	centers     map[Handle]mgl64.Vec3

	inputs []CastInput
}

func (f *fakeBackend) Cast(in CastInput, pred func(Handle) bool) (CastHit, bool) {
	f.inputs = append(f.inputs, in)
	advanced := in.Direction.Dot(in.Origin.Sub(f.base))
	best := CastHit{}
	found := false
	for _, s := range f.surfaces {
		rel := s.depth - advanced
		if rel < 0 || rel > in.Range {
			continue
		}
		if in.Exclude != nil && s.handle == in.Exclude {
			continue
		}
		if in.Groups != nil && s.hasGroups && !in.Groups.Test(s.groups.Collision) {
			continue
		}
		if !pred(s.handle) {
			continue
		}
		if found && rel >= best.Proximity {
			continue
		}
		best = CastHit{
			Target:    s.handle,
			Proximity: rel,
			Point:     in.Origin.Add(in.Direction.Mul(rel)),
			Normal:    s.normal,
		}
		found = true
	}
	return best, found
}

func (f *fakeBackend) ColliderGroups(h Handle) (ColliderGroups, bool) {
	if g, ok := f.ownerGroups[h]; ok {
		return g, true
	}
	for _, s := range f.surfaces {
		if s.handle == h && s.hasGroups {
			return s.groups, true
		}
	}
	return ColliderGroups{}, false
}

func (f *fakeBackend) IsSensor(h Handle) bool {
	for _, s := range f.surfaces {
		if s.handle == h {
			return s.sensor
		}
	}
	return false
}

func (f *fakeBackend) IsGhostPlatform(h Handle) bool {
	for _, s := range f.surfaces {
		if s.handle == h {
			return s.ghost
		}
	}
	return false
}

func (f *fakeBackend) ContactNormals(owner, other Handle) []mgl64.Vec3 {
	return f.contacts[other]
}

func (f *fakeBackend) BodyVelocity(h Handle) (mgl64.Vec3, mgl64.Vec3, bool) {
	v, ok := f.velocities[h]
	return v.lin, v.ang, ok
}

func (f *fakeBackend) BodyCenter(h Handle) (mgl64.Vec3, bool) {
	c, ok := f.centers[h]
	return c, ok
}

func solidAt(handle string, depth float64) fakeSurface {
	return fakeSurface{handle: handle, depth: depth, normal: mgl64.Vec3{0, 1, 0}}
}

func ghostAt(handle string, depth float64) fakeSurface {
	return fakeSurface{
		handle:    handle,
		depth:     depth,
		normal:    mgl64.Vec3{0, 1, 0},
		ghost:     true,
		hasGroups: true,
		groups:    ColliderGroups{Collision: GroupsAll(), Solver: GroupsNone()},
	}
}

func downState() RigidBodyState {
	st := NewRigidBodyState()
	st.Gravity = mgl64.Vec3{0, -9.81, 0}
	return st
}

func TestSensorNearestHit(t *testing.T) {
	cases := []struct {
		name     string
		surfaces []fakeSurface
		want     string // "" = no output
		wantProx float64
	}{
		{"nearest_of_two", []fakeSurface{solidAt("far", 5), solidAt("near", 3)}, "near", 3},
		{"single", []fakeSurface{solidAt("floor", 2.5)}, "floor", 2.5},
		{"out_of_range", []fakeSurface{solidAt("floor", 10.5)}, "", 0},
		{"empty_world", nil, "", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &fakeBackend{surfaces: c.surfaces}
			s := NewSensor(mgl64.Vec3{}, 10)
			s.Update(b, "player", downState(), Enabled)

			if len(s.Ghosts) != 0 {
				t.Fatalf("expected empty ghost list, got %d entries", len(s.Ghosts))
			}
			if c.want == "" {
				if s.Output != nil {
					t.Fatalf("expected no output, got hit on %v", s.Output.Target)
				}
				return
			}
			if s.Output == nil {
				t.Fatalf("expected output on %q, got none", c.want)
			}
			if s.Output.Target != c.want {
				t.Fatalf("expected output on %q, got %v", c.want, s.Output.Target)
			}
			if s.Output.Proximity != c.wantProx {
				t.Fatalf("expected proximity %v, got %v", c.wantProx, s.Output.Proximity)
			}
		})
	}
}

func TestSensorGhostSkipLoop(t *testing.T) {
	cases := []struct {
		name       string
		surfaces   []fakeSurface
		wantGhosts []string
		wantSolid  string
	}{
		{
			"two_ghosts_then_solid",
			[]fakeSurface{ghostAt("g1", 1), ghostAt("g2", 2.5), solidAt("floor", 4)},
			[]string{"g1", "g2"},
			"floor",
		},
		{
			"ghosts_only_range_exhausted",
			[]fakeSurface{ghostAt("g1", 3), ghostAt("g2", 7)},
			[]string{"g1", "g2"},
			"",
		},
		{
			"solid_before_ghost",
			[]fakeSurface{solidAt("floor", 1), ghostAt("g1", 2)},
			nil,
			"floor",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &fakeBackend{surfaces: c.surfaces}
			s := NewSensor(mgl64.Vec3{}, 10)
			s.Update(b, "player", downState(), Enabled)

			if len(s.Ghosts) != len(c.wantGhosts) {
				t.Fatalf("expected %d ghosts, got %d", len(c.wantGhosts), len(s.Ghosts))
			}
			for i, want := range c.wantGhosts {
				if s.Ghosts[i].Target != want {
					t.Fatalf("ghost %d: expected %q, got %v", i, want, s.Ghosts[i].Target)
				}
				if i > 0 && s.Ghosts[i].Proximity <= s.Ghosts[i-1].Proximity {
					t.Fatalf("ghost proximities not strictly increasing: %v then %v",
						s.Ghosts[i-1].Proximity, s.Ghosts[i].Proximity)
				}
			}
			if c.wantSolid == "" {
				if s.Output != nil {
					t.Fatalf("expected no output, got hit on %v", s.Output.Target)
				}
				return
			}
			if s.Output == nil || s.Output.Target != c.wantSolid {
				t.Fatalf("expected output on %q, got %+v", c.wantSolid, s.Output)
			}
		})
	}
}

func TestSensorIdempotence(t *testing.T) {
	b := &fakeBackend{surfaces: []fakeSurface{ghostAt("g1", 1.5), solidAt("floor", 3)}}
	s := NewSensor(mgl64.Vec3{}, 10)
	st := downState()

	s.Update(b, "player", st, Enabled)
	firstOutput := *s.Output
	firstGhosts := append(GhostList(nil), s.Ghosts...)

	s.Update(b, "player", st, Enabled)
	if !reflect.DeepEqual(*s.Output, firstOutput) {
		t.Fatalf("output changed between identical updates:\nfirst:  %+v\nsecond: %+v", firstOutput, *s.Output)
	}
	if !reflect.DeepEqual(s.Ghosts, firstGhosts) {
		t.Fatalf("ghost list changed between identical updates:\nfirst:  %+v\nsecond: %+v", firstGhosts, s.Ghosts)
	}
}

func TestSensorFiltering(t *testing.T) {
	incompatible := ColliderGroups{
		Collision: GroupsAll(),
		Solver:    InteractionGroups{Memberships: 0b10, Filter: 0b10},
	}
	playerGroups := ColliderGroups{
		Collision: GroupsAll(),
		Solver:    InteractionGroups{Memberships: 0b01, Filter: 0b01},
	}

	t.Run("sensor_only_collider_skipped", func(t *testing.T) {
		zone := solidAt("zone", 1)
		zone.sensor = true
		zone.hasGroups = true
		zone.groups = ColliderGroups{Collision: GroupsAll(), Solver: GroupsAll()}
		b := &fakeBackend{surfaces: []fakeSurface{zone, solidAt("floor", 3)}}
		s := NewSensor(mgl64.Vec3{}, 10)
		s.Update(b, "player", downState(), Enabled)
		if s.Output == nil || s.Output.Target != "floor" {
			t.Fatalf("expected to see through sensor zone to floor, got %+v", s.Output)
		}
	})

	t.Run("solver_incompatible_solid_skipped", func(t *testing.T) {
		wall := solidAt("wall", 1)
		wall.hasGroups = true
		wall.groups = incompatible
		b := &fakeBackend{
			surfaces:    []fakeSurface{wall, solidAt("floor", 3)},
			ownerGroups: map[Handle]ColliderGroups{"player": playerGroups},
		}
		s := NewSensor(mgl64.Vec3{}, 10)
		s.Update(b, "player", downState(), Enabled)
		if s.Output == nil || s.Output.Target != "floor" {
			t.Fatalf("expected incompatible surface skipped, got %+v", s.Output)
		}
	})

	t.Run("solver_incompatible_ghost_collected", func(t *testing.T) {
		// Ghost platforms never solve against the character; the ghost tag is
		// exactly what exempts them from the solver-group rejection.
		b := &fakeBackend{
			surfaces:    []fakeSurface{ghostAt("g1", 1), solidAt("floor", 3)},
			ownerGroups: map[Handle]ColliderGroups{"player": playerGroups},
		}
		s := NewSensor(mgl64.Vec3{}, 10)
		s.Update(b, "player", downState(), Enabled)
		if len(s.Ghosts) != 1 || s.Ghosts[0].Target != "g1" {
			t.Fatalf("expected ghost collected, got %+v", s.Ghosts)
		}
		if s.Output == nil || s.Output.Target != "floor" {
			t.Fatalf("expected floor under ghost, got %+v", s.Output)
		}
	})

	t.Run("query_groups_hide_surface", func(t *testing.T) {
		hidden := solidAt("hidden", 1)
		hidden.hasGroups = true
		hidden.groups = ColliderGroups{
			Collision: InteractionGroups{Memberships: 0b10, Filter: 0b10},
			Solver:    GroupsAll(),
		}
		b := &fakeBackend{
			surfaces: []fakeSurface{hidden, solidAt("floor", 3)},
			ownerGroups: map[Handle]ColliderGroups{"player": {
				Collision: InteractionGroups{Memberships: 0b01, Filter: 0b01},
				Solver:    GroupsAll(),
			}},
		}
		s := NewSensor(mgl64.Vec3{}, 10)
		s.Update(b, "player", downState(), Enabled)
		if s.Output == nil || s.Output.Target != "floor" {
			t.Fatalf("expected query filter to hide surface, got %+v", s.Output)
		}
	})

	t.Run("unregistered_collider_admitted", func(t *testing.T) {
		bare := fakeSurface{handle: "bare", depth: 1, normal: mgl64.Vec3{0, 1, 0}}
		b := &fakeBackend{
			surfaces:    []fakeSurface{bare},
			ownerGroups: map[Handle]ColliderGroups{"player": playerGroups},
		}
		s := NewSensor(mgl64.Vec3{}, 10)
		s.Update(b, "player", downState(), Enabled)
		if s.Output == nil || s.Output.Target != "bare" {
			t.Fatalf("expected surface without collider data admitted, got %+v", s.Output)
		}
	})
}

func TestSensorContactCutoff(t *testing.T) {
	down := mgl64.Vec3{0, -1, 0}
	cases := []struct {
		name    string
		normal  mgl64.Vec3
		blocked bool
	}{
		{"floor_contact_admitted", mgl64.Vec3{0, 1, 0}, false},
		{"flush_overhang_rejected", down, true},
		{"exactly_at_cutoff_admitted", mgl64.Vec3{math.Sqrt(0.75), -0.5, 0}, false},
		{"just_past_cutoff_rejected", mgl64.Vec3{0, -0.51, 0}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &fakeBackend{
				surfaces: []fakeSurface{solidAt("floor", 1)},
				contacts: map[Handle][]mgl64.Vec3{"floor": {c.normal}},
			}
			s := NewSensor(mgl64.Vec3{}, 10)
			s.Update(b, "player", downState(), Enabled)
			if c.blocked && s.Output != nil {
				t.Fatalf("contact normal %v should reject the candidate, got %+v", c.normal, s.Output)
			}
			if !c.blocked && (s.Output == nil || s.Output.Target != "floor") {
				t.Fatalf("contact normal %v should admit the candidate, got %+v", c.normal, s.Output)
			}
		})
	}
}

func TestSensorCastDirection(t *testing.T) {
	cases := []struct {
		name    string
		gravity mgl64.Vec3
		want    mgl64.Vec3
	}{
		{"down_gravity", mgl64.Vec3{0, -9.81, 0}, mgl64.Vec3{0, -1, 0}},
		{"sideways_gravity", mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 0, 0}},
		{"zero_gravity_falls_back", mgl64.Vec3{}, mgl64.Vec3{0, -1, 0}},
		{"nan_gravity_falls_back", mgl64.Vec3{math.NaN(), math.NaN(), math.NaN()}, mgl64.Vec3{0, -1, 0}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &fakeBackend{}
			s := NewSensor(mgl64.Vec3{}, 10)
			st := NewRigidBodyState()
			st.Gravity = c.gravity
			s.Update(b, "player", st, Enabled)
			if !vecNear(s.CastDirection, c.want, 1e-9) {
				t.Fatalf("expected cast direction %v, got %v", c.want, s.CastDirection)
			}
		})
	}
}

func TestSensorCastOriginFollowsRotation(t *testing.T) {
	b := &fakeBackend{surfaces: []fakeSurface{solidAt("floor", 3)}}
	s := NewSensor(mgl64.Vec3{0.5, 0, 0}, 10)
	st := downState()
	st.Translation = mgl64.Vec3{10, 20, 0}
	st.Rotation = mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1})
	s.Update(b, "player", st, Enabled)

	if len(b.inputs) == 0 {
		t.Fatalf("expected at least one cast")
	}
	want := mgl64.Vec3{9.5, 20, 0}
	if !vecNear(b.inputs[0].Origin, want, 1e-9) {
		t.Fatalf("expected rotated cast origin %v, got %v", want, b.inputs[0].Origin)
	}
}

func TestSensorShapeRotationProjection(t *testing.T) {
	yaw := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	tilt := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0})

	cases := []struct {
		name     string
		rotation mgl64.Quat
		want     mgl64.Quat
	}{
		{"yaw_kept", yaw, yaw},
		{"tilt_dropped", tilt, mgl64.QuatIdent()},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &fakeBackend{surfaces: []fakeSurface{solidAt("floor", 3)}}
			s := NewSensor(mgl64.Vec3{}, 10)
			s.Shape = &CastShape{Radius: 0.4}
			st := downState()
			st.Rotation = c.rotation
			s.Update(b, "player", st, Enabled)

			if len(b.inputs) == 0 {
				t.Fatalf("expected at least one cast")
			}
			if !quatNear(b.inputs[0].Rotation, c.want, 1e-9) {
				t.Fatalf("expected swept rotation %+v, got %+v", c.want, b.inputs[0].Rotation)
			}
		})
	}
}

func TestSensorSurfaceVelocity(t *testing.T) {
	t.Run("linear_only", func(t *testing.T) {
		b := &fakeBackend{
			surfaces:   []fakeSurface{solidAt("belt", 2)},
			velocities: map[Handle]fakeVelocity{"belt": {lin: mgl64.Vec3{3, 0, 0}}},
		}
		s := NewSensor(mgl64.Vec3{}, 10)
		s.Update(b, "player", downState(), Enabled)
		if s.Output == nil || !vecNear(s.Output.Linvel, mgl64.Vec3{3, 0, 0}, 1e-9) {
			t.Fatalf("expected belt velocity inherited, got %+v", s.Output)
		}
	})

	t.Run("angular_adds_tangential_term", func(t *testing.T) {
		// Hit point one unit along +X from the body center, spinning about Z:
		// surface velocity gains angvel cross offset = {0, 2, 0}.
		b := &fakeBackend{
			surfaces:   []fakeSurface{solidAt("wheel", 2)},
			velocities: map[Handle]fakeVelocity{"wheel": {lin: mgl64.Vec3{1, 0, 0}, ang: mgl64.Vec3{0, 0, 2}}},
			centers:    map[Handle]mgl64.Vec3{"wheel": {-1, -2, 0}},
		}
		s := NewSensor(mgl64.Vec3{}, 10)
		s.Update(b, "player", downState(), Enabled)
		if s.Output == nil {
			t.Fatalf("expected a hit")
		}
		want := mgl64.Vec3{1, 2, 0}
		if !vecNear(s.Output.Linvel, want, 1e-9) {
			t.Fatalf("expected surface velocity %v, got %v", want, s.Output.Linvel)
		}
		if !vecNear(s.Output.Angvel, mgl64.Vec3{0, 0, 2}, 1e-9) {
			t.Fatalf("expected angular velocity kept, got %v", s.Output.Angvel)
		}
	})

	t.Run("static_surface_zero_velocity", func(t *testing.T) {
		b := &fakeBackend{surfaces: []fakeSurface{solidAt("floor", 2)}}
		s := NewSensor(mgl64.Vec3{}, 10)
		s.Update(b, "player", downState(), Enabled)
		if s.Output == nil || s.Output.Linvel != (mgl64.Vec3{}) || s.Output.Angvel != (mgl64.Vec3{}) {
			t.Fatalf("expected zero velocities for static surface, got %+v", s.Output)
		}
	})
}

func TestSensorNormalFallback(t *testing.T) {
	bare := fakeSurface{handle: "flat", depth: 2}
	b := &fakeBackend{surfaces: []fakeSurface{bare}}
	s := NewSensor(mgl64.Vec3{}, 10)
	s.Update(b, "player", downState(), Enabled)
	if s.Output == nil {
		t.Fatalf("expected a hit")
	}
	if !vecNear(s.Output.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Fatalf("expected normal to fall back opposite the cast, got %v", s.Output.Normal)
	}
}

func TestSensorToggle(t *testing.T) {
	b := &fakeBackend{surfaces: []fakeSurface{solidAt("floor", 2)}}
	s := NewSensor(mgl64.Vec3{}, 10)
	s.Update(b, "player", downState(), Enabled)
	if s.Output == nil {
		t.Fatalf("expected a hit while enabled")
	}
	stale := *s.Output

	// Disabled performs no queries and keeps the previous output.
	b.surfaces = nil
	casts := len(b.inputs)
	s.Update(b, "player", downState(), Disabled)
	if len(b.inputs) != casts {
		t.Fatalf("disabled sensor should not cast, performed %d extra", len(b.inputs)-casts)
	}
	if s.Output == nil || *s.Output != stale {
		t.Fatalf("disabled sensor should keep stale output, got %+v", s.Output)
	}

	// SenseOnly still casts.
	s.Update(b, "player", downState(), SenseOnly)
	if len(b.inputs) == casts {
		t.Fatalf("sense-only sensor should still cast")
	}
	if s.Output != nil {
		t.Fatalf("expected cleared output after surfaces removed, got %+v", s.Output)
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

func quatNear(a, b mgl64.Quat, tol float64) bool {
	if math.Abs(a.W-b.W) > tol {
		return false
	}
	return vecNear(a.V, b.V, tol)
}
