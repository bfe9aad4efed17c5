package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/footing/chipmunk"
	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeGhost
	collisionTypeCharacter
)

// Timestep is the fixed simulation step, matching ebiten's default TPS.
const Timestep = 1.0 / 60.0

// PhysicsSystem owns the Chipmunk space behind the grounding backend and
// keeps ECS entities and physics bodies in sync.
type PhysicsSystem struct {
	backend       *chipmunk.Backend
	handlersReady bool

	entities map[ecs.Entity]*bodyInfo
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	static bool
}

func NewPhysicsSystem(gravity mgl64.Vec3) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	backend := chipmunk.NewBackend(space)
	backend.SetGravity(gravity)
	return &PhysicsSystem{
		backend:  backend,
		entities: make(map[ecs.Entity]*bodyInfo),
	}
}

// Backend exposes the grounding backend for the sensing and motor systems.
func (ps *PhysicsSystem) Backend() *chipmunk.Backend {
	if ps == nil {
		return nil
	}
	return ps.backend
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil || ps.backend == nil {
		return
	}

	ps.ensureHandlers()
	ps.syncEntities(w)

	ps.backend.Space().Step(Timestep)

	ps.syncTransforms(w)
}

// ensureHandlers installs the ghost pass-through handler: ghost platforms
// stay visible to casts but the solver never pushes back, so characters
// rest on them through the float spring alone.
func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.backend == nil {
		return
	}
	handler := ps.backend.Space().NewWildcardCollisionHandler(collisionTypeGhost)
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, _ interface{}) bool {
		return arb.Ignore()
	}
	ps.handlersReady = true
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if info := ps.entities[e]; info != nil {
			if bodyComp.Body == nil || bodyComp.Shape == nil {
				bodyComp.Body = info.body
				bodyComp.Shape = info.shape
			}
			return
		}

		isCharacter := ecs.Has(w, e, component.GroundSensorComponent.Kind())
		info := ps.createBody(*transform, bodyComp, isCharacter)
		if info == nil || info.shape == nil {
			return
		}

		ps.entities[e] = info
		bodyComp.Body = info.body
		bodyComp.Shape = info.shape

		ps.backend.Register(e, info.body, info.shape, chipmunk.Options{
			Ghost:     bodyComp.Ghost,
			Sensor:    bodyComp.Sensor,
			Collision: bodyComp.Collision,
			Solver:    bodyComp.Solver,
		})
	})
}

func (ps *PhysicsSystem) createBody(transform component.Transform, bodyComp *component.PhysicsBody, isCharacter bool) *bodyInfo {
	space := ps.backend.Space()
	if space == nil {
		return nil
	}

	width := bodyComp.Width
	height := bodyComp.Height
	radius := bodyComp.Radius
	if radius <= 0 && (width <= 0 || height <= 0) {
		width = 32
		height = 32
	}

	info := &bodyInfo{static: bodyComp.Static}

	if bodyComp.Static {
		var shape *cp.Shape
		if radius > 0 {
			shape = cp.NewCircle(space.StaticBody, radius, cp.Vector{X: transform.X, Y: transform.Y})
		} else {
			bb := cp.BB{
				L: transform.X - width/2,
				B: transform.Y - height/2,
				R: transform.X + width/2,
				T: transform.Y + height/2,
			}
			shape = cp.NewBox2(space.StaticBody, bb, 0)
		}
		ps.configureShape(shape, bodyComp, false)
		space.AddShape(shape)

		info.body = space.StaticBody
		info.shape = shape
		return info
	}

	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}

	var body *cp.Body
	if bodyComp.Kinematic {
		body = cp.NewKinematicBody()
	} else {
		// Characters float upright; an infinite moment keeps the solver
		// from ever spinning them.
		moment := math.Inf(1)
		if !isCharacter {
			if radius > 0 {
				moment = cp.MomentForCircle(mass, 0, radius, cp.Vector{})
			} else {
				moment = cp.MomentForBox(mass, width, height)
			}
		}
		body = cp.NewBody(mass, moment)
	}
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	body.SetAngle(transform.Rotation)

	var shape *cp.Shape
	if radius > 0 {
		shape = cp.NewCircle(body, radius, cp.Vector{})
	} else {
		shape = cp.NewBox(body, width, height, 0)
	}
	ps.configureShape(shape, bodyComp, isCharacter)

	space.AddBody(body)
	space.AddShape(shape)

	info.body = body
	info.shape = shape
	return info
}

func (ps *PhysicsSystem) configureShape(shape *cp.Shape, bodyComp *component.PhysicsBody, isCharacter bool) {
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	switch {
	case bodyComp.Ghost:
		shape.SetCollisionType(collisionTypeGhost)
	case bodyComp.Sensor:
		shape.SetSensor(true)
		shape.SetCollisionType(collisionTypeSolid)
	case isCharacter:
		shape.SetCollisionType(collisionTypeCharacter)
	default:
		shape.SetCollisionType(collisionTypeSolid)
	}
	// The solver groups double as the physical filter so mismatched bodies
	// pass through each other. Casts keep seeing the shape either way; the
	// backend filters hits against collision groups on its own.
	if bodyComp.Solver != nil {
		shape.SetFilter(cp.NewShapeFilter(
			cp.NO_GROUP,
			uint(bodyComp.Solver.Memberships),
			uint(bodyComp.Solver.Filter),
		))
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if bodyComp.Body == nil || bodyComp.Static {
			return
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = bodyComp.Body.Angle()
	})
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	space := ps.backend.Space()
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		if info.shape != nil && space != nil {
			space.RemoveShape(info.shape)
		}
		if info.body != nil && !info.static && space != nil {
			space.RemoveBody(info.body)
		}
		ps.backend.Unregister(e)
		delete(ps.entities, e)
	}
}
