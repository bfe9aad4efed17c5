package system

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ground"
)

// RenderSystem draws the physics wireframes, a sensing overlay per
// character, and a HUD block describing the player's grounding state.
type RenderSystem struct {
	physics *PhysicsSystem
	// Overlay toggles the cast/ghost/normal drawing; the HUD stays on.
	Overlay bool
}

func NewRenderSystem(physics *PhysicsSystem) *RenderSystem {
	return &RenderSystem{physics: physics, Overlay: true}
}

func (r *RenderSystem) Update(w *ecs.World) {}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil || r.physics == nil {
		return
	}
	backend := r.physics.Backend()
	if backend == nil {
		return
	}

	ghostShapes := make(map[*cp.Shape]bool)
	ecs.ForEach(w, component.PhysicsBodyComponent.Kind(), func(_ ecs.Entity, body *component.PhysicsBody) {
		if body.Ghost && body.Shape != nil {
			ghostShapes[body.Shape] = true
		}
	})

	DrawSpaceDebug(backend.Space(), screen, func(shape *cp.Shape) bool {
		return ghostShapes[shape]
	})

	if r.Overlay {
		ecs.ForEach(w, component.GroundSensorComponent.Kind(), func(e ecs.Entity, sensor *component.GroundSensor) {
			r.drawSensor(screen, e, sensor)
		})
	}

	r.drawHUD(w, screen)
}

var (
	castColor     = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xb0}
	ghostHitColor = color.NRGBA{R: 0xff, G: 0xa6, B: 0x26, A: 0xff}
	groundColor   = color.NRGBA{R: 0x39, G: 0xe6, B: 0x39, A: 0xff}
	normalColor   = color.NRGBA{R: 0x39, G: 0xb5, B: 0xe6, A: 0xff}
)

// drawSensor draws the cast line, every ghost platform the skip loop passed
// through, and the resolved grounding point with its surface normal.
func (r *RenderSystem) drawSensor(screen *ebiten.Image, e ecs.Entity, sensor *component.GroundSensor) {
	s := sensor.Sensor
	if s == nil {
		return
	}
	state, ok := r.physics.Backend().BodyState(e)
	if !ok {
		return
	}

	origin := state.Translation.Add(state.Rotation.Rotate(s.CastOrigin))
	end := origin.Add(s.CastDirection.Mul(s.CastRange))
	ebitenutil.DrawLine(screen, origin.X(), origin.Y(), end.X(), end.Y(), castColor)

	for i := range s.Ghosts {
		drawCross(screen, s.Ghosts[i].Point.X(), s.Ghosts[i].Point.Y(), 5, ghostHitColor)
	}
	if sensor.Resolved != nil {
		p := sensor.Resolved.Point
		n := sensor.Resolved.Normal
		drawCross(screen, p.X(), p.Y(), 6, groundColor)
		ebitenutil.DrawLine(screen, p.X(), p.Y(), p.X()+n.X()*24, p.Y()+n.Y()*24, normalColor)
	}
}

func drawCross(screen *ebiten.Image, x, y, half float64, c color.NRGBA) {
	ebitenutil.DrawLine(screen, x-half, y, x+half, y, c)
	ebitenutil.DrawLine(screen, x, y-half, x, y+half, c)
}

func (r *RenderSystem) drawHUD(w *ecs.World, screen *ebiten.Image) {
	// The HUD wants the player that actually senses ground, so the lookup
	// intersects the tag with the sensor kind.
	player, ok := w.First(
		component.PlayerTagComponent.Kind(),
		component.GroundSensorComponent.Kind(),
	)
	if !ok {
		return
	}
	sensor, ok := ecs.Get(w, player, component.GroundSensorComponent.Kind())
	if !ok {
		return
	}

	groundedOn := "nothing"
	proximity := 0.0
	if sensor.Resolved != nil {
		groundedOn = handleName(w, sensor.Resolved.Target)
		proximity = sensor.Resolved.Proximity
	}
	stateName := "none"
	if machine, ok := ecs.Get(w, player, component.CharacterStateMachineComponent.Kind()); ok && machine.State != nil {
		stateName = machine.State.Name()
	}
	policy := ground.FallThroughPolicy(0)
	minProx := 0.0
	if motion, ok := ecs.Get(w, player, component.CharacterMotionComponent.Kind()); ok {
		policy = motion.Policy
		minProx = motion.MinGhostProximity
	}
	falling := "-"
	if ft, ok := ecs.Get(w, player, component.FallThroughComponent.Kind()); ok {
		if h, active := ft.Helper.FallingThrough(); active {
			falling = handleName(w, h)
		}
	}
	ghosts := 0
	if sensor.Sensor != nil {
		ghosts = len(sensor.Sensor.Ghosts)
	}

	text := fmt.Sprintf(
		"State: %s\nToggle: %s\nPolicy: %s (min prox %.1f)\nGround: %s (%.1f)\nGhosts: %d\nFalling through: %s\nCrouch: %v\nFPS: %.1f",
		stateName, sensor.Toggle, policy, minProx, groundedOn, proximity, ghosts, falling, sensor.Crouch, ebiten.ActualFPS(),
	)
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

// handleName resolves a backend handle to its entity name for the HUD.
func handleName(w *ecs.World, h ground.Handle) string {
	e, ok := h.(ecs.Entity)
	if !ok {
		return fmt.Sprintf("%v", h)
	}
	if name, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok && name.Value != "" {
		return name.Value
	}
	return fmt.Sprintf("entity %d", e)
}
