package system

import (
	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ground"
)

// FallThroughSystem turns each character's ghost list and crouch intent into
// the tick's final grounding result and crouch decision. It runs strictly
// after the sensor pass: the policies read that pass's output and the
// character's own helper state, nothing else.
type FallThroughSystem struct {
	grounded map[ecs.Entity]bool
}

func NewFallThroughSystem() *FallThroughSystem {
	return &FallThroughSystem{grounded: make(map[ecs.Entity]bool)}
}

func (fs *FallThroughSystem) Update(w *ecs.World) {
	if fs == nil || w == nil {
		return
	}

	ecs.ForEach4(w,
		component.GroundSensorComponent.Kind(),
		component.FallThroughComponent.Kind(),
		component.InputComponent.Kind(),
		component.CharacterMotionComponent.Kind(),
		func(e ecs.Entity, sensor *component.GroundSensor, ft *component.FallThrough, input *component.Input, motion *component.CharacterMotion) {
			if sensor.Sensor == nil || sensor.Toggle == ground.Disabled {
				return
			}

			_, wasFalling := ft.Helper.FallingThrough()

			out, helper, crouch := ground.ResolveFallThrough(
				motion.Policy,
				sensor.Sensor.Ghosts,
				sensor.Sensor.Output,
				ground.CrouchInput{Pressed: input.Crouch, JustPressed: input.CrouchPressed},
				motion.MinGhostProximity,
				ft.Helper,
			)

			sensor.Resolved = out
			sensor.Crouch = crouch
			ft.Helper = helper

			if _, falling := helper.FallingThrough(); falling && !wasFalling {
				w.Events().Push(ecs.Event{Type: ecs.EventTypeGround, Data: ecs.GroundEvent{Entity: e, Kind: ecs.GroundEventFellThrough}})
			}
			now := out != nil
			if prev, seen := fs.grounded[e]; !seen || prev != now {
				kind := ecs.GroundEventAirborne
				if now {
					kind = ecs.GroundEventLanded
				}
				if seen {
					w.Events().Push(ecs.Event{Type: ecs.EventTypeGround, Data: ecs.GroundEvent{Entity: e, Kind: kind}})
				}
				fs.grounded[e] = now
			}
		})

	for e := range fs.grounded {
		if !ecs.IsAlive(w, e) {
			delete(fs.grounded, e)
		}
	}
}
