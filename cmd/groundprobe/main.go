package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ecs/entity"
	"github.com/milk9111/footing/ecs/system"
	"github.com/milk9111/footing/levels"
)

// groundprobe steps a level headlessly with scripted crouch input and logs
// the grounding pipeline per tick. Handy for eyeballing fall-through policy
// behavior without a display.
func main() {
	levelName := flag.String("level", "showcase", "level name in levels/ (basename, .json optional)")
	character := flag.String("character", "player.yaml", "character prefab in prefabs/")
	ticks := flag.Int("ticks", 300, "number of simulation ticks to run")
	press := flag.String("press", "", "crouch hold windows as inclusive tick ranges, e.g. 60-120,200-260")
	flag.Parse()

	if err := run(*levelName, *character, *ticks, *press); err != nil {
		log.Fatal(err)
	}
}

func run(levelName, character string, ticks int, press string) error {
	windows, err := parseRanges(press)
	if err != nil {
		return fmt.Errorf("groundprobe: -press: %w", err)
	}

	lvl, err := levels.Load(levelName)
	if err != nil {
		return fmt.Errorf("groundprobe: %w", err)
	}
	gravity := mgl64.Vec3{0, 900, 0}
	if len(lvl.Gravity) >= 2 {
		gravity = mgl64.Vec3{lvl.Gravity[0], lvl.Gravity[1], 0}
	}

	world := ecs.NewWorld()
	physics := system.NewPhysicsSystem(gravity)
	backend := physics.Backend()

	if err := entity.BuildLevel(world, lvl); err != nil {
		return fmt.Errorf("groundprobe: %w", err)
	}
	player, err := entity.NewCharacter(world, character, lvl.Spawn.X, lvl.Spawn.Y)
	if err != nil {
		return fmt.Errorf("groundprobe: %w", err)
	}

	// Same pipeline as the demo minus input and rendering: crouch comes from
	// the scripted windows instead of a keyboard.
	scheduler := ecs.NewScheduler(
		system.NewScriptSystem(),
		physics,
		system.NewGroundSensorSystem(backend),
		system.NewFallThroughSystem(),
		system.NewLocomotionSystem(backend),
		system.NewMotorSystem(backend),
	)

	log.Printf("groundprobe: level=%s character=%s ticks=%d press=%s", lvl.Name, character, ticks, press)

	for tick := 0; tick < ticks; tick++ {
		crouch := inWindows(windows, tick)
		input, ok := ecs.Get(world, player, component.InputComponent.Kind())
		if !ok {
			return fmt.Errorf("groundprobe: player lost its input component")
		}
		input.CrouchPressed = crouch && !input.Crouch
		input.Crouch = crouch

		scheduler.Update(world)
		logTick(world, tick)
	}

	return nil
}

// logTick logs every sensing character in the world. A stock level spawns
// one, but the scan holds up when a level seeds more.
func logTick(w *ecs.World, tick int) {
	characters := w.Query(
		component.GroundSensorComponent.Kind(),
		component.CharacterStateMachineComponent.Kind(),
	)
	for _, e := range characters {
		logCharacter(w, e, tick)
	}
}

func logCharacter(w *ecs.World, e ecs.Entity, tick int) {
	sensor, ok := ecs.Get(w, e, component.GroundSensorComponent.Kind())
	if !ok {
		return
	}

	pos := mgl64.Vec3{}
	if tr, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		pos = tr.Position()
	}

	groundName := "-"
	prox := 0.0
	if sensor.Resolved != nil {
		groundName = nameOf(w, sensor.Resolved.Target)
		prox = sensor.Resolved.Proximity
	}

	ghosts := "-"
	if sensor.Sensor != nil && len(sensor.Sensor.Ghosts) > 0 {
		names := make([]string, 0, len(sensor.Sensor.Ghosts))
		for i := range sensor.Sensor.Ghosts {
			names = append(names, nameOf(w, sensor.Sensor.Ghosts[i].Target))
		}
		ghosts = strings.Join(names, ",")
	}

	falling := "-"
	if ft, ok := ecs.Get(w, e, component.FallThroughComponent.Kind()); ok {
		if h, active := ft.Helper.FallingThrough(); active {
			falling = nameOf(w, h)
		}
	}

	stateName := "-"
	if machine, ok := ecs.Get(w, e, component.CharacterStateMachineComponent.Kind()); ok && machine.State != nil {
		stateName = machine.State.Name()
	}

	log.Printf("tick %4d  %s state=%-8s pos=(%.0f,%.0f) ground=%-12s prox=%5.1f ghosts=%-24s falling=%-12s crouch=%v",
		tick, nameOf(w, e), stateName, pos.X(), pos.Y(), groundName, prox, ghosts, falling, sensor.Crouch)
}

func nameOf(w *ecs.World, h any) string {
	e, ok := h.(ecs.Entity)
	if !ok {
		return fmt.Sprintf("%v", h)
	}
	if name, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok && name.Value != "" {
		return name.Value
	}
	return fmt.Sprintf("entity_%d", e)
}

type tickRange struct {
	from, to int
}

// parseRanges reads "60-120,200-260,400" into inclusive ranges; a bare
// number is a single-tick press.
func parseRanges(s string) ([]tickRange, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []tickRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, found := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("bad range %q: %w", part, err)
		}
		b := a
		if found {
			b, err = strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("bad range %q: %w", part, err)
			}
		}
		if b < a {
			return nil, fmt.Errorf("bad range %q: end before start", part)
		}
		out = append(out, tickRange{from: a, to: b})
	}
	return out, nil
}

func inWindows(windows []tickRange, tick int) bool {
	for _, w := range windows {
		if tick >= w.from && tick <= w.to {
			return true
		}
	}
	return false
}
