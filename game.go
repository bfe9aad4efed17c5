package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/footing/common"
	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/ecs/entity"
	"github.com/milk9111/footing/ecs/system"
	"github.com/milk9111/footing/ground"
	"github.com/milk9111/footing/levels"
	"github.com/milk9111/footing/prefabs"
)

// defaultGravity is screen-space (y grows downward), so positive Y pulls down.
var defaultGravity = mgl64.Vec3{0, 900, 0}

type Game struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	scripts   *system.ScriptSystem
	render    *system.RenderSystem

	player          ecs.Entity
	characterPrefab string

	paused bool
	tuning *TuningUI
	showUI bool

	watcher *prefabs.Watcher
}

func NewGame(levelName, characterPrefab string, debug bool) (*Game, error) {
	lvl, err := levels.Load(levelName)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	gravity := defaultGravity
	if len(lvl.Gravity) >= 2 {
		gravity = mgl64.Vec3{lvl.Gravity[0], lvl.Gravity[1], 0}
	}

	world := ecs.NewWorld()
	physics := system.NewPhysicsSystem(gravity)
	backend := physics.Backend()
	scripts := system.NewScriptSystem()
	render := system.NewRenderSystem(physics)

	if err := entity.BuildLevel(world, lvl); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	player, err := entity.NewCharacter(world, characterPrefab, lvl.Spawn.X, lvl.Spawn.Y)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	scheduler := ecs.NewScheduler(
		system.NewInputSystem(),
		scripts,
		physics,
		system.NewGroundSensorSystem(backend),
		system.NewFallThroughSystem(),
		system.NewLocomotionSystem(backend),
		system.NewMotorSystem(backend),
		render,
	)
	if debug {
		scheduler.Add(&groundEventLogger{})
	}

	g := &Game{
		world:           world,
		scheduler:       scheduler,
		physics:         physics,
		scripts:         scripts,
		render:          render,
		player:          player,
		characterPrefab: filepath.Base(characterPrefab),
	}
	g.tuning = NewTuningUI(g)

	// Hot reload only works when running next to the source tree; anywhere
	// else the embedded prefabs are all there is.
	watcher, err := prefabs.NewWatcher("prefabs", filepath.Join("prefabs", "scripts"))
	if err != nil {
		log.Printf("game: prefab hot reload disabled: %v", err)
	} else {
		g.watcher = watcher
	}

	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.applyPrefabChanges()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.showUI = !g.showUI
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.render.Overlay = !g.render.Overlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.cycleToggle()
	}

	// The sim keeps running under the panel so tuning feedback is live.
	if g.showUI {
		g.tuning.Update()
	}
	if g.paused {
		return nil
	}

	g.scheduler.Update(g.world)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scheduler.Draw(g.world, screen)

	if g.paused {
		ebitenutil.DebugPrintAt(screen, "Paused (Esc resumes)", common.BaseWidth/2-60, common.BaseHeight/2)
	}
	if g.showUI {
		g.tuning.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// cycleToggle steps the player's sensor through Enabled, SenseOnly, Disabled.
func (g *Game) cycleToggle() {
	sensor, ok := ecs.Get(g.world, g.player, component.GroundSensorComponent.Kind())
	if !ok {
		return
	}
	switch sensor.Toggle {
	case ground.Enabled:
		sensor.Toggle = ground.SenseOnly
	case ground.SenseOnly:
		sensor.Toggle = ground.Disabled
	default:
		sensor.Toggle = ground.Enabled
	}
	log.Printf("game: sensor toggle -> %s", sensor.Toggle)
}

// applyPrefabChanges drains the watcher without blocking the frame and
// re-applies whatever changed: character yaml re-tunes the live player,
// script edits recompile on next use. Platform yaml is baked into bodies at
// build time, so those edits only apply on restart.
func (g *Game) applyPrefabChanges() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change := <-g.watcher.Events:
			g.applyPrefabChange(change)
		case err := <-g.watcher.Errors:
			log.Printf("game: prefab watcher: %v", err)
		default:
			return
		}
	}
}

func (g *Game) applyPrefabChange(change prefabs.Change) {
	base := filepath.Base(change.Path)
	switch change.Kind {
	case prefabs.ScriptChanged:
		g.scripts.Invalidate()
		log.Printf("game: %s changed, platform scripts recompile next tick", base)
	case prefabs.SpecChanged:
		if base != g.characterPrefab {
			log.Printf("game: %s changed, applies on restart", base)
			return
		}
		spec, err := prefabs.LoadCharacterSpec(base)
		if err != nil {
			log.Printf("game: reload %s: %v", base, err)
			return
		}
		if err := entity.ApplyCharacterSpec(g.world, g.player, spec); err != nil {
			log.Printf("game: apply %s: %v", base, err)
			return
		}
		log.Printf("game: re-applied character tuning from %s", base)
	}
}

// groundEventLogger prints grounding transitions while -debug is set. It runs
// after the pipeline, before the scheduler flushes the tick's events.
type groundEventLogger struct{}

func (l *groundEventLogger) Update(w *ecs.World) {
	for _, evt := range w.Events().Peek() {
		ge, ok := evt.Data.(ecs.GroundEvent)
		if !ok {
			continue
		}
		log.Printf("ground event: entity %d %s", ge.Entity, ge.Kind)
	}
}
