package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/ecs/component"
	"github.com/milk9111/footing/prefabs"
)

// ScriptSystem drives moving platforms from tengo scripts. A script defines
// update(platform, state) and returns the platform's target velocity as
// [vx, vy]; a third element, when present, sets the angular velocity in
// radians per second. state is a map the script owns across ticks.
type ScriptSystem struct {
	elapsed float64
	cache   map[ecs.Entity]*platformScriptRuntime
}

const platformDispatchScript = `
__out := update(__platform, __state)
__vx = __out[0]
__vy = __out[1]
__has_spin = false
if len(__out) > 2 {
	__spin = __out[2]
	__has_spin = true
}
`

func NewScriptSystem() *ScriptSystem {
	return &ScriptSystem{cache: map[ecs.Entity]*platformScriptRuntime{}}
}

// Invalidate drops every compiled script so the next tick recompiles from
// the (possibly reloaded) sources.
func (ss *ScriptSystem) Invalidate() {
	if ss == nil {
		return
	}
	ss.cache = map[ecs.Entity]*platformScriptRuntime{}
}

func (ss *ScriptSystem) Update(w *ecs.World) {
	if ss == nil || w == nil {
		return
	}
	ss.elapsed += Timestep

	ecs.ForEach2(w,
		component.MovingPlatformComponent.Kind(),
		component.PhysicsBodyComponent.Kind(),
		func(e ecs.Entity, mp *component.MovingPlatform, body *component.PhysicsBody) {
			if body.Body == nil {
				return
			}
			rt, err := ss.getRuntime(e, mp)
			if err != nil {
				log.Printf("script: entity=%d load %q: %v", e, mp.Script, err)
				return
			}
			pos := body.Body.Position()
			platform := &tengo.ImmutableMap{Value: map[string]tengo.Object{
				"time":     &tengo.Float{Value: ss.elapsed},
				"dt":       &tengo.Float{Value: Timestep},
				"x":        &tengo.Float{Value: pos.X},
				"y":        &tengo.Float{Value: pos.Y},
				"origin_x": &tengo.Float{Value: mp.OriginX},
				"origin_y": &tengo.Float{Value: mp.OriginY},
			}}
			cmd, err := rt.run(platform)
			if err != nil {
				log.Printf("script: entity=%d update %q: %v", e, mp.Script, err)
				return
			}
			body.Body.SetVelocityVector(cp.Vector{X: cmd.vx, Y: cmd.vy})
			if cmd.hasSpin {
				body.Body.SetAngularVelocity(cmd.spin)
			}
		})

	for e := range ss.cache {
		if !ecs.IsAlive(w, e) {
			delete(ss.cache, e)
		}
	}
}

type platformScriptRuntime struct {
	scriptPath string
	compiled   *tengo.Compiled
	stateData  *tengo.Map
}

func (ss *ScriptSystem) getRuntime(e ecs.Entity, mp *component.MovingPlatform) (*platformScriptRuntime, error) {
	if strings.TrimSpace(mp.Script) == "" {
		return nil, fmt.Errorf("no script configured")
	}
	if rt, ok := ss.cache[e]; ok && rt != nil && rt.scriptPath == mp.Script {
		return rt, nil
	}

	src, err := prefabs.LoadScript(mp.Script)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript(append(src, []byte("\n"+platformDispatchScript)...))
	_ = script.Add("__platform", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__vx", 0.0)
	_ = script.Add("__vy", 0.0)
	_ = script.Add("__spin", 0.0)
	_ = script.Add("__has_spin", false)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &platformScriptRuntime{
		scriptPath: mp.Script,
		compiled:   compiled,
		stateData:  &tengo.Map{Value: map[string]tengo.Object{}},
	}
	ss.cache[e] = rt
	return rt, nil
}

// platformCommand is one tick's script output: the target linear velocity
// plus the optional angular velocity a three-element return carries.
type platformCommand struct {
	vx, vy  float64
	spin    float64
	hasSpin bool
}

func (rt *platformScriptRuntime) run(platform *tengo.ImmutableMap) (platformCommand, error) {
	var cmd platformCommand
	if rt == nil || rt.compiled == nil {
		return cmd, fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__platform", platform); err != nil {
		return cmd, err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return cmd, err
	}
	if err := rt.compiled.Run(); err != nil {
		return cmd, err
	}
	cmd.vx = rt.compiled.Get("__vx").Float()
	cmd.vy = rt.compiled.Get("__vy").Float()
	if cmd.hasSpin = rt.compiled.Get("__has_spin").Bool(); cmd.hasSpin {
		cmd.spin = rt.compiled.Get("__spin").Float()
	}
	return cmd, nil
}
