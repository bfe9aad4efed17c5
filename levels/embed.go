package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// Level lays out one scene: where the character spawns and every platform
// in it. Coordinates are screen space (y grows downward), positions are
// rectangle centers.
type Level struct {
	Name string `json:"name"`
	// Gravity overrides the default [0, 900] when present.
	Gravity   []float64  `json:"gravity,omitempty"`
	Spawn     Spawn      `json:"spawn"`
	Platforms []Platform `json:"platforms"`
}

type Spawn struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Platform kinds understood by the level builder.
const (
	KindSolid    = "solid"    // plain collidable geometry
	KindGhost    = "ghost"    // pass-through platform
	KindFiltered = "filtered" // solid on a non-player collision group
	KindZone     = "zone"     // detect-only sensor volume
	KindMoving   = "moving"   // kinematic platform driven by a script prefab
)

type Platform struct {
	Name string  `json:"name"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w,omitempty"`
	H    float64 `json:"h,omitempty"`
	// Prefab names the PlatformSpec for moving platforms.
	Prefab string `json:"prefab,omitempty"`
	// Group is the collision group bit for filtered platforms.
	Group uint32 `json:"group,omitempty"`
}

// Load reads an embedded level by name; the .json suffix is optional.
func Load(name string) (*Level, error) {
	if name == "" {
		return nil, fmt.Errorf("levels: empty level name")
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(name, ".json")
	}
	return &lvl, nil
}

// Names lists the embedded levels, sorted, without the .json suffix.
func Names() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
