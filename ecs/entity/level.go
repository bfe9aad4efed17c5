package entity

import (
	"fmt"

	"github.com/milk9111/footing/ecs"
	"github.com/milk9111/footing/levels"
)

// BuildLevel instantiates every platform in a level. The character spawn is
// left to the caller since it picks the prefab.
func BuildLevel(w *ecs.World, lvl *levels.Level) error {
	if w == nil || lvl == nil {
		return fmt.Errorf("level: world and level must be non-nil")
	}

	for i, p := range lvl.Platforms {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", p.Kind, i)
		}

		var err error
		switch p.Kind {
		case levels.KindSolid:
			_, err = NewSolidPlatform(w, name, p.X, p.Y, p.W, p.H)
		case levels.KindGhost:
			_, err = NewGhostPlatform(w, name, p.X, p.Y, p.W, p.H)
		case levels.KindFiltered:
			_, err = NewFilteredPlatform(w, name, p.X, p.Y, p.W, p.H, p.Group)
		case levels.KindZone:
			_, err = NewZone(w, name, p.X, p.Y, p.W, p.H)
		case levels.KindMoving:
			_, err = NewMovingPlatform(w, name, p.Prefab, p.X, p.Y)
		default:
			err = fmt.Errorf("unknown platform kind %q", p.Kind)
		}
		if err != nil {
			return fmt.Errorf("level %s: platform %d: %w", lvl.Name, i, err)
		}
	}

	return nil
}
