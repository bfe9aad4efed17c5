package ecs

import "github.com/hajimehoshi/ebiten/v2"

// System updates a world each tick.
type System interface {
	Update(w *World)
}

// DrawSystem is implemented by systems that also render.
type DrawSystem interface {
	Draw(w *World, screen *ebiten.Image)
}

// Scheduler runs systems in a fixed order.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Update runs all systems once, then flushes undrained events so the
// queue never carries stale payloads into the next tick.
func (s *Scheduler) Update(w *World) {
	if s == nil {
		return
	}
	for _, system := range s.systems {
		if system != nil {
			system.Update(w)
		}
	}
	if w != nil {
		w.events.flush()
	}
}

// Draw calls every system that renders, in scheduler order.
func (s *Scheduler) Draw(w *World, screen *ebiten.Image) {
	if s == nil || screen == nil {
		return
	}
	for _, system := range s.systems {
		if ds, ok := system.(DrawSystem); ok {
			ds.Draw(w, screen)
		}
	}
}

func (s *Scheduler) Systems() []System {
	if s == nil {
		return nil
	}
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
