package ecs

import "github.com/milk9111/footing/ecs/component"

// Add attaches value to e under kind k. The pointer is stored as-is, so
// callers keep mutating the same component the world hands back.
func Add[T any](w *World, e Entity, k component.ComponentKind[T], value *T) error {
	if w == nil || !k.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.alloc.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	col := columnFor(w, k)
	if col == nil {
		return component.ErrInvalidComponentKind
	}
	col.set(e, value)
	return nil
}

// Get returns the component stored for e under k.
func Get[T any](w *World, e Entity, k component.ComponentKind[T]) (*T, bool) {
	col, ok := lookup(w, k)
	if !ok || !w.alloc.isAlive(e) {
		return nil, false
	}
	return col.get(e)
}

// Has reports whether live entity e carries kind k.
func Has[T any](w *World, e Entity, k component.ComponentKind[T]) bool {
	_, ok := Get(w, e, k)
	return ok
}

// Remove drops the component for e under k, reporting whether one existed.
func Remove[T any](w *World, e Entity, k component.ComponentKind[T]) bool {
	col, ok := lookup(w, k)
	if !ok {
		return false
	}
	return col.remove(e)
}

// ForEach calls fn for every live entity carrying k. Entities are
// snapshotted first, so fn may add or remove components safely.
func ForEach[T any](w *World, k component.ComponentKind[T], fn func(Entity, *T)) {
	col, ok := lookup(w, k)
	if !ok || fn == nil {
		return
	}
	for _, e := range snapshot(col.entities()) {
		if !w.alloc.isAlive(e) {
			continue
		}
		if v, ok := col.get(e); ok {
			fn(e, v)
		}
	}
}

// ForEach2 calls fn for every live entity carrying both kinds.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	ca, okA := lookup(w, ka)
	cb, okB := lookup(w, kb)
	if !okA || !okB || fn == nil {
		return
	}
	for _, e := range snapshot(ca.entities()) {
		if !w.alloc.isAlive(e) {
			continue
		}
		a, ok := ca.get(e)
		if !ok {
			continue
		}
		b, ok := cb.get(e)
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}

// ForEach3 calls fn for every live entity carrying all three kinds.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	ca, okA := lookup(w, ka)
	cb, okB := lookup(w, kb)
	cc, okC := lookup(w, kc)
	if !okA || !okB || !okC || fn == nil {
		return
	}
	for _, e := range snapshot(ca.entities()) {
		if !w.alloc.isAlive(e) {
			continue
		}
		a, ok := ca.get(e)
		if !ok {
			continue
		}
		b, ok := cb.get(e)
		if !ok {
			continue
		}
		c, ok := cc.get(e)
		if !ok {
			continue
		}
		fn(e, a, b, c)
	}
}

// ForEach4 calls fn for every live entity carrying all four kinds.
func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	ca, okA := lookup(w, ka)
	cb, okB := lookup(w, kb)
	cc, okC := lookup(w, kc)
	cd, okD := lookup(w, kd)
	if !okA || !okB || !okC || !okD || fn == nil {
		return
	}
	for _, e := range snapshot(ca.entities()) {
		if !w.alloc.isAlive(e) {
			continue
		}
		a, ok := ca.get(e)
		if !ok {
			continue
		}
		b, ok := cb.get(e)
		if !ok {
			continue
		}
		c, ok := cc.get(e)
		if !ok {
			continue
		}
		d, ok := cd.get(e)
		if !ok {
			continue
		}
		fn(e, a, b, c, d)
	}
}

// columnFor finds or creates the column for k. It returns nil when a
// column already exists under the same id with a different element type.
func columnFor[T any](w *World, k component.ComponentKind[T]) *column[T] {
	s, ok := w.stores[k.ID()]
	if !ok {
		c := &column[T]{}
		w.stores[k.ID()] = c
		return c
	}
	c, ok := s.(*column[T])
	if !ok {
		return nil
	}
	return c
}

func lookup[T any](w *World, k component.ComponentKind[T]) (*column[T], bool) {
	if w == nil || !k.Valid() {
		return nil, false
	}
	s, ok := w.stores[k.ID()]
	if !ok {
		return nil, false
	}
	c, ok := s.(*column[T])
	return c, ok && c != nil
}

func snapshot(ents []Entity) []Entity {
	if len(ents) == 0 {
		return nil
	}
	return append([]Entity(nil), ents...)
}
