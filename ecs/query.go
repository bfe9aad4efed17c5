package ecs

// Query returns the live entities carrying every given kind. The result
// follows the insertion order of the smallest column.
func (w *World) Query(kinds ...Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	cols := make([]store, len(kinds))
	primary := -1
	for i, k := range kinds {
		if k == nil || !k.Valid() {
			return nil
		}
		s, ok := w.stores[k.ID()]
		if !ok {
			return nil
		}
		cols[i] = s
		// iterate the smallest column
		if primary < 0 || s.count() < cols[primary].count() {
			primary = i
		}
	}
	out := make([]Entity, 0, cols[primary].count())
	for _, e := range cols[primary].entities() {
		if !w.alloc.isAlive(e) {
			continue
		}
		match := true
		for i, s := range cols {
			if i != primary && !s.has(e) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// First returns one live entity carrying every given kind.
func (w *World) First(kinds ...Kind) (Entity, bool) {
	res := w.Query(kinds...)
	if len(res) == 0 {
		return 0, false
	}
	return res[0], true
}
