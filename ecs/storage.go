package ecs

// store is the type-erased face of a component column, enough for the
// world to destroy entities and intersect queries without knowing T.
type store interface {
	remove(e Entity) bool
	has(e Entity) bool
	entities() []Entity
	count() int
}

// column keeps one component type in a dense swap-remove layout keyed by
// entity id. The dense slice records the full handle so a recycled id
// with a newer generation never aliases an old component.
type column[T any] struct {
	dense  []Entity
	values []*T
	sparse []int // entity id -> dense index, -1 when absent
}

func (c *column[T]) index(e Entity) int {
	id := int(e.id())
	if c == nil || id <= 0 || id > len(c.sparse) {
		return -1
	}
	idx := c.sparse[id-1]
	if idx < 0 || idx >= len(c.dense) || c.dense[idx] != e {
		return -1
	}
	return idx
}

func (c *column[T]) set(e Entity, v *T) {
	id := int(e.id())
	if c == nil || id <= 0 {
		return
	}
	for len(c.sparse) < id {
		c.sparse = append(c.sparse, -1)
	}
	if idx := c.index(e); idx >= 0 {
		c.values[idx] = v
		return
	}
	c.dense = append(c.dense, e)
	c.values = append(c.values, v)
	c.sparse[id-1] = len(c.dense) - 1
}

func (c *column[T]) get(e Entity) (*T, bool) {
	idx := c.index(e)
	if idx < 0 {
		return nil, false
	}
	return c.values[idx], true
}

func (c *column[T]) has(e Entity) bool {
	return c.index(e) >= 0
}

func (c *column[T]) remove(e Entity) bool {
	idx := c.index(e)
	if idx < 0 {
		return false
	}
	last := len(c.dense) - 1
	lastEnt := c.dense[last]
	c.dense[idx] = lastEnt
	c.values[idx] = c.values[last]
	c.sparse[int(lastEnt.id())-1] = idx
	c.values[last] = nil
	c.dense = c.dense[:last]
	c.values = c.values[:last]
	c.sparse[int(e.id())-1] = -1
	return true
}

func (c *column[T]) entities() []Entity {
	if c == nil {
		return nil
	}
	return c.dense
}

func (c *column[T]) count() int {
	if c == nil {
		return 0
	}
	return len(c.dense)
}
