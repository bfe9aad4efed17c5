package ecs

import "strconv"

type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

func (e Entity) Valid() bool {
	return e > 0
}

// entityAllocator hands out ids starting at 1 and bumps the generation on
// destroy so stale handles never match a recycled slot.
type entityAllocator struct {
	gens  []generation // index = id-1
	alive []bool
	free  []entityID
}

func (a *entityAllocator) create() Entity {
	if len(a.free) > 0 {
		id := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		a.alive[id-1] = true
		return makeEntity(id, a.gens[id-1])
	}
	a.gens = append(a.gens, 0)
	a.alive = append(a.alive, true)
	return makeEntity(entityID(len(a.gens)), 0)
}

func (a *entityAllocator) destroy(e Entity) bool {
	if !a.isAlive(e) {
		return false
	}
	idx := int(e.id()) - 1
	a.gens[idx]++
	a.alive[idx] = false
	a.free = append(a.free, e.id())
	return true
}

func (a *entityAllocator) isAlive(e Entity) bool {
	if a == nil || !e.Valid() {
		return false
	}
	idx := int(e.id()) - 1
	if idx < 0 || idx >= len(a.gens) {
		return false
	}
	return a.alive[idx] && a.gens[idx] == e.generation()
}

func (a *entityAllocator) all() []Entity {
	if a == nil {
		return nil
	}
	out := make([]Entity, 0, len(a.gens))
	for i, ok := range a.alive {
		if ok {
			out = append(out, makeEntity(entityID(i+1), a.gens[i]))
		}
	}
	return out
}
