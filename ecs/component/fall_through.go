package component

import "github.com/milk9111/footing/ground"

// FallThrough keeps the fall-through helper state between ticks.
type FallThrough struct {
	Helper ground.FallThroughHelper
}

var FallThroughComponent = NewComponent[FallThrough]()
