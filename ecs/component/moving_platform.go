package component

// MovingPlatform marks a kinematic platform whose velocity is driven by a
// tengo script each tick.
type MovingPlatform struct {
	Script  string
	OriginX float64
	OriginY float64
}

var MovingPlatformComponent = NewComponent[MovingPlatform]()
