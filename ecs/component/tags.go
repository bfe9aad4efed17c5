package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type GhostPlatform struct{}

var GhostPlatformComponent = NewComponent[GhostPlatform]()

type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
