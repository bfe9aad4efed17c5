package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadSpec reads and unmarshals one yaml prefab, preferring a disk copy
// over the embedded one so edits apply without rebuilding.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// CharacterSpec is the full tuning sheet for one playable character.
type CharacterSpec struct {
	Name   string     `yaml:"name"`
	Body   BodySpec   `yaml:"body"`
	Sensor SensorSpec `yaml:"sensor"`
	Motion MotionSpec `yaml:"motion"`
}

// BodySpec sizes the character's collider. Radius > 0 makes a circle,
// otherwise a Width x Height box.
type BodySpec struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Radius   float64 `yaml:"radius"`
	Mass     float64 `yaml:"mass"`
	Friction float64 `yaml:"friction"`
}

// SensorSpec configures the downward proximity cast.
type SensorSpec struct {
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
	Range   float64 `yaml:"range"`
	// ShapeRadius > 0 sweeps a ball of that radius instead of a ray.
	ShapeRadius float64 `yaml:"shape_radius"`
	// Cutoff rejects candidates whose contact normal already points along
	// the cast; zero keeps the sensor default.
	Cutoff float64 `yaml:"cutoff"`
}

// MotionSpec is the walk/jump/crouch tuning consumed by the locomotion
// states, plus the fall-through policy.
type MotionSpec struct {
	Speed             float64 `yaml:"speed"`
	Acceleration      float64 `yaml:"acceleration"`
	AirAcceleration   float64 `yaml:"air_acceleration"`
	FloatHeight       float64 `yaml:"float_height"`
	CrouchFloatOffset float64 `yaml:"crouch_float_offset"`
	CrouchSpeedFactor float64 `yaml:"crouch_speed_factor"`
	SpringStrength    float64 `yaml:"spring_strength"`
	SpringDampening   float64 `yaml:"spring_dampening"`
	JumpHeight        float64 `yaml:"jump_height"`
	DashDistance      float64 `yaml:"dash_distance"`
	DashSpeed         float64 `yaml:"dash_speed"`
	ActionsInAir      int     `yaml:"actions_in_air"`
	MinGhostProximity float64 `yaml:"min_ghost_proximity"`
	Policy            string  `yaml:"policy"`
}

func LoadCharacterSpec(filename string) (CharacterSpec, error) {
	return LoadSpec[CharacterSpec](filename)
}

// PlatformSpec is the shared tuning for scripted moving platforms.
type PlatformSpec struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Ghost  bool    `yaml:"ghost"`
	Script string  `yaml:"script"`
}

func LoadPlatformSpec(filename string) (PlatformSpec, error) {
	return LoadSpec[PlatformSpec](filename)
}

// MarshalSpec renders a spec back to yaml, used by the tuning panel's
// copy-to-clipboard button.
func MarshalSpec(spec any) ([]byte, error) {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("prefabs: marshal spec: %w", err)
	}
	return data, nil
}
