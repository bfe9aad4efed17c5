package ground

import "fmt"

// FallThroughPolicy selects how crouch input interacts with ghost platforms.
// It is static per-character configuration, never mutated by the engine.
type FallThroughPolicy int

const (
	// JumpThroughOnly treats ghost platforms as solid ground from above;
	// crouching never drops through them.
	JumpThroughOnly FallThroughPolicy = iota
	// WithoutHelper drops through while crouch is held, using no persistent
	// state. Releasing crouch before clearing the platform re-grounds the
	// character, and a second ghost platform stacked close above the first
	// can be detected instead of the intended one. Both quirks are inherent
	// to the stateless scheme; the helper policies exist to avoid them.
	WithoutHelper
	// SingleFall drops through one platform per crouch press.
	SingleFall
	// KeepFalling keeps dropping through platforms for as long as crouch is
	// held.
	KeepFalling
)

func (p FallThroughPolicy) String() string {
	switch p {
	case JumpThroughOnly:
		return "jump-through-only"
	case WithoutHelper:
		return "without-helper"
	case SingleFall:
		return "single-fall"
	case KeepFalling:
		return "keep-falling"
	}
	return "unknown"
}

// ParseFallThroughPolicy maps a config string to its policy.
func ParseFallThroughPolicy(s string) (FallThroughPolicy, error) {
	switch s {
	case "jump-through-only":
		return JumpThroughOnly, nil
	case "without-helper":
		return WithoutHelper, nil
	case "single-fall":
		return SingleFall, nil
	case "keep-falling":
		return KeepFalling, nil
	}
	return 0, fmt.Errorf("ground: unknown fall-through policy %q", s)
}

// CrouchInput is one tick of crouch intent.
type CrouchInput struct {
	Pressed     bool
	JustPressed bool
}

// FallThroughHelper remembers which ghost platform the character is committed
// to falling through. It is the only state in the pipeline that survives
// across ticks. The zero value means not falling through anything.
type FallThroughHelper struct {
	fallingThrough Handle
}

// FallingThrough returns the committed platform, if any.
func (h FallThroughHelper) FallingThrough() (Handle, bool) {
	return h.fallingThrough, h.fallingThrough != nil
}

// relevant reports whether the committed platform still appears in this
// tick's ghost list. The moment it drops out, the character has fallen clear
// of it.
func (h FallThroughHelper) relevant(ghosts GhostList) bool {
	return h.fallingThrough != nil && ghosts.Contains(h.fallingThrough)
}

// ResolveFallThrough decides, for one character and one tick, whether a ghost
// platform is presented as solid ground, whether the character keeps falling
// through one, and whether it should crouch. It returns the possibly
// substituted sensor output, the helper state for the next tick, and the
// crouch decision. Ghost platforms nearer than minProximity are too close to
// the cast origin to count as "below" the character and are ignored.
func ResolveFallThrough(policy FallThroughPolicy, ghosts GhostList, output *CastResult, crouch CrouchInput, minProximity float64, helper FallThroughHelper) (*CastResult, FallThroughHelper, bool) {
	switch policy {
	case JumpThroughOnly:
		if ghost, ok := ghosts.First(minProximity); ok {
			output = &ghost
		}
		return output, helper, crouch.Pressed

	case WithoutHelper:
		ghost, ok := ghosts.First(minProximity)
		if crouch.Pressed {
			// With a platform to fall through, suppress the crouch and let
			// the character free-fall past it.
			return output, helper, !ok
		}
		if ok {
			output = &ghost
		}
		return output, helper, false

	case SingleFall:
		if crouch.Pressed {
			out, next, falling := tryFalling(ghosts, output, minProximity, helper, crouch.JustPressed)
			return out, next, !falling
		}
		out, next := dontFall(ghosts, output, minProximity, helper)
		return out, next, false

	case KeepFalling:
		if crouch.Pressed {
			out, next, falling := tryFalling(ghosts, output, minProximity, helper, true)
			return out, next, !falling
		}
		out, next := dontFall(ghosts, output, minProximity, helper)
		return out, next, false
	}
	return output, helper, false
}

// tryFalling continues a committed fall, or starts a new one when includeNew
// allows it. It reports whether the character is falling; when it is not, the
// nearest qualifying ghost is substituted as ground so holding crouch stands
// the character, crouched, instead of tunneling through the whole stack.
func tryFalling(ghosts GhostList, output *CastResult, minProximity float64, helper FallThroughHelper, includeNew bool) (*CastResult, FallThroughHelper, bool) {
	if helper.relevant(ghosts) {
		return output, helper, true
	}
	if includeNew {
		if ghost, ok := ghosts.First(minProximity); ok {
			helper.fallingThrough = ghost.Target
			return output, helper, true
		}
	}
	helper.fallingThrough = nil
	if ghost, ok := ghosts.First(minProximity); ok {
		return &ghost, helper, false
	}
	return output, helper, false
}

// dontFall lets a committed fall finish without climbing back onto the
// platform mid-drop. Once the platform clears the ghost list the helper
// resets and the nearest qualifying ghost, if any, becomes ground again.
func dontFall(ghosts GhostList, output *CastResult, minProximity float64, helper FallThroughHelper) (*CastResult, FallThroughHelper) {
	if helper.relevant(ghosts) {
		return output, helper
	}
	helper.fallingThrough = nil
	if ghost, ok := ghosts.First(minProximity); ok {
		return &ghost, helper
	}
	return output, helper
}
