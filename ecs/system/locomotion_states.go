package system

import (
	"math"

	"github.com/milk9111/footing/ecs/component"
)

// Character state singletons (avoid allocations on transitions).
var (
	characterStateStanding component.CharacterState = &standingState{}
	characterStateCrouched component.CharacterState = &crouchedState{}
	characterStateJumping  component.CharacterState = &jumpingState{}
	characterStateFalling  component.CharacterState = &fallingState{}
	characterStateDashing  component.CharacterState = &dashingState{}
)

type standingState struct{}

type crouchedState struct{}

type jumpingState struct{}

type fallingState struct{}

type dashingState struct{}

func (standingState) Name() string { return "standing" }
func (standingState) Enter(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Machine == nil || ctx.Motion == nil {
		return
	}
	ctx.Machine.AirActionsLeft = ctx.Motion.ActionsInAir
}
func (standingState) Exit(ctx *component.CharacterStateContext) {}
func (standingState) HandleInput(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Input == nil || ctx.ChangeState == nil {
		return
	}
	if ctx.Input.JumpPressed {
		ctx.ChangeState(characterStateJumping)
		return
	}
	if tryDash(ctx, false) {
		return
	}
	if ctx.Crouching != nil && ctx.Crouching() {
		ctx.ChangeState(characterStateCrouched)
	}
}
func (standingState) Update(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Motion == nil {
		return
	}
	if ctx.Grounded != nil && !ctx.Grounded() && ctx.ChangeState != nil {
		ctx.ChangeState(characterStateFalling)
		return
	}
	floatAndWalk(ctx, ctx.Motion.FloatHeight, ctx.Motion.Speed, ctx.Motion.Acceleration)
}

func (crouchedState) Name() string { return "crouched" }
func (crouchedState) Enter(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Machine == nil || ctx.Motion == nil {
		return
	}
	ctx.Machine.AirActionsLeft = ctx.Motion.ActionsInAir
}
func (crouchedState) Exit(ctx *component.CharacterStateContext) {}
func (crouchedState) HandleInput(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Input == nil || ctx.ChangeState == nil {
		return
	}
	if ctx.Input.JumpPressed {
		ctx.ChangeState(characterStateJumping)
		return
	}
	if tryDash(ctx, false) {
		return
	}
	if ctx.Crouching == nil || !ctx.Crouching() {
		ctx.ChangeState(characterStateStanding)
	}
}
func (crouchedState) Update(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Motion == nil {
		return
	}
	if ctx.Grounded != nil && !ctx.Grounded() && ctx.ChangeState != nil {
		ctx.ChangeState(characterStateFalling)
		return
	}
	target := ctx.Motion.FloatHeight - ctx.Motion.CrouchFloatOffset
	speed := ctx.Motion.Speed * ctx.Motion.CrouchSpeedFactor
	floatAndWalk(ctx, target, speed, ctx.Motion.Acceleration)
}

func (jumpingState) Name() string { return "jumping" }
func (jumpingState) Enter(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Motion == nil || ctx.Velocity == nil || ctx.SetLinearBoost == nil || ctx.Gravity == nil {
		return
	}
	// Boost straight to takeoff velocity for the configured jump height.
	jumpSpeed := math.Sqrt(2 * ctx.Gravity() * ctx.Motion.JumpHeight)
	_, vy := ctx.Velocity()
	ctx.SetLinearBoost(0, -jumpSpeed-vy)
}
func (jumpingState) Exit(ctx *component.CharacterStateContext) {}
func (jumpingState) HandleInput(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Input == nil {
		return
	}
	if ctx.Input.JumpPressed {
		airJump(ctx)
		return
	}
	tryDash(ctx, true)
}
func (jumpingState) Update(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Motion == nil || ctx.Velocity == nil {
		return
	}
	airControl(ctx)
	_, vy := ctx.Velocity()
	if vy > 0 && ctx.ChangeState != nil {
		if ctx.Grounded != nil && ctx.Grounded() {
			ctx.ChangeState(characterStateStanding)
			return
		}
		ctx.ChangeState(characterStateFalling)
	}
}

func (fallingState) Name() string { return "falling" }
func (fallingState) Enter(ctx *component.CharacterStateContext) {}
func (fallingState) Exit(ctx *component.CharacterStateContext)  {}
func (fallingState) HandleInput(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Input == nil {
		return
	}
	if ctx.Input.JumpPressed {
		airJump(ctx)
		return
	}
	tryDash(ctx, true)
}
func (fallingState) Update(ctx *component.CharacterStateContext) {
	if ctx == nil {
		return
	}
	airControl(ctx)
	if ctx.Grounded != nil && ctx.Grounded() && ctx.ChangeState != nil {
		if ctx.Crouching != nil && ctx.Crouching() {
			ctx.ChangeState(characterStateCrouched)
			return
		}
		ctx.ChangeState(characterStateStanding)
	}
}

func (dashingState) Name() string { return "dashing" }
func (dashingState) Enter(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Machine == nil || ctx.Motion == nil {
		return
	}
	// Freeze the direction at the press: held input wins, otherwise the
	// last facing, defaulting right for a fresh machine.
	dir := ctx.Machine.Facing
	if ctx.Input != nil && ctx.Input.MoveX > 0 {
		dir = 1
	} else if ctx.Input != nil && ctx.Input.MoveX < 0 {
		dir = -1
	}
	if dir == 0 {
		dir = 1
	}
	ctx.Machine.DashDir = dir
	ctx.Machine.DashRemaining = ctx.Motion.DashDistance
}
func (dashingState) Exit(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Machine == nil {
		return
	}
	ctx.Machine.DashRemaining = 0
}

// A dash runs to completion; input cannot steer or cancel it.
func (dashingState) HandleInput(ctx *component.CharacterStateContext) {}
func (dashingState) Update(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Machine == nil || ctx.Motion == nil {
		return
	}
	if ctx.Velocity == nil || ctx.SetLinearBoost == nil || ctx.Dt == nil {
		return
	}
	// Pin a flat dash velocity: horizontal at dash speed along the frozen
	// direction, vertical zeroed so gravity cannot bend the path.
	vx, vy := ctx.Velocity()
	ctx.SetLinearBoost(ctx.Machine.DashDir*ctx.Motion.DashSpeed-vx, -vy)
	ctx.Machine.DashRemaining -= ctx.Motion.DashSpeed * ctx.Dt()
	if ctx.Machine.DashRemaining > 0 || ctx.ChangeState == nil {
		return
	}
	// Leftover dash velocity carries out; the next state brakes it at its
	// own acceleration.
	if ctx.Grounded != nil && ctx.Grounded() {
		if ctx.Crouching != nil && ctx.Crouching() {
			ctx.ChangeState(characterStateCrouched)
			return
		}
		ctx.ChangeState(characterStateStanding)
		return
	}
	ctx.ChangeState(characterStateFalling)
}

// floatAndWalk is the grounded basis: a damped spring holds the character
// at target proximity above the sensed surface while horizontal velocity
// chases the walk speed relative to the surface, inheriting its motion.
func floatAndWalk(ctx *component.CharacterStateContext, target, speed, accel float64) {
	if ctx.Proximity == nil || ctx.Velocity == nil || ctx.SetLinearAccel == nil || ctx.Gravity == nil || ctx.Dt == nil {
		return
	}
	prox, ok := ctx.Proximity()
	if !ok {
		return
	}
	vx, vy := ctx.Velocity()
	svx, svy := 0.0, 0.0
	if ctx.SurfaceVelocity != nil {
		svx, svy = ctx.SurfaceVelocity()
	}

	springErr := prox - target
	accelY := springErr*ctx.Motion.SpringStrength - (vy-svy)*ctx.Motion.SpringDampening - ctx.Gravity()

	accelX := chaseVelocity(svx+ctx.Input.MoveX*speed, vx, accel, ctx.Dt())
	ctx.SetLinearAccel(accelX, accelY)
}

// airControl chases the walk speed without any vertical correction;
// gravity owns the y axis while airborne.
func airControl(ctx *component.CharacterStateContext) {
	if ctx.Motion == nil || ctx.Input == nil || ctx.Velocity == nil || ctx.SetLinearAccel == nil || ctx.Dt == nil {
		return
	}
	accel := ctx.Motion.AirAcceleration
	if accel <= 0 {
		accel = ctx.Motion.Acceleration
	}
	vx, _ := ctx.Velocity()
	accelX := chaseVelocity(ctx.Input.MoveX*ctx.Motion.Speed, vx, accel, ctx.Dt())
	ctx.SetLinearAccel(accelX, 0)
}

// tryDash starts a dash on a fresh press and reports whether it did.
// Grounded states pass spendAir false; air states pass true, drawing the
// dash from the same air action pool the air jump uses.
func tryDash(ctx *component.CharacterStateContext, spendAir bool) bool {
	if ctx == nil || ctx.Input == nil || ctx.Machine == nil || ctx.Motion == nil || ctx.ChangeState == nil {
		return false
	}
	if !ctx.Input.DashPressed || ctx.Motion.DashDistance <= 0 || ctx.Motion.DashSpeed <= 0 {
		return false
	}
	if spendAir {
		if ctx.Machine.AirActionsLeft <= 0 {
			return false
		}
		ctx.Machine.AirActionsLeft--
	}
	ctx.ChangeState(characterStateDashing)
	return true
}

// airJump spends one air action to retrigger the jump boost mid-air.
func airJump(ctx *component.CharacterStateContext) {
	if ctx == nil || ctx.Input == nil || ctx.Machine == nil || ctx.Motion == nil {
		return
	}
	if !ctx.Input.JumpPressed || ctx.Machine.AirActionsLeft <= 0 {
		return
	}
	if ctx.Velocity == nil || ctx.SetLinearBoost == nil || ctx.Gravity == nil {
		return
	}
	ctx.Machine.AirActionsLeft--
	jumpSpeed := math.Sqrt(2 * ctx.Gravity() * ctx.Motion.JumpHeight)
	_, vy := ctx.Velocity()
	ctx.SetLinearBoost(0, -jumpSpeed-vy)
}

// chaseVelocity returns the acceleration that moves current toward desired
// without overshooting within one step.
func chaseVelocity(desired, current, accel, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	dv := desired - current
	max := accel
	if need := math.Abs(dv) / dt; need < max {
		max = need
	}
	if dv < 0 {
		return -max
	}
	return max
}
