package component

// CharacterState defines the interface for locomotion state machine states.
// Each state owns its own enter/exit, input handling, and update logic.
type CharacterState interface {
	Name() string
	Enter(ctx *CharacterStateContext)
	Exit(ctx *CharacterStateContext)
	HandleInput(ctx *CharacterStateContext)
	Update(ctx *CharacterStateContext)
}

// CharacterStateContext provides controlled access to input, motion tuning,
// and the per-tick motor for a state. It intentionally uses callbacks to
// avoid tight coupling to the ECS package.
type CharacterStateContext struct {
	Input   *Input
	Motion  *CharacterMotion
	Machine *CharacterStateMachine

	Dt              func() float64
	Grounded        func() bool
	Crouching       func() bool
	Proximity       func() (float64, bool)
	Velocity        func() (x, y float64)
	SurfaceVelocity func() (x, y float64)
	Gravity         func() float64
	SetLinearBoost  func(x, y float64)
	SetLinearAccel  func(x, y float64)
	ChangeState     func(state CharacterState)
}

// CharacterStateMachine stores the active and pending states plus the jump
// and dash bookkeeping shared between states. Air jumps and air dashes
// spend from the same AirActionsLeft pool.
type CharacterStateMachine struct {
	State          CharacterState
	Pending        CharacterState
	AirActionsLeft int

	// Facing is the last nonzero horizontal input direction (-1 or 1) and
	// picks the dash direction when there is no held input.
	Facing        float64
	DashDir       float64
	DashRemaining float64
}

var CharacterStateMachineComponent = NewComponent[CharacterStateMachine]()
