package vm

// StepTrace describes the interpreter right before a step executes
type StepTrace struct {
	Function    string
	Counter     Pos
	Instruction Instruction
	Implicit    bool // implicit return past the end of Function; Instruction is unset
	Stack       []Literal
}

// HaltTrace describes the interpreter once a run terminated
type HaltTrace struct {
	Function string
	Counter  Pos
	Stack    []Literal
	Reason   Reason
}

// Observer receives diagnostic traces. It only ever sees copies of the
// interpreter state.
type Observer interface {
	Step(StepTrace)
	Halt(HaltTrace)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped
type ObserverFuncs struct {
	OnStep func(StepTrace)
	OnHalt func(HaltTrace)
}

func (o ObserverFuncs) Step(t StepTrace) {
	if o.OnStep != nil {
		o.OnStep(t)
	}
}

func (o ObserverFuncs) Halt(t HaltTrace) {
	if o.OnHalt != nil {
		o.OnHalt(t)
	}
}

type nopObserver struct{}

func (nopObserver) Step(StepTrace) {}
func (nopObserver) Halt(HaltTrace) {}
