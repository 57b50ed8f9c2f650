package vm

import (
	"errors"
	"fmt"
)

// Link-time errors
var (
	ErrFunctionNameNotFound  = errors.New("function name not found")
	ErrDuplicateFunctionName = errors.New("duplicate function name")
	ErrEmptyFunction         = errors.New("function has no code")
	ErrInvalidInstruction    = errors.New("invalid instruction")
	ErrInvalidTable          = errors.New("invalid function table")
)

// Reason is the terminal condition of a run. Halted is the only
// non-faulting reason.
type Reason int

const (
	Halted Reason = iota
	StackUnderflow
	InvalidStackPosition
	JumpOffsetTooSmall
	JumpOffsetTooLarge
	InvalidFunctionPosition
	DivisionByZero
	ThereIsNoCode

	// NoReason is what ReasonOf reports for errors that did not come from a run
	NoReason Reason = -1
)

var reasonNames = map[Reason]string{
	Halted:                  "halted",
	StackUnderflow:          "stack underflow",
	InvalidStackPosition:    "invalid stack position",
	JumpOffsetTooSmall:      "jump offset too small",
	JumpOffsetTooLarge:      "jump offset too large",
	InvalidFunctionPosition: "invalid function position",
	DivisionByZero:          "division by zero",
	ThereIsNoCode:           "there is no code",
	NoReason:                "no reason",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(r))
}

func (r Reason) Error() string {
	return r.String()
}

// Fault reports where a run terminated and why
type Fault struct {
	Reason   Reason
	Function string // empty when no function was entered
	Counter  Pos
}

func (f *Fault) Error() string {
	if f.Function == "" {
		return f.Reason.String()
	}

	return fmt.Sprintf("%s in %s at %d", f.Reason, f.Function, f.Counter)
}

func (f *Fault) Unwrap() error {
	return f.Reason
}

// ReasonOf extracts the terminal reason from an error returned by Run.
// For any other error it returns NoReason and false.
func ReasonOf(err error) (Reason, bool) {
	var r Reason
	if errors.As(err, &r) {
		return r, true
	}

	return NoReason, false
}

// IsHalted reports whether err is the successful termination of a run
func IsHalted(err error) bool {
	return errors.Is(err, Halted)
}
