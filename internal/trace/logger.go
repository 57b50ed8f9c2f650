// Package trace provides observers that report interpreter steps.
package trace

import (
	"stackvm/pkg/vm"

	"github.com/charmbracelet/log"
)

// Logger writes one debug line per step and a summary line at halt
type Logger struct {
	log *log.Logger
}

// NewLogger traces through l. Caller reporting is turned off since every
// line would point into this file.
func NewLogger(l *log.Logger) *Logger {
	l.SetReportCaller(false)
	return &Logger{log: l}
}

func (o *Logger) Step(t vm.StepTrace) {
	if t.Implicit {
		o.log.Debug("implicit return", "fn", t.Function, "pc", t.Counter, "stack", t.Stack)
		return
	}

	o.log.Debug("step", "fn", t.Function, "pc", t.Counter, "op", t.Instruction.String(), "stack", t.Stack)
}

func (o *Logger) Halt(t vm.HaltTrace) {
	if t.Reason == vm.Halted {
		o.log.Info("halted", "fn", t.Function, "pc", t.Counter, "stack", t.Stack)
		return
	}

	o.log.Error("fault", "reason", t.Reason.String(), "fn", t.Function, "pc", t.Counter, "stack", t.Stack)
}
