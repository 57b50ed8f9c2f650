package vm

import (
	"stackvm/pkg/stack"
)

// DefaultEntry is the function a run starts in unless WithEntry says otherwise
const DefaultEntry = "main"

// CallFrame records where to resume once the callee returns
type CallFrame struct {
	ReturnPos     Pos // position of the call instruction
	FunctionStart Pos // start of the caller
}

// Interpreter links and executes a program. It is not safe for concurrent use.
type Interpreter struct {
	Linker

	counter    Pos      // next instruction to execute
	currentFun Function // bounds of the function owning counter
	currentIdx int      // table index of currentFun

	data  stack.Stack[Literal]
	calls stack.Stack[CallFrame]

	entry    string
	observer Observer
}

type Option func(*Interpreter)

// WithEntry sets the name of the function a run starts in
func WithEntry(name string) Option {
	return func(i *Interpreter) { i.entry = name }
}

// WithObserver installs a diagnostic observer
func WithObserver(o Observer) Option {
	return func(i *Interpreter) { i.observer = o }
}

// NewInterpreter creates an interpreter with an empty program
func NewInterpreter(opts ...Option) *Interpreter {
	it := &Interpreter{
		currentIdx: -1,
		entry:      DefaultEntry,
	}

	for _, o := range opts {
		o(it)
	}

	if it.observer == nil {
		it.observer = nopObserver{}
	}

	return it
}

// Restore creates an interpreter around an already linked program
func Restore(entries []FunctionEntry, program []Instruction, opts ...Option) (*Interpreter, error) {
	it := NewInterpreter(opts...)
	if err := it.restore(entries, program); err != nil {
		return nil, err
	}

	return it, nil
}

// Entry returns the name of the function a run starts in
func (i *Interpreter) Entry() string {
	return i.entry
}

// Reset clears runtime state (stacks, counter); the linked program is kept
func (i *Interpreter) Reset() {
	i.counter = 0
	i.currentFun = Function{}
	i.currentIdx = -1
	i.data.Clear()
	i.calls.Clear()
}

// Run executes from the entry function until a terminal condition.
// It returns the data stack at that point and an error that is never nil:
// a *Fault wrapping Halted on success, or the faulting Reason.
func (i *Interpreter) Run() ([]Literal, error) {
	i.Reset()

	if len(i.program) == 0 {
		return i.halt(ThereIsNoCode)
	}

	f, idx, ok := i.functions.SearchName(i.entry)
	if !ok {
		f, idx = i.functions.At(0).Function, 0
	}
	i.enter(f, idx)
	i.counter = f.Start

	for {
		if err := i.cycle(); err != nil {
			reason, _ := ReasonOf(err)
			return i.halt(reason)
		}
	}
}

// PC returns the program counter
func (i *Interpreter) PC() Pos {
	return i.counter
}

// Stack returns a copy of the data stack, bottom first
func (i *Interpreter) Stack() []Literal {
	return i.data.Array()
}

// CallDepth returns the number of pending call frames
func (i *Interpreter) CallDepth() int {
	return i.calls.Size()
}

// cycle fetches and executes one instruction, or performs the implicit
// return once the counter ran past the end of the current function
func (i *Interpreter) cycle() error {
	if i.counter > i.currentFun.End {
		i.observer.Step(StepTrace{
			Function: i.funName(),
			Counter:  i.counter,
			Implicit: true,
			Stack:    i.data.Array(),
		})
		return i.ret()
	}

	in := i.program[i.counter]
	i.observer.Step(StepTrace{
		Function:    i.funName(),
		Counter:     i.counter,
		Instruction: in,
		Stack:       i.data.Array(),
	})

	i.counter++
	return i.exec(in)
}

func (i *Interpreter) halt(reason Reason) ([]Literal, error) {
	fault := &Fault{Reason: reason, Function: i.funName(), Counter: i.counter}
	final := i.data.Array()

	i.observer.Halt(HaltTrace{
		Function: fault.Function,
		Counter:  fault.Counter,
		Stack:    i.data.Array(),
		Reason:   reason,
	})

	return final, fault
}

func (i *Interpreter) enter(f Function, idx int) {
	i.currentFun = f
	i.currentIdx = idx
}

func (i *Interpreter) funName() string {
	if i.currentIdx < 0 || i.currentIdx >= i.functions.Len() {
		return ""
	}

	return i.functions.At(i.currentIdx).Name
}
