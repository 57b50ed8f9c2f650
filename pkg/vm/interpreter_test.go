package vm_test

import (
	"errors"
	"math"
	"testing"

	"stackvm/internal/demo"
	"stackvm/pkg/vm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, defs ...vm.Definition) ([]vm.Literal, vm.Reason) {
	t.Helper()

	it := vm.NewInterpreter()
	require.NoError(t, it.Link(defs...))

	stack, err := it.Run()
	require.Error(t, err)

	reason, ok := vm.ReasonOf(err)
	require.True(t, ok, "unexpected error %v", err)
	return stack, reason
}

func TestEmpty(t *testing.T) {
	stack, err := vm.NewInterpreter().Run()
	assert.Empty(t, stack)
	assert.ErrorIs(t, err, vm.ThereIsNoCode)
	assert.False(t, vm.IsHalted(err))
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name   string
		defs   []vm.Definition
		stack  []vm.Literal
		reason vm.Reason
	}{
		{
			name:   "add",
			defs:   []vm.Definition{vm.Def("main", vm.Push(15), vm.Push(6), vm.BinOp(vm.Add))},
			stack:  []vm.Literal{21},
			reason: vm.Halted,
		},
		{
			name:   "jump one is a noop",
			defs:   []vm.Definition{vm.Def("main", vm.Jump(1), vm.Return())},
			stack:  []vm.Literal{},
			reason: vm.Halted,
		},
		{
			name:   "double",
			defs:   demo.Double(27),
			stack:  []vm.Literal{59},
			reason: vm.Halted,
		},
		{
			name:   "sum of nothing",
			defs:   demo.Sum(),
			stack:  []vm.Literal{0},
			reason: vm.Halted,
		},
		{
			name:   "sum of one",
			defs:   demo.Sum(5),
			stack:  []vm.Literal{5},
			reason: vm.Halted,
		},
		{
			name:   "sum of three",
			defs:   demo.Sum(18, 0, -2),
			stack:  []vm.Literal{16},
			reason: vm.Halted,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stack, reason := run(t, test.defs...)
			assert.Equal(t, test.reason, reason)
			assert.Equal(t, test.stack, stack)
		})
	}
}

func TestStackOperations(t *testing.T) {
	tests := []struct {
		name   string
		code   []vm.Symbolic
		stack  []vm.Literal
		reason vm.Reason
	}{
		{"pop", []vm.Symbolic{vm.Push(1), vm.Push(2), vm.Pop()}, []vm.Literal{1}, vm.Halted},
		{"pop empty", []vm.Symbolic{vm.Pop()}, []vm.Literal{}, vm.StackUnderflow},
		{"dup", []vm.Symbolic{vm.Push(4), vm.Dup()}, []vm.Literal{4, 4}, vm.Halted},
		{"dup empty", []vm.Symbolic{vm.Dup()}, []vm.Literal{}, vm.StackUnderflow},
		{"swap self", []vm.Symbolic{vm.Push(1), vm.Push(2), vm.Swap(0)}, []vm.Literal{1, 2}, vm.Halted},
		{"swap deep", []vm.Symbolic{vm.Push(1), vm.Push(2), vm.Push(3), vm.Swap(2)}, []vm.Literal{3, 2, 1}, vm.Halted},
		{"swap too deep", []vm.Symbolic{vm.Push(1), vm.Push(2), vm.Swap(2)}, []vm.Literal{1, 2}, vm.InvalidStackPosition},
		{"swap empty", []vm.Symbolic{vm.Swap(0)}, []vm.Literal{}, vm.InvalidStackPosition},
		{"binop one operand", []vm.Symbolic{vm.Push(1), vm.BinOp(vm.Add)}, []vm.Literal{}, vm.StackUnderflow},
		{"binop keeps values below", []vm.Symbolic{vm.Push(7), vm.Push(1), vm.Pop(), vm.Push(2), vm.BinOp(vm.Sub), vm.BinOp(vm.Add)}, []vm.Literal{}, vm.StackUnderflow},
		{"binop no operand", []vm.Symbolic{vm.BinOp(vm.Mul)}, []vm.Literal{}, vm.StackUnderflow},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stack, reason := run(t, vm.Def("main", test.code...))
			assert.Equal(t, test.reason, reason)
			assert.Equal(t, test.stack, stack)
		})
	}
}

// The top of the stack is the left operand: push y, push x, op gives x op y.
func TestArithmetic(t *testing.T) {
	tests := []struct {
		op     vm.Operation
		y, x   vm.Literal
		want   vm.Literal
		reason vm.Reason
	}{
		{vm.Add, 3, 4, 7, vm.Halted},
		{vm.Mul, -3, 4, -12, vm.Halted},
		{vm.Sub, 3, 10, 7, vm.Halted},
		{vm.Div, 3, 10, 3, vm.Halted},
		{vm.Div, 3, -10, -3, vm.Halted},
		{vm.Mod, 3, 10, 1, vm.Halted},
		{vm.Div, 0, 10, 0, vm.DivisionByZero},
		{vm.Mod, 0, 10, 0, vm.DivisionByZero},
	}

	for _, test := range tests {
		t.Run(test.op.String(), func(t *testing.T) {
			stack, reason := run(t, vm.Def("main", vm.Push(test.y), vm.Push(test.x), vm.BinOp(test.op)))
			require.Equal(t, test.reason, reason)
			if reason == vm.Halted {
				assert.Equal(t, []vm.Literal{test.want}, stack)
			} else {
				// operands were consumed before the fault
				assert.Empty(t, stack)
			}
		})
	}
}

func TestArithmeticWraps(t *testing.T) {
	stack, reason := run(t, vm.Def("main", vm.Push(1), vm.Push(2147483647), vm.BinOp(vm.Add)))
	assert.Equal(t, vm.Halted, reason)
	assert.Equal(t, []vm.Literal{-2147483648}, stack)
}

func TestBranchConditions(t *testing.T) {
	tests := []struct {
		cond  vm.Condition
		y, x  vm.Literal
		taken bool
	}{
		{vm.Equal, 2, 2, true},
		{vm.Equal, 2, 3, false},
		{vm.NotEqual, 2, 3, true},
		{vm.NotEqual, 3, 3, false},
		{vm.GreaterThan, 2, 3, true},
		{vm.GreaterThan, 3, 2, false},
		{vm.LessThan, 3, 2, true},
		{vm.LessThan, 2, 2, false},
		{vm.GreaterEqual, 2, 2, true},
		{vm.GreaterEqual, 3, 2, false},
		{vm.LessEqual, 2, 2, true},
		{vm.LessEqual, 1, 2, false},
	}

	for _, test := range tests {
		// taken: skip the push 100 and land on push 200
		code := []vm.Symbolic{
			vm.Push(test.y),
			vm.Push(test.x),
			vm.Branch(test.cond, 2),
			vm.Push(100),
			vm.Push(200),
		}
		stack, reason := run(t, vm.Def("main", code...))
		require.Equal(t, vm.Halted, reason, "%v %d %d", test.cond, test.x, test.y)

		want := []vm.Literal{100, 200}
		if test.taken {
			want = []vm.Literal{200}
		}
		assert.Equal(t, want, stack, "%v x=%d y=%d", test.cond, test.x, test.y)
	}
}

func TestBranchUnderflow(t *testing.T) {
	stack, reason := run(t, vm.Def("main", vm.Push(1), vm.Branch(vm.Equal, 1)))
	assert.Equal(t, vm.StackUnderflow, reason)
	assert.Equal(t, []vm.Literal{}, stack)

	stack, reason = run(t, vm.Def("main", vm.Push(5), vm.Push(1), vm.Branch(vm.Equal, 1)))
	assert.Equal(t, vm.Halted, reason)
	assert.Equal(t, []vm.Literal{}, stack)
}

func TestJumpBounds(t *testing.T) {
	tests := []struct {
		name   string
		defs   []vm.Definition
		reason vm.Reason
	}{
		{
			name:   "before start",
			defs:   []vm.Definition{vm.Def("main", vm.Push(1), vm.Jump(-2))},
			reason: vm.JumpOffsetTooSmall,
		},
		{
			name:   "past end",
			defs:   []vm.Definition{vm.Def("main", vm.Jump(1))},
			reason: vm.JumpOffsetTooLarge,
		},
		{
			// position 0 exists program-wide but belongs to main
			name: "into the previous function",
			defs: []vm.Definition{
				vm.Def("main", vm.Call("f")),
				vm.Def("f", vm.Jump(-1)),
			},
			reason: vm.JumpOffsetTooSmall,
		},
		{
			name: "into the next function",
			defs: []vm.Definition{
				vm.Def("main", vm.Jump(2), vm.Return()),
				vm.Def("f", vm.Push(1)),
			},
			reason: vm.JumpOffsetTooLarge,
		},
		{
			name: "taken branch past end",
			defs: []vm.Definition{
				vm.Def("main", vm.Push(1), vm.Push(1), vm.Branch(vm.Equal, 5)),
				vm.Def("f", vm.Push(1), vm.Push(1), vm.Push(1)),
			},
			reason: vm.JumpOffsetTooLarge,
		},
		{
			name: "untaken branch is not checked",
			defs: []vm.Definition{
				vm.Def("main", vm.Push(1), vm.Push(2), vm.Branch(vm.Equal, 50)),
			},
			reason: vm.Halted,
		},
		{
			name:   "largest offset",
			defs:   []vm.Definition{vm.Def("main", vm.Push(1), vm.Push(2), vm.Jump(math.MaxInt))},
			reason: vm.JumpOffsetTooLarge,
		},
		{
			name:   "smallest offset",
			defs:   []vm.Definition{vm.Def("main", vm.Push(1), vm.Push(2), vm.Jump(math.MinInt))},
			reason: vm.JumpOffsetTooSmall,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, reason := run(t, test.defs...)
			assert.Equal(t, test.reason, reason)
		})
	}
}

func TestCallTargets(t *testing.T) {
	it, err := vm.Restore(
		[]vm.FunctionEntry{
			{Function: vm.Function{Start: 0, End: 1}, Name: "main"},
			{Function: vm.Function{Start: 2, End: 3}, Name: "f"},
		},
		[]vm.Instruction{
			{Kind: vm.KindPush, Value: 1},
			{Kind: vm.KindCall, Target: 3}, // middle of f
			{Kind: vm.KindPush, Value: 2},
			{Kind: vm.KindPush, Value: 3},
		},
	)
	require.NoError(t, err)

	stack, err := it.Run()
	assert.ErrorIs(t, err, vm.InvalidFunctionPosition)
	assert.Equal(t, []vm.Literal{1}, stack)

	var fault *vm.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, "main", fault.Function)
	assert.Equal(t, vm.Pos(2), fault.Counter)
}

func TestNestedCalls(t *testing.T) {
	stack, reason := run(t,
		vm.Def("main", vm.Push(3), vm.Call("square"), vm.Call("inc"), vm.Return(), vm.Push(99)),
		vm.Def("square", vm.Dup(), vm.BinOp(vm.Mul), vm.Call("inc")),
		vm.Def("inc", vm.Push(1), vm.BinOp(vm.Add), vm.Return(), vm.Push(99)),
	)
	assert.Equal(t, vm.Halted, reason)
	// (3*3 + 1) + 1
	assert.Equal(t, []vm.Literal{11}, stack)
}

func TestRecursion(t *testing.T) {
	// countdown: n -> pushes n, n-1, .. 1 and a trailing 0
	stack, reason := run(t,
		vm.Def("main", vm.Push(3), vm.Call("down")),
		vm.Def("down",
			vm.Dup(),
			vm.Push(0),
			vm.Branch(vm.Equal, 5), // 0 == n: return
			vm.Dup(),
			vm.Push(-1),
			vm.BinOp(vm.Add),
			vm.Call("down"),
			vm.Return(),
		),
	)
	assert.Equal(t, vm.Halted, reason)
	assert.Equal(t, []vm.Literal{3, 2, 1, 0}, stack)
}

func TestEntry(t *testing.T) {
	defs := []vm.Definition{
		vm.Def("first", vm.Push(1)),
		vm.Def("main", vm.Push(2)),
		vm.Def("other", vm.Push(3)),
	}

	tests := []struct {
		entry string
		want  []vm.Literal
	}{
		{vm.DefaultEntry, []vm.Literal{2}},
		{"other", []vm.Literal{3}},
		// unknown entries fall back to the first linked function
		{"nope", []vm.Literal{1}},
	}

	for _, test := range tests {
		it := vm.NewInterpreter(vm.WithEntry(test.entry))
		require.NoError(t, it.Link(defs...))

		stack, err := it.Run()
		assert.True(t, vm.IsHalted(err), "%s: %v", test.entry, err)
		assert.Equal(t, test.want, stack, test.entry)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	it := vm.NewInterpreter()
	require.NoError(t, it.Link(demo.Sum(1, 2, 3)...))

	for i := 0; i < 2; i++ {
		stack, err := it.Run()
		require.True(t, vm.IsHalted(err))
		assert.Equal(t, []vm.Literal{6}, stack)
		assert.Zero(t, it.CallDepth())
	}

	it.Reset()
	assert.Empty(t, it.Stack())
	assert.Equal(t, vm.Pos(0), it.PC())
}

func TestFaultMessage(t *testing.T) {
	it := vm.NewInterpreter()
	require.NoError(t, it.Link(vm.Def("main", vm.Pop())))

	_, err := it.Run()
	assert.EqualError(t, err, "stack underflow in main at 1")

	_, err = vm.NewInterpreter().Run()
	assert.EqualError(t, err, "there is no code")
}

func TestReasonOf(t *testing.T) {
	reason, ok := vm.ReasonOf(&vm.Fault{Reason: vm.DivisionByZero, Function: "main"})
	assert.True(t, ok)
	assert.Equal(t, vm.DivisionByZero, reason)

	reason, ok = vm.ReasonOf(errors.New("disk full"))
	assert.False(t, ok)
	assert.Equal(t, vm.NoReason, reason)
	assert.NotEqual(t, vm.Halted, reason)
	assert.False(t, vm.IsHalted(errors.New("disk full")))

	reason, ok = vm.ReasonOf(nil)
	assert.False(t, ok)
	assert.Equal(t, vm.NoReason, reason)
}

func TestRestoreRejectsBadTables(t *testing.T) {
	prog := []vm.Instruction{{Kind: vm.KindPush, Value: 1}, {Kind: vm.KindReturn}}

	tests := []struct {
		name    string
		entries []vm.FunctionEntry
		program []vm.Instruction
		err     error
	}{
		{
			name:    "gap",
			entries: []vm.FunctionEntry{{Function: vm.Function{Start: 1, End: 1}, Name: "main"}},
			program: prog,
			err:     vm.ErrInvalidTable,
		},
		{
			name:    "short",
			entries: []vm.FunctionEntry{{Function: vm.Function{Start: 0, End: 0}, Name: "main"}},
			program: prog,
			err:     vm.ErrInvalidTable,
		},
		{
			name: "duplicate",
			entries: []vm.FunctionEntry{
				{Function: vm.Function{Start: 0, End: 0}, Name: "main"},
				{Function: vm.Function{Start: 1, End: 1}, Name: "main"},
			},
			program: prog,
			err:     vm.ErrDuplicateFunctionName,
		},
		{
			name:    "bad instruction",
			entries: []vm.FunctionEntry{{Function: vm.Function{Start: 0, End: 0}, Name: "main"}},
			program: []vm.Instruction{{Kind: vm.KindBranch, Cond: vm.Condition(17)}},
			err:     vm.ErrInvalidInstruction,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := vm.Restore(test.entries, test.program)
			assert.ErrorIs(t, err, test.err)
		})
	}
}
