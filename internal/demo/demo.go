// Package demo builds the sample programs shipped with the CLI.
package demo

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"stackvm/pkg/vm"
)

var ErrUnknownProgram = errors.New("unknown demo program")

// SumBody adds up count values sitting below the count on the stack and
// leaves only the total. Stack on entry: x1 .. xn n.
//
//	0  push 0      x.. n acc
//	1  swap 1      x.. acc n
//	2  dup         loop: x.. acc n n
//	3  push 1
//	4  bgt +7      1 > n: done
//	5  push -1
//	6  add         x.. acc n-1
//	7  swap 2      x.. n-1 acc xn
//	8  add         x.. n-1 acc+xn
//	9  swap 1      x.. acc+xn n-1
//	10 jmp -8      loop
//	11 pop         done: acc
//	12 ret
var SumBody = []vm.Symbolic{
	vm.Push(0),
	vm.Swap(1),
	vm.Dup(),
	vm.Push(1),
	vm.Branch(vm.GreaterThan, 7),
	vm.Push(-1),
	vm.BinOp(vm.Add),
	vm.Swap(2),
	vm.BinOp(vm.Add),
	vm.Swap(1),
	vm.Jump(-8),
	vm.Pop(),
	vm.Return(),
}

// Sum returns a program whose main pushes xs and their count and calls sum
func Sum(xs ...vm.Literal) []vm.Definition {
	main := make([]vm.Symbolic, 0, len(xs)+2)
	for _, x := range xs {
		main = append(main, vm.Push(x))
	}
	main = append(main, vm.Push(vm.Literal(len(xs))), vm.Call("sum"))

	return []vm.Definition{
		vm.Def(vm.DefaultEntry, main...),
		vm.Def("sum", slices.Clone(SumBody)...),
	}
}

// Double returns a program computing x*2 + 5 through a call to double
func Double(x vm.Literal) []vm.Definition {
	return []vm.Definition{
		vm.Def(vm.DefaultEntry, vm.Push(x), vm.Call("double"), vm.Push(5), vm.BinOp(vm.Add)),
		vm.Def("double", vm.Push(2), vm.BinOp(vm.Mul)),
	}
}

var programs = map[string]func(args []vm.Literal) ([]vm.Definition, error){
	"sum": func(args []vm.Literal) ([]vm.Definition, error) {
		return Sum(args...), nil
	},
	"double": func(args []vm.Literal) ([]vm.Definition, error) {
		switch len(args) {
		case 0:
			return Double(1), nil
		case 1:
			return Double(args[0]), nil
		default:
			return nil, fmt.Errorf("double takes at most one argument, got %d", len(args))
		}
	},
}

// Lookup builds the named demo program from its arguments
func Lookup(name string, args []vm.Literal) ([]vm.Definition, error) {
	build, ok := programs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProgram, name, Names())
	}

	return build(args)
}

// Names lists the available demo programs
func Names() []string {
	names := make([]string, 0, len(programs))
	for name := range programs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
