package vm

import (
	"fmt"
	"strconv"
)

// Literal is the only runtime value type
type Literal = int32

// Pos is an absolute position in the linked program
type Pos int

// Target is the representation of a call target: a function name before
// linking, an absolute program position after.
type Target interface {
	~string | ~int
}

type Kind int

const (
	KindPush Kind = iota
	KindPop
	KindDup
	KindSwap
	KindBinOp
	KindBranch
	KindJump
	KindCall
	KindReturn
)

var kindNames = map[Kind]string{
	KindPush:   "push",
	KindPop:    "pop",
	KindDup:    "dup",
	KindSwap:   "swap",
	KindBinOp:  "binop",
	KindBranch: "branch",
	KindJump:   "jmp",
	KindCall:   "call",
	KindReturn: "ret",
}

// String returns the mnemonic of the kind
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(k))
}

// Operation is an arithmetic operator applied by BinOp
type Operation int

const (
	Add Operation = iota
	Sub
	Mul
	Div
	Mod
)

var operationNames = map[Operation]string{
	Add: "add",
	Sub: "sub",
	Mul: "mul",
	Div: "div",
	Mod: "mod",
}

func (o Operation) String() string {
	if s, ok := operationNames[o]; ok {
		return s
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(o))
}

// Condition is the comparator applied by Branch
type Condition int

const (
	Equal Condition = iota
	NotEqual
	GreaterThan
	LessThan
	GreaterEqual
	LessEqual
)

var conditionNames = map[Condition]string{
	Equal:        "beq",
	NotEqual:     "bne",
	GreaterThan:  "bgt",
	LessThan:     "blt",
	GreaterEqual: "bge",
	LessEqual:    "ble",
}

func (c Condition) String() string {
	if s, ok := conditionNames[c]; ok {
		return s
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(c))
}

// Opcode is a single instruction. Only the fields belonging to Kind are
// meaningful; the rest stay zero.
type Opcode[T Target] struct {
	Kind Kind

	Value  Literal   // push
	Depth  int       // swap
	Op     Operation // binop
	Cond   Condition // branch
	Offset int       // branch, jmp
	Target T         // call
}

// Symbolic is an instruction whose call target is a function name
type Symbolic = Opcode[string]

// Instruction is a linked instruction whose call target is a program position
type Instruction = Opcode[Pos]

func Push(v Literal) Symbolic { return Symbolic{Kind: KindPush, Value: v} }
func Pop() Symbolic { return Symbolic{Kind: KindPop} }
func Dup() Symbolic { return Symbolic{Kind: KindDup} }
func Swap(depth int) Symbolic { return Symbolic{Kind: KindSwap, Depth: depth} }
func BinOp(op Operation) Symbolic {
	return Symbolic{Kind: KindBinOp, Op: op}
}
func Branch(cond Condition, offset int) Symbolic {
	return Symbolic{Kind: KindBranch, Cond: cond, Offset: offset}
}
func Jump(offset int) Symbolic { return Symbolic{Kind: KindJump, Offset: offset} }
func Call(name string) Symbolic { return Symbolic{Kind: KindCall, Target: name} }
func Return() Symbolic { return Symbolic{Kind: KindReturn} }

// retarget copies o, replacing its call target representation
func retarget[T, U Target](o Opcode[T], target U) Opcode[U] {
	return Opcode[U]{
		Kind:   o.Kind,
		Value:  o.Value,
		Depth:  o.Depth,
		Op:     o.Op,
		Cond:   o.Cond,
		Offset: o.Offset,
		Target: target,
	}
}

// Valid reports whether the kind and its operator or condition are known
func (o Opcode[T]) Valid() bool {
	switch o.Kind {
	case KindBinOp:
		_, ok := operationNames[o.Op]
		return ok
	case KindBranch:
		_, ok := conditionNames[o.Cond]
		return ok
	}

	_, ok := kindNames[o.Kind]
	return ok
}

// String renders the instruction in assembler syntax
func (o Opcode[T]) String() string {
	switch o.Kind {
	case KindPush:
		return "push " + strconv.Itoa(int(o.Value))
	case KindSwap:
		return "swap " + strconv.Itoa(o.Depth)
	case KindBinOp:
		return o.Op.String()
	case KindBranch:
		return o.Cond.String() + " " + formatOffset(o.Offset)
	case KindJump:
		return "jmp " + formatOffset(o.Offset)
	case KindCall:
		return fmt.Sprintf("call %v", o.Target)
	default:
		return o.Kind.String()
	}
}

func formatOffset(off int) string {
	if off > 0 {
		return "+" + strconv.Itoa(off)
	}

	return strconv.Itoa(off)
}
