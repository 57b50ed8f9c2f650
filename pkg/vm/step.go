package vm

// exec dispatches a fetched instruction; the counter already points past it
func (i *Interpreter) exec(in Instruction) error {
	switch in.Kind {
	case KindPush:
		i.data.Push(in.Value)
		return nil

	case KindPop:
		_, err := i.pop()
		return err

	case KindDup:
		top, ok := i.data.Peek()
		if !ok {
			return StackUnderflow
		}
		i.data.Push(top)
		return nil

	case KindSwap:
		if !i.data.Swap(in.Depth) {
			return InvalidStackPosition
		}
		return nil

	case KindBinOp:
		return i.binop(in.Op)

	case KindBranch:
		return i.branch(in.Cond, in.Offset)

	case KindJump:
		return i.jump(in.Offset)

	case KindCall:
		return i.call(in.Target)

	case KindReturn:
		return i.ret()

	default:
		// the linker only emits known kinds
		panic("vm: unknown instruction kind " + in.Kind.String())
	}
}

func (i *Interpreter) pop() (Literal, error) {
	v, ok := i.data.Pop()
	if !ok {
		return 0, StackUnderflow
	}

	return v, nil
}

// pop2 pops the top value x, then the value y below it. x stays popped
// when y is missing.
func (i *Interpreter) pop2() (x, y Literal, err error) {
	if x, err = i.pop(); err != nil {
		return 0, 0, err
	}

	if y, err = i.pop(); err != nil {
		return 0, 0, err
	}

	return x, y, nil
}

func (i *Interpreter) binop(op Operation) error {
	x, y, err := i.pop2()
	if err != nil {
		return err
	}

	var v Literal
	switch op {
	case Add:
		v = x + y
	case Sub:
		v = x - y
	case Mul:
		v = x * y
	case Div:
		if y == 0 {
			return DivisionByZero
		}
		v = x / y
	case Mod:
		if y == 0 {
			return DivisionByZero
		}
		v = x % y
	}

	i.data.Push(v)
	return nil
}

func (i *Interpreter) branch(cond Condition, offset int) error {
	x, y, err := i.pop2()
	if err != nil {
		return err
	}

	if compare(cond, x, y) {
		return i.jump(offset)
	}

	return nil
}

func compare(cond Condition, x, y Literal) bool {
	switch cond {
	case Equal:
		return x == y
	case NotEqual:
		return x != y
	case GreaterThan:
		return x > y
	case LessThan:
		return x < y
	case GreaterEqual:
		return x >= y
	case LessEqual:
		return x <= y
	}

	return false
}

// jump moves relative to the jump instruction itself and never leaves the
// current function
func (i *Interpreter) jump(offset int) error {
	at := int(i.counter) - 1

	// compare offsets, not targets, so huge offsets cannot overflow
	if offset < int(i.currentFun.Start)-at {
		return JumpOffsetTooSmall
	}

	if offset > int(i.currentFun.End)-at {
		return JumpOffsetTooLarge
	}

	i.counter = Pos(at + offset)
	return nil
}

func (i *Interpreter) call(target Pos) error {
	f, idx, _, ok := i.functions.SearchStartPos(target)
	if !ok {
		return InvalidFunctionPosition
	}

	i.calls.Push(CallFrame{
		ReturnPos:     i.counter - 1,
		FunctionStart: i.currentFun.Start,
	})
	i.enter(f, idx)
	i.counter = f.Start

	return nil
}

func (i *Interpreter) ret() error {
	frame, ok := i.calls.Pop()
	if !ok {
		return Halted
	}

	f, idx, _, ok := i.functions.SearchStartPos(frame.FunctionStart)
	if !ok {
		return InvalidFunctionPosition
	}
	i.enter(f, idx)
	i.counter = frame.ReturnPos + 1

	return nil
}
