package vm

import "fmt"

// Definition is a named function body whose calls refer to functions by name
type Definition struct {
	Name string
	Code []Symbolic
}

// Def builds a Definition
func Def(name string, code ...Symbolic) Definition {
	return Definition{Name: name, Code: code}
}

// Linker flattens definitions into one program and keeps the table of
// function ranges. Linking is additive: every batch is appended after the
// previous ones.
type Linker struct {
	functions FunctionTable
	program   []Instruction
}

// Link appends a batch of definitions. Calls may refer to any function
// linked earlier or to any function of the batch, in either direction.
//
// Linking is atomic: when any definition fails, neither the function table
// nor the program is changed.
func (l *Linker) Link(defs ...Definition) error {
	if err := l.checkNames(defs); err != nil {
		return err
	}

	// pass 1: assign ranges for the whole batch
	batch := make([]FunctionEntry, 0, len(defs))
	start := Pos(len(l.program))
	for _, def := range defs {
		end := start + Pos(len(def.Code)) - 1
		batch = append(batch, FunctionEntry{
			Function: Function{Start: start, End: end},
			Name:     def.Name,
		})
		start = end + 1
	}

	// pass 2: resolve call targets
	code := make([]Instruction, 0, int(start)-len(l.program))
	for _, def := range defs {
		for n, op := range def.Code {
			if !op.Valid() {
				return fmt.Errorf("%w: %q at %d", ErrInvalidInstruction, def.Name, n)
			}

			var target Pos
			if op.Kind == KindCall {
				f, ok := l.resolve(op.Target, batch)
				if !ok {
					return fmt.Errorf("%w: %q called from %q", ErrFunctionNameNotFound, op.Target, def.Name)
				}
				target = f.Start
			}
			code = append(code, retarget(op, target))
		}
	}

	l.functions.add(batch...)
	l.program = append(l.program, code...)

	return nil
}

// checkNames rejects empty bodies and names that would make lookups ambiguous
func (l *Linker) checkNames(defs []Definition) error {
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if len(def.Code) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyFunction, def.Name)
		}

		if _, _, dup := l.functions.SearchName(def.Name); dup || seen[def.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateFunctionName, def.Name)
		}
		seen[def.Name] = true
	}

	return nil
}

func (l *Linker) resolve(name string, batch []FunctionEntry) (Function, bool) {
	if f, _, ok := l.functions.SearchName(name); ok {
		return f, true
	}

	for _, e := range batch {
		if e.Name == name {
			return e.Function, true
		}
	}

	return Function{}, false
}

// Program returns a copy of the linked program
func (l *Linker) Program() []Instruction {
	return append([]Instruction(nil), l.program...)
}

// Functions returns the function table
func (l *Linker) Functions() *FunctionTable {
	return &l.functions
}

// restore replaces the linker state with an already linked program after
// checking that the table tiles the program exactly.
func (l *Linker) restore(entries []FunctionEntry, program []Instruction) error {
	var next Pos
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		f := e.Function
		if f.Start != next || f.End < f.Start {
			return fmt.Errorf("%w: entry %d %q has range %v, want start %d", ErrInvalidTable, i, e.Name, f, next)
		}

		if seen[e.Name] {
			return fmt.Errorf("%w: %w: %q", ErrInvalidTable, ErrDuplicateFunctionName, e.Name)
		}
		seen[e.Name] = true
		next = f.End + 1
	}

	if int(next) != len(program) {
		return fmt.Errorf("%w: table covers %d instructions, program has %d", ErrInvalidTable, next, len(program))
	}

	for pos, in := range program {
		if !in.Valid() {
			return fmt.Errorf("%w: %v at %d", ErrInvalidInstruction, in, pos)
		}
	}

	l.functions = FunctionTable{entries: append([]FunctionEntry(nil), entries...)}
	l.program = append([]Instruction(nil), program...)

	return nil
}
