package asm

import (
	"fmt"
	"io"
	"strings"

	"stackvm/pkg/vm"
)

// Disassemble renders definitions back into assembly source
func Disassemble(defs []vm.Definition) string {
	var sb strings.Builder
	for n, def := range defs {
		if n > 0 {
			sb.WriteByte('\n')
		}
		writeFunction(&sb, def.Name, def.Code)
	}

	return sb.String()
}

// DisassembleLinked renders a linked program one function at a time,
// annotating every instruction with its absolute position
func DisassembleLinked(w io.Writer, entries []vm.FunctionEntry, program []vm.Instruction) {
	for n, e := range entries {
		if n > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "func %s // %v\n", e.Name, e.Function)
		for pos := e.Function.Start; pos <= e.Function.End; pos++ {
			fmt.Fprintf(w, "    %-16s // %d\n", program[pos], pos)
		}
		fmt.Fprintln(w, "end")
	}
}

func writeFunction(sb *strings.Builder, name string, code []vm.Symbolic) {
	fmt.Fprintf(sb, "func %s\n", name)
	for _, op := range code {
		fmt.Fprintf(sb, "    %s\n", op)
	}
	sb.WriteString("end\n")
}
