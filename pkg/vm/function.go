package vm

import "fmt"

// Function is the inclusive range of program positions a function occupies
type Function struct {
	Start Pos
	End   Pos
}

// Len returns the number of instructions in the function
func (f Function) Len() int {
	return int(f.End-f.Start) + 1
}

// Contains reports whether pos lies within the function
func (f Function) Contains(pos Pos) bool {
	return pos >= f.Start && pos <= f.End
}

func (f Function) String() string {
	return fmt.Sprintf("[%d, %d]", f.Start, f.End)
}

// FunctionEntry is one row of the function table
type FunctionEntry struct {
	Function Function
	Name     string
}

// FunctionTable maps function names to their ranges in link order.
// Entries are never modified once added.
type FunctionTable struct {
	entries []FunctionEntry
}

// SearchName returns the first function called name and its table index
func (t *FunctionTable) SearchName(name string) (Function, int, bool) {
	for i, e := range t.entries {
		if e.Name == name {
			return e.Function, i, true
		}
	}

	return Function{}, -1, false
}

// SearchStartPos returns the function that begins exactly at pos
func (t *FunctionTable) SearchStartPos(pos Pos) (Function, int, string, bool) {
	for i, e := range t.entries {
		if e.Function.Start == pos {
			return e.Function, i, e.Name, true
		}
	}

	return Function{}, -1, "", false
}

// Len returns the number of linked functions
func (t *FunctionTable) Len() int {
	return len(t.entries)
}

// At returns the i-th entry in link order
func (t *FunctionTable) At(i int) FunctionEntry {
	return t.entries[i]
}

// Entries returns a copy of the table in link order
func (t *FunctionTable) Entries() []FunctionEntry {
	return append([]FunctionEntry(nil), t.entries...)
}

func (t *FunctionTable) add(entries ...FunctionEntry) {
	t.entries = append(t.entries, entries...)
}
