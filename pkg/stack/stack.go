package stack

// Stack is a LIFO of values. The zero value is an empty stack ready to use.
type Stack[T any] struct {
	a []T
}

// NewStack creates a new stack holding elm, the last element on top
func NewStack[T any](elm ...T) *Stack[T] {
	s := &Stack[T]{a: make([]T, 0, len(elm))}
	s.a = append(s.a, elm...)
	return s
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack.
// ok is false when the stack is empty.
func (s *Stack[T]) Pop() (elm T, ok bool) {
	n := len(s.a)
	if n == 0 {
		return elm, false
	}

	elm = s.a[n-1]
	s.a = s.a[:n-1]
	return elm, true
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (elm T, ok bool) {
	n := len(s.a)
	if n == 0 {
		return elm, false
	}

	return s.a[n-1], true
}

// Swap exchanges the top element with the one depth positions below it.
// Swap(0) is a no-op on a non-empty stack.
func (s *Stack[T]) Swap(depth int) bool {
	n := len(s.a)
	if depth < 0 || depth >= n {
		return false
	}

	top := n - 1
	s.a[top], s.a[top-depth] = s.a[top-depth], s.a[top]
	return true
}

// Size returns the number of elements on the stack
func (s *Stack[T]) Size() int {
	return len(s.a)
}

// Clear empties the stack, keeping its capacity
func (s *Stack[T]) Clear() {
	clear(s.a)
	s.a = s.a[:0]
}

// Array returns a copy of the elements, bottom first
func (s *Stack[T]) Array() []T {
	return append(make([]T, 0, len(s.a)), s.a...)
}
