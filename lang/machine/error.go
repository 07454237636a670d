package machine

import "fmt"

// RuntimeError is a VM-detected failure (division by zero, wrong operand
// type, uncallable value, unresolved global, hash of an unhashable value,
// and similar) paired with a snapshot of the call stack active when it
// was raised, innermost frame first.
type RuntimeError struct {
	Message string
	Stack   []string
}

func (e *RuntimeError) Error() string { return e.Message }

// runtimeErrorf builds a *RuntimeError from format/args, capturing the
// current frame stack.
func (m *Machine) runtimeErrorf(format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Stack: m.stackTrace()}
}

// wrapErr wraps a plain error (typically from value.Equal/Compare/Hash or
// a hashmap operation) into a *RuntimeError carrying the current stack.
func (m *Machine) wrapErr(err error) *RuntimeError {
	return &RuntimeError{Message: err.Error(), Stack: m.stackTrace()}
}

// stackTrace walks the active frame stack from innermost to outermost,
// naming each frame's function the way a stack trace reports it.
func (m *Machine) stackTrace() []string {
	trace := make([]string, len(m.frames))
	for i := range m.frames {
		fr := m.frames[len(m.frames)-1-i]
		trace[i] = fr.fn.DisplayName()
	}
	return trace
}
