package shader

import "fmt"

// The recompiler fails in exactly three ways. All of them abort the
// compilation; the distinction exists for diagnostics only.

// NotImplementedError marks an opcode, pattern, or capability combination
// that is recognized but not yet supported.
type NotImplementedError struct {
	msg string
}

func (e *NotImplementedError) Error() string { return "not implemented: " + e.msg }

// NotImplemented formats a NotImplementedError.
func NotImplemented(format string, args ...any) error {
	return &NotImplementedError{msg: fmt.Sprintf(format, args...)}
}

// InvalidArgumentError marks an input value outside its declared domain.
type InvalidArgumentError struct {
	msg string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.msg }

// InvalidArgument formats an InvalidArgumentError.
func InvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{msg: fmt.Sprintf(format, args...)}
}

// LogicError marks a broken internal invariant.
type LogicError struct {
	msg string
}

func (e *LogicError) Error() string { return "logic error: " + e.msg }

// Logic formats a LogicError.
func Logic(format string, args ...any) error {
	return &LogicError{msg: fmt.Sprintf(format, args...)}
}
