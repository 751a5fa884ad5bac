package command

import "fmt"

// ValidationError reports a command line that does not fit its command's
// schema. It is fatal: no engine is called.
type ValidationError struct {
	Command string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(cmd, format string, args ...any) *ValidationError {
	return &ValidationError{Command: cmd, Message: fmt.Sprintf(format, args...)}
}
