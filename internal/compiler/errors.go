// Package compiler implements the TTK-91 source (k91) to B91 translator:
// lexing, a symbol table, four ordered resolution passes, and the final
// code-generation pass (spec §4.1).
package compiler

import "fmt"

// CompileError is the compiler's sole error shape: a message tied to the
// offending source line (spec §4.1 "Errors"). The compiler never partially
// emits on failure.
type CompileError struct {
	Line int
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func errf(line int, format string, args ...any) error {
	return &CompileError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
