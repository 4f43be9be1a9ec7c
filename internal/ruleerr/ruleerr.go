// Package ruleerr implements the five stable error kinds the engine
// surfaces to a host: ParseError, EvalError, ExecError, a Warning carrier,
// and a Skipped status marker. Parser/evaluator/executor
// packages raise their own local error types (internal/condition.ParseError,
// internal/action.ExecError, and so on); run_rule wraps whichever one fired
// into one of these so that a host only ever has to branch on Kind().
package ruleerr

import (
	"fmt"

	"github.com/frontmatter-rules/engine/internal/action"
	"github.com/frontmatter-rules/engine/internal/condition"
	"github.com/frontmatter-rules/engine/internal/path"
)

// Kind identifies which of the five error classes an error belongs to.
type Kind int

const (
	KindParse Kind = iota
	KindEval
	KindExec
	KindWarning
	KindSkipped
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindEval:
		return "EvalError"
	case KindExec:
		return "ExecError"
	case KindWarning:
		return "Warning"
	case KindSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// RuleError is the taxonomy every error the rule engine returns to a host
// implements. Pos is the source byte offset of the offending token, or -1
// when the error has no single source position (e.g. an execution-time
// type mismatch).
type RuleError struct {
	ErrKind Kind
	Message string
	Pos     int
	Cause   error
}

func (e *RuleError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at %d: %s", e.ErrKind, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.ErrKind, e.Message)
}

func (e *RuleError) Unwrap() error { return e.Cause }

// Kind reports the error's stable class tag.
func (e *RuleError) Kind() Kind { return e.ErrKind }

// Parse wraps a lexer/parser failure (condition, action, literal JSON,
// regex syntax). No mutation has occurred when this is returned.
func Parse(pos int, format string, args ...any) *RuleError {
	return &RuleError{ErrKind: KindParse, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// ParseFrom wraps an existing error from the condition, action, or path
// parser, preserving its message and extracting its source position.
func ParseFrom(err error) *RuleError {
	return &RuleError{ErrKind: KindParse, Message: err.Error(), Pos: posOf(err), Cause: err}
}

// posOf extracts a source position from the three concrete parser error
// types in the pack, defaulting to -1 for anything else (e.g. a literal
// or regex error, which carries no position field).
func posOf(err error) int {
	switch e := err.(type) {
	case *condition.ParseError:
		return e.Pos
	case *action.ParseError:
		return e.Pos
	case *path.ParseError:
		return e.Pos
	default:
		return -1
	}
}

// Eval wraps a regex length/pattern/timeout failure, an unknown template
// variable, or a missing fm: target. No mutation has occurred.
func Eval(pos int, format string, args ...any) *RuleError {
	return &RuleError{ErrKind: KindEval, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// EvalFrom wraps an existing evaluation-time error (internal/condition.EvalError
// or a template resolver failure).
func EvalFrom(err error) *RuleError {
	return &RuleError{ErrKind: KindEval, Message: err.Error(), Pos: -1, Cause: err}
}

// Exec wraps a type mismatch, an out-of-bounds index an operation
// requires, or an unsafe JSON key discovered during execution. Partial
// mutations may be visible on the clone the executor was given, but the
// caller must discard that clone; run_rule guarantees newValue stays the
// original on this path.
func Exec(format string, args ...any) *RuleError {
	return &RuleError{ErrKind: KindExec, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// ExecFrom wraps an existing internal/action.ExecError.
func ExecFrom(err error) *RuleError {
	return &RuleError{ErrKind: KindExec, Message: err.Error(), Pos: -1, Cause: err}
}

// Warn wraps a no-op outcome that is still reported distinctly from plain
// success: REMOVE with nothing matching, UPDATE_WHERE with zero matches, a
// MOVE_WHERE anchor that never matched.
func Warn(format string, args ...any) *RuleError {
	return &RuleError{ErrKind: KindWarning, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// Skipped marks a rule that never ran its action because its condition
// evaluated false.
func Skipped() *RuleError {
	return &RuleError{ErrKind: KindSkipped, Message: "condition evaluated false", Pos: -1}
}
