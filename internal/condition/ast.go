// Package condition implements the predicate sub-language: lexer,
// Pratt-style parser, AST, and evaluator. The lexer/parser shape (Token
// struct, Lexer.NextToken, Parser{lexer,curr,peek}/advance/expect) follows
// this codebase's usual hand-rolled recursive-descent style.
package condition

import (
	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

// CompareOp is a comparison operator.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpMatch // ~
)

// TypeKind is a type-check target (:string, :number, ...).
type TypeKind int

const (
	TypeString TypeKind = iota
	TypeNumber
	TypeBoolean
	TypeArray
	TypeObject
	TypeNull
)

// QuantKind distinguishes ANY from ALL.
type QuantKind int

const (
	QuantAny QuantKind = iota
	QuantAll
)

// Condition is the sum type of condition AST nodes.
type Condition interface {
	conditionNode()
}

// Literal is a parsed right-hand-side literal: a scalar value or a regex.
type Literal struct {
	// Scalar holds the parsed value for non-regex literals.
	Scalar *ScalarLiteral
	// Regex holds the pattern/flags for a /pattern/flags literal.
	Regex *RegexLiteral
}

// ScalarLiteral wraps the literal's already-typed Value so the evaluator's
// equality rules (numeric coercion only between Int and Float, never
// string<->number) fall straight out of value.Equal.
type ScalarLiteral struct {
	Val *value.Value
}

// RegexLiteral is a /pattern/flags literal.
type RegexLiteral struct {
	Pattern string
	Flags   string
}

type Comparison struct {
	Left  path.Path
	Op    CompareOp
	Right Literal
}

func (Comparison) conditionNode() {}

type Existence struct {
	Path    path.Path
	Negated bool
}

func (Existence) conditionNode() {}

type TypeCheck struct {
	Path    path.Path
	Kind    TypeKind
	Negated bool
}

func (TypeCheck) conditionNode() {}

type EmptyCheck struct {
	Path    path.Path
	Negated bool
}

func (EmptyCheck) conditionNode() {}

type Has struct {
	Path    path.Path
	Value   Literal
	Negated bool
}

func (Has) conditionNode() {}

// Quantifier binds the array's element as the evaluation scope for Body.
type Quantifier struct {
	Kind  QuantKind
	Array path.Path
	Body  Condition
}

func (Quantifier) conditionNode() {}

type Not struct{ Inner Condition }

func (Not) conditionNode() {}

type And struct{ L, R Condition }

func (And) conditionNode() {}

type Or struct{ L, R Condition }

func (Or) conditionNode() {}
