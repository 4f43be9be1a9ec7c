// Package action implements the mutation sub-language: lexer,
// parser, AST, and executor for the ~25 write operations a rule's action
// clause can perform against a value tree. The lexer/parser shape follows
// internal/condition's; MOVE_WHERE and UPDATE_WHERE embed a condition
// clause whose raw text is lexed and parsed by internal/condition's own
// lexer and parser. This package's lexer has no condition operators, so
// a whole UPDATE_WHERE or MOVE_WHERE action does not tokenize with it.
package action

import (
	"github.com/frontmatter-rules/engine/internal/condition"
	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

// Action is the sum type of action AST nodes.
type Action interface {
	actionNode()
}

type Set struct {
	Path  path.Path
	Value *value.Value
}

func (Set) actionNode() {}

type Add struct {
	Path  path.Path
	Value *value.Value
}

func (Add) actionNode() {}

// Delete implements both DELETE and its alias CLEAR.
type Delete struct{ Path path.Path }

func (Delete) actionNode() {}

type Rename struct {
	Old path.Path
	New path.Path
}

func (Rename) actionNode() {}

type Append struct {
	Path  path.Path
	Value *value.Value
}

func (Append) actionNode() {}

type Prepend struct {
	Path  path.Path
	Value *value.Value
}

func (Prepend) actionNode() {}

type InsertAt struct {
	Path  path.Path
	Value *value.Value
	Index int64
}

func (InsertAt) actionNode() {}

type InsertAfter struct {
	Path   path.Path
	Value  *value.Value
	Target *value.Value
}

func (InsertAfter) actionNode() {}

type InsertBefore struct {
	Path   path.Path
	Value  *value.Value
	Target *value.Value
}

func (InsertBefore) actionNode() {}

type Remove struct {
	Path  path.Path
	Value *value.Value
}

func (Remove) actionNode() {}

type RemoveAll struct {
	Path  path.Path
	Value *value.Value
}

func (RemoveAll) actionNode() {}

type RemoveAt struct {
	Path  path.Path
	Index int64
}

func (RemoveAt) actionNode() {}

type Replace struct {
	Path path.Path
	Old  *value.Value
	New  *value.Value
}

func (Replace) actionNode() {}

type ReplaceAll struct {
	Path path.Path
	Old  *value.Value
	New  *value.Value
}

func (ReplaceAll) actionNode() {}

type Deduplicate struct{ Path path.Path }

func (Deduplicate) actionNode() {}

type Sort struct {
	Path path.Path
	Desc bool
}

func (Sort) actionNode() {}

type SortBy struct {
	Path  path.Path
	Field string
	Desc  bool
}

func (SortBy) actionNode() {}

type Move struct {
	Path path.Path
	From int64
	To   int64
}

func (Move) actionNode() {}

// MoveWhereDestKind identifies a MOVE_WHERE destination clause's shape.
type MoveWhereDestKind int

const (
	DestStart MoveWhereDestKind = iota
	DestEnd
	DestIndex
	DestAfter
	DestBefore
)

// MoveWhereDest is MOVE_WHERE's trailing destination clause: a fixed
// position, a numeric index (collapsed to START or END — see
// internal/action/executor.go), or an anchor condition.
type MoveWhereDest struct {
	Kind   MoveWhereDestKind
	Index  int64
	Anchor condition.Condition
}

type MoveWhere struct {
	Path  path.Path
	Where condition.Condition
	Dest  MoveWhereDest
}

func (MoveWhere) actionNode() {}

// FieldUpdate is one `field value` pair of an UPDATE_WHERE's SET clause.
type FieldUpdate struct {
	Field path.Path
	Value *value.Value
}

type UpdateWhere struct {
	Path  path.Path
	Where condition.Condition
	Sets  []FieldUpdate
}

func (UpdateWhere) actionNode() {}

type Merge struct {
	Path   path.Path
	Object *value.Value
}

func (Merge) actionNode() {}

type MergeOverwrite struct {
	Path   path.Path
	Object *value.Value
}

func (MergeOverwrite) actionNode() {}
