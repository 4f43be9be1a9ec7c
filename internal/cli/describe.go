package cli

import (
	"fmt"
	"strings"

	"github.com/frontmatter-rules/engine/internal/action"
	"github.com/frontmatter-rules/engine/internal/condition"
)

// describeCondition renders a parsed condition tree as an indented
// s-expression, for `fmrules check` to show how an expression parsed.
func describeCondition(c condition.Condition, depth int) string {
	pad := strings.Repeat("  ", depth)
	switch n := c.(type) {
	case condition.Comparison:
		return fmt.Sprintf("%s(compare %s %s %s)", pad, n.Left, opName(n.Op), describeLiteral(n.Right))
	case condition.Existence:
		return fmt.Sprintf("%s(exists%s %s)", pad, negSuffix(n.Negated), n.Path)
	case condition.TypeCheck:
		return fmt.Sprintf("%s(typecheck%s %s :%s)", pad, negSuffix(n.Negated), n.Path, typeName(n.Kind))
	case condition.EmptyCheck:
		return fmt.Sprintf("%s(empty%s %s)", pad, negSuffix(n.Negated), n.Path)
	case condition.Has:
		return fmt.Sprintf("%s(has%s %s %s)", pad, negSuffix(n.Negated), n.Path, describeLiteral(n.Value))
	case condition.Quantifier:
		kind := "any"
		if n.Kind == condition.QuantAll {
			kind = "all"
		}
		return fmt.Sprintf("%s(%s %s\n%s)", pad, kind, n.Array, describeCondition(n.Body, depth+1))
	case condition.Not:
		return fmt.Sprintf("%s(not\n%s)", pad, describeCondition(n.Inner, depth+1))
	case condition.And:
		return fmt.Sprintf("%s(and\n%s\n%s)", pad, describeCondition(n.L, depth+1), describeCondition(n.R, depth+1))
	case condition.Or:
		return fmt.Sprintf("%s(or\n%s\n%s)", pad, describeCondition(n.L, depth+1), describeCondition(n.R, depth+1))
	default:
		return fmt.Sprintf("%s(unknown %T)", pad, c)
	}
}

func describeLiteral(l condition.Literal) string {
	if l.Regex != nil {
		return fmt.Sprintf("/%s/%s", l.Regex.Pattern, l.Regex.Flags)
	}
	if l.Scalar != nil {
		return l.Scalar.Val.String()
	}
	return "<empty literal>"
}

func negSuffix(negated bool) string {
	if negated {
		return "-not"
	}
	return ""
}

func opName(op condition.CompareOp) string {
	switch op {
	case condition.OpEq:
		return "="
	case condition.OpNeq:
		return "!="
	case condition.OpLt:
		return "<"
	case condition.OpLte:
		return "<="
	case condition.OpGt:
		return ">"
	case condition.OpGte:
		return ">="
	case condition.OpMatch:
		return "~"
	default:
		return "?"
	}
}

func typeName(k condition.TypeKind) string {
	switch k {
	case condition.TypeString:
		return "string"
	case condition.TypeNumber:
		return "number"
	case condition.TypeBoolean:
		return "boolean"
	case condition.TypeArray:
		return "array"
	case condition.TypeObject:
		return "object"
	case condition.TypeNull:
		return "null"
	default:
		return "?"
	}
}

// describeAction renders a parsed action as an indented s-expression, for
// `fmrules check-action` to show how an expression parsed.
func describeAction(a action.Action) string {
	switch n := a.(type) {
	case action.Set:
		return fmt.Sprintf("(set %s %s)", n.Path, n.Value)
	case action.Add:
		return fmt.Sprintf("(add %s %s)", n.Path, n.Value)
	case action.Delete:
		return fmt.Sprintf("(delete %s)", n.Path)
	case action.Rename:
		return fmt.Sprintf("(rename %s -> %s)", n.Old, n.New)
	case action.Append:
		return fmt.Sprintf("(append %s %s)", n.Path, n.Value)
	case action.Prepend:
		return fmt.Sprintf("(prepend %s %s)", n.Path, n.Value)
	case action.InsertAt:
		return fmt.Sprintf("(insert_at %s %s %d)", n.Path, n.Value, n.Index)
	case action.InsertAfter:
		return fmt.Sprintf("(insert_after %s %s after=%s)", n.Path, n.Value, n.Target)
	case action.InsertBefore:
		return fmt.Sprintf("(insert_before %s %s before=%s)", n.Path, n.Value, n.Target)
	case action.Remove:
		return fmt.Sprintf("(remove %s %s)", n.Path, n.Value)
	case action.RemoveAll:
		return fmt.Sprintf("(remove_all %s %s)", n.Path, n.Value)
	case action.RemoveAt:
		return fmt.Sprintf("(remove_at %s %d)", n.Path, n.Index)
	case action.Replace:
		return fmt.Sprintf("(replace %s %s -> %s)", n.Path, n.Old, n.New)
	case action.ReplaceAll:
		return fmt.Sprintf("(replace_all %s %s -> %s)", n.Path, n.Old, n.New)
	case action.Deduplicate:
		return fmt.Sprintf("(deduplicate %s)", n.Path)
	case action.Sort:
		return fmt.Sprintf("(sort %s desc=%t)", n.Path, n.Desc)
	case action.SortBy:
		return fmt.Sprintf("(sort_by %s field=%s desc=%t)", n.Path, n.Field, n.Desc)
	case action.Move:
		return fmt.Sprintf("(move %s %d -> %d)", n.Path, n.From, n.To)
	case action.MoveWhere:
		return fmt.Sprintf("(move_where %s\n  where: %s\n  to: %s)", n.Path, describeCondition(n.Where, 0), describeMoveDest(n.Dest))
	case action.UpdateWhere:
		return fmt.Sprintf("(update_where %s\n  where: %s\n  set: %s)", n.Path, describeCondition(n.Where, 0), describeFieldUpdates(n.Sets))
	case action.Merge:
		return fmt.Sprintf("(merge %s %s)", n.Path, n.Object)
	case action.MergeOverwrite:
		return fmt.Sprintf("(merge_overwrite %s %s)", n.Path, n.Object)
	default:
		return fmt.Sprintf("(unknown %T)", a)
	}
}

func describeMoveDest(d action.MoveWhereDest) string {
	switch d.Kind {
	case action.DestStart:
		return "start"
	case action.DestEnd:
		return "end"
	case action.DestIndex:
		return fmt.Sprintf("index %d", d.Index)
	case action.DestAfter:
		return fmt.Sprintf("after %s", describeCondition(d.Anchor, 0))
	case action.DestBefore:
		return fmt.Sprintf("before %s", describeCondition(d.Anchor, 0))
	default:
		return "?"
	}
}

func describeFieldUpdates(sets []action.FieldUpdate) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = fmt.Sprintf("%s=%s", s.Field, s.Value)
	}
	return strings.Join(parts, ", ")
}
