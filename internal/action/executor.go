package action

import (
	"fmt"
	"sort"

	"github.com/frontmatter-rules/engine/internal/condition"
	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

// ExecError reports an action-execution failure: a type mismatch (array
// op on a non-array field, map op on a non-map field), an out-of-range
// index, or a missing path where the operation has no create/skip rule.
type ExecError struct {
	Message string
}

func (e *ExecError) Error() string { return "action execution error: " + e.Message }

// Result is the outcome of executing one action against a value tree.
// A successful action with no structural change sets Modified=false.
type Result struct {
	Success  bool
	Modified bool
	Changes  []string
	Err      error
	Warning  string
}

func errResult(format string, args ...any) Result {
	return Result{Success: false, Err: &ExecError{Message: fmt.Sprintf(format, args...)}}
}

func warnResult(format string, args ...any) Result {
	return Result{Success: true, Modified: false, Warning: fmt.Sprintf(format, args...)}
}

func okResult(modified bool, change string) Result {
	r := Result{Success: true, Modified: modified}
	if change != "" {
		r.Changes = []string{change}
	}
	return r
}

// Execute runs act against *root in place, reassigning *root if the
// action auto-vivifies the tree's top-level node. condLimits bounds the
// regex guard used while evaluating MOVE_WHERE/UPDATE_WHERE clauses.
func Execute(act Action, root **value.Value, condLimits condition.Limits) Result {
	switch a := act.(type) {
	case Set:
		return execSet(root, a)
	case Add:
		return execAdd(root, a)
	case Delete:
		return execDelete(root, a)
	case Rename:
		return execRename(root, a)
	case Append:
		return execAppendPrepend(root, a.Path, a.Value, false)
	case Prepend:
		return execAppendPrepend(root, a.Path, a.Value, true)
	case InsertAt:
		return execInsertAt(root, a)
	case InsertAfter:
		return execInsertRelative(root, a.Path, a.Value, a.Target, true)
	case InsertBefore:
		return execInsertRelative(root, a.Path, a.Value, a.Target, false)
	case Remove:
		return execRemove(root, a.Path, a.Value, false)
	case RemoveAll:
		return execRemove(root, a.Path, a.Value, true)
	case RemoveAt:
		return execRemoveAt(root, a)
	case Replace:
		return execReplace(root, a.Path, a.Old, a.New, false)
	case ReplaceAll:
		return execReplace(root, a.Path, a.Old, a.New, true)
	case Deduplicate:
		return execDeduplicate(root, a)
	case Sort:
		return execSort(root, a)
	case SortBy:
		return execSortBy(root, a)
	case Move:
		return execMove(root, a)
	case MoveWhere:
		return execMoveWhere(root, a, condLimits)
	case UpdateWhere:
		return execUpdateWhere(root, a, condLimits)
	case Merge:
		return execMerge(root, a.Path, a.Object, true)
	case MergeOverwrite:
		return execMerge(root, a.Path, a.Object, false)
	default:
		return errResult("unknown action node %T", act)
	}
}

func execSet(root **value.Value, a Set) Result {
	old, existed := path.Resolve(*root, a.Path)
	if err := path.Set(root, a.Path, a.Value); err != nil {
		return errResult("SET %s: %v", a.Path, err)
	}
	modified := !existed || !value.Equal(old, a.Value)
	return okResult(modified, fmt.Sprintf("SET %s = %s", a.Path, a.Value))
}

func execAdd(root **value.Value, a Add) Result {
	if path.Exists(*root, a.Path) {
		return warnResult("ADD %s: field already present", a.Path)
	}
	if err := path.Set(root, a.Path, a.Value); err != nil {
		return errResult("ADD %s: %v", a.Path, err)
	}
	return okResult(true, fmt.Sprintf("ADD %s = %s", a.Path, a.Value))
}

func execDelete(root **value.Value, a Delete) Result {
	if !path.Delete(*root, a.Path) {
		return okResult(false, "")
	}
	return okResult(true, fmt.Sprintf("DELETE %s", a.Path))
}

func execRename(root **value.Value, a Rename) Result {
	if len(a.Old) == 0 || len(a.New) == 0 {
		return errResult("RENAME: empty path")
	}
	parent, ok := path.Resolve(*root, a.Old[:len(a.Old)-1])
	if !ok {
		return warnResult("RENAME %s: parent path missing", a.Old)
	}
	m, isMap := parent.AsMap()
	if !isMap {
		return errResult("RENAME %s: parent is not an object", a.Old)
	}
	oldField := a.Old[len(a.Old)-1].Field
	newField := a.New[len(a.New)-1].Field
	if !m.Has(oldField) {
		return warnResult("RENAME %s: missing", a.Old)
	}
	if newField == oldField {
		return okResult(false, "")
	}
	overwrote := newField != oldField && m.Has(newField)
	m.Rename(oldField, newField)
	change := fmt.Sprintf("RENAME %s -> %s", oldField, newField)
	if overwrote {
		return Result{Success: true, Modified: true, Changes: []string{change}, Warning: "RENAME overwrote an existing field"}
	}
	return okResult(true, change)
}

func execAppendPrepend(root **value.Value, pth path.Path, val *value.Value, prepend bool) Result {
	op := "APPEND"
	if prepend {
		op = "PREPEND"
	}
	container, ok := path.Resolve(*root, pth)
	if !ok {
		if err := path.Set(root, pth, value.Seq([]*value.Value{val})); err != nil {
			return errResult("%s %s: %v", op, pth, err)
		}
		return okResult(true, fmt.Sprintf("%s %s: created with one element", op, pth))
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("%s %s: not an array", op, pth)
	}
	var out []*value.Value
	if prepend {
		out = append([]*value.Value{val}, seq...)
	} else {
		out = append(append([]*value.Value{}, seq...), val)
	}
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("%s %s", op, pth))
}

func execInsertAt(root **value.Value, a InsertAt) Result {
	container, ok := path.Resolve(*root, a.Path)
	if !ok {
		if a.Index != 0 {
			return errResult("INSERT_AT %s: path missing and index %d != 0", a.Path, a.Index)
		}
		if err := path.Set(root, a.Path, value.Seq([]*value.Value{a.Value})); err != nil {
			return errResult("INSERT_AT %s: %v", a.Path, err)
		}
		return okResult(true, fmt.Sprintf("INSERT_AT %s: created with one element", a.Path))
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("INSERT_AT %s: not an array", a.Path)
	}
	n := int64(len(seq))
	idx := a.Index
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx > n {
		return errResult("INSERT_AT %s: index %d out of range for length %d", a.Path, a.Index, n)
	}
	out := make([]*value.Value, 0, n+1)
	out = append(out, seq[:idx]...)
	out = append(out, a.Value)
	out = append(out, seq[idx:]...)
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("INSERT_AT %s AT %d", a.Path, a.Index))
}

func execInsertRelative(root **value.Value, pth path.Path, val, target *value.Value, after bool) Result {
	op := "INSERT_BEFORE"
	if after {
		op = "INSERT_AFTER"
	}
	container, ok := path.Resolve(*root, pth)
	if !ok {
		return errResult("%s %s: path missing", op, pth)
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("%s %s: not an array", op, pth)
	}
	idx := -1
	for i, e := range seq {
		if value.Equal(e, target) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return warnResult("%s %s: target not found", op, pth)
	}
	insertAt := idx
	if after {
		insertAt = idx + 1
	}
	out := make([]*value.Value, 0, len(seq)+1)
	out = append(out, seq[:insertAt]...)
	out = append(out, val)
	out = append(out, seq[insertAt:]...)
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("%s %s", op, pth))
}

func execRemove(root **value.Value, pth path.Path, target *value.Value, all bool) Result {
	op := "REMOVE"
	if all {
		op = "REMOVE_ALL"
	}
	container, ok := path.Resolve(*root, pth)
	if !ok {
		return warnResult("%s %s: path missing", op, pth)
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("%s %s: not an array", op, pth)
	}
	removed := 0
	out := make([]*value.Value, 0, len(seq))
	for _, e := range seq {
		if value.Equal(e, target) && (all || removed == 0) {
			removed++
			continue
		}
		out = append(out, e)
	}
	if removed == 0 {
		return warnResult("%s %s: no matching element", op, pth)
	}
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("%s %s (%d removed)", op, pth, removed))
}

func execRemoveAt(root **value.Value, a RemoveAt) Result {
	container, ok := path.Resolve(*root, a.Path)
	if !ok {
		return errResult("REMOVE_AT %s: path missing", a.Path)
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("REMOVE_AT %s: not an array", a.Path)
	}
	n := int64(len(seq))
	idx := a.Index
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return errResult("REMOVE_AT %s: index %d out of range for length %d", a.Path, a.Index, n)
	}
	out := make([]*value.Value, 0, n-1)
	out = append(out, seq[:idx]...)
	out = append(out, seq[idx+1:]...)
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("REMOVE_AT %s[%d]", a.Path, a.Index))
}

func execReplace(root **value.Value, pth path.Path, oldVal, newVal *value.Value, all bool) Result {
	op := "REPLACE"
	if all {
		op = "REPLACE_ALL"
	}
	container, ok := path.Resolve(*root, pth)
	if !ok {
		return errResult("%s %s: path missing", op, pth)
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("%s %s: not an array", op, pth)
	}
	out := append([]*value.Value{}, seq...)
	replaced := 0
	for i, e := range out {
		if value.Equal(e, oldVal) && (all || replaced == 0) {
			out[i] = newVal
			replaced++
		}
	}
	if replaced == 0 {
		return warnResult("%s %s: no matching element", op, pth)
	}
	if value.Equal(oldVal, newVal) {
		return okResult(false, "")
	}
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("%s %s (%d replaced)", op, pth, replaced))
}

func execDeduplicate(root **value.Value, a Deduplicate) Result {
	container, ok := path.Resolve(*root, a.Path)
	if !ok {
		return okResult(false, "")
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("DEDUPLICATE %s: not an array", a.Path)
	}
	seen := make([]*value.Value, 0, len(seq))
	out := make([]*value.Value, 0, len(seq))
	for _, e := range seq {
		dup := false
		for _, s := range seen {
			if value.Equal(e, s) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, e)
			out = append(out, e)
		}
	}
	if len(out) == len(seq) {
		return okResult(false, "")
	}
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("DEDUPLICATE %s (%d removed)", a.Path, len(seq)-len(out)))
}

func sameSeq(a, b []*value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func execSort(root **value.Value, a Sort) Result {
	container, ok := path.Resolve(*root, a.Path)
	if !ok {
		return okResult(false, "")
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("SORT %s: not an array", a.Path)
	}
	out := append([]*value.Value{}, seq...)
	sort.SliceStable(out, func(i, j int) bool {
		c := value.Compare(out[i], out[j])
		if a.Desc {
			return c > 0
		}
		return c < 0
	})
	if sameSeq(seq, out) {
		return okResult(false, "")
	}
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("SORT %s", a.Path))
}

func sortByExtract(v *value.Value, field string) *value.Value {
	m, isMap := v.AsMap()
	if !isMap {
		return value.Null()
	}
	f, ok := m.Get(field)
	if !ok {
		return value.Null()
	}
	return f
}

func execSortBy(root **value.Value, a SortBy) Result {
	container, ok := path.Resolve(*root, a.Path)
	if !ok {
		return okResult(false, "")
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("SORT_BY %s: not an array", a.Path)
	}
	out := append([]*value.Value{}, seq...)
	sort.SliceStable(out, func(i, j int) bool {
		c := value.Compare(sortByExtract(out[i], a.Field), sortByExtract(out[j], a.Field))
		if a.Desc {
			return c > 0
		}
		return c < 0
	})
	if sameSeq(seq, out) {
		return okResult(false, "")
	}
	container.SetSeq(out)
	return okResult(true, fmt.Sprintf("SORT_BY %s BY %s", a.Path, a.Field))
}

func execMove(root **value.Value, a Move) Result {
	container, ok := path.Resolve(*root, a.Path)
	if !ok {
		return errResult("MOVE %s: path missing", a.Path)
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("MOVE %s: not an array", a.Path)
	}
	n := int64(len(seq))
	from := a.From
	if from < 0 {
		from += n
	}
	if from < 0 || from >= n {
		return errResult("MOVE %s: from index %d out of range for length %d", a.Path, a.From, n)
	}
	elem := seq[from]
	rest := make([]*value.Value, 0, n-1)
	rest = append(rest, seq[:from]...)
	rest = append(rest, seq[from+1:]...)

	m := int64(len(rest))
	to := a.To
	if to < 0 {
		to += m + 1
	}
	if to < 0 || to > m {
		return errResult("MOVE %s: to index %d out of range for length %d", a.Path, a.To, m)
	}
	out := make([]*value.Value, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, elem)
	out = append(out, rest[to:]...)
	modified := !sameSeq(seq, out)
	container.SetSeq(out)
	return okResult(modified, fmt.Sprintf("MOVE %s FROM %d TO %d", a.Path, a.From, a.To))
}

func execMoveWhere(root **value.Value, a MoveWhere, limits condition.Limits) Result {
	container, ok := path.Resolve(*root, a.Path)
	if !ok {
		return errResult("MOVE_WHERE %s: path missing", a.Path)
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("MOVE_WHERE %s: not an array", a.Path)
	}

	var block, rest []*value.Value
	for _, e := range seq {
		match, err := condition.Evaluate(a.Where, e, limits)
		if err != nil {
			return errResult("MOVE_WHERE %s: %v", a.Path, err)
		}
		if match {
			block = append(block, e)
		} else {
			rest = append(rest, e)
		}
	}
	if len(block) == 0 {
		return warnResult("MOVE_WHERE %s: no matching elements", a.Path)
	}

	var out []*value.Value
	switch a.Dest.Kind {
	case DestStart:
		out = append(append([]*value.Value{}, block...), rest...)
	case DestEnd:
		out = append(append([]*value.Value{}, rest...), block...)
	case DestIndex:
		// Inherited quirk (see DESIGN.md): TO 0 collapses to START, any
		// other numeric index collapses to END.
		if a.Dest.Index == 0 {
			out = append(append([]*value.Value{}, block...), rest...)
		} else {
			out = append(append([]*value.Value{}, rest...), block...)
		}
	case DestAfter, DestBefore:
		anchorIdx := -1
		for i, e := range rest {
			match, err := condition.Evaluate(a.Dest.Anchor, e, limits)
			if err != nil {
				return errResult("MOVE_WHERE %s: anchor: %v", a.Path, err)
			}
			if match {
				anchorIdx = i
				break
			}
		}
		if anchorIdx == -1 {
			return warnResult("MOVE_WHERE %s: no anchor match", a.Path)
		}
		insertAt := anchorIdx
		if a.Dest.Kind == DestAfter {
			insertAt = anchorIdx + 1
		}
		out = make([]*value.Value, 0, len(seq))
		out = append(out, rest[:insertAt]...)
		out = append(out, block...)
		out = append(out, rest[insertAt:]...)
	default:
		return errResult("MOVE_WHERE %s: unknown destination kind", a.Path)
	}

	modified := !sameSeq(seq, out)
	container.SetSeq(out)
	return okResult(modified, fmt.Sprintf("MOVE_WHERE %s (%d elements)", a.Path, len(block)))
}

func execUpdateWhere(root **value.Value, a UpdateWhere, limits condition.Limits) Result {
	container, ok := path.Resolve(*root, a.Path)
	if !ok {
		return errResult("UPDATE_WHERE %s: path missing", a.Path)
	}
	seq, isSeq := container.AsSeq()
	if !isSeq {
		return errResult("UPDATE_WHERE %s: not an array", a.Path)
	}
	before := container.Clone()

	matched := 0
	for i, e := range seq {
		match, err := condition.Evaluate(a.Where, e, limits)
		if err != nil {
			return errResult("UPDATE_WHERE %s: %v", a.Path, err)
		}
		if !match {
			continue
		}
		matched++
		cur := e
		for _, fu := range a.Sets {
			if err := path.Set(&cur, fu.Field, fu.Value); err != nil {
				return errResult("UPDATE_WHERE %s: %v", a.Path, err)
			}
		}
		seq[i] = cur
	}
	if matched == 0 {
		return warnResult("UPDATE_WHERE %s: no matches", a.Path)
	}
	container.SetSeq(seq)
	if value.Equal(before, container) {
		return okResult(false, "")
	}
	return okResult(true, fmt.Sprintf("UPDATE_WHERE %s (%d elements)", a.Path, matched))
}

func mergeDeep(target, source *value.Map) {
	for _, k := range source.Keys() {
		sv := source.MustGet(k)
		if tv, ok := target.Get(k); ok {
			tm, tIsMap := tv.AsMap()
			sm, sIsMap := sv.AsMap()
			if tIsMap && sIsMap {
				mergeDeep(tm, sm)
				continue
			}
		}
		target.Set(k, sv.Clone())
	}
}

func mergeShallow(target, source *value.Map) {
	for _, k := range source.Keys() {
		target.Set(k, source.MustGet(k).Clone())
	}
}

func execMerge(root **value.Value, pth path.Path, obj *value.Value, deep bool) Result {
	op := "MERGE_OVERWRITE"
	if deep {
		op = "MERGE"
	}
	sourceMap, isMap := obj.AsMap()
	if !isMap {
		return errResult("%s %s: value is not an object", op, pth)
	}
	container, ok := path.Resolve(*root, pth)
	if !ok {
		if err := path.Set(root, pth, obj.Clone()); err != nil {
			return errResult("%s %s: %v", op, pth, err)
		}
		return okResult(true, fmt.Sprintf("%s %s: created", op, pth))
	}
	targetMap, isMap := container.AsMap()
	if !isMap {
		return errResult("%s %s: not an object", op, pth)
	}
	before := container.Clone()
	if deep {
		mergeDeep(targetMap, sourceMap)
	} else {
		mergeShallow(targetMap, sourceMap)
	}
	if value.Equal(before, container) {
		return okResult(false, "")
	}
	return okResult(true, fmt.Sprintf("%s %s", op, pth))
}
