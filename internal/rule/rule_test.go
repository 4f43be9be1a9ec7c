package rule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
}

func mapValue(fields map[string]*value.Value) *value.Value {
	m := value.NewMap()
	for k, v := range fields {
		m.Set(k, v)
	}
	return value.MapValue(m)
}

func getField(t *testing.T, v *value.Value, key string) *value.Value {
	t.Helper()
	m, ok := v.AsMap()
	require.True(t, ok)
	fv, ok := m.Get(key)
	require.True(t, ok, "missing field %q", key)
	return fv
}

func TestRunAppendToExistingArray(t *testing.T) {
	original := mapValue(map[string]*value.Value{
		"tags": value.Seq([]*value.Value{value.String("work"), value.String("project")}),
	})
	r := Rule{Action: `APPEND tags "urgent"`}

	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, result.Status)

	tags, _ := getField(t, result.NewValue, "tags").AsSeq()
	require.Len(t, tags, 3)
	s, _ := tags[2].AsString()
	assert.Equal(t, "urgent", s)
	assert.Same(t, original, result.OriginalValue)
}

func TestRunAppendToNonArrayIsError(t *testing.T) {
	original := mapValue(map[string]*value.Value{"status": value.String("draft")})
	r := Rule{Action: `APPEND status "x"`}

	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	assert.Equal(t, StatusError, result.Status)
	assert.Same(t, original, result.NewValue)
	require.NotNil(t, result.Err)
}

func TestRunConditionalSet(t *testing.T) {
	r := Rule{Condition: `status = "draft"`, Action: `SET status "reviewed"`}

	draft := mapValue(map[string]*value.Value{"status": value.String("draft")})
	result := Run(r, draft, FileContext{}, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, result.Status)
	s, _ := getField(t, result.NewValue, "status").AsString()
	assert.Equal(t, "reviewed", s)

	published := mapValue(map[string]*value.Value{"status": value.String("published")})
	result = Run(r, published, FileContext{}, fixedNow(), Limits{})
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Same(t, published, result.NewValue)
}

func TestRunUpdateWhereMultiField(t *testing.T) {
	task := value.NewMap()
	task.Set("name", value.String("A"))
	task.Set("status", value.String("pending"))
	task.Set("priority", value.Int(0))
	original := mapValue(map[string]*value.Value{
		"tasks": value.Seq([]*value.Value{value.MapValue(task)}),
	})

	r := Rule{Action: `UPDATE_WHERE tasks WHERE name = "A" SET status "done", priority 5`}
	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, result.Status)

	tasks, _ := getField(t, result.NewValue, "tasks").AsSeq()
	require.Len(t, tasks, 1)
	tm, _ := tasks[0].AsMap()
	status, _ := tm.MustGet("status").AsString()
	priority, _ := tm.MustGet("priority").AsInt()
	assert.Equal(t, "done", status)
	assert.Equal(t, int64(5), priority)
}

func TestRunMoveWhereToStartPreservesRelativeOrder(t *testing.T) {
	elem := func(w bool) *value.Value {
		m := value.NewMap()
		m.Set("w", value.Bool(w))
		return value.MapValue(m)
	}
	original := mapValue(map[string]*value.Value{
		"x": value.Seq([]*value.Value{elem(true), elem(false), elem(true), elem(false)}),
	})

	r := Rule{Action: `MOVE_WHERE x WHERE w = false TO START`}
	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, result.Status)

	seq, _ := getField(t, result.NewValue, "x").AsSeq()
	require.Len(t, seq, 4)
	want := []bool{false, false, true, true}
	for i, v := range seq {
		m, _ := v.AsMap()
		w, _ := m.MustGet("w").AsBool()
		assert.Equal(t, want[i], w, "index %d", i)
	}
}

func TestRunMergeDeepVsOverwriteShallow(t *testing.T) {
	ui := value.NewMap()
	ui.Set("theme", value.String("dark"))
	ui.Set("fontSize", value.Int(14))
	c := value.NewMap()
	c.Set("ui", value.MapValue(ui))
	original := mapValue(map[string]*value.Value{"c": value.MapValue(c)})

	deep := Run(Rule{Action: `MERGE c {"ui":{"fontSize":16}}`}, original, FileContext{}, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, deep.Status)
	deepUI, _ := getField(t, deep.NewValue, "c").AsMap()
	deepUIMap, _ := deepUI.MustGet("ui").AsMap()
	assert.Equal(t, []string{"theme", "fontSize"}, deepUIMap.Keys())
	fontSize, _ := deepUIMap.MustGet("fontSize").AsInt()
	assert.Equal(t, int64(16), fontSize)

	shallow := Run(Rule{Action: `MERGE_OVERWRITE c {"ui":{"fontSize":16}}`}, original, FileContext{}, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, shallow.Status)
	shallowC, _ := getField(t, shallow.NewValue, "c").AsMap()
	shallowUI, _ := shallowC.MustGet("ui").AsMap()
	assert.Equal(t, []string{"fontSize"}, shallowUI.Keys())
}

func TestRunRemoveMissingIsWarningNotError(t *testing.T) {
	original := mapValue(map[string]*value.Value{
		"tags": value.Seq([]*value.Value{value.String("a")}),
	})
	r := Rule{Action: `REMOVE tags "z"`}

	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	assert.Equal(t, StatusWarning, result.Status)
	tags, _ := getField(t, result.NewValue, "tags").AsSeq()
	require.Len(t, tags, 1)
	require.NotNil(t, result.Err)
}

func TestRunParseErrorLeavesOriginalUnchanged(t *testing.T) {
	original := mapValue(map[string]*value.Value{"status": value.String("draft")})
	r := Rule{Action: `BOGUS status value`}

	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	assert.Equal(t, StatusError, result.Status)
	assert.Same(t, original, result.NewValue)
}

func TestRunConditionParseErrorNeverParsesAction(t *testing.T) {
	original := mapValue(map[string]*value.Value{"status": value.String("draft")})
	r := Rule{Condition: `status ===`, Action: `BOGUS this is not a real action either`}

	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	assert.Equal(t, StatusError, result.Status)
	assert.Same(t, original, result.NewValue)
}

func TestRunExpandsTemplatesBeforeParsingAction(t *testing.T) {
	original := mapValue(map[string]*value.Value{"status": value.String("draft")})
	r := Rule{Action: `SET status "{{today}}"`}

	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, result.Status)
	s, _ := getField(t, result.NewValue, "status").AsString()
	assert.Equal(t, "2026-03-04", s)
}

func TestRunUnknownTemplateVariableIsError(t *testing.T) {
	original := mapValue(map[string]*value.Value{"status": value.String("draft")})
	r := Rule{Action: `SET status "{{bogus}}"`}

	result := Run(r, original, FileContext{}, fixedNow(), Limits{})
	assert.Equal(t, StatusError, result.Status)
	assert.Same(t, original, result.NewValue)
}

func TestRunFileContextVariablesFlowIntoAction(t *testing.T) {
	original := mapValue(map[string]*value.Value{"title": value.String("")})
	r := Rule{Action: `SET title "{{filename}}"`}
	fc := FileContext{Basename: "my-note", Path: "notes/my-note.md", Folder: "notes", VaultName: "personal"}

	result := Run(r, original, fc, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, result.Status)
	s, _ := getField(t, result.NewValue, "title").AsString()
	assert.Equal(t, "my-note", s)
}

func TestRunDeduplicateIdempotent(t *testing.T) {
	original := mapValue(map[string]*value.Value{
		"tags": value.Seq([]*value.Value{value.String("a"), value.String("a"), value.String("b")}),
	})
	r := Rule{Action: `DEDUPLICATE tags`}

	first := Run(r, original, FileContext{}, fixedNow(), Limits{})
	require.Equal(t, StatusSuccess, first.Status)

	second := Run(r, first.NewValue, FileContext{}, fixedNow(), Limits{})
	assert.Equal(t, StatusSkipped, second.Status)
	assert.True(t, value.Equal(first.NewValue, second.NewValue))
}

func TestRunRespectsCustomPathLimits(t *testing.T) {
	original := mapValue(map[string]*value.Value{"a": value.Int(1)})
	r := Rule{Action: `SET a.b.c.d 1`}
	limits := Limits{Path: path.Limits{MaxDepth: 2, MaxLength: 500}}

	result := Run(r, original, FileContext{}, fixedNow(), limits)
	assert.Equal(t, StatusError, result.Status)
}
