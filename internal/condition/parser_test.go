package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmatter-rules/engine/internal/path"
)

func mustParseCond(t *testing.T, text string) Condition {
	t.Helper()
	cond, err := Parse(text, path.Limits{})
	require.NoError(t, err, text)
	return cond
}

func TestParseComparison(t *testing.T) {
	cond := mustParseCond(t, `status = "done"`)
	cmp, ok := cond.(Comparison)
	require.True(t, ok)
	assert.Equal(t, "status", cmp.Left.String())
	assert.Equal(t, OpEq, cmp.Op)
	s, _ := cmp.Right.Scalar.Val.AsString()
	assert.Equal(t, "done", s)
}

func TestParseAndOrPrecedence(t *testing.T) {
	// OR binds looser than AND: a OR b AND c == a OR (b AND c)
	cond := mustParseCond(t, `status = "a" OR status = "b" AND priority = 1`)
	or, ok := cond.(Or)
	require.True(t, ok)
	_, leftIsCmp := or.L.(Comparison)
	assert.True(t, leftIsCmp)
	and, ok := or.R.(And)
	assert.True(t, ok)
	_, ok = and.L.(Comparison)
	assert.True(t, ok)
}

func TestParseNotBindsTighterThanAnd(t *testing.T) {
	cond := mustParseCond(t, `NOT status exists AND priority exists`)
	and, ok := cond.(And)
	require.True(t, ok)
	_, ok = and.L.(Not)
	assert.True(t, ok)
}

func TestParseParentheses(t *testing.T) {
	cond := mustParseCond(t, `(status = "a" OR status = "b") AND priority exists`)
	and, ok := cond.(And)
	require.True(t, ok)
	_, ok = and.L.(Or)
	assert.True(t, ok)
}

func TestParseExistenceAndNegation(t *testing.T) {
	cond := mustParseCond(t, `status !exists`)
	ex, ok := cond.(Existence)
	require.True(t, ok)
	assert.True(t, ex.Negated)
}

func TestParseEmptyCheck(t *testing.T) {
	cond := mustParseCond(t, `tags empty`)
	ec, ok := cond.(EmptyCheck)
	require.True(t, ok)
	assert.False(t, ec.Negated)
}

func TestParseHas(t *testing.T) {
	cond := mustParseCond(t, `tags has "work"`)
	h, ok := cond.(Has)
	require.True(t, ok)
	assert.False(t, h.Negated)
	s, _ := h.Value.Scalar.Val.AsString()
	assert.Equal(t, "work", s)
}

func TestParseNegatedHas(t *testing.T) {
	cond := mustParseCond(t, `tags !has "work"`)
	h, ok := cond.(Has)
	require.True(t, ok)
	assert.True(t, h.Negated)
}

func TestParseTypeCheck(t *testing.T) {
	cond := mustParseCond(t, `priority :number`)
	tc, ok := cond.(TypeCheck)
	require.True(t, ok)
	assert.Equal(t, TypeNumber, tc.Kind)
	assert.False(t, tc.Negated)
}

func TestParseNegatedTypeCheck(t *testing.T) {
	cond := mustParseCond(t, `priority !:number`)
	tc, ok := cond.(TypeCheck)
	require.True(t, ok)
	assert.True(t, tc.Negated)
}

func TestParseQuantifier(t *testing.T) {
	cond := mustParseCond(t, `ANY tags WHERE length > 3`)
	q, ok := cond.(Quantifier)
	require.True(t, ok)
	assert.Equal(t, QuantAny, q.Kind)
	assert.Equal(t, "tags", q.Array.String())
	_, ok = q.Body.(Comparison)
	assert.True(t, ok)
}

func TestParseNestedQuantifier(t *testing.T) {
	cond := mustParseCond(t, `ANY items WHERE ALL tags WHERE length > 0`)
	outer, ok := cond.(Quantifier)
	require.True(t, ok)
	inner, ok := outer.Body.(Quantifier)
	require.True(t, ok)
	assert.Equal(t, QuantAll, inner.Kind)
}

func TestParseRegexComparison(t *testing.T) {
	cond := mustParseCond(t, `title ~ /^daily/`)
	cmp, ok := cond.(Comparison)
	require.True(t, ok)
	assert.Equal(t, OpMatch, cmp.Op)
	require.NotNil(t, cmp.Right.Regex)
	assert.Equal(t, "^daily", cmp.Right.Regex.Pattern)
}

func TestParsePathWithIndexAndBracketNegative(t *testing.T) {
	cond := mustParseCond(t, `tags[-1] = "last"`)
	cmp, ok := cond.(Comparison)
	require.True(t, ok)
	assert.Equal(t, "tags[-1]", cmp.Left.String())
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		`status =`,
		`status has`,
		`ANY tags`,
		`(status = "a"`,
		`status @ 1`,
	}
	for _, c := range cases {
		_, err := Parse(c, path.Limits{})
		assert.Error(t, err, c)
	}
}
