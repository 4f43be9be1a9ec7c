package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmatter-rules/engine/internal/value"
)

func TestSplitBasicFrontmatter(t *testing.T) {
	content := "---\nstatus: draft\npriority: 1\n---\n\n# Title\n\nBody text\n"
	v, body, err := Split(content)
	require.NoError(t, err)

	m, ok := v.AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"status", "priority"}, m.Keys())

	status, _ := m.Get("status")
	s, _ := status.AsString()
	assert.Equal(t, "draft", s)

	assert.Equal(t, "\n# Title\n\nBody text\n", body)
}

func TestSplitNoFrontmatterReturnsWholeTextAsBody(t *testing.T) {
	content := "# Just a heading\n\nSome content"
	v, body, err := Split(content)
	require.NoError(t, err)
	m, _ := v.AsMap()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, content, body)
}

func TestSplitEmptyFrontmatterStillCounts(t *testing.T) {
	content := "---\n---\n\n# Title\nContent"
	v, body, err := Split(content)
	require.NoError(t, err)
	m, _ := v.AsMap()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, "\n# Title\nContent", body)
}

func TestSplitUnclosedFrontmatterTreatedAsNoFrontmatter(t *testing.T) {
	content := "---\nstatus: draft\n\n# Title"
	v, body, err := Split(content)
	require.NoError(t, err)
	m, _ := v.AsMap()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, content, body)
}

func TestSplitPreservesKeyOrderAndTypes(t *testing.T) {
	content := `---
title: "Hello"
count: 3
ratio: 1.5
done: true
tags:
  - work
  - urgent
meta:
  nested: value
empty: null
---
body
`
	v, _, err := Split(content)
	require.NoError(t, err)
	m, _ := v.AsMap()
	assert.Equal(t, []string{"title", "count", "ratio", "done", "tags", "meta", "empty"}, m.Keys())

	countV, _ := m.Get("count")
	i, ok := countV.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(3), i)

	ratioV, _ := m.Get("ratio")
	f, ok := ratioV.AsFloat()
	require.True(t, ok)
	assert.Equal(t, 1.5, f)

	doneV, _ := m.Get("done")
	b, ok := doneV.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	tagsV, _ := m.Get("tags")
	seq, ok := tagsV.AsSeq()
	require.True(t, ok)
	require.Len(t, seq, 2)

	emptyV, _ := m.Get("empty")
	assert.True(t, emptyV.IsNull())
}

func TestSplitRejectsForbiddenKey(t *testing.T) {
	content := "---\n__proto__: 1\n---\nbody"
	_, _, err := Split(content)
	assert.Error(t, err)
}

func TestSplitRejectsNonMappingTopLevel(t *testing.T) {
	content := "---\n- a\n- b\n---\nbody"
	_, _, err := Split(content)
	assert.Error(t, err)
}

func TestJoinPreservesKeyOrder(t *testing.T) {
	m := value.NewMap()
	m.Set("z", value.String("last-inserted-first-key"))
	m.Set("a", value.Int(1))
	fm := value.MapValue(m)

	out, err := Join(fm, "body text\n")
	require.NoError(t, err)

	roundTripped, body, err := Split(out)
	require.NoError(t, err)
	rm, _ := roundTripped.AsMap()
	assert.Equal(t, []string{"z", "a"}, rm.Keys())
	assert.Equal(t, "body text\n", body)
}

func TestJoinThenSplitRoundTrip(t *testing.T) {
	content := "---\nstatus: draft\ntags:\n  - a\n  - b\n---\nbody\nmore body\n"
	v, body, err := Split(content)
	require.NoError(t, err)

	rejoined, err := Join(v, body)
	require.NoError(t, err)

	v2, body2, err := Split(rejoined)
	require.NoError(t, err)
	assert.True(t, value.Equal(v, v2))
	assert.Equal(t, body, body2)
}

func TestJoinEmptyMapProducesBareFences(t *testing.T) {
	out, err := Join(value.EmptyMap(), "content\n")
	require.NoError(t, err)
	assert.Equal(t, "---\n---\ncontent\n", out)
}

func TestJoinRejectsNonMapValue(t *testing.T) {
	_, err := Join(value.String("x"), "body")
	assert.Error(t, err)
}

func TestSerializeScalarsAndCollections(t *testing.T) {
	s, err := Serialize(value.String("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = Serialize(value.Int(42))
	require.NoError(t, err)
	assert.Equal(t, "42", s)

	s, err = Serialize(value.Bool(true))
	require.NoError(t, err)
	assert.Equal(t, "true", s)

	seq := value.Seq([]*value.Value{value.Int(1), value.Int(2)})
	s, err = Serialize(seq)
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", s)

	m := value.NewMap()
	m.Set("a", value.Int(1))
	s, err = Serialize(value.MapValue(m))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, s)
}
