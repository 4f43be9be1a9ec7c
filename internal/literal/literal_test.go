package literal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalars(t *testing.T) {
	v, err := Parse(`"hello \"world\""`)
	require.NoError(t, err)
	s, _ := v.AsString()
	assert.Equal(t, `hello "world"`, s)

	v, err = Parse(`'single\nline'`)
	require.NoError(t, err)
	s, _ = v.AsString()
	assert.Equal(t, "single\nline", s)

	v, err = Parse("42")
	require.NoError(t, err)
	i, _ := v.AsInt()
	assert.Equal(t, int64(42), i)

	v, err = Parse("-3.5")
	require.NoError(t, err)
	f, _ := v.AsFloat()
	assert.Equal(t, -3.5, f)

	v, err = Parse("TRUE")
	require.NoError(t, err)
	b, _ := v.AsBool()
	assert.True(t, b)

	v, err = Parse("Null")
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = Parse("bareword")
	require.NoError(t, err)
	s, _ = v.AsString()
	assert.Equal(t, "bareword", s)
}

func TestParseJSONArrayPreservesOrder(t *testing.T) {
	v, err := Parse(`["b", "a", "c"]`)
	require.NoError(t, err)
	seq, ok := v.AsSeq()
	require.True(t, ok)
	require.Len(t, seq, 3)
	s0, _ := seq[0].AsString()
	assert.Equal(t, "b", s0)
}

func TestParseJSONObjectPreservesKeyOrder(t *testing.T) {
	v, err := Parse(`{"z": 1, "a": 2}`)
	require.NoError(t, err)
	m, ok := v.AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, m.Keys())
}

func TestParseJSONRejectsForbiddenKeys(t *testing.T) {
	for _, key := range []string{"__proto__", "constructor", "prototype"} {
		_, err := Parse(`{"` + key + `": 1}`)
		assert.Error(t, err, key)
	}
}

func TestParseJSONRejectsForbiddenKeysAtDepth(t *testing.T) {
	_, err := Parse(`{"a": {"b": {"__proto__": 1}}}`)
	assert.Error(t, err)
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	_, err := Parse(`[1,2] garbage`)
	assert.Error(t, err)
}
