package template

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 4, 9, 30, 15, 0, time.FixedZone("", 0))
}

func mapRoot(fields map[string]*value.Value) *value.Value {
	m := value.NewMap()
	for k, v := range fields {
		m.Set(k, v)
	}
	return value.MapValue(m)
}

func TestExpandClockVariables(t *testing.T) {
	text := "{{today}} {{year}}-{{month}}-{{day}} {{time}} {{timestamp}}"
	out, err := Expand(text, Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	require.NoError(t, err)
	want := "2026-03-04 2026-03-04 09:30:15 " + strconv.FormatInt(fixedNow().Unix(), 10)
	assert.Equal(t, want, out)
}

func TestExpandDateFormat(t *testing.T) {
	out, err := Expand("{{date:2006/01}}", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, "2026/03", out)
}

func TestExpandYesterdayAndTomorrow(t *testing.T) {
	out, err := Expand("{{yesterday}} {{tomorrow}}", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03 2026-03-05", out)
}

func TestExpandNowWithAndWithoutFormat(t *testing.T) {
	out, err := Expand("{{now:15:04}}", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, "09:30", out)

	out, err = Expand("{{now}}", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, fixedNow().Format(time.RFC3339), out)
}

func TestExpandFileContextVariables(t *testing.T) {
	ctx := Context{Filename: "daily-note", Filepath: "journal/daily-note.md", Folder: "journal", Vault: "personal"}
	out, err := Expand("{{filename}}/{{basename}}/{{filepath}}/{{folder}}/{{vault}}", ctx, value.EmptyMap(), fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, "daily-note/daily-note/journal/daily-note.md/journal/personal", out)
}

func TestExpandFrontMatterScalarAndCollection(t *testing.T) {
	root := mapRoot(map[string]*value.Value{
		"status": value.String("done"),
		"count":  value.Int(3),
		"tags":   value.Seq([]*value.Value{value.String("a"), value.String("b")}),
	})

	out, err := Expand("{{fm:status}} {{fm:count}} {{fm:tags}}", Context{}, root, fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, `done 3 ["a","b"]`, out)
}

func TestExpandFrontMatterNestedPath(t *testing.T) {
	nested := value.NewMap()
	nested.Set("theme", value.String("dark"))
	root := mapRoot(map[string]*value.Value{
		"ui": value.MapValue(nested),
	})

	out, err := Expand("{{ fm:ui.theme }}", Context{}, root, fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, "dark", out)
}

func TestExpandUnknownNameErrors(t *testing.T) {
	_, err := Expand("{{bogus}}", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	assert.Error(t, err)
}

func TestExpandMissingFmTargetErrors(t *testing.T) {
	_, err := Expand("{{fm:missing}}", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	assert.Error(t, err)
}

func TestExpandFmWithoutPathErrors(t *testing.T) {
	_, err := Expand("{{fm:}}", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	assert.Error(t, err)
}

func TestExpandDateWithoutFormatErrors(t *testing.T) {
	_, err := Expand("{{date}}", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	assert.Error(t, err)
}

func TestExpandUnterminatedPlaceholderErrors(t *testing.T) {
	_, err := Expand("SET status {{today", Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	assert.Error(t, err)
}

func TestExpandEscapedBracesAreLiteral(t *testing.T) {
	out, err := Expand(`SET title "\{{literal\}}"`, Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, `SET title "{{literal}}"`, out)
}

func TestExpandLeavesNonPlaceholderTextUntouched(t *testing.T) {
	out, err := Expand(`SET status "done"`, Context{}, value.EmptyMap(), fixedNow(), path.Limits{})
	require.NoError(t, err)
	assert.Equal(t, `SET status "done"`, out)
}
