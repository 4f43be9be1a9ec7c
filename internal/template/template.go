// Package template implements the template resolver: expanding
// `{{ name }}` placeholders in action text before it is parsed. Whitespace
// inside the braces is insignificant. Recognized names are clock-derived
// (today, yesterday, tomorrow, now, now:FORMAT, timestamp, year, month,
// day, time, date:FORMAT), file-derived
// (filename, basename, filepath, folder, vault), or front-matter-derived
// (fm:PATH). An unknown name, or a missing fm: target, is an error rather
// than a silent pass-through.
package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/frontmatter-rules/engine/internal/dates"
	"github.com/frontmatter-rules/engine/internal/frontmatter"
	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

// Error reports a template expansion failure: an unknown placeholder name
// or a fm: lookup that resolved to nothing.
type Error struct {
	Message string
}

func (e *Error) Error() string { return "template error: " + e.Message }

// Context carries the file-derived values a rule's file_context supplies:
// the note's name (filename/basename alias), its path, containing folder,
// and the vault it belongs to.
type Context struct {
	Filename string
	Filepath string
	Folder   string
	Vault    string
}

// Expand substitutes every `{{ name }}` placeholder in text. now is the
// clock reading the host supplies; root is the front-matter value fm:
// lookups resolve against. `\{{` and `\}}` escape a literal brace pair
// without triggering expansion.
func Expand(text string, ctx Context, root *value.Value, now time.Time, limits path.Limits) (string, error) {
	var out strings.Builder
	i, n := 0, len(text)

	for i < n {
		if strings.HasPrefix(text[i:], `\{{`) {
			out.WriteString("{{")
			i += 3
			continue
		}
		if strings.HasPrefix(text[i:], `\}}`) {
			out.WriteString("}}")
			i += 3
			continue
		}
		if strings.HasPrefix(text[i:], "{{") {
			close := strings.Index(text[i+2:], "}}")
			if close == -1 {
				return "", &Error{Message: fmt.Sprintf("unterminated placeholder at position %d", i)}
			}
			expr := strings.TrimSpace(text[i+2 : i+2+close])
			resolved, err := resolve(expr, ctx, root, now, limits)
			if err != nil {
				return "", err
			}
			out.WriteString(resolved)
			i = i + 2 + close + 2
			continue
		}
		out.WriteByte(text[i])
		i++
	}

	return out.String(), nil
}

func resolve(expr string, ctx Context, root *value.Value, now time.Time, limits path.Limits) (string, error) {
	name, arg := expr, ""
	if idx := strings.IndexByte(expr, ':'); idx != -1 {
		name, arg = expr[:idx], expr[idx+1:]
	}

	switch strings.ToLower(name) {
	case "today", "yesterday", "tomorrow":
		resolution, ok := dates.ResolveRelativeDateKeyword(name, now, now.Weekday())
		if !ok {
			return "", &Error{Message: fmt.Sprintf("unknown template variable %q", name)}
		}
		return resolution.Date.Format(dates.DateLayout), nil
	case "now":
		if arg != "" {
			return now.Format(arg), nil
		}
		return now.Format(time.RFC3339), nil
	case "timestamp":
		return strconv.FormatInt(now.Unix(), 10), nil
	case "year":
		return now.Format("2006"), nil
	case "month":
		return now.Format("01"), nil
	case "day":
		return now.Format("02"), nil
	case "time":
		return now.Format("15:04:05"), nil
	case "date":
		if arg == "" {
			return "", &Error{Message: "date: requires a format, use {{date:FORMAT}}"}
		}
		return now.Format(arg), nil
	case "filename", "basename":
		return ctx.Filename, nil
	case "filepath":
		return ctx.Filepath, nil
	case "folder":
		return ctx.Folder, nil
	case "vault":
		return ctx.Vault, nil
	case "fm":
		return resolveFrontMatter(arg, root, limits)
	default:
		return "", &Error{Message: fmt.Sprintf("unknown template variable %q", name)}
	}
}

func resolveFrontMatter(rawPath string, root *value.Value, limits path.Limits) (string, error) {
	if rawPath == "" {
		return "", &Error{Message: "fm: requires a path, use {{fm:field.path}}"}
	}
	p, err := path.Parse(rawPath, limits)
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("invalid fm path %q: %v", rawPath, err)}
	}
	v, ok := path.Resolve(root, p)
	if !ok {
		return "", &Error{Message: fmt.Sprintf("missing front-matter target %q", rawPath)}
	}
	return frontmatter.Serialize(v)
}
