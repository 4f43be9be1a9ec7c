// Package literal implements the literal value parser: quoted
// strings, numbers, booleans, null, and JSON arrays/objects, all decoded
// directly into internal/value.Value so that object keys keep their
// insertion order. JSON objects are additionally scanned for forbidden
// keys (__proto__, constructor, prototype) at any depth.
package literal

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/frontmatter-rules/engine/internal/value"
)

// ParseError reports a literal-parsing failure.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return "literal parse error: " + e.Message }

var numberRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ForbiddenKeys are rejected anywhere in a parsed JSON object, at any
// depth, to guard against prototype/key pollution in downstream
// JS/JSON consumers.
var ForbiddenKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// Parse parses a single literal token's text into a Value. Unquoted bare
// text that doesn't match any other form is treated as a plain string.
func Parse(text string) (*value.Value, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return value.String(""), nil
	}

	if isQuoted(t, '"') || isQuoted(t, '\'') {
		return parseQuotedString(t)
	}

	lower := strings.ToLower(t)
	if lower == "null" {
		return value.Null(), nil
	}
	if lower == "true" {
		return value.Bool(true), nil
	}
	if lower == "false" {
		return value.Bool(false), nil
	}

	if numberRe.MatchString(t) {
		return parseNumber(t)
	}

	if strings.HasPrefix(t, "[") || strings.HasPrefix(t, "{") {
		return parseJSON(t)
	}

	// Unquoted bare text is a string value.
	return value.String(t), nil
}

func isQuoted(s string, q byte) bool {
	return len(s) >= 2 && s[0] == q && s[len(s)-1] == q
}

func parseQuotedString(t string) (*value.Value, error) {
	inner := t[1 : len(t)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			next := inner[i+1]
			switch next {
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			i++
			continue
		}
		b.WriteByte(c)
	}
	return value.String(b.String()), nil
}

func parseNumber(t string) (*value.Value, error) {
	if strings.Contains(t, ".") {
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid number %q", t)}
		}
		return value.Float(f), nil
	}
	i, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid number %q", t)}
	}
	return value.Int(i), nil
}

// parseJSON decodes a JSON array/object token-by-token (rather than via
// json.Unmarshal into map[string]interface{}) so that object key order
// survives into the Value tree, and rejects any object containing a
// forbidden key at any depth.
func parseJSON(t string) (*value.Value, error) {
	dec := json.NewDecoder(strings.NewReader(t))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid JSON literal: %v", err)}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Message: "trailing data after JSON literal"}
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*value.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			items := []*value.Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return value.Seq(items), nil
		case '{':
			m := value.NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected string object key")
				}
				if ForbiddenKeys[key] {
					return nil, fmt.Errorf("unsafe properties: forbidden key %q", key)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return value.MapValue(m), nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string:
		return value.String(t), nil
	case float64:
		if t == float64(int64(t)) {
			return value.Int(int64(t)), nil
		}
		return value.Float(t), nil
	case bool:
		return value.Bool(t), nil
	case nil:
		return value.Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}
