// Package frontmatter implements the YAML front-matter codec:
// split(text) -> (map, body) and join(map, body) -> text, preserving body
// bytes exactly and the insertion order of unchanged keys. Fences are
// detected by first-line match; decoding walks gopkg.in/yaml.v3's yaml.Node
// tree rather than map[string]interface{}, both to preserve key order and
// to enforce a permissive YAML core schema that accepts only the built-in
// scalar tags.
package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/frontmatter-rules/engine/internal/literal"
	"github.com/frontmatter-rules/engine/internal/value"
)

// Fence is the delimiter line that opens and closes a front-matter block.
const Fence = "---"

// coreScalarTags are the only YAML tags the codec accepts; anything else
// (custom language tags, merge keys, binary blobs) fails to parse.
var coreScalarTags = map[string]bool{
	"":            true, // unresolved, treated as !!str by the decoder
	"!!str":       true,
	"!!int":       true,
	"!!float":     true,
	"!!bool":      true,
	"!!null":      true,
	"!!timestamp": true,
}

// Split separates text into its front-matter value and the remaining body.
// If text has no front-matter block (first line isn't exactly "---", or
// the block is never closed), the returned value is an empty map and body
// is the entire input, byte for byte.
func Split(text string) (*value.Value, string, error) {
	firstEnd := lineEnd(text, 0)
	if strings.TrimSpace(stripNewline(text[0:firstEnd])) != Fence {
		return value.EmptyMap(), text, nil
	}

	pos := firstEnd
	closeStart := -1
	closeEnd := -1
	for pos < len(text) {
		end := lineEnd(text, pos)
		if strings.TrimSpace(stripNewline(text[pos:end])) == Fence {
			closeStart = pos
			closeEnd = end
			break
		}
		pos = end
	}
	if closeStart == -1 {
		return value.EmptyMap(), text, nil
	}

	yamlSrc := text[firstEnd:closeStart]
	body := text[closeEnd:]

	v, err := decode(yamlSrc)
	if err != nil {
		return nil, "", err
	}
	return v, body, nil
}

// Join serializes fm as the front-matter block and appends body exactly.
// fm must be a Map value (or Null, serialized as an empty block).
func Join(fm *value.Value, body string) (string, error) {
	if fm == nil || fm.IsNull() {
		fm = value.EmptyMap()
	}
	if !fm.IsMap() {
		return "", fmt.Errorf("frontmatter: cannot join a non-map value (kind %s)", fm.Kind())
	}

	m, _ := fm.AsMap()
	node := mapToNode(m)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if m.Len() > 0 {
		if err := enc.Encode(node); err != nil {
			_ = enc.Close()
			return "", fmt.Errorf("frontmatter: failed to encode: %w", err)
		}
	}
	_ = enc.Close()

	var out strings.Builder
	out.WriteString(Fence)
	out.WriteByte('\n')
	out.WriteString(buf.String())
	out.WriteString(Fence)
	out.WriteByte('\n')
	out.WriteString(body)
	return out.String(), nil
}

// Serialize renders a single value as the canonical text a template's
// fm:PATH lookup substitutes for a non-string field: scalars by their
// plain text, arrays/maps by JSON.
func Serialize(v *value.Value) (string, error) {
	switch v.Kind() {
	case value.KindNull:
		return "", nil
	case value.KindString:
		s, _ := v.AsString()
		return s, nil
	case value.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case value.KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	default:
		return toJSON(v)
	}
}

func toJSON(v *value.Value) (string, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeJSON(buf *bytes.Buffer, v *value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		buf.WriteString("null")
	case value.KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case value.KindInt:
		i, _ := v.AsInt()
		buf.WriteString(strconv.FormatInt(i, 10))
	case value.KindFloat:
		f, _ := v.AsFloat()
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case value.KindString:
		s, _ := v.AsString()
		buf.WriteString(strconv.Quote(s))
	case value.KindSeq:
		seq, _ := v.AsSeq()
		buf.WriteByte('[')
		for i, item := range seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.KindMap:
		m, _ := v.AsMap()
		buf.WriteByte('{')
		for i, k := range m.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(k))
			buf.WriteByte(':')
			if err := writeJSON(buf, m.MustGet(k)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// decode parses raw YAML source into a Value, enforcing the permissive
// core schema and the prototype-pollution key guard.
func decode(src string) (*value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("frontmatter: failed to parse YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return value.EmptyMap(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
			return value.EmptyMap(), nil
		}
		return nil, fmt.Errorf("frontmatter: top-level front-matter must be a mapping, got %v", root.Kind)
	}
	v, err := nodeToValue(root)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func nodeToValue(node *yaml.Node) (*value.Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return scalarToValue(node)
	case yaml.SequenceNode:
		items := make([]*value.Value, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return value.Seq(items), nil
	case yaml.MappingNode:
		m := value.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Tag != "" && keyNode.Tag != "!!str" {
				return nil, fmt.Errorf("frontmatter: unsupported key tag %q", keyNode.Tag)
			}
			key := keyNode.Value
			if literal.ForbiddenKeys[key] {
				return nil, fmt.Errorf("frontmatter: unsafe properties: forbidden key %q", key)
			}
			v, err := nodeToValue(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return value.MapValue(m), nil
	case yaml.AliasNode:
		return nodeToValue(node.Alias)
	default:
		return nil, fmt.Errorf("frontmatter: unsupported node kind %v", node.Kind)
	}
}

func scalarToValue(node *yaml.Node) (*value.Value, error) {
	if !coreScalarTags[node.Tag] {
		return nil, fmt.Errorf("frontmatter: unsupported YAML tag %q (core schema only)", node.Tag)
	}
	switch node.Tag {
	case "!!null":
		return value.Null(), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, fmt.Errorf("frontmatter: invalid integer %q: %w", node.Value, err)
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("frontmatter: invalid float %q: %w", node.Value, err)
		}
		return value.Float(f), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("frontmatter: invalid boolean %q: %w", node.Value, err)
		}
		return value.Bool(b), nil
	case "!!timestamp":
		// Preserve the original textual form; internal/dates parses these
		// on demand where a condition or template needs date semantics.
		return value.String(node.Value), nil
	default:
		return value.String(node.Value), nil
	}
}

func mapToNode(m *value.Map) *yaml.Node {
	content := make([]*yaml.Node, 0, m.Len()*2)
	for _, k := range m.Keys() {
		content = append(content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k})
		content = append(content, valueToNode(m.MustGet(k)))
	}
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: content}
}

func valueToNode(v *value.Value) *yaml.Node {
	switch v.Kind() {
	case value.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case value.KindBool:
		b, _ := v.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	case value.KindInt:
		i, _ := v.AsInt()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
	case value.KindFloat:
		f, _ := v.AsFloat()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
	case value.KindString:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	case value.KindSeq:
		seq, _ := v.AsSeq()
		content := make([]*yaml.Node, 0, len(seq))
		for _, item := range seq {
			content = append(content, valueToNode(item))
		}
		return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: content}
	case value.KindMap:
		m, _ := v.AsMap()
		return mapToNode(m)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// lineEnd returns the index just past the next '\n' at or after from, or
// len(s) if there is none.
func lineEnd(s string, from int) int {
	idx := strings.IndexByte(s[from:], '\n')
	if idx == -1 {
		return len(s)
	}
	return from + idx + 1
}

func stripNewline(line string) string {
	return strings.TrimRight(line, "\n")
}
