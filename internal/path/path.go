// Package path implements the dotted/bracketed path resolver: parsing,
// read/resolve, write (auto-vivifying), delete, and existence
// checks over an internal/value.Value tree.
//
// Grammar: segments ::= head ( '.' field | '[' signed_int ']' )*
// Whitespace is not permitted inside a path. The empty string parses to
// zero segments.
package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/frontmatter-rules/engine/internal/value"
)

// Limits bounds path depth and textual length; overridable by callers that
// want configured values. The zero value of Limits falls back to
// DefaultLimits.
type Limits struct {
	MaxDepth  int
	MaxLength int
}

// DefaultLimits is the depth/length safety floor applied when a caller
// doesn't configure its own.
var DefaultLimits = Limits{MaxDepth: 50, MaxLength: 500}

func (l Limits) orDefault() Limits {
	out := l
	if out.MaxDepth <= 0 {
		out.MaxDepth = DefaultLimits.MaxDepth
	}
	if out.MaxLength <= 0 {
		out.MaxLength = DefaultLimits.MaxLength
	}
	return out
}

// OrDefault fills in zero fields with DefaultLimits. Exported for callers
// (such as the condition parser) that need the resolved limits without
// going through Parse.
func (l Limits) OrDefault() Limits {
	return l.orDefault()
}

// SegmentKind distinguishes a path segment's shape.
type SegmentKind int

const (
	SegField SegmentKind = iota
	SegIndex
)

// Segment is one step of a Path: a map field name or a sequence index.
type Segment struct {
	Kind  SegmentKind
	Field string
	Index int64
}

// Path is a parsed sequence of segments.
type Path []Segment

// String serializes a Path back to its dotted/bracketed textual form.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch seg.Kind {
		case SegField:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Field)
		case SegIndex:
			b.WriteByte('[')
			b.WriteString(strconv.FormatInt(seg.Index, 10))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// ParseError reports a path-parsing failure with the offending position.
type ParseError struct {
	Message string
	Pos     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("path parse error at %d: %s", e.Pos, e.Message)
}

// Parse parses a dotted/bracketed path string under the given limits. A
// zero Limits uses DefaultLimits.
func Parse(s string, limits Limits) (Path, error) {
	limits = limits.orDefault()

	if len(s) > limits.MaxLength {
		return nil, &ParseError{Message: fmt.Sprintf("path length %d exceeds limit %d", len(s), limits.MaxLength), Pos: limits.MaxLength}
	}
	if s == "" {
		return Path{}, nil
	}
	if strings.ContainsAny(s, " \t\n\r") {
		return nil, &ParseError{Message: "whitespace not permitted inside a path", Pos: 0}
	}

	var segs Path
	i := 0
	n := len(s)

	readField := func(start int) (string, int) {
		j := start
		for j < n && s[j] != '.' && s[j] != '[' {
			j++
		}
		return s[start:j], j
	}

	// Head: either a field name or (rarely) starts directly with '['.
	if s[0] == '[' {
		// leading index segment, e.g. "[0].a"
	} else {
		field, next := readField(0)
		segs = append(segs, Segment{Kind: SegField, Field: field})
		i = next
	}

	for i < n {
		switch s[i] {
		case '.':
			i++
			if i >= n {
				return nil, &ParseError{Message: "trailing '.'", Pos: i}
			}
			field, next := readField(i)
			if field == "" {
				return nil, &ParseError{Message: "empty field segment", Pos: i}
			}
			segs = append(segs, Segment{Kind: SegField, Field: field})
			i = next
		case '[':
			close := strings.IndexByte(s[i:], ']')
			if close == -1 {
				return nil, &ParseError{Message: "unclosed bracket", Pos: i}
			}
			inner := s[i+1 : i+close]
			idx, err := strconv.ParseInt(inner, 10, 64)
			if err != nil {
				return nil, &ParseError{Message: fmt.Sprintf("non-integer index %q", inner), Pos: i + 1}
			}
			segs = append(segs, Segment{Kind: SegIndex, Index: idx})
			i = i + close + 1
		default:
			return nil, &ParseError{Message: fmt.Sprintf("unexpected character %q", s[i]), Pos: i}
		}
	}

	if len(segs) > limits.MaxDepth {
		return nil, &ParseError{Message: fmt.Sprintf("path depth %d exceeds limit %d", len(segs), limits.MaxDepth), Pos: 0}
	}

	return segs, nil
}

// normalizeIndex resolves a possibly-negative index against length n,
// returning the normalized index and whether it is in range [0, n).
func normalizeIndex(i int64, n int) (int, bool) {
	idx := i
	if idx < 0 {
		idx += int64(n)
	}
	if idx < 0 || idx >= int64(n) {
		return 0, false
	}
	return int(idx), true
}

// Resolve walks segs over v, returning the resolved node and whether it
// was found. A present explicit Null resolves successfully.
func Resolve(v *value.Value, segs Path) (*value.Value, bool) {
	cur := v
	for _, seg := range segs {
		if cur == nil {
			return nil, false
		}
		switch seg.Kind {
		case SegField:
			m, ok := cur.AsMap()
			if !ok {
				return nil, false
			}
			next, ok := m.Get(seg.Field)
			if !ok {
				return nil, false
			}
			cur = next
		case SegIndex:
			s, ok := cur.AsSeq()
			if !ok {
				return nil, false
			}
			idx, ok := normalizeIndex(seg.Index, len(s))
			if !ok {
				return nil, false
			}
			cur = s[idx]
		}
	}
	return cur, true
}

// Exists reports whether segs resolves to a present entry.
func Exists(v *value.Value, segs Path) bool {
	_, ok := Resolve(v, segs)
	return ok
}

// Set writes newVal at segs, auto-vivifying missing parents: a missing
// parent becomes a Map if the next segment is a Field, or a Seq if the
// next segment is an Index. Writing index i >= len extends the sequence
// with Null fillers. An empty path is a no-op. root is the value to
// mutate in place; Set may replace *root itself (e.g. when root starts
// as Null and the first segment requires a container).
func Set(root **value.Value, segs Path, newVal *value.Value) error {
	if len(segs) == 0 {
		return nil
	}
	next, err := setAt(*root, segs, newVal)
	if err != nil {
		return err
	}
	*root = next
	return nil
}

func containerFor(seg Segment) *value.Value {
	if seg.Kind == SegField {
		return value.EmptyMap()
	}
	return value.EmptySeq()
}

// setAt returns the (possibly new) node after writing newVal along segs.
func setAt(node *value.Value, segs Path, newVal *value.Value) (*value.Value, error) {
	seg := segs[0]
	rest := segs[1:]

	switch seg.Kind {
	case SegField:
		if node == nil || !node.IsMap() {
			node = value.EmptyMap()
		}
		m, _ := node.AsMap()
		if len(rest) == 0 {
			m.Set(seg.Field, newVal)
			return node, nil
		}
		child, _ := m.Get(seg.Field)
		if child == nil {
			child = containerFor(rest[0])
		}
		written, err := setAt(child, rest, newVal)
		if err != nil {
			return nil, err
		}
		m.Set(seg.Field, written)
		return node, nil

	case SegIndex:
		if node == nil || !node.IsSeq() {
			node = value.EmptySeq()
		}
		s, _ := node.AsSeq()
		idx, ok := normalizeIndex(seg.Index, len(s))
		if !ok {
			if seg.Index < 0 {
				return nil, fmt.Errorf("negative index %d out of range for length %d", seg.Index, len(s))
			}
			// extend with Null fillers up to seg.Index
			for int64(len(s)) <= seg.Index {
				s = append(s, value.Null())
			}
			idx = int(seg.Index)
		}
		if len(rest) == 0 {
			s[idx] = newVal
		} else {
			child := s[idx]
			if child == nil {
				child = containerFor(rest[0])
			}
			written, err := setAt(child, rest, newVal)
			if err != nil {
				return nil, err
			}
			s[idx] = written
		}
		node.SetSeq(s)
		return node, nil
	}
	return node, nil
}

// Delete removes the entry at segs. Returns false if any prefix is
// missing, the final parent is the wrong kind, or the index is out of
// bounds; an empty path is a no-op that returns false.
func Delete(v *value.Value, segs Path) bool {
	if len(segs) == 0 {
		return false
	}
	parent, ok := Resolve(v, segs[:len(segs)-1])
	if !ok {
		return false
	}
	last := segs[len(segs)-1]
	switch last.Kind {
	case SegField:
		m, ok := parent.AsMap()
		if !ok {
			return false
		}
		return m.Delete(last.Field)
	case SegIndex:
		s, ok := parent.AsSeq()
		if !ok {
			return false
		}
		idx, ok := normalizeIndex(last.Index, len(s))
		if !ok {
			return false
		}
		s = append(s[:idx], s[idx+1:]...)
		parent.SetSeq(s)
		return true
	}
	return false
}
