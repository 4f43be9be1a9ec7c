// Package value implements the dynamic tagged value model that the
// rest of the engine operates over: the decoded shape of a note's YAML
// front-matter, plus whatever an action produces while mutating it.
//
// The API shape (a wrapper struct with Kind-style constructors and As*
// accessors) follows a tagged-value-with-accessors pattern common in this
// codebase; unlike a flat field-value type, Value also has a Seq and an
// order-preserving Map variant, and is built to be mutated in place rather
// than only constructed once and read.
package value

import "fmt"

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSeq:
		return "array"
	case KindMap:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a recursively defined tagged value: Null, Bool, Int, Float,
// String, Seq, or Map. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []*Value
	m    *Map
}

// Null returns the null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Float returns a floating-point value.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// Seq returns a sequence value wrapping the given elements (not copied).
func Seq(items []*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{kind: KindSeq, seq: items}
}

// EmptySeq returns a new, empty sequence value.
func EmptySeq() *Value { return Seq(nil) }

// MapValue returns a map value wrapping the given ordered map (not copied).
func MapValue(m *Map) *Value {
	if m == nil {
		m = NewMap()
	}
	return &Value{kind: KindMap, m: m}
}

// EmptyMap returns a new, empty map value.
func EmptyMap() *Value { return MapValue(NewMap()) }

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsNull() bool   { return v.Kind() == KindNull }
func (v *Value) IsBool() bool   { return v.Kind() == KindBool }
func (v *Value) IsInt() bool    { return v.Kind() == KindInt }
func (v *Value) IsFloat() bool  { return v.Kind() == KindFloat }
func (v *Value) IsNumber() bool { return v.Kind() == KindInt || v.Kind() == KindFloat }
func (v *Value) IsString() bool { return v.Kind() == KindString }
func (v *Value) IsSeq() bool    { return v.Kind() == KindSeq }
func (v *Value) IsMap() bool    { return v.Kind() == KindMap }

func (v *Value) AsBool() (bool, bool) {
	if v == nil || v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v *Value) AsString() (string, bool) {
	if v == nil || v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsFloat returns the value as float64 if it is Int or Float.
func (v *Value) AsFloat() (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

func (v *Value) AsInt() (int64, bool) {
	if v == nil || v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsSeq returns the underlying slice. Callers that mutate it are mutating
// the Value itself.
func (v *Value) AsSeq() ([]*Value, bool) {
	if v == nil || v.kind != KindSeq {
		return nil, false
	}
	return v.seq, true
}

func (v *Value) SetSeq(items []*Value) {
	v.kind = KindSeq
	v.seq = items
}

// AsMap returns the underlying ordered map.
func (v *Value) AsMap() (*Map, bool) {
	if v == nil || v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Len returns the size of a Seq, Map, or String value, or -1 if the kind
// has no length (used by the `length` condition terminal).
func (v *Value) Len() int {
	if v == nil {
		return -1
	}
	switch v.kind {
	case KindSeq:
		return len(v.seq)
	case KindMap:
		return v.m.Len()
	case KindString:
		return len([]rune(v.s))
	}
	return -1
}

// IsEmpty implements the empty-check truth table for present values:
// empty sequence/string/map -> true, everything else -> false. Missing
// paths and explicit Null are handled by the caller (path resolution),
// not here.
func (v *Value) IsEmpty() bool {
	if v == nil {
		return false
	}
	switch v.kind {
	case KindSeq:
		return len(v.seq) == 0
	case KindMap:
		return v.m.Len() == 0
	case KindString:
		return v.s == ""
	}
	return false
}

// Clone performs a deep copy so that mutations on the copy never alias the
// original — no implicit aliasing between a value and any clone of it.
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}
	switch v.kind {
	case KindSeq:
		items := make([]*Value, len(v.seq))
		for i, item := range v.seq {
			items[i] = item.Clone()
		}
		return Seq(items)
	case KindMap:
		return MapValue(v.m.Clone())
	default:
		cp := *v
		return &cp
	}
}

// Equal implements value-level equality used by `=`, `!=`, `has`.
// Int and Float compare by numeric equality; no other cross-type equality
// holds (in particular string<->number never compares equal).
func Equal(a, b *Value) bool {
	ak, bk := a.Kind(), b.Kind()
	if ak == KindNull || bk == KindNull {
		return ak == bk
	}
	if (ak == KindInt || ak == KindFloat) && (bk == KindInt || bk == KindFloat) {
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return af == bf
	}
	if ak != bk {
		return false
	}
	switch ak {
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindSeq:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if a.m.Len() != b.m.Len() {
			return false
		}
		for _, k := range a.m.Keys() {
			bv, ok := b.m.Get(k)
			if !ok || !Equal(a.m.MustGet(k), bv) {
				return false
			}
		}
		return true
	}
	return false
}

// typeRank orders distinct kinds for cross-type comparisons used by SORT:
// Null < Bool < Int|Float < String. Seq/Map are not orderable and rank last.
func typeRank(v *Value) int {
	switch v.Kind() {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindString:
		return 3
	default:
		return 4
	}
}

// Compare implements the ordering used by SORT/SORT_BY: numbers compare by
// value, strings lexically, booleans false<true, and cross-type pairs by
// typeRank. Returns -1, 0, or 1.
func Compare(a, b *Value) int {
	ar, br := typeRank(a), typeRank(b)
	if ar != br {
		if ar < br {
			return -1
		}
		return 1
	}
	switch a.Kind() {
	case KindNull:
		return 0
	case KindBool:
		ab, _ := a.AsBool()
		bb, _ := b.AsBool()
		if ab == bb {
			return 0
		}
		if !ab {
			return -1
		}
		return 1
	case KindInt, KindFloat:
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case KindString:
		as, _ := a.AsString()
		bs, _ := b.AsString()
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// String implements fmt.Stringer for debugging/log lines; it is not the
// canonical serialization used by any codec.
func (v *Value) String() string {
	if v == nil {
		return "null"
	}
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindSeq:
		return fmt.Sprintf("%v", v.seq)
	case KindMap:
		return fmt.Sprintf("%v", v.m)
	default:
		return "?"
	}
}
