package condition

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

// Limits bounds the regex guard the evaluator applies to `~` comparisons
// and regex literals. The zero value falls back to the package defaults.
type Limits struct {
	MaxRegexLength int
	RegexTimeout   time.Duration
}

// DefaultLimits is the regex safety floor: a 200-byte pattern cap and a
// 500ms wall-clock match budget.
var DefaultLimits = Limits{MaxRegexLength: 200, RegexTimeout: 500 * time.Millisecond}

func (l Limits) orDefault() Limits {
	out := l
	if out.MaxRegexLength <= 0 {
		out.MaxRegexLength = DefaultLimits.MaxRegexLength
	}
	if out.RegexTimeout <= 0 {
		out.RegexTimeout = DefaultLimits.RegexTimeout
	}
	return out
}

// EvalError reports a condition-evaluation failure: an unsafe or invalid
// regex, or any other runtime evaluation fault.
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string { return "condition evaluation error: " + e.Message }

// Evaluate walks cond against root and reports its truth value.
func Evaluate(cond Condition, root *value.Value, limits Limits) (bool, error) {
	limits = limits.orDefault()
	return eval(cond, root, limits)
}

func eval(cond Condition, scope *value.Value, limits Limits) (bool, error) {
	switch c := cond.(type) {
	case Comparison:
		return evalComparison(c, scope, limits)
	case Existence:
		_, found := resolvePath(scope, c.Path)
		return found != c.Negated, nil
	case TypeCheck:
		return evalTypeCheck(c, scope), nil
	case EmptyCheck:
		return evalEmptyCheck(c, scope), nil
	case Has:
		return evalHas(c, scope), nil
	case Quantifier:
		return evalQuantifier(c, scope, limits)
	case Not:
		inner, err := eval(c.Inner, scope, limits)
		if err != nil {
			return false, err
		}
		return !inner, nil
	case And:
		l, err := eval(c.L, scope, limits)
		if err != nil {
			return false, err
		}
		if !l {
			return false, nil
		}
		return eval(c.R, scope, limits)
	case Or:
		l, err := eval(c.L, scope, limits)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return eval(c.R, scope, limits)
	default:
		return false, &EvalError{Message: fmt.Sprintf("unknown condition node %T", cond)}
	}
}

// resolvePath resolves segs against scope, special-casing a trailing
// `length` segment (a path head or field, never a real map key in this
// evaluator's eyes) into the size of whatever it follows.
func resolvePath(scope *value.Value, segs path.Path) (*value.Value, bool) {
	if n := len(segs); n > 0 {
		last := segs[n-1]
		if last.Kind == path.SegField && last.Field == "length" {
			container := scope
			if n > 1 {
				var ok bool
				container, ok = path.Resolve(scope, segs[:n-1])
				if !ok {
					return nil, false
				}
			}
			size := container.Len()
			if size < 0 {
				return nil, false
			}
			return value.Int(int64(size)), true
		}
	}
	return path.Resolve(scope, segs)
}

func evalComparison(c Comparison, scope *value.Value, limits Limits) (bool, error) {
	left, ok := resolvePath(scope, c.Left)
	if !ok {
		return c.Op == OpNeq, nil
	}

	if c.Op == OpMatch {
		return evalMatch(left, c.Right, limits)
	}

	right := c.Right.Scalar.Val

	switch c.Op {
	case OpEq:
		return value.Equal(left, right), nil
	case OpNeq:
		return !value.Equal(left, right), nil
	case OpLt, OpLte, OpGt, OpGte:
		if !left.IsNumber() || !right.IsNumber() {
			return false, nil
		}
		cmp := value.Compare(left, right)
		switch c.Op {
		case OpLt:
			return cmp < 0, nil
		case OpLte:
			return cmp <= 0, nil
		case OpGt:
			return cmp > 0, nil
		case OpGte:
			return cmp >= 0, nil
		}
	}
	return false, &EvalError{Message: "unknown comparison operator"}
}

func evalMatch(left *value.Value, right Literal, limits Limits) (bool, error) {
	s, ok := left.AsString()
	if !ok {
		return false, nil
	}
	if right.Regex == nil {
		return false, &EvalError{Message: "~ requires a regex literal"}
	}
	re, err := compileGuarded(right.Regex.Pattern, right.Regex.Flags, limits)
	if err != nil {
		return false, err
	}
	start := time.Now()
	matched := re.MatchString(s)
	if time.Since(start) > limits.RegexTimeout {
		return false, &EvalError{Message: "regex execution timeout"}
	}
	return matched, nil
}

var nestedQuantifierShapes = []string{"+*", "*+", "++", "**"}

var unboundedRepeatRe = regexp.MustCompile(`\{\d+,\}`)

func compileGuarded(pattern, flags string, limits Limits) (*regexp.Regexp, error) {
	if len(pattern) > limits.MaxRegexLength {
		return nil, &EvalError{Message: fmt.Sprintf("unsafe pattern: regex exceeds maximum length %d", limits.MaxRegexLength)}
	}
	for _, shape := range nestedQuantifierShapes {
		if strings.Contains(pattern, shape) {
			return nil, &EvalError{Message: "unsafe pattern: nested or repeated quantifier"}
		}
	}
	if unboundedRepeatRe.MatchString(pattern) {
		return nil, &EvalError{Message: "unsafe pattern: unbounded repetition"}
	}
	if strings.Count(pattern, ".*") > 1 {
		return nil, &EvalError{Message: "unsafe pattern: repeated wildcard"}
	}

	goPattern := pattern
	if strings.Contains(flags, "i") {
		goPattern = "(?i)" + goPattern
	}
	re, err := regexp.Compile(goPattern)
	if err != nil {
		return nil, &EvalError{Message: fmt.Sprintf("invalid regex pattern: %v", err)}
	}
	return re, nil
}

func evalTypeCheck(c TypeCheck, scope *value.Value) bool {
	resolved, ok := resolvePath(scope, c.Path)
	if !ok {
		return c.Negated
	}
	matches := typeMatches(resolved, c.Kind)
	return matches != c.Negated
}

func typeMatches(v *value.Value, kind TypeKind) bool {
	switch kind {
	case TypeString:
		return v.IsString()
	case TypeNumber:
		return v.IsNumber()
	case TypeBoolean:
		return v.IsBool()
	case TypeArray:
		return v.IsSeq()
	case TypeObject:
		return v.IsMap()
	case TypeNull:
		return v.IsNull()
	}
	return false
}

func evalEmptyCheck(c EmptyCheck, scope *value.Value) bool {
	resolved, ok := resolvePath(scope, c.Path)
	rawEmpty := false
	if ok && !resolved.IsNull() {
		rawEmpty = resolved.IsEmpty()
	}
	return rawEmpty != c.Negated
}

func evalHas(c Has, scope *value.Value) bool {
	found := false
	resolved, ok := resolvePath(scope, c.Path)
	if ok {
		if seq, isSeq := resolved.AsSeq(); isSeq {
			target := c.Value.Scalar.Val
			for _, elem := range seq {
				if value.Equal(elem, target) {
					found = true
					break
				}
			}
		}
	}
	return found != c.Negated
}

func evalQuantifier(c Quantifier, scope *value.Value, limits Limits) (bool, error) {
	resolved, ok := path.Resolve(scope, c.Array)
	if !ok {
		return false, nil
	}
	seq, isSeq := resolved.AsSeq()
	if !isSeq || len(seq) == 0 {
		return false, nil
	}

	switch c.Kind {
	case QuantAny:
		for _, elem := range seq {
			ok, err := eval(c.Body, elem, limits)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case QuantAll:
		for _, elem := range seq {
			ok, err := eval(c.Body, elem, limits)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
	return false, &EvalError{Message: "unknown quantifier kind"}
}
