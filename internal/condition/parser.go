package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/frontmatter-rules/engine/internal/literal"
	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

// ParseError reports a condition-parsing failure with its source position.
type ParseError struct {
	Message string
	Pos     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("condition parse error at %d: %s", e.Pos, e.Message)
}

// Parser turns condition text into a Condition AST. Precedence, low to
// high: OR, AND, NOT, atom.
type Parser struct {
	lex    *Lexer
	curr   Token
	peek   Token
	limits path.Limits
}

// Parse parses a full condition expression under the given path limits.
// A zero path.Limits uses the package defaults.
func Parse(text string, limits path.Limits) (Condition, error) {
	p := &Parser{lex: NewLexer(text), limits: limits}
	if err := p.init(); err != nil {
		return nil, err
	}
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != TokEOF {
		return nil, &ParseError{Message: fmt.Sprintf("unexpected token %q", p.curr.Value), Pos: p.curr.Pos}
	}
	return cond, nil
}

func (p *Parser) init() error {
	var err error
	p.curr, err = p.lex.NextToken()
	if err != nil {
		return toParseError(err)
	}
	p.peek, err = p.lex.NextToken()
	if err != nil {
		return toParseError(err)
	}
	return nil
}

func toParseError(err error) error {
	if le, ok := err.(*LexError); ok {
		return &ParseError{Message: le.Message, Pos: le.Pos}
	}
	return err
}

func (p *Parser) advance() error {
	p.curr = p.peek
	var err error
	p.peek, err = p.lex.NextToken()
	if err != nil {
		return toParseError(err)
	}
	return nil
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.curr.Type != tt {
		return Token{}, &ParseError{Message: fmt.Sprintf("expected %s, found %q", what, p.curr.Value), Pos: p.curr.Pos}
	}
	tok := p.curr
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (p *Parser) parseOr() (Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == TokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Condition, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == TokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And{L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Condition, error) {
	if p.curr.Type == TokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (Condition, error) {
	switch p.curr.Type {
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case TokAny, TokAll:
		return p.parseQuantifier()
	case TokIdent, TokLength:
		return p.parsePredicate()
	default:
		return nil, &ParseError{Message: fmt.Sprintf("unexpected token %q", p.curr.Value), Pos: p.curr.Pos}
	}
}

func (p *Parser) parseQuantifier() (Condition, error) {
	kind := QuantAny
	if p.curr.Type == TokAll {
		kind = QuantAll
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	arrPath, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokWhere, "WHERE"); err != nil {
		return nil, err
	}
	body, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return Quantifier{Kind: kind, Array: arrPath, Body: body}, nil
}

// parsePath consumes a leading identifier (or `length`) plus any
// following .field / [index] / length segments.
func (p *Parser) parsePath() (path.Path, error) {
	var segs path.Path

	head := p.curr
	if head.Type != TokIdent && head.Type != TokLength {
		return nil, &ParseError{Message: fmt.Sprintf("expected path, found %q", head.Value), Pos: head.Pos}
	}
	segs = append(segs, path.Segment{Kind: path.SegField, Field: head.Value})
	if err := p.advance(); err != nil {
		return nil, err
	}

	for {
		switch p.curr.Type {
		case TokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.curr.Type != TokIdent && p.curr.Type != TokLength {
				return nil, &ParseError{Message: fmt.Sprintf("expected field name, found %q", p.curr.Value), Pos: p.curr.Pos}
			}
			segs = append(segs, path.Segment{Kind: path.SegField, Field: p.curr.Value})
			if err := p.advance(); err != nil {
				return nil, err
			}
		case TokLBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			numTok, err := p.expect(TokNumber, "index")
			if err != nil {
				return nil, err
			}
			idx, convErr := strconv.ParseInt(numTok.Value, 10, 64)
			if convErr != nil {
				return nil, &ParseError{Message: fmt.Sprintf("non-integer index %q", numTok.Value), Pos: numTok.Pos}
			}
			if _, err := p.expect(TokRBracket, "']'"); err != nil {
				return nil, err
			}
			segs = append(segs, path.Segment{Kind: path.SegIndex, Index: idx})
		default:
			limits := p.limits.OrDefault()
			if len(segs) > limits.MaxDepth {
				return nil, &ParseError{Message: fmt.Sprintf("path depth %d exceeds limit %d", len(segs), limits.MaxDepth), Pos: head.Pos}
			}
			if len(segs.String()) > limits.MaxLength {
				return nil, &ParseError{Message: fmt.Sprintf("path length exceeds limit %d", limits.MaxLength), Pos: head.Pos}
			}
			return segs, nil
		}
	}
}

func (p *Parser) parsePredicate() (Condition, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}

	negated := false
	if p.curr.Type == TokBang {
		negated = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	switch p.curr.Type {
	case TokHas:
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return Has{Path: pth, Value: lit, Negated: negated}, nil
	case TokEmpty:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return EmptyCheck{Path: pth, Negated: negated}, nil
	case TokExists:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Existence{Path: pth, Negated: negated}, nil
	case TokTypeCheck:
		kind := typeKindFromName(p.curr.Value)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return TypeCheck{Path: pth, Kind: kind, Negated: negated}, nil
	}

	if negated {
		return nil, &ParseError{Message: "'!' must precede has/empty/exists/:type", Pos: p.curr.Pos}
	}

	op, ok := compareOpFromToken(p.curr.Type)
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("expected comparison operator, found %q", p.curr.Value), Pos: p.curr.Pos}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if op == OpMatch {
		regexTok, err := p.expect(TokRegex, "regex literal")
		if err != nil {
			return nil, err
		}
		pattern, flags := splitRegexToken(regexTok.Value)
		return Comparison{Left: pth, Op: op, Right: Literal{Regex: &RegexLiteral{Pattern: pattern, Flags: flags}}}, nil
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return Comparison{Left: pth, Op: op, Right: lit}, nil
}

func splitRegexToken(v string) (string, string) {
	idx := strings.IndexByte(v, 0)
	if idx == -1 {
		return v, ""
	}
	return v[:idx], v[idx+1:]
}

func compareOpFromToken(tt TokenType) (CompareOp, bool) {
	switch tt {
	case TokEq:
		return OpEq, true
	case TokNeq:
		return OpNeq, true
	case TokLt:
		return OpLt, true
	case TokLte:
		return OpLte, true
	case TokGt:
		return OpGt, true
	case TokGte:
		return OpGte, true
	case TokTilde:
		return OpMatch, true
	}
	return 0, false
}

func typeKindFromName(name string) TypeKind {
	switch name {
	case "string":
		return TypeString
	case "number":
		return TypeNumber
	case "boolean":
		return TypeBoolean
	case "array":
		return TypeArray
	case "object":
		return TypeObject
	case "null":
		return TypeNull
	}
	return TypeNull
}

// parseLiteral parses a scalar literal token into the AST's Literal form.
func (p *Parser) parseLiteral() (Literal, error) {
	tok := p.curr
	switch tok.Type {
	case TokString, TokNumber:
		v, err := literal.Parse(tok.Value)
		if err != nil {
			return Literal{}, &ParseError{Message: err.Error(), Pos: tok.Pos}
		}
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Scalar: &ScalarLiteral{Val: v}}, nil
	case TokTrue:
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Scalar: &ScalarLiteral{Val: value.Bool(true)}}, nil
	case TokFalse:
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Scalar: &ScalarLiteral{Val: value.Bool(false)}}, nil
	case TokNull:
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Scalar: &ScalarLiteral{Val: value.Null()}}, nil
	case TokRegex:
		pattern, flags := splitRegexToken(tok.Value)
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Regex: &RegexLiteral{Pattern: pattern, Flags: flags}}, nil
	default:
		return Literal{}, &ParseError{Message: fmt.Sprintf("expected literal, found %q", tok.Value), Pos: tok.Pos}
	}
}
