package action

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/frontmatter-rules/engine/internal/condition"
	"github.com/frontmatter-rules/engine/internal/literal"
	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/value"
)

// ParseError reports an action-parsing failure with its source position.
type ParseError struct {
	Message string
	Pos     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("action parse error at %d: %s", e.Pos, e.Message)
}

// Parser turns action text into an Action AST. MOVE_WHERE and
// UPDATE_WHERE embed a condition clause; the parser hands the raw span
// between the clause's start and its terminator keyword to
// internal/condition's own lexer and parser, then resumes tokenizing
// action syntax right where the condition clause ended.
type Parser struct {
	text   string
	lex    *Lexer
	curr   Token
	limits path.Limits
}

// Parse parses a full action expression under the given path limits. A
// zero path.Limits uses the package defaults.
func Parse(text string, limits path.Limits) (Action, error) {
	p := &Parser{text: text, lex: NewLexer(text), limits: limits}
	if err := p.advance(); err != nil {
		return nil, err
	}
	act, err := p.parseAction()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != TokEOF {
		return nil, &ParseError{Message: fmt.Sprintf("unexpected trailing token %q", p.curr.Value), Pos: p.curr.Pos}
	}
	return act, nil
}

func toParseError(err error) error {
	if le, ok := err.(*LexError); ok {
		return &ParseError{Message: le.Message, Pos: le.Pos}
	}
	return err
}

func (p *Parser) advance() error {
	tok, err := p.lex.NextToken()
	if err != nil {
		return toParseError(err)
	}
	p.curr = tok
	return nil
}

func (p *Parser) expectKeyword(word string) error {
	if p.curr.Type != TokKeyword || p.curr.Value != word {
		return &ParseError{Message: fmt.Sprintf("expected %q, found %q", word, p.curr.Value), Pos: p.curr.Pos}
	}
	return p.advance()
}

func (p *Parser) parseAction() (Action, error) {
	if p.curr.Type != TokKeyword {
		return nil, &ParseError{Message: fmt.Sprintf("expected action keyword, found %q", p.curr.Value), Pos: p.curr.Pos}
	}
	kw := p.curr.Value
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch kw {
	case "SET":
		return p.parseSetLike(func(pth path.Path, v *value.Value) Action { return Set{Path: pth, Value: v} })
	case "ADD":
		return p.parseSetLike(func(pth path.Path, v *value.Value) Action { return Add{Path: pth, Value: v} })
	case "DELETE", "CLEAR":
		pth, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		return Delete{Path: pth}, nil
	case "RENAME":
		return p.parseRename()
	case "APPEND":
		return p.parseSetLike(func(pth path.Path, v *value.Value) Action { return Append{Path: pth, Value: v} })
	case "PREPEND":
		return p.parseSetLike(func(pth path.Path, v *value.Value) Action { return Prepend{Path: pth, Value: v} })
	case "INSERT_AT":
		return p.parseInsertAt()
	case "INSERT_AFTER":
		return p.parseInsertRelative("AFTER", func(pth path.Path, v, target *value.Value) Action {
			return InsertAfter{Path: pth, Value: v, Target: target}
		})
	case "INSERT_BEFORE":
		return p.parseInsertRelative("BEFORE", func(pth path.Path, v, target *value.Value) Action {
			return InsertBefore{Path: pth, Value: v, Target: target}
		})
	case "REMOVE":
		return p.parseSetLike(func(pth path.Path, v *value.Value) Action { return Remove{Path: pth, Value: v} })
	case "REMOVE_ALL":
		return p.parseSetLike(func(pth path.Path, v *value.Value) Action { return RemoveAll{Path: pth, Value: v} })
	case "REMOVE_AT":
		return p.parseRemoveAt()
	case "REPLACE":
		return p.parseReplace(false)
	case "REPLACE_ALL":
		return p.parseReplace(true)
	case "DEDUPLICATE":
		pth, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		return Deduplicate{Path: pth}, nil
	case "SORT":
		return p.parseSort()
	case "SORT_BY":
		return p.parseSortBy()
	case "MOVE":
		return p.parseMove()
	case "MOVE_WHERE":
		return p.parseMoveWhere()
	case "UPDATE_WHERE":
		return p.parseUpdateWhere()
	case "MERGE":
		return p.parseMerge(false)
	case "MERGE_OVERWRITE":
		return p.parseMerge(true)
	}
	return nil, &ParseError{Message: fmt.Sprintf("unknown action %q", kw), Pos: p.curr.Pos}
}

func (p *Parser) parseSetLike(build func(path.Path, *value.Value) Action) (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return build(pth, val), nil
}

func (p *Parser) parseRename() (Action, error) {
	oldPath, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	newPath, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	return Rename{Old: oldPath, New: newPath}, nil
}

func (p *Parser) parseInsertAt() (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AT"); err != nil {
		return nil, err
	}
	idx, err := p.parseIndex()
	if err != nil {
		return nil, err
	}
	return InsertAt{Path: pth, Value: val, Index: idx}, nil
}

func (p *Parser) parseInsertRelative(keyword string, build func(path.Path, *value.Value, *value.Value) Action) (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(keyword); err != nil {
		return nil, err
	}
	target, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return build(pth, val, target), nil
}

func (p *Parser) parseRemoveAt() (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	idx, err := p.parseIndex()
	if err != nil {
		return nil, err
	}
	return RemoveAt{Path: pth, Index: idx}, nil
}

func (p *Parser) parseReplace(all bool) (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	oldVal, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	newVal, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if all {
		return ReplaceAll{Path: pth, Old: oldVal, New: newVal}, nil
	}
	return Replace{Path: pth, Old: oldVal, New: newVal}, nil
}

func (p *Parser) parseSort() (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	desc, err := p.parseOptionalDirection()
	if err != nil {
		return nil, err
	}
	return Sort{Path: pth, Desc: desc}, nil
}

func (p *Parser) parseSortBy() (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("BY"); err != nil {
		return nil, err
	}
	if p.curr.Type != TokIdent {
		return nil, &ParseError{Message: fmt.Sprintf("expected field name, found %q", p.curr.Value), Pos: p.curr.Pos}
	}
	field := p.curr.Value
	if err := p.advance(); err != nil {
		return nil, err
	}
	desc, err := p.parseOptionalDirection()
	if err != nil {
		return nil, err
	}
	return SortBy{Path: pth, Field: field, Desc: desc}, nil
}

func (p *Parser) parseOptionalDirection() (bool, error) {
	if p.curr.Type == TokKeyword && (p.curr.Value == "ASC" || p.curr.Value == "DESC") {
		desc := p.curr.Value == "DESC"
		if err := p.advance(); err != nil {
			return false, err
		}
		return desc, nil
	}
	return false, nil
}

func (p *Parser) parseMove() (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	from, err := p.parseIndex()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TO"); err != nil {
		return nil, err
	}
	to, err := p.parseIndex()
	if err != nil {
		return nil, err
	}
	return Move{Path: pth, From: from, To: to}, nil
}

// parseMoveWhere parses `MOVE_WHERE path WHERE cond TO (START|END|index)`
// and the `AFTER cond` / `BEFORE cond` destination forms. The WHERE
// clause and the AFTER/BEFORE anchor clause are embedded conditions,
// reassembled via scanEmbeddedCondition / parseTrailingCondition.
func (p *Parser) parseMoveWhere() (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != TokKeyword || p.curr.Value != "WHERE" {
		return nil, &ParseError{Message: fmt.Sprintf("expected \"WHERE\", found %q", p.curr.Value), Pos: p.curr.Pos}
	}
	where, err := p.consumeEmbeddedConditionUntil(map[string]bool{"TO": true, "AFTER": true, "BEFORE": true})
	if err != nil {
		return nil, err
	}

	dest, err := p.parseMoveWhereDest()
	if err != nil {
		return nil, err
	}
	return MoveWhere{Path: pth, Where: where, Dest: dest}, nil
}

func (p *Parser) parseMoveWhereDest() (MoveWhereDest, error) {
	if p.curr.Type != TokKeyword {
		return MoveWhereDest{}, &ParseError{Message: fmt.Sprintf("expected destination clause, found %q", p.curr.Value), Pos: p.curr.Pos}
	}
	switch p.curr.Value {
	case "TO":
		if err := p.advance(); err != nil {
			return MoveWhereDest{}, err
		}
		switch p.curr.Type {
		case TokKeyword:
			if p.curr.Value == "START" {
				if err := p.advance(); err != nil {
					return MoveWhereDest{}, err
				}
				return MoveWhereDest{Kind: DestStart}, nil
			}
			if p.curr.Value == "END" {
				if err := p.advance(); err != nil {
					return MoveWhereDest{}, err
				}
				return MoveWhereDest{Kind: DestEnd}, nil
			}
			return MoveWhereDest{}, &ParseError{Message: fmt.Sprintf("expected START, END, or index, found %q", p.curr.Value), Pos: p.curr.Pos}
		case TokNumber:
			idx, err := p.parseIndex()
			if err != nil {
				return MoveWhereDest{}, err
			}
			return MoveWhereDest{Kind: DestIndex, Index: idx}, nil
		default:
			return MoveWhereDest{}, &ParseError{Message: fmt.Sprintf("expected START, END, or index, found %q", p.curr.Value), Pos: p.curr.Pos}
		}
	case "AFTER", "BEFORE":
		kind := DestAfter
		if p.curr.Value == "BEFORE" {
			kind = DestBefore
		}
		anchor, err := p.parseTrailingCondition()
		if err != nil {
			return MoveWhereDest{}, err
		}
		return MoveWhereDest{Kind: kind, Anchor: anchor}, nil
	}
	return MoveWhereDest{}, &ParseError{Message: fmt.Sprintf("unexpected destination keyword %q", p.curr.Value), Pos: p.curr.Pos}
}

// parseUpdateWhere parses `UPDATE_WHERE path WHERE cond SET field value
// (field value)*`. The field list reuses the action lexer's own comma
// handling (commas are skipped as whitespace) so `field1 v1, field2 v2`
// and `field1 v1 field2 v2` parse identically.
func (p *Parser) parseUpdateWhere() (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != TokKeyword || p.curr.Value != "WHERE" {
		return nil, &ParseError{Message: fmt.Sprintf("expected \"WHERE\", found %q", p.curr.Value), Pos: p.curr.Pos}
	}
	where, err := p.consumeEmbeddedConditionUntil(map[string]bool{"SET": true})
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}

	var sets []FieldUpdate
	for {
		field, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		sets = append(sets, FieldUpdate{Field: field, Value: val})
		if p.curr.Type != TokIdent {
			break
		}
	}
	return UpdateWhere{Path: pth, Where: where, Sets: sets}, nil
}

func (p *Parser) parseMerge(overwrite bool) (Action, error) {
	pth, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if overwrite {
		return MergeOverwrite{Path: pth, Object: val}, nil
	}
	return Merge{Path: pth, Object: val}, nil
}

// consumeEmbeddedConditionUntil expects p.curr to be the "WHERE" keyword.
// It locates the clause's raw text span up to (but excluding) whichever
// terminators appears first at paren depth 0, parses that span as a
// condition, and repositions the action lexer to resume right at the
// terminator keyword. Crucially it never calls the action lexer's own
// NextToken on the clause body: that body is condition syntax (regex
// literals, quantifiers, parens) the action lexer doesn't understand.
func (p *Parser) consumeEmbeddedConditionUntil(terminators map[string]bool) (condition.Condition, error) {
	clauseStart := p.lex.Pos()
	clauseText, relEnd, err := scanConditionClause(p.text[clauseStart:], terminators)
	if err != nil {
		return nil, &ParseError{Message: err.Error(), Pos: clauseStart}
	}
	cond, err := condition.Parse(clauseText, p.limits)
	if err != nil {
		return nil, &ParseError{Message: err.Error(), Pos: clauseStart}
	}
	p.lex = NewLexerAt(p.text, clauseStart+relEnd)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return cond, nil
}

// parseTrailingCondition expects p.curr to be the "AFTER" or "BEFORE"
// keyword introducing a condition that runs to the end of the action
// text (MOVE_WHERE's destination clause is always the action's last
// clause, so no terminator search is needed).
func (p *Parser) parseTrailingCondition() (condition.Condition, error) {
	clauseStart := p.lex.Pos()
	clauseText := strings.TrimSpace(p.text[clauseStart:])
	cond, err := condition.Parse(clauseText, p.limits)
	if err != nil {
		return nil, &ParseError{Message: err.Error(), Pos: clauseStart}
	}
	p.lex = NewLexerAt(p.text, len(p.text))
	if err := p.advance(); err != nil {
		return nil, err
	}
	return cond, nil
}

// scanConditionClause tokenizes text with the condition package's own
// lexer, returning the trimmed clause text up to the first top-level
// (paren-depth 0) identifier matching one of terminators, along with
// that identifier's byte offset within text.
func scanConditionClause(text string, terminators map[string]bool) (string, int, error) {
	lex := condition.NewLexer(text)
	depth := 0
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return "", 0, err
		}
		if tok.Type == condition.TokEOF {
			return "", 0, fmt.Errorf("expected one of %v before end of action", terminatorNames(terminators))
		}
		if tok.Type == condition.TokLParen {
			depth++
			continue
		}
		if tok.Type == condition.TokRParen {
			depth--
			continue
		}
		if depth == 0 && tok.Type == condition.TokIdent {
			if terminators[strings.ToUpper(tok.Value)] {
				return strings.TrimSpace(text[:tok.Pos]), tok.Pos, nil
			}
		}
	}
}

func terminatorNames(terminators map[string]bool) []string {
	names := make([]string, 0, len(terminators))
	for k := range terminators {
		names = append(names, k)
	}
	return names
}

// parsePath consumes a leading identifier plus any following
// .field / [index] segments.
func (p *Parser) parsePath() (path.Path, error) {
	if p.curr.Type != TokIdent {
		return nil, &ParseError{Message: fmt.Sprintf("expected path, found %q", p.curr.Value), Pos: p.curr.Pos}
	}
	head := p.curr
	var segs path.Path
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
			if p.curr.Type != TokIdent {
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
			if p.curr.Type != TokNumber {
				return nil, &ParseError{Message: fmt.Sprintf("expected index, found %q", p.curr.Value), Pos: p.curr.Pos}
			}
			idx, convErr := strconv.ParseInt(p.curr.Value, 10, 64)
			if convErr != nil {
				return nil, &ParseError{Message: fmt.Sprintf("non-integer index %q", p.curr.Value), Pos: p.curr.Pos}
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.curr.Type != TokRBracket {
				return nil, &ParseError{Message: fmt.Sprintf("expected ']', found %q", p.curr.Value), Pos: p.curr.Pos}
			}
			if err := p.advance(); err != nil {
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

// parseValue parses a scalar or JSON-literal value token.
func (p *Parser) parseValue() (*value.Value, error) {
	switch p.curr.Type {
	case TokString, TokNumber, TokTrue, TokFalse, TokNull, TokJSON:
		v, err := literal.Parse(p.curr.Value)
		if err != nil {
			return nil, &ParseError{Message: err.Error(), Pos: p.curr.Pos}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, &ParseError{Message: fmt.Sprintf("expected value, found %q", p.curr.Value), Pos: p.curr.Pos}
	}
}

// parseIndex parses a bare signed-integer token used outside path
// brackets (AT/FROM/TO/REMOVE_AT indices).
func (p *Parser) parseIndex() (int64, error) {
	if p.curr.Type != TokNumber {
		return 0, &ParseError{Message: fmt.Sprintf("expected index, found %q", p.curr.Value), Pos: p.curr.Pos}
	}
	idx, err := strconv.ParseInt(p.curr.Value, 10, 64)
	if err != nil {
		return 0, &ParseError{Message: fmt.Sprintf("non-integer index %q", p.curr.Value), Pos: p.curr.Pos}
	}
	if advErr := p.advance(); advErr != nil {
		return 0, advErr
	}
	return idx, nil
}
