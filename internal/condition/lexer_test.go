package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	lex := NewLexer(input)
	var toks []Token
	for {
		tok, err := lex.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == TokEOF {
			return toks
		}
	}
}

func TestLexerBasicTokens(t *testing.T) {
	toks := lexAll(t, `status = "done"`)
	require.Len(t, toks, 4)
	assert.Equal(t, TokIdent, toks[0].Type)
	assert.Equal(t, TokEq, toks[1].Type)
	assert.Equal(t, TokString, toks[2].Type)
	assert.Equal(t, TokEOF, toks[3].Type)
}

func TestLexerCaseInsensitiveKeywords(t *testing.T) {
	toks := lexAll(t, "tags Any AND NOT where")
	assert.Equal(t, TokIdent, toks[0].Type)
	assert.Equal(t, TokAny, toks[1].Type)
	assert.Equal(t, TokAnd, toks[2].Type)
	assert.Equal(t, TokNot, toks[3].Type)
	assert.Equal(t, TokWhere, toks[4].Type)
}

func TestLexerComparisonOperators(t *testing.T) {
	toks := lexAll(t, "<= >= != < > = ~")
	types := []TokenType{TokLte, TokGte, TokNeq, TokLt, TokGt, TokEq, TokTilde, TokEOF}
	for i, tt := range types {
		assert.Equal(t, tt, toks[i].Type)
	}
}

func TestLexerTypeCheckSuffix(t *testing.T) {
	toks := lexAll(t, "priority :number")
	require.Len(t, toks, 3)
	assert.Equal(t, TokTypeCheck, toks[1].Type)
	assert.Equal(t, "number", toks[1].Value)
}

func TestLexerUnknownTypeCheckSuffixErrors(t *testing.T) {
	lex := NewLexer("priority :weird")
	_, err := lex.NextToken() // ident
	require.NoError(t, err)
	_, err = lex.NextToken() // :weird
	assert.Error(t, err)
}

func TestLexerRegexLiteralWithFlags(t *testing.T) {
	toks := lexAll(t, `title ~ /^foo.*bar$/i`)
	require.Len(t, toks, 4)
	assert.Equal(t, TokRegex, toks[2].Type)
	pattern, flags := splitRegexToken(toks[2].Value)
	assert.Equal(t, "^foo.*bar$", pattern)
	assert.Equal(t, "i", flags)
}

func TestLexerRegexEscapedSlash(t *testing.T) {
	toks := lexAll(t, `path ~ /a\/b/`)
	pattern, _ := splitRegexToken(toks[2].Value)
	assert.Equal(t, "a/b", pattern)
}

func TestLexerUnterminatedStringErrors(t *testing.T) {
	lex := NewLexer(`status = "unterminated`)
	_, err := lex.NextToken() // ident
	require.NoError(t, err)
	_, err = lex.NextToken() // =
	require.NoError(t, err)
	_, err = lex.NextToken() // string
	assert.Error(t, err)
}

func TestLexerStrayCharacterErrors(t *testing.T) {
	lex := NewLexer("status @ 1")
	_, err := lex.NextToken() // ident
	require.NoError(t, err)
	_, err = lex.NextToken() // @
	assert.Error(t, err)
}

func TestLexerPathSegments(t *testing.T) {
	toks := lexAll(t, "a.b[0][-1]")
	types := []TokenType{TokIdent, TokDot, TokIdent, TokLBracket, TokNumber, TokRBracket, TokLBracket, TokNumber, TokRBracket, TokEOF}
	for i, tt := range types {
		assert.Equal(t, tt, toks[i].Type, "index %d", i)
	}
	assert.Equal(t, "-1", toks[7].Value)
}
