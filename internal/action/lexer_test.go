package action

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
		require.NoError(t, err, input)
		toks = append(toks, tok)
		if tok.Type == TokEOF {
			break
		}
	}
	return toks
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	toks := lexAll(t, "set status value")
	require.Len(t, toks, 4)
	assert.Equal(t, TokKeyword, toks[0].Type)
	assert.Equal(t, "SET", toks[0].Value)
	assert.Equal(t, TokIdent, toks[1].Type)
}

func TestLexerPathIndexBracketNoSpace(t *testing.T) {
	toks := lexAll(t, "tags[0]")
	require.Len(t, toks, 5) // ident, [, number, ], EOF
	assert.Equal(t, TokIdent, toks[0].Type)
	assert.Equal(t, TokLBracket, toks[1].Type)
	assert.Equal(t, TokNumber, toks[2].Type)
	assert.Equal(t, "0", toks[2].Value)
	assert.Equal(t, TokRBracket, toks[3].Type)
}

func TestLexerArrayLiteralWithSpace(t *testing.T) {
	toks := lexAll(t, "SET tags [1, 2, 3]")
	require.Len(t, toks, 4) // SET, tags, JSON, EOF
	assert.Equal(t, TokKeyword, toks[0].Type)
	assert.Equal(t, TokIdent, toks[1].Type)
	assert.Equal(t, TokJSON, toks[2].Type)
	assert.Equal(t, "[1, 2, 3]", toks[2].Value)
}

func TestLexerObjectLiteralAlwaysJSON(t *testing.T) {
	toks := lexAll(t, `MERGE meta {"a":1,"b":[1,2]}`)
	require.Len(t, toks, 4)
	assert.Equal(t, TokJSON, toks[2].Type)
	assert.Equal(t, `{"a":1,"b":[1,2]}`, toks[2].Value)
}

func TestLexerStringLiteral(t *testing.T) {
	toks := lexAll(t, `SET title "hello world"`)
	require.Len(t, toks, 4)
	assert.Equal(t, TokString, toks[2].Type)
	assert.Equal(t, `"hello world"`, toks[2].Value)
}

func TestLexerNegativeNumber(t *testing.T) {
	toks := lexAll(t, "REMOVE_AT tags -1")
	require.Len(t, toks, 4)
	assert.Equal(t, TokNumber, toks[2].Type)
	assert.Equal(t, "-1", toks[2].Value)
}

func TestLexerBooleanAndNullLiterals(t *testing.T) {
	toks := lexAll(t, "SET done true")
	assert.Equal(t, TokTrue, toks[2].Type)
	toks = lexAll(t, "SET archived null")
	assert.Equal(t, TokNull, toks[2].Type)
}

func TestLexerCommaTreatedAsSeparator(t *testing.T) {
	toks := lexAll(t, "UPDATE_WHERE items WHERE done = true SET a 1, b 2")
	var values []string
	for _, tok := range toks {
		if tok.Type != TokEOF {
			values = append(values, tok.Value)
		}
	}
	assert.NotContains(t, values, ",")
}

func TestLexerUnterminatedJSONErrors(t *testing.T) {
	lex := NewLexer(`SET tags [1, 2`)
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		_, err = lex.NextToken()
	}
	assert.Error(t, err)
}

func TestLexerStrayCharacterErrors(t *testing.T) {
	lex := NewLexer("SET status @")
	var err error
	for i := 0; i < 5 && err == nil; i++ {
		_, err = lex.NextToken()
	}
	assert.Error(t, err)
}
