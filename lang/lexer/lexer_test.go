package lexer_test

import (
	"testing"

	"github.com/mbassey/corvid/lang/lexer"
	"github.com/mbassey/corvid/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(src string) ([]token.Token, []token.Value, []*lexer.Error) {
	l := lexer.New([]byte(src))
	var toks []token.Token
	var vals []token.Value
	for {
		tok, val := l.Scan()
		toks = append(toks, tok)
		vals = append(vals, val)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals, l.Errors()
}

func TestScanPunctuationAndOperators(t *testing.T) {
	tests := []struct {
		src string
		tok token.Token
	}{
		{"+", token.PLUS},
		{"++", token.INC},
		{"+=", token.PLUS_EQ},
		{"-", token.MINUS},
		{"--", token.DEC},
		{"-=", token.MINUS_EQ},
		{"*=", token.STAR_EQ},
		{"/=", token.SLASH_EQ},
		{"%=", token.PERCENT_EQ},
		{"&&", token.AMPAMP},
		{"&=", token.AMP_EQ},
		{"&", token.AMP},
		{"||", token.PIPEPIPE},
		{"|=", token.PIPE_EQ},
		{"|", token.PIPE},
		{"^=", token.CARET_EQ},
		{"^", token.CARET},
		{"~", token.TILDE},
		{"!=", token.NEQ},
		{"!", token.BANG},
		{"==", token.EQL},
		{"=", token.ASSIGN},
		{"<<=", token.SHL_EQ},
		{"<<", token.SHL},
		{"<=", token.LE},
		{"<", token.LT},
		{">>=", token.SHR_EQ},
		{">>", token.SHR},
		{">=", token.GE},
		{">", token.GT},
		{"..", token.DOTDOT},
		{".", token.DOT},
		{"?", token.QUESTION},
		{":", token.COLON},
		{",", token.COMMA},
		{";", token.SEMI},
		{"#", token.HASH},
		{"(", token.LPAREN},
		{")", token.RPAREN},
		{"{", token.LBRACE},
		{"}", token.RBRACE},
		{"[", token.LBRACK},
		{"]", token.RBRACK},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, _, errs := scanAll(tt.src)
			require.Empty(t, errs)
			require.Equal(t, tt.tok, toks[0])
			require.Equal(t, token.EOF, toks[1])
		})
	}
}

func TestScanKeywordsAndIdent(t *testing.T) {
	toks, vals, errs := scanAll("var fn nope")
	require.Empty(t, errs)
	require.Equal(t, token.VAR, toks[0])
	require.Equal(t, token.FN, toks[1])
	require.Equal(t, token.IDENT, toks[2])
	require.Equal(t, "nope", vals[2].Raw)
}

func TestScanIntLiteral(t *testing.T) {
	toks, vals, errs := scanAll("123")
	require.Empty(t, errs)
	require.Equal(t, token.INT, toks[0])
	require.Equal(t, int64(123), vals[0].Int)
}

func TestScanHexIntLiteral(t *testing.T) {
	toks, vals, errs := scanAll("0xFF")
	require.Empty(t, errs)
	require.Equal(t, token.INT, toks[0])
	require.Equal(t, int64(255), vals[0].Int)
}

func TestScanFloatLiteral(t *testing.T) {
	tests := []struct {
		src string
		val float64
	}{
		{"1.5", 1.5},
		{".5", 0.5},
		{"1e3", 1000},
		{"1.5e-2", 0.015},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, vals, errs := scanAll(tt.src)
			require.Empty(t, errs)
			require.Equal(t, token.FLOAT, toks[0])
			require.InDelta(t, tt.val, vals[0].Float, 1e-9)
		})
	}
}

func TestScanStringLiteralWithEscapes(t *testing.T) {
	toks, vals, errs := scanAll(`"a\nb\t\"c\""`)
	require.Empty(t, errs)
	require.Equal(t, token.STRING, toks[0])
	require.Equal(t, "a\nb\t\"c\"", vals[0].String)
}

func TestScanSingleQuotedStringLiteral(t *testing.T) {
	toks, vals, errs := scanAll(`'abc'`)
	require.Empty(t, errs)
	require.Equal(t, token.STRING, toks[0])
	require.Equal(t, "abc", vals[0].String)
}

func TestScanLineComment(t *testing.T) {
	toks, _, errs := scanAll("1 // trailing comment\n2")
	require.Empty(t, errs)
	require.Equal(t, token.INT, toks[0])
	require.Equal(t, token.INT, toks[1])
}

func TestScanBlockComment(t *testing.T) {
	toks, _, errs := scanAll("1 /* inner */ 2")
	require.Empty(t, errs)
	require.Equal(t, token.INT, toks[0])
	require.Equal(t, token.INT, toks[1])
}

func TestScanUnterminatedBlockCommentReportsError(t *testing.T) {
	_, _, errs := scanAll("1 /* never closed")
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "unterminated block comment")
}

func TestScanUnterminatedStringReportsError(t *testing.T) {
	_, _, errs := scanAll(`"never closed`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "unterminated string literal")
}

func TestScanInvalidEscapeReportsError(t *testing.T) {
	_, _, errs := scanAll(`"\q"`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "invalid escape sequence")
}

func TestScanStrayCharacterReportsError(t *testing.T) {
	toks, _, errs := scanAll("@")
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "stray character")
	require.Equal(t, token.ILLEGAL, toks[0])
}

func TestScanElidesShebangAndBOM(t *testing.T) {
	src := "\xEF\xBB\xBF#!/usr/bin/env corvid\nvar x = 1;"
	toks, _, errs := scanAll(src)
	require.Empty(t, errs)
	require.Equal(t, token.VAR, toks[0])
}

func TestScanTracksLineAndColumn(t *testing.T) {
	_, vals, errs := scanAll("var\nfn")
	require.Empty(t, errs)
	line, col := vals[0].Pos.LineCol()
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)
	line, col = vals[1].Pos.LineCol()
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)
}

func TestScanRepeatsEOF(t *testing.T) {
	l := lexer.New([]byte(""))
	tok1, _ := l.Scan()
	tok2, _ := l.Scan()
	require.Equal(t, token.EOF, tok1)
	require.Equal(t, token.EOF, tok2)
}
