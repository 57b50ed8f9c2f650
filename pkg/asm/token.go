package asm

import (
	"fmt"
	"regexp"
)

type TokenType int

const (
	EOF TokenType = iota // end of input

	FUNC  // func
	END   // end
	ID    // mnemonic, function or label name
	NUM   // signed integer
	COLON // :

	ILLEGAL // illegal token
)

var tokenNames = map[TokenType]string{
	EOF:     "$",
	FUNC:    "func",
	END:     "end",
	ID:      "id",
	NUM:     "num",
	COLON:   ":",
	ILLEGAL: "illegal",
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Type   TokenType // Type of the token
	Lexeme string    // Actual string from source code
	Pos    Position  // Position in source code
}

func (t Token) String() string {
	return fmt.Sprintf("T_{%s, %q, %s}", t.Type, t.Lexeme, t.Pos)
}

// Token patterns, tried in order
var tokenRegexes = []struct {
	Type    TokenType
	Pattern *regexp.Regexp
}{
	{FUNC, regexp.MustCompile(`^func\b`)},
	{END, regexp.MustCompile(`^end\b`)},
	{NUM, regexp.MustCompile(`^[+-]?\d+\b`)},
	{ID, regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*`)},
	{COLON, regexp.MustCompile(`^:`)},
}

var (
	whitespaceRegex = regexp.MustCompile(`^\s+`)
	commentRegex    = regexp.MustCompile(`^//[^\n]*`)
)

// MatchToken matches the token at the start of s. Whitespace and comments
// match as EOF with a non-empty lexeme so the caller can skip them.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	} else if match := whitespaceRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := commentRegex.FindString(s); match != "" {
		return EOF, match, true
	}

	for _, tr := range tokenRegexes {
		if match := tr.Pattern.FindString(s); match != "" {
			return tr.Type, match, true
		}
	}

	return ILLEGAL, s[:1], false
}
