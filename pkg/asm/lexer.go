package asm

type Lexer struct {
	input    string // input string to be tokenized
	position int    // current position in the input string
	line     int    // current line number for error reporting
	column   int    // current column number for error reporting
}

// NewLexer creates a new lexer instance
func NewLexer(s string) *Lexer {
	return &Lexer{
		input:  s,
		line:   1,
		column: 1,
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	for {
		pos := l.currentPosition()
		tokenType, lexeme, matched := MatchToken(l.input[l.position:])

		switch {
		case tokenType == EOF && lexeme == "":
			return Token{Type: EOF, Pos: pos}

		case tokenType == EOF:
			// whitespace or comment
			l.advance(len(lexeme))

		case !matched:
			l.advance(len(lexeme))
			return Token{Type: ILLEGAL, Lexeme: lexeme, Pos: pos}

		default:
			l.advance(len(lexeme))
			return Token{Type: tokenType, Lexeme: lexeme, Pos: pos}
		}
	}
}

// Peek returns the next token without advancing the position
func (l *Lexer) Peek() Token {
	cpos, cline, ccol := l.position, l.line, l.column
	token := l.NextToken()
	l.position, l.line, l.column = cpos, cline, ccol

	return token
}

// advance moves the lexer position by n bytes, tracking lines and columns
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.position >= len(l.input) {
			break
		}

		if l.input[l.position] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}

		l.position++
	}
}

func (l *Lexer) currentPosition() Position {
	return Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}
