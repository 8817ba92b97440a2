package lexer

import (
	"fmt"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE // statement separator

	// Identifiers and literals
	IDENT  // counter, line, x, y, ...
	INT    // 1343456
	STRING // "foobar"
	REGEX  // /pattern/flags
	SUBST  // s/pattern/replacement/flags

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // !
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	AND      // &&
	OR       // ||
	MATCH    // =~

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	IF        // "if"
	ELSEIF    // "elseif"
	ELSE      // "else"
	END       // "end"
	WHILE     // "while"
	FUNC      // "func"
	RETURN    // "return"
	INCLUDE   // "include"
	PRINTF    // "printf"
	READ      // "read"
	INC       // "inc"
	DEC       // "dec"
	PUSH      // "push"
	POP       // "pop"
	SHIFT     // "shift"
	UNSHIFT   // "unshift"
	SOCKOPEN  // "sockopen"
	SOCKCLOSE // "sockclose"
	SOCKWRITE // "sockwrite"
	SOCKREAD  // "sockread"
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case STRING:
		return "STRING"
	case REGEX:
		return "REGEX"
	case SUBST:
		return "SUBST"
	case ASSIGN:
		return "="
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case BANG:
		return "!"
	case ASTERISK:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	case LT:
		return "<"
	case GT:
		return ">"
	case LTE:
		return "<="
	case GTE:
		return ">="
	case EQ:
		return "=="
	case NOT_EQ:
		return "!="
	case AND:
		return "&&"
	case OR:
		return "||"
	case MATCH:
		return "=~"
	case COMMA:
		return ","
	case SEMICOLON:
		return ";"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACKET:
		return "["
	case RBRACKET:
		return "]"
	case IF:
		return "if"
	case ELSEIF:
		return "elseif"
	case ELSE:
		return "else"
	case END:
		return "end"
	case WHILE:
		return "while"
	case FUNC:
		return "func"
	case RETURN:
		return "return"
	case INCLUDE:
		return "include"
	case PRINTF:
		return "printf"
	case READ:
		return "read"
	case INC:
		return "inc"
	case DEC:
		return "dec"
	case PUSH:
		return "push"
	case POP:
		return "pop"
	case SHIFT:
		return "shift"
	case UNSHIFT:
		return "unshift"
	case SOCKOPEN:
		return "sockopen"
	case SOCKCLOSE:
		return "sockclose"
	case SOCKWRITE:
		return "sockwrite"
	case SOCKREAD:
		return "sockread"
	default:
		return "UNKNOWN"
	}
}

// keywords maps identifier text to keyword token types
var keywords = map[string]TokenType{
	"if":        IF,
	"elseif":    ELSEIF,
	"else":      ELSE,
	"end":       END,
	"while":     WHILE,
	"func":      FUNC,
	"return":    RETURN,
	"include":   INCLUDE,
	"printf":    PRINTF,
	"read":      READ,
	"inc":       INC,
	"dec":       DEC,
	"push":      PUSH,
	"pop":       POP,
	"shift":     SHIFT,
	"unshift":   UNSHIFT,
	"sockopen":  SOCKOPEN,
	"sockclose": SOCKCLOSE,
	"sockwrite": SOCKWRITE,
	"sockread":  SOCKREAD,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer tokenizes Minilux source code
type Lexer struct {
	filename      string
	input         string
	position      int  // current position in input (points to current char)
	readPosition  int  // current reading position in input (after current char)
	ch            byte // current char under examination
	line          int
	column        int
	lastTokenType TokenType // previous significant token, for regex disambiguation
}

// New creates a lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{
		filename: "<input>",
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// NewWithFilename creates a lexer that reports the given filename in tokens
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// Filename returns the name of the source being lexed
func (l *Lexer) Filename() string {
	return l.filename
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()
	l.skipComment()

	line := l.line
	column := l.column

	switch l.ch {
	case '\n':
		tok = Token{Type: NEWLINE, Literal: "\\n", Line: line, Column: column}
	case '=':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Type: EQ, Literal: "==", Line: line, Column: column}
		case '~':
			l.readChar()
			tok = Token{Type: MATCH, Literal: "=~", Line: line, Column: column}
		default:
			tok = newToken(ASSIGN, l.ch, line, column)
		}
	case '+':
		tok = newToken(PLUS, l.ch, line, column)
	case '-':
		tok = newToken(MINUS, l.ch, line, column)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: NOT_EQ, Literal: "!=", Line: line, Column: column}
		} else {
			tok = newToken(BANG, l.ch, line, column)
		}
	case '*':
		tok = newToken(ASTERISK, l.ch, line, column)
	case '/':
		if l.shouldTreatAsRegex(l.lastTokenType) {
			pattern, flags, ok := l.readRegex()
			tok = Token{Type: REGEX, Literal: "/" + pattern + "/" + flags, Line: line, Column: column}
			if !ok {
				tok.Type = ILLEGAL
			}
			l.lastTokenType = tok.Type
			return tok
		}
		tok = newToken(SLASH, l.ch, line, column)
	case '%':
		tok = newToken(PERCENT, l.ch, line, column)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: LTE, Literal: "<=", Line: line, Column: column}
		} else {
			tok = newToken(LT, l.ch, line, column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: GTE, Literal: ">=", Line: line, Column: column}
		} else {
			tok = newToken(GT, l.ch, line, column)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = Token{Type: AND, Literal: "&&", Line: line, Column: column}
		} else {
			tok = newToken(ILLEGAL, l.ch, line, column)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = Token{Type: OR, Literal: "||", Line: line, Column: column}
		} else {
			tok = newToken(ILLEGAL, l.ch, line, column)
		}
	case ',':
		tok = newToken(COMMA, l.ch, line, column)
	case ';':
		tok = newToken(SEMICOLON, l.ch, line, column)
	case '(':
		tok = newToken(LPAREN, l.ch, line, column)
	case ')':
		tok = newToken(RPAREN, l.ch, line, column)
	case '[':
		tok = newToken(LBRACKET, l.ch, line, column)
	case ']':
		tok = newToken(RBRACKET, l.ch, line, column)
	case '"':
		str, ok := l.readString()
		tok = Token{Type: STRING, Literal: str, Line: line, Column: column}
		if !ok {
			tok.Type = ILLEGAL
		}
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: line, Column: column}
	default:
		if l.ch == 's' && l.peekChar() == '/' && l.shouldTreatAsRegex(l.lastTokenType) {
			// s/pattern/replacement/flags in operand position
			lit, ok := l.readSubst()
			tok = Token{Type: SUBST, Literal: lit, Line: line, Column: column}
			if !ok {
				tok.Type = ILLEGAL
			}
			l.lastTokenType = tok.Type
			return tok
		}
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			tok.Line = line
			tok.Column = column
			l.lastTokenType = tok.Type
			return tok
		}
		if isDigit(l.ch) {
			tok.Literal = l.readNumber()
			tok.Type = INT
			tok.Line = line
			tok.Column = column
			l.lastTokenType = tok.Type
			return tok
		}
		tok = newToken(ILLEGAL, l.ch, line, column)
	}

	l.readChar()
	l.lastTokenType = tok.Type
	return tok
}

// shouldTreatAsRegex decides whether a '/' starts a regex literal based on
// the previous token. In operand position it is a regex, after a complete
// operand it is division.
func (l *Lexer) shouldTreatAsRegex(lastToken TokenType) bool {
	switch lastToken {
	case ASSIGN, EQ, NOT_EQ, LT, GT, LTE, GTE,
		AND, OR, MATCH, BANG,
		LPAREN, LBRACKET, COMMA, SEMICOLON, NEWLINE,
		RETURN, IF, ELSEIF, WHILE, PRINTF:
		return true
	case 0: // start of input
		return true
	default:
		return false
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// skipComment skips a '#' comment up to (not including) the end of line, so
// the statement separator is still emitted.
func (l *Lexer) skipComment() {
	for l.ch == '#' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString reads a double-quoted string. Only \" and \\ are unescaped
// here; \n and \t stay as two-character sequences for printf to substitute.
func (l *Lexer) readString() (string, bool) {
	var out []byte
	for {
		l.readChar()
		switch l.ch {
		case '"':
			return string(out), true
		case 0, '\n':
			return string(out), false // unterminated
		case '\\':
			switch l.peekChar() {
			case '"':
				l.readChar()
				out = append(out, '"')
			case '\\':
				l.readChar()
				out = append(out, '\\')
			default:
				out = append(out, l.ch)
			}
		default:
			out = append(out, l.ch)
		}
	}
}

// readRegex reads /pattern/flags with the opening '/' as the current char.
// Escaped slashes stay escaped in the returned pattern; the parser unescapes
// them after splitting pattern from flags.
func (l *Lexer) readRegex() (string, string, bool) {
	var pattern []byte
	for {
		l.readChar()
		switch l.ch {
		case '/':
			flags := l.readFlags()
			return string(pattern), flags, true
		case 0, '\n':
			return string(pattern), "", false // unterminated
		case '\\':
			pattern = append(pattern, l.ch)
			if l.peekChar() != 0 && l.peekChar() != '\n' {
				l.readChar()
				pattern = append(pattern, l.ch)
			}
		default:
			pattern = append(pattern, l.ch)
		}
	}
}

// readSubst reads s/pattern/replacement/flags with the 's' as the current
// char. The literal keeps its delimiters and escapes for the parser.
func (l *Lexer) readSubst() (string, bool) {
	var lit []byte
	lit = append(lit, l.ch) // 's'
	l.readChar()            // now on first '/'
	lit = append(lit, l.ch)
	slashes := 1
	for slashes < 3 {
		l.readChar()
		switch l.ch {
		case 0, '\n':
			return string(lit), false // unterminated
		case '\\':
			lit = append(lit, l.ch)
			if l.peekChar() != 0 && l.peekChar() != '\n' {
				l.readChar()
				lit = append(lit, l.ch)
			}
		case '/':
			lit = append(lit, l.ch)
			slashes++
		default:
			lit = append(lit, l.ch)
		}
	}
	lit = append(lit, []byte(l.readFlags())...)
	return string(lit), true
}

// readFlags reads trailing regex flag letters after the closing '/'.
func (l *Lexer) readFlags() string {
	var flags []byte
	for {
		next := l.peekChar()
		if next == 'i' || next == 'm' || next == 's' || next == 'g' {
			l.readChar()
			flags = append(flags, l.ch)
		} else {
			l.readChar() // step past the closing delimiter
			return string(flags)
		}
	}
}

func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
