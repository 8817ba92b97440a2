package parser

import (
	"strconv"
	"strings"

	"github.com/minilux-lang/minilux/pkg/minilux/ast"
	perrors "github.com/minilux-lang/minilux/pkg/minilux/errors"
	"github.com/minilux-lang/minilux/pkg/minilux/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // ==, !=, =~
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -x or !x
	INDEX       // array[index]
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.OR:       LOGIC_OR,
	lexer.AND:      LOGIC_AND,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.MATCH:    EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LTE:      LESSGREATER,
	lexer.GTE:      LESSGREATER,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.SLASH:    PRODUCT,
	lexer.ASTERISK: PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.LBRACKET: INDEX,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*perrors.MiniluxError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.REGEX, p.parseRegexLiteral)
	p.registerPrefix(lexer.SUBST, p.parseSubstExpression)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.PERCENT, p.parseInfixExpression)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.MATCH, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.LTE, p.parseInfixExpression)
	p.registerInfix(lexer.GTE, p.parseInfixExpression)
	p.registerInfix(lexer.AND, p.parseInfixExpression)
	p.registerInfix(lexer.OR, p.parseInfixExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)

	// Read two tokens so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Errors returns parser errors as plain strings
func (p *Parser) Errors() []string {
	errs := make([]string, 0, len(p.structuredErrors))
	for _, e := range p.structuredErrors {
		errs = append(errs, e.String())
	}
	return errs
}

// StructuredErrors returns parser errors with position information
func (p *Parser) StructuredErrors() []*perrors.MiniluxError {
	return p.structuredErrors
}

func (p *Parser) addError(code string, tok lexer.Token, data map[string]any) {
	err := perrors.NewWithPosition(code, tok.Line, tok.Column, data)
	err.File = p.l.Filename()
	p.structuredErrors = append(p.structuredErrors, err)
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError("PARSE-0001", p.peekToken, map[string]any{
		"Expected": t.String(),
		"Got":      p.peekToken.Literal,
	})
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) atSeparator() bool {
	return p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.SEMICOLON)
}

// ParseProgram parses a whole source file into a statement sequence
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(lexer.EOF) {
		if p.atSeparator() {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// parseStatement parses one statement, leaving curToken on its last token
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FUNC:
		return p.parseFuncStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.INCLUDE:
		return p.parseIncludeStatement()
	case lexer.PRINTF:
		return p.parsePrintfStatement()
	case lexer.READ:
		return p.parseReadStatement()
	case lexer.INC, lexer.DEC:
		return p.parseIncDecStatement()
	case lexer.PUSH, lexer.UNSHIFT:
		return p.parsePushUnshiftStatement()
	case lexer.POP, lexer.SHIFT:
		return p.parsePopShiftStatement()
	case lexer.SOCKOPEN:
		return p.parseSockOpenStatement()
	case lexer.SOCKCLOSE:
		return p.parseSockCloseStatement()
	case lexer.SOCKWRITE:
		return p.parseSockWriteStatement()
	case lexer.SOCKREAD:
		return p.parseSockReadStatement()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.ASSIGN) {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	case lexer.INT, lexer.STRING, lexer.REGEX, lexer.SUBST,
		lexer.MINUS, lexer.BANG, lexer.LPAREN, lexer.LBRACKET:
		return p.parseExpressionStatement()
	default:
		p.addError("PARSE-0002", p.curToken, map[string]any{"Token": p.curToken.Literal})
		return nil
	}
}

func (p *Parser) parseAssignStatement() ast.Statement {
	stmt := &ast.AssignStatement{Token: p.curToken, Name: p.curToken.Literal}

	p.nextToken() // '='
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)

	return stmt
}

// parseExpressionStatement parses a bare expression statement. When the
// expression turns out to be a single-level index on a variable followed by
// '=', it becomes an indexed assignment instead.
func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		idx, ok := expr.(*ast.IndexExpression)
		if !ok {
			p.addError("PARSE-0002", p.peekToken, map[string]any{"Token": "="})
			return nil
		}
		ident, ok := idx.Left.(*ast.Identifier)
		if !ok {
			p.addError("PARSE-0002", p.peekToken, map[string]any{"Token": "="})
			return nil
		}
		p.nextToken() // '='
		p.nextToken()
		return &ast.IndexAssignStatement{
			Token: tok,
			Name:  ident.Value,
			Index: idx.Index,
			Value: p.parseExpression(LOWEST),
		}
	}

	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

// parseBlockUntil parses statements until one of the stop keywords (or EOF)
// is the current token. The stop token is not consumed.
func (p *Parser) parseBlockUntil(stops ...lexer.TokenType) []ast.Statement {
	stmts := []ast.Statement{}

	for {
		if p.atSeparator() {
			p.nextToken()
			continue
		}
		if p.curTokenIs(lexer.EOF) {
			return stmts
		}
		for _, stop := range stops {
			if p.curTokenIs(stop) {
				return stmts
			}
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	p.nextToken()

	stmt.Consequence = p.parseBlockUntil(lexer.ELSEIF, lexer.ELSE, lexer.END)

	for p.curTokenIs(lexer.ELSEIF) {
		arm := &ast.ElseIfClause{}
		p.nextToken()
		arm.Condition = p.parseExpression(LOWEST)
		p.nextToken()
		arm.Body = p.parseBlockUntil(lexer.ELSEIF, lexer.ELSE, lexer.END)
		stmt.ElseIfs = append(stmt.ElseIfs, arm)
	}

	if p.curTokenIs(lexer.ELSE) {
		p.nextToken()
		stmt.Alternative = p.parseBlockUntil(lexer.END)
	}

	if !p.curTokenIs(lexer.END) {
		p.addError("PARSE-0006", stmt.Token, map[string]any{"Keyword": "if"})
		return nil
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	p.nextToken()

	stmt.Body = p.parseBlockUntil(lexer.END)

	if !p.curTokenIs(lexer.END) {
		p.addError("PARSE-0006", stmt.Token, map[string]any{"Keyword": "while"})
		return nil
	}

	return stmt
}

func (p *Parser) parseFuncStatement() ast.Statement {
	stmt := &ast.FuncStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	stmt.Params = p.parseFunctionParameters()
	if stmt.Params == nil {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseBlockUntil(lexer.END)

	if !p.curTokenIs(lexer.END) {
		p.addError("PARSE-0006", stmt.Token, map[string]any{"Keyword": "func"})
		return nil
	}

	return stmt
}

// parseFunctionParameters parses '(a, b, c)' with curToken on '('
func (p *Parser) parseFunctionParameters() []string {
	params := []string{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	params = append(params, p.curToken.Literal)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		params = append(params, p.curToken.Literal)
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return params
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.NEWLINE) || p.peekTokenIs(lexer.SEMICOLON) ||
		p.peekTokenIs(lexer.EOF) || p.peekTokenIs(lexer.END) {
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)

	return stmt
}

func (p *Parser) parseIncludeStatement() ast.Statement {
	stmt := &ast.IncludeStatement{Token: p.curToken}

	if !p.expectPeek(lexer.STRING) {
		return nil
	}
	stmt.Path = p.curToken.Literal

	return stmt
}

// parsePrintfStatement parses 'printf "fmt", a, b'. The format must be a
// standalone leading string literal; arguments follow after commas.
func (p *Parser) parsePrintfStatement() ast.Statement {
	stmt := &ast.PrintfStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.NEWLINE) || p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.EOF) {
		return stmt
	}

	if p.peekTokenIs(lexer.STRING) {
		p.nextToken()
		stmt.Format = p.curToken.Literal
	} else {
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		stmt.Args = append(stmt.Args, arg)
	}

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		stmt.Args = append(stmt.Args, arg)
	}

	return stmt
}

func (p *Parser) parseReadStatement() ast.Statement {
	stmt := &ast.ReadStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	return stmt
}

// parseIncDecStatement parses 'inc x' / 'inc x, n' and the dec forms.
// A missing delta defaults to 1.
func (p *Parser) parseIncDecStatement() ast.Statement {
	tok := p.curToken

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	delta := ast.Expression(&ast.IntegerLiteral{
		Token: lexer.Token{Type: lexer.INT, Literal: "1", Line: tok.Line, Column: tok.Column},
		Value: 1,
	})
	if p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		delta = p.parseExpression(LOWEST)
	}

	if tok.Type == lexer.INC {
		return &ast.IncStatement{Token: tok, Name: name, Delta: delta}
	}
	return &ast.DecStatement{Token: tok, Name: name, Delta: delta}
}

func (p *Parser) parsePushUnshiftStatement() ast.Statement {
	tok := p.curToken

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	if !p.expectPeek(lexer.COMMA) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)

	if tok.Type == lexer.PUSH {
		return &ast.PushStatement{Token: tok, Name: name, Value: value}
	}
	return &ast.UnshiftStatement{Token: tok, Name: name, Value: value}
}

func (p *Parser) parsePopShiftStatement() ast.Statement {
	tok := p.curToken

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	if tok.Type == lexer.POP {
		return &ast.PopStatement{Token: tok, Name: p.curToken.Literal}
	}
	return &ast.ShiftStatement{Token: tok, Name: p.curToken.Literal}
}

func (p *Parser) parseSockOpenStatement() ast.Statement {
	stmt := &ast.SockOpenStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(lexer.COMMA) {
		return nil
	}
	p.nextToken()
	stmt.Host = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.COMMA) {
		return nil
	}
	p.nextToken()
	stmt.Port = p.parseExpression(LOWEST)

	return stmt
}

func (p *Parser) parseSockCloseStatement() ast.Statement {
	stmt := &ast.SockCloseStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	return stmt
}

func (p *Parser) parseSockWriteStatement() ast.Statement {
	stmt := &ast.SockWriteStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(lexer.COMMA) {
		return nil
	}
	p.nextToken()
	stmt.Data = p.parseExpression(LOWEST)

	return stmt
}

func (p *Parser) parseSockReadStatement() ast.Statement {
	stmt := &ast.SockReadStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(lexer.COMMA) {
		return nil
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Var = p.curToken.Literal

	return stmt
}

// parseExpression is the Pratt parser core
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError("PARSE-0002", p.curToken, map[string]any{"Token": p.curToken.Literal})
		return nil
	}
	leftExp := prefix()

	for !p.peekTokenIs(lexer.NEWLINE) && !p.peekTokenIs(lexer.SEMICOLON) &&
		precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

// parseIdentifier parses a variable reference or, when followed directly by
// '(', a call by name.
func (p *Parser) parseIdentifier() ast.Expression {
	if p.peekTokenIs(lexer.LPAREN) {
		return p.parseCallExpression()
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseCallExpression() ast.Expression {
	expr := &ast.CallExpression{Token: p.curToken, Name: p.curToken.Literal}

	p.nextToken() // '('
	expr.Args = p.parseExpressionList(lexer.RPAREN)

	return expr
}

// parseExpressionList parses a comma-separated list with curToken on the
// opening delimiter, consuming through the given end token.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("PARSE-0005", p.curToken, map[string]any{"Literal": p.curToken.Literal})
		return nil
	}
	lit.Value = value

	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// parseRegexLiteral splits a '/pattern/flags' token from the lexer
func (p *Parser) parseRegexLiteral() ast.Expression {
	lit := &ast.RegexLiteral{Token: p.curToken}

	body := p.curToken.Literal
	if len(body) < 2 || body[0] != '/' {
		p.addError("PARSE-0004", p.curToken, nil)
		return nil
	}
	body = body[1:]

	close := findUnescapedSlash(body)
	if close < 0 {
		p.addError("PARSE-0004", p.curToken, nil)
		return nil
	}

	lit.Pattern = unescapeSlashes(body[:close])
	lit.Flags = body[close+1:]

	return lit
}

// parseSubstExpression splits an 's/pattern/replacement/flags' token and
// parses its parenthesized input expression.
func (p *Parser) parseSubstExpression() ast.Expression {
	expr := &ast.SubstExpression{Token: p.curToken}

	body := strings.TrimPrefix(p.curToken.Literal, "s")
	if len(body) < 3 || body[0] != '/' {
		p.addError("PARSE-0004", p.curToken, nil)
		return nil
	}
	body = body[1:]

	first := findUnescapedSlash(body)
	if first < 0 {
		p.addError("PARSE-0004", p.curToken, nil)
		return nil
	}
	rest := body[first+1:]
	second := findUnescapedSlash(rest)
	if second < 0 {
		p.addError("PARSE-0004", p.curToken, nil)
		return nil
	}

	expr.Pattern = unescapeSlashes(body[:first])
	expr.Replacement = unescapeSlashes(rest[:second])
	expr.Flags = rest[second+1:]

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	expr.Input = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)

	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)

	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	expr := p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return expr
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Token: p.curToken}
	arr.Elements = p.parseExpressionList(lexer.RBRACKET)
	return arr
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	return expr
}

// findUnescapedSlash returns the index of the first '/' not preceded by a
// backslash, or -1.
func findUnescapedSlash(s string) int {
	escaped := false
	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case '/':
			return i
		}
	}
	return -1
}

// unescapeSlashes turns '\/' back into '/' while leaving every other escape
// for the regex engine.
func unescapeSlashes(s string) string {
	return strings.ReplaceAll(s, `\/`, `/`)
}
