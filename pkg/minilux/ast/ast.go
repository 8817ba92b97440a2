package ast

import (
	"bytes"
	"strings"

	"github.com/minilux-lang/minilux/pkg/minilux/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node of every AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

// AssignStatement represents assignments like 'x = 5'
type AssignStatement struct {
	Token lexer.Token // the identifier token
	Name  string
	Value Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	var out bytes.Buffer
	out.WriteString(as.Name)
	out.WriteString(" = ")
	if as.Value != nil {
		out.WriteString(as.Value.String())
	}
	return out.String()
}

// IndexAssignStatement represents indexed assignments like 'arr[0] = 5'
type IndexAssignStatement struct {
	Token lexer.Token // the identifier token
	Name  string
	Index Expression
	Value Expression
}

func (ias *IndexAssignStatement) statementNode()       {}
func (ias *IndexAssignStatement) TokenLiteral() string { return ias.Token.Literal }
func (ias *IndexAssignStatement) String() string {
	var out bytes.Buffer
	out.WriteString(ias.Name)
	out.WriteString("[")
	out.WriteString(ias.Index.String())
	out.WriteString("] = ")
	if ias.Value != nil {
		out.WriteString(ias.Value.String())
	}
	return out.String()
}

// ElseIfClause is one 'elseif cond' arm of an if statement
type ElseIfClause struct {
	Condition Expression
	Body      []Statement
}

// IfStatement represents 'if cond ... elseif cond ... else ... end'
type IfStatement struct {
	Token       lexer.Token // the 'if' token
	Condition   Expression
	Consequence []Statement
	ElseIfs     []*ElseIfClause
	Alternative []Statement // nil when there is no else arm
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(is.Condition.String())
	out.WriteString(" ")
	out.WriteString(blockString(is.Consequence))
	for _, arm := range is.ElseIfs {
		out.WriteString(" elseif ")
		out.WriteString(arm.Condition.String())
		out.WriteString(" ")
		out.WriteString(blockString(arm.Body))
	}
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(blockString(is.Alternative))
	}
	out.WriteString(" end")
	return out.String()
}

// WhileStatement represents 'while cond ... end'
type WhileStatement struct {
	Token     lexer.Token // the 'while' token
	Condition Expression
	Body      []Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer
	out.WriteString("while ")
	out.WriteString(ws.Condition.String())
	out.WriteString(" ")
	out.WriteString(blockString(ws.Body))
	out.WriteString(" end")
	return out.String()
}

// PrintfStatement represents 'printf "fmt", a, b'
type PrintfStatement struct {
	Token  lexer.Token // the 'printf' token
	Format string      // leading string literal, may be empty
	Args   []Expression
}

func (ps *PrintfStatement) statementNode()       {}
func (ps *PrintfStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("printf ")
	out.WriteString(`"` + ps.Format + `"`)
	for _, arg := range ps.Args {
		out.WriteString(", ")
		out.WriteString(arg.String())
	}
	return out.String()
}

// ReadStatement represents 'read var'
type ReadStatement struct {
	Token lexer.Token // the 'read' token
	Name  string
}

func (rs *ReadStatement) statementNode()       {}
func (rs *ReadStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReadStatement) String() string       { return "read " + rs.Name }

// IncStatement represents 'inc var' or 'inc var, delta'
type IncStatement struct {
	Token lexer.Token // the 'inc' token
	Name  string
	Delta Expression
}

func (is *IncStatement) statementNode()       {}
func (is *IncStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IncStatement) String() string {
	return "inc " + is.Name + ", " + is.Delta.String()
}

// DecStatement represents 'dec var' or 'dec var, delta'
type DecStatement struct {
	Token lexer.Token // the 'dec' token
	Name  string
	Delta Expression
}

func (ds *DecStatement) statementNode()       {}
func (ds *DecStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DecStatement) String() string {
	return "dec " + ds.Name + ", " + ds.Delta.String()
}

// PushStatement represents 'push var, value'
type PushStatement struct {
	Token lexer.Token // the 'push' token
	Name  string
	Value Expression
}

func (ps *PushStatement) statementNode()       {}
func (ps *PushStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PushStatement) String() string {
	return "push " + ps.Name + ", " + ps.Value.String()
}

// PopStatement represents 'pop var'
type PopStatement struct {
	Token lexer.Token // the 'pop' token
	Name  string
}

func (ps *PopStatement) statementNode()       {}
func (ps *PopStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PopStatement) String() string       { return "pop " + ps.Name }

// ShiftStatement represents 'shift var'
type ShiftStatement struct {
	Token lexer.Token // the 'shift' token
	Name  string
}

func (ss *ShiftStatement) statementNode()       {}
func (ss *ShiftStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *ShiftStatement) String() string       { return "shift " + ss.Name }

// UnshiftStatement represents 'unshift var, value'
type UnshiftStatement struct {
	Token lexer.Token // the 'unshift' token
	Name  string
	Value Expression
}

func (us *UnshiftStatement) statementNode()       {}
func (us *UnshiftStatement) TokenLiteral() string { return us.Token.Literal }
func (us *UnshiftStatement) String() string {
	return "unshift " + us.Name + ", " + us.Value.String()
}

// SockOpenStatement represents 'sockopen name, host, port'
type SockOpenStatement struct {
	Token lexer.Token // the 'sockopen' token
	Name  string
	Host  Expression
	Port  Expression
}

func (so *SockOpenStatement) statementNode()       {}
func (so *SockOpenStatement) TokenLiteral() string { return so.Token.Literal }
func (so *SockOpenStatement) String() string {
	return "sockopen " + so.Name + ", " + so.Host.String() + ", " + so.Port.String()
}

// SockCloseStatement represents 'sockclose name'
type SockCloseStatement struct {
	Token lexer.Token // the 'sockclose' token
	Name  string
}

func (sc *SockCloseStatement) statementNode()       {}
func (sc *SockCloseStatement) TokenLiteral() string { return sc.Token.Literal }
func (sc *SockCloseStatement) String() string       { return "sockclose " + sc.Name }

// SockWriteStatement represents 'sockwrite name, data'
type SockWriteStatement struct {
	Token lexer.Token // the 'sockwrite' token
	Name  string
	Data  Expression
}

func (sw *SockWriteStatement) statementNode()       {}
func (sw *SockWriteStatement) TokenLiteral() string { return sw.Token.Literal }
func (sw *SockWriteStatement) String() string {
	return "sockwrite " + sw.Name + ", " + sw.Data.String()
}

// SockReadStatement represents 'sockread name, var'
type SockReadStatement struct {
	Token lexer.Token // the 'sockread' token
	Name  string
	Var   string
}

func (sr *SockReadStatement) statementNode()       {}
func (sr *SockReadStatement) TokenLiteral() string { return sr.Token.Literal }
func (sr *SockReadStatement) String() string       { return "sockread " + sr.Name + ", " + sr.Var }

// IncludeStatement represents 'include "path.lux"'
type IncludeStatement struct {
	Token lexer.Token // the 'include' token
	Path  string
}

func (is *IncludeStatement) statementNode()       {}
func (is *IncludeStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IncludeStatement) String() string       { return `include "` + is.Path + `"` }

// FuncStatement represents 'func name(a, b) ... end'
type FuncStatement struct {
	Token  lexer.Token // the 'func' token
	Name   string
	Params []string
	Body   []Statement
}

func (fs *FuncStatement) statementNode()       {}
func (fs *FuncStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FuncStatement) String() string {
	var out bytes.Buffer
	out.WriteString("func ")
	out.WriteString(fs.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(fs.Params, ", "))
	out.WriteString(") ")
	out.WriteString(blockString(fs.Body))
	out.WriteString(" end")
	return out.String()
}

// ReturnStatement represents 'return' or 'return expr'
type ReturnStatement struct {
	Token lexer.Token // the 'return' token
	Value Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// ExpressionStatement represents a bare expression used as a statement
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// Identifier represents a variable reference
type Identifier struct {
	Token lexer.Token // the lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral represents integer literals
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// StringLiteral represents string literals
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return `"` + sl.Value + `"` }

// RegexLiteral represents /pattern/flags literals
type RegexLiteral struct {
	Token   lexer.Token
	Pattern string
	Flags   string
}

func (rl *RegexLiteral) expressionNode()      {}
func (rl *RegexLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RegexLiteral) String() string       { return "/" + rl.Pattern + "/" + rl.Flags }

// ArrayLiteral represents array literals like [1, 2, 3]
type ArrayLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	elements := make([]string, 0, len(al.Elements))
	for _, el := range al.Elements {
		elements = append(elements, el.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// PrefixExpression represents '!expr' and '-expr'
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents binary operator expressions
type InfixExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// IndexExpression represents 'expr[index]'
type IndexExpression struct {
	Token lexer.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

// CallExpression represents 'name(args)'. Minilux functions are called by
// name, never through an arbitrary expression.
type CallExpression struct {
	Token lexer.Token // the identifier token
	Name  string
	Args  []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, 0, len(ce.Args))
	for _, a := range ce.Args {
		args = append(args, a.String())
	}
	return ce.Name + "(" + strings.Join(args, ", ") + ")"
}

// SubstExpression represents 's/pattern/replacement/flags(input)'
type SubstExpression struct {
	Token       lexer.Token // the lexer.SUBST token
	Pattern     string
	Replacement string
	Flags       string
	Input       Expression
}

func (se *SubstExpression) expressionNode()      {}
func (se *SubstExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SubstExpression) String() string {
	return "s/" + se.Pattern + "/" + se.Replacement + "/" + se.Flags + "(" + se.Input.String() + ")"
}

func blockString(stmts []Statement) string {
	parts := make([]string, 0, len(stmts))
	for _, s := range stmts {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "; ")
}
