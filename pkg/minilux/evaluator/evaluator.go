// Package evaluator executes Minilux programs.
//
// Values are represented by the Object interface. Hard failures travel
// through evaluation as *Error objects; soft problems are warnings on the
// Environment's diagnostic writer. The Environment is a single flat scope:
// function calls shadow parameter names for the duration of the call and
// restore the caller's bindings afterwards.
package evaluator

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/minilux-lang/minilux/pkg/minilux/ast"
	perrors "github.com/minilux-lang/minilux/pkg/minilux/errors"
)

// ObjectType identifies the runtime type of a value
type ObjectType string

const (
	INTEGER_OBJ      ObjectType = "INTEGER"
	STRING_OBJ       ObjectType = "STRING"
	ARRAY_OBJ        ObjectType = "ARRAY"
	PATTERN_OBJ      ObjectType = "PATTERN"
	NULL_OBJ         ObjectType = "NULL"
	RETURN_VALUE_OBJ ObjectType = "RETURN_VALUE"
	ERROR_OBJ        ObjectType = "ERROR"
)

// Object is the interface all Minilux values implement
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer is a 64-bit signed integer value
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

// String is a text value
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Array is an ordered sequence of values
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	parts := make([]string, 0, len(a.Elements))
	for _, el := range a.Elements {
		if s, ok := el.(*String); ok {
			parts = append(parts, strconv.Quote(s.Value))
		} else {
			parts = append(parts, el.Inspect())
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Pattern is a regex literal value. The pattern text is kept verbatim for
// display; compilation happens at match/substitution time so flags on the
// use site apply.
type Pattern struct {
	Pattern string
	Flags   string
}

func (p *Pattern) Type() ObjectType { return PATTERN_OBJ }
func (p *Pattern) Inspect() string {
	return "/" + p.Pattern + "/" + p.Flags
}

// Null is the nil value
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "nil" }

// ReturnValue wraps a value travelling up from a return statement
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error wraps a structured error travelling through evaluation
type Error struct {
	Err *perrors.MiniluxError
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Err.Message }

// NULL is the shared nil instance
var NULL = &Null{}

// Logger receives program output from printf statements
type Logger interface {
	Print(s string)
}

type stdoutLogger struct{}

func (stdoutLogger) Print(s string) { fmt.Fprint(os.Stdout, s) }

// DefaultLogger writes program output to stdout
var DefaultLogger Logger = stdoutLogger{}

// Function is a user-defined function: parameter names and a body
type Function struct {
	Params []string
	Body   []ast.Statement
}

// Environment holds everything one interpreter run owns: the flat variable
// scope, the function and socket tables, the base-directory stack and
// module search paths for includes, and the I/O endpoints.
type Environment struct {
	store     map[string]Object
	functions map[string]*Function
	sockets   map[string]net.Conn

	baseDirs    []string
	modulePaths []string
	including   map[string]bool

	// Logger receives printf output; nil means stdout.
	Logger Logger
	// Diag receives non-fatal warnings; nil means stderr.
	Diag io.Writer
	// Input feeds the read statement; nil means stdin. Set it before the
	// first read statement runs: the reader is buffered once.
	Input io.Reader

	inputReader *bufio.Reader
}

// NewEnvironment creates an empty environment
func NewEnvironment() *Environment {
	return &Environment{
		store:     make(map[string]Object),
		functions: make(map[string]*Function),
		sockets:   make(map[string]net.Conn),
		including: make(map[string]bool),
	}
}

// Get returns the value bound to name, or false when unbound
func (env *Environment) Get(name string) (Object, bool) {
	obj, ok := env.store[name]
	return obj, ok
}

// GetOrNil returns the value bound to name, or NULL when unbound
func (env *Environment) GetOrNil(name string) Object {
	if obj, ok := env.store[name]; ok {
		return obj
	}
	return NULL
}

// Set binds name to value in the flat scope
func (env *Environment) Set(name string, val Object) {
	env.store[name] = val
}

// Unset removes name from the flat scope
func (env *Environment) Unset(name string) {
	delete(env.store, name)
}

// Vars returns a snapshot copy of the variable table
func (env *Environment) Vars() map[string]Object {
	out := make(map[string]Object, len(env.store))
	for k, v := range env.store {
		out[k] = v
	}
	return out
}

// GetFunction looks up a user-defined function by name
func (env *Environment) GetFunction(name string) (*Function, bool) {
	fn, ok := env.functions[name]
	return fn, ok
}

// SetFunction defines or redefines a function
func (env *Environment) SetFunction(name string, fn *Function) {
	env.functions[name] = fn
}

// FunctionNames returns the names of all defined functions
func (env *Environment) FunctionNames() []string {
	names := make([]string, 0, len(env.functions))
	for name := range env.functions {
		names = append(names, name)
	}
	return names
}

// PushBaseDir makes dir the directory relative includes resolve against
func (env *Environment) PushBaseDir(dir string) {
	env.baseDirs = append(env.baseDirs, dir)
}

// PopBaseDir removes the most recent base directory
func (env *Environment) PopBaseDir() {
	if len(env.baseDirs) > 0 {
		env.baseDirs = env.baseDirs[:len(env.baseDirs)-1]
	}
}

// CurrentBaseDir returns the directory of the file currently executing,
// or "" when none was pushed.
func (env *Environment) CurrentBaseDir() string {
	if len(env.baseDirs) == 0 {
		return ""
	}
	return env.baseDirs[len(env.baseDirs)-1]
}

// SetModulePaths replaces the module search path list
func (env *Environment) SetModulePaths(paths []string) {
	env.modulePaths = paths
}

// ModulePaths returns the module search path list
func (env *Environment) ModulePaths() []string {
	return env.modulePaths
}

// CloseSockets closes every open socket. Used on interpreter shutdown.
func (env *Environment) CloseSockets() {
	for name, conn := range env.sockets {
		conn.Close()
		delete(env.sockets, name)
	}
}

func (env *Environment) print(s string) {
	if env.Logger != nil {
		env.Logger.Print(s)
		return
	}
	DefaultLogger.Print(s)
}

func (env *Environment) warn(s string) {
	w := env.Diag
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, s)
}

func (env *Environment) input() *bufio.Reader {
	if env.inputReader == nil {
		src := io.Reader(os.Stdin)
		if env.Input != nil {
			src = env.Input
		}
		env.inputReader = bufio.NewReader(src)
	}
	return env.inputReader
}

// newError creates an *Error from a catalog code
func newError(code string, data map[string]any) *Error {
	return &Error{Err: perrors.New(code, data)}
}

func newErrorAt(code string, line, column int, data map[string]any) *Error {
	return &Error{Err: perrors.NewWithPosition(code, line, column, data)}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// Eval evaluates an AST node in the given environment
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	case *ast.Program:
		return evalProgram(node, env)

	// Statements
	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)
	case *ast.AssignStatement:
		return evalAssignStatement(node, env)
	case *ast.IndexAssignStatement:
		return evalIndexAssignStatement(node, env)
	case *ast.IfStatement:
		return evalIfStatement(node, env)
	case *ast.WhileStatement:
		return evalWhileStatement(node, env)
	case *ast.ReturnStatement:
		return evalReturnStatement(node, env)
	case *ast.FuncStatement:
		env.SetFunction(node.Name, &Function{Params: node.Params, Body: node.Body})
		return NULL
	case *ast.PrintfStatement:
		return evalPrintfStatement(node, env)
	case *ast.ReadStatement:
		return evalReadStatement(node, env)
	case *ast.IncStatement:
		return evalIncDec(node.Name, node.Delta, 1, env)
	case *ast.DecStatement:
		return evalIncDec(node.Name, node.Delta, -1, env)
	case *ast.PushStatement:
		return evalPushStatement(node, env)
	case *ast.PopStatement:
		return evalPopStatement(node, env)
	case *ast.ShiftStatement:
		return evalShiftStatement(node, env)
	case *ast.UnshiftStatement:
		return evalUnshiftStatement(node, env)
	case *ast.IncludeStatement:
		return evalIncludeStatement(node, env)
	case *ast.SockOpenStatement:
		return evalSockOpen(node, env)
	case *ast.SockCloseStatement:
		return evalSockClose(node, env)
	case *ast.SockWriteStatement:
		return evalSockWrite(node, env)
	case *ast.SockReadStatement:
		return evalSockRead(node, env)

	// Expressions
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.RegexLiteral:
		return &Pattern{Pattern: node.Pattern, Flags: node.Flags}
	case *ast.ArrayLiteral:
		return evalArrayLiteral(node, env)
	case *ast.Identifier:
		return env.GetOrNil(node.Value)
	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node.Operator, right)
	case *ast.InfixExpression:
		return evalInfixExpression(node, env)
	case *ast.IndexExpression:
		return evalIndexExpression(node, env)
	case *ast.CallExpression:
		return evalCallExpression(node, env)
	case *ast.SubstExpression:
		return evalSubstExpression(node, env)
	}

	return NULL
}

// evalProgram runs a top-level statement sequence. A return statement stops
// the sequence; its value becomes the sequence's value.
func evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range program.Statements {
		result = Eval(stmt, env)
		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		}
	}

	return result
}

// evalBlock runs a nested statement list, propagating returns and errors
// without unwrapping them.
func evalBlock(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range stmts {
		result = Eval(stmt, env)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_VALUE_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}

	return result
}
