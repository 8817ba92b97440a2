package evaluator

import (
	"os/exec"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/minilux-lang/minilux/pkg/minilux/ast"
	perrors "github.com/minilux-lang/minilux/pkg/minilux/errors"
)

// builtinNames are intercepted before user-function lookup and therefore
// cannot be shadowed by a user definition.
var builtinNames = []string{"len", "strlen", "shell", "number", "lower", "upper", "sleep"}

// BuiltinNames returns the built-in function names
func BuiltinNames() []string {
	out := make([]string, len(builtinNames))
	copy(out, builtinNames)
	return out
}

func isBuiltin(name string) bool {
	for _, b := range builtinNames {
		if b == name {
			return true
		}
	}
	return false
}

func evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	if isBuiltin(node.Name) {
		return evalBuiltin(node, env)
	}

	fn, ok := env.GetFunction(node.Name)
	if !ok {
		warning := perrors.NewUnknownFunction(node.Name, env.FunctionNames())
		env.warn("Warning: " + warning.String())
		return NULL
	}

	args := make([]Object, 0, len(node.Args))
	for _, arg := range node.Args {
		val := Eval(arg, env)
		if isError(val) {
			return val
		}
		args = append(args, val)
	}

	return callFunction(fn, args, env)
}

// callFunction binds parameters in the flat scope, runs the body, and
// restores the caller's bindings afterwards, including on error. Missing
// arguments bind nil; extra arguments are ignored. Arrays are copied on
// binding so the callee never aliases the caller's array.
func callFunction(fn *Function, args []Object, env *Environment) Object {
	type saved struct {
		name string
		val  Object
		had  bool
	}

	savedVars := make([]saved, 0, len(fn.Params))
	for i, p := range fn.Params {
		old, had := env.Get(p)
		savedVars = append(savedVars, saved{name: p, val: old, had: had})

		var v Object = NULL
		if i < len(args) {
			v = copyObject(args[i])
		}
		env.Set(p, v)
	}

	restore := func() {
		for _, s := range savedVars {
			if s.had {
				env.Set(s.name, s.val)
			} else {
				env.Unset(s.name)
			}
		}
	}
	defer restore()

	result := evalBlock(fn.Body, env)
	if rv, ok := result.(*ReturnValue); ok {
		return rv.Value
	}
	if isError(result) {
		return result
	}
	return NULL
}

func evalBuiltin(node *ast.CallExpression, env *Environment) Object {
	args := make([]Object, 0, len(node.Args))
	for _, arg := range node.Args {
		val := Eval(arg, env)
		if isError(val) {
			return val
		}
		args = append(args, val)
	}

	var first Object = NULL
	if len(args) > 0 {
		first = args[0]
	}

	switch node.Name {
	case "len", "strlen":
		switch v := first.(type) {
		case *String:
			return &Integer{Value: int64(utf8.RuneCountInString(v.Value))}
		case *Array:
			return &Integer{Value: int64(len(v.Elements))}
		default:
			return &Integer{Value: 0}
		}

	case "shell":
		if len(args) == 0 {
			return &String{Value: ""}
		}
		return &String{Value: runShell(render(first))}

	case "number":
		switch v := first.(type) {
		case *Integer:
			return v
		case *String:
			return &Integer{Value: leadingInt(v.Value)}
		default:
			return &Integer{Value: 0}
		}

	case "lower":
		if len(args) == 0 {
			return &String{Value: ""}
		}
		return &String{Value: strings.ToLower(render(first))}

	case "upper":
		if len(args) == 0 {
			return &String{Value: ""}
		}
		return &String{Value: strings.ToUpper(render(first))}

	case "sleep":
		if len(args) > 0 {
			secs := toInt(first)
			if secs > 0 {
				time.Sleep(time.Duration(secs) * time.Second)
			}
		}
		return NULL
	}

	return NULL
}

// runShell executes a command line through the system shell and returns its
// captured standard output with one trailing line terminator removed. Spawn
// failures come back as the empty string.
func runShell(cmdline string) string {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", cmdline)
	} else {
		cmd = exec.Command("sh", "-c", cmdline)
	}

	out, err := cmd.Output()
	if err != nil && len(out) == 0 {
		return ""
	}

	s := string(out)
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s
}
