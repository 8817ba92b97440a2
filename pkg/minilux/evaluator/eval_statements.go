package evaluator

import (
	"errors"
	"io"
	"strings"

	"github.com/minilux-lang/minilux/pkg/minilux/ast"
)

func evalAssignStatement(node *ast.AssignStatement, env *Environment) Object {
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}
	env.Set(node.Name, copyObject(val))
	return NULL
}

// evalIndexAssignStatement mutates one array slot in place. Out-of-bounds
// positions and non-array targets are silent no-ops.
func evalIndexAssignStatement(node *ast.IndexAssignStatement, env *Environment) Object {
	index := Eval(node.Index, env)
	if isError(index) {
		return index
	}
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}

	arr, ok := env.GetOrNil(node.Name).(*Array)
	if !ok {
		return NULL
	}

	idx := toInt(index)
	if idx < 0 || idx >= int64(len(arr.Elements)) {
		return NULL
	}
	arr.Elements[idx] = copyObject(val)

	return NULL
}

func evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	cond := Eval(node.Condition, env)
	if isError(cond) {
		return cond
	}
	if isTruthy(cond) {
		return evalBlock(node.Consequence, env)
	}

	for _, arm := range node.ElseIfs {
		cond := Eval(arm.Condition, env)
		if isError(cond) {
			return cond
		}
		if isTruthy(cond) {
			return evalBlock(arm.Body, env)
		}
	}

	if node.Alternative != nil {
		return evalBlock(node.Alternative, env)
	}
	return NULL
}

func evalWhileStatement(node *ast.WhileStatement, env *Environment) Object {
	for {
		cond := Eval(node.Condition, env)
		if isError(cond) {
			return cond
		}
		if !isTruthy(cond) {
			return NULL
		}

		result := evalBlock(node.Body, env)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_VALUE_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
}

func evalReturnStatement(node *ast.ReturnStatement, env *Environment) Object {
	if node.Value == nil {
		return &ReturnValue{Value: NULL}
	}
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}
	return &ReturnValue{Value: val}
}

// evalPrintfStatement concatenates the format fragment with each rendered
// argument, substitutes the two-character \n and \t sequences, and emits the
// result with a guaranteed trailing newline.
func evalPrintfStatement(node *ast.PrintfStatement, env *Environment) Object {
	var out strings.Builder
	out.WriteString(node.Format)

	for _, arg := range node.Args {
		val := Eval(arg, env)
		if isError(val) {
			return val
		}
		out.WriteString(render(val))
	}

	text := out.String()
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\t`, "\t")

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	env.print(text)

	return NULL
}

// evalReadStatement blocks for one input line and binds it, with trailing
// line terminators stripped. End of input binds the empty string.
func evalReadStatement(node *ast.ReadStatement, env *Environment) Object {
	line, err := env.input().ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return newError("IO-0001", map[string]any{"GoError": err.Error()})
	}

	line = strings.TrimRight(line, "\r\n")
	env.Set(node.Name, &String{Value: line})
	return NULL
}

// evalIncDec adjusts a variable by sign*delta through the usual integer
// coercion. An unbound variable starts from 0.
func evalIncDec(name string, delta ast.Expression, sign int64, env *Environment) Object {
	d := Eval(delta, env)
	if isError(d) {
		return d
	}
	current := env.GetOrNil(name)
	env.Set(name, &Integer{Value: toInt(current) + sign*toInt(d)})
	return NULL
}

// evalPushStatement appends to an array. Pushing onto anything else
// replaces the variable with a one-element array. The element is copied
// so array bindings never alias.
func evalPushStatement(node *ast.PushStatement, env *Environment) Object {
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}
	val = copyObject(val)

	if arr, ok := env.GetOrNil(node.Name).(*Array); ok {
		arr.Elements = append(arr.Elements, val)
		env.Set(node.Name, arr)
		return NULL
	}
	env.Set(node.Name, &Array{Elements: []Object{val}})
	return NULL
}

func evalPopStatement(node *ast.PopStatement, env *Environment) Object {
	if arr, ok := env.GetOrNil(node.Name).(*Array); ok && len(arr.Elements) > 0 {
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		env.Set(node.Name, arr)
	}
	return NULL
}

func evalShiftStatement(node *ast.ShiftStatement, env *Environment) Object {
	if arr, ok := env.GetOrNil(node.Name).(*Array); ok && len(arr.Elements) > 0 {
		arr.Elements = arr.Elements[1:]
		env.Set(node.Name, arr)
	}
	return NULL
}

func evalUnshiftStatement(node *ast.UnshiftStatement, env *Environment) Object {
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}
	val = copyObject(val)

	if arr, ok := env.GetOrNil(node.Name).(*Array); ok {
		arr.Elements = append([]Object{val}, arr.Elements...)
		env.Set(node.Name, arr)
		return NULL
	}
	env.Set(node.Name, &Array{Elements: []Object{val}})
	return NULL
}
