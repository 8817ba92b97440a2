package evaluator

import (
	"regexp"
	"strings"

	"github.com/minilux-lang/minilux/pkg/minilux/ast"
)

func evalArrayLiteral(node *ast.ArrayLiteral, env *Environment) Object {
	elements := make([]Object, 0, len(node.Elements))
	for _, el := range node.Elements {
		val := Eval(el, env)
		if isError(val) {
			return val
		}
		elements = append(elements, val)
	}
	return &Array{Elements: elements}
}

func evalPrefixExpression(operator string, right Object) Object {
	switch operator {
	case "!":
		return boolToInt(!isTruthy(right))
	case "-":
		return &Integer{Value: -toInt(right)}
	default:
		return NULL
	}
}

func evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}
	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}

	switch node.Operator {
	case "+":
		return &Integer{Value: toInt(left) + toInt(right)}
	case "-":
		return &Integer{Value: toInt(left) - toInt(right)}
	case "*":
		return &Integer{Value: toInt(left) * toInt(right)}
	case "/":
		r := toInt(right)
		if r == 0 {
			return &Integer{Value: 0}
		}
		return &Integer{Value: toInt(left) / r}
	case "%":
		r := toInt(right)
		if r == 0 {
			return &Integer{Value: 0}
		}
		return &Integer{Value: toInt(left) % r}
	case "==":
		return boolToInt(objectsEqual(left, right))
	case "!=":
		return boolToInt(!objectsEqual(left, right))
	case "<":
		ord, ok := compareObjects(left, right)
		return boolToInt(ok && ord < 0)
	case "<=":
		ord, ok := compareObjects(left, right)
		return boolToInt(ok && ord <= 0)
	case ">":
		ord, ok := compareObjects(left, right)
		return boolToInt(ok && ord > 0)
	case ">=":
		ord, ok := compareObjects(left, right)
		return boolToInt(ok && ord >= 0)
	case "&&":
		return boolToInt(isTruthy(left) && isTruthy(right))
	case "||":
		return boolToInt(isTruthy(left) || isTruthy(right))
	case "=~":
		return evalMatchExpression(left, right)
	default:
		return NULL
	}
}

// evalMatchExpression matches the rendered left operand against the right
// operand taken as a pattern. The pattern compiles fresh on every
// evaluation, so a bad pattern only fails when reached.
func evalMatchExpression(left, right Object) Object {
	text := render(left)

	var pattern, flags string
	switch right := right.(type) {
	case *Pattern:
		pattern = right.Pattern
		flags = right.Flags
	case *String:
		pattern = right.Value
	default:
		pattern = render(right)
	}

	re, errObj := compileRegex(pattern, flags)
	if errObj != nil {
		return errObj
	}

	return boolToInt(re.MatchString(text))
}

// compileRegex compiles a pattern with its i/m/s flags folded into a mode
// prefix. The g flag is a substitution concern and is ignored here.
func compileRegex(pattern, flags string) (*regexp.Regexp, *Error) {
	var mode strings.Builder
	for _, f := range []byte{'i', 'm', 's'} {
		if strings.IndexByte(flags, f) >= 0 {
			mode.WriteByte(f)
		}
	}

	full := pattern
	if mode.Len() > 0 {
		full = "(?" + mode.String() + ")" + pattern
	}

	re, err := regexp.Compile(full)
	if err != nil {
		return nil, newError("FMT-0001", map[string]any{
			"Pattern": pattern,
			"GoError": err.Error(),
		})
	}
	return re, nil
}

// evalSubstExpression applies s/pat/repl/flags to its rendered input. With
// the g flag every non-overlapping match is replaced; without it only the
// first. Group references in the replacement use $1 syntax.
func evalSubstExpression(node *ast.SubstExpression, env *Environment) Object {
	input := Eval(node.Input, env)
	if isError(input) {
		return input
	}
	src := render(input)

	re, errObj := compileRegex(node.Pattern, node.Flags)
	if errObj != nil {
		return errObj
	}

	if strings.ContainsRune(node.Flags, 'g') {
		return &String{Value: re.ReplaceAllString(src, node.Replacement)}
	}
	return &String{Value: replaceFirst(re, src, node.Replacement)}
}

// replaceFirst substitutes only the first match, expanding group references
// the same way ReplaceAllString does.
func replaceFirst(re *regexp.Regexp, src, repl string) string {
	loc := re.FindStringSubmatchIndex(src)
	if loc == nil {
		return src
	}
	var out []byte
	out = append(out, src[:loc[0]]...)
	out = re.ExpandString(out, repl, src, loc)
	out = append(out, src[loc[1]:]...)
	return string(out)
}

// evalIndexExpression indexes arrays by position and strings by character.
// Out of bounds, negative positions, and non-indexable values all yield nil
// rather than an error.
func evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := Eval(node.Index, env)
	if isError(index) {
		return index
	}

	idx := toInt(index)

	switch left := left.(type) {
	case *Array:
		if idx < 0 || idx >= int64(len(left.Elements)) {
			return NULL
		}
		return left.Elements[idx]
	case *String:
		runes := []rune(left.Value)
		if idx < 0 || idx >= int64(len(runes)) {
			return NULL
		}
		return &String{Value: string(runes[idx])}
	default:
		return NULL
	}
}
