package evaluator

import (
	"fmt"
	"strings"
)

// isTruthy reports whether a value selects the true branch. Nil, zero, and
// empty strings/arrays/patterns are falsy.
func isTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Null:
		return false
	case *Integer:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	case *Array:
		return len(obj.Elements) > 0
	case *Pattern:
		return obj.Pattern != ""
	default:
		return false
	}
}

// toInt coerces a value for arithmetic. Strings contribute their leading
// integer (optional sign included); everything non-numeric is 0.
func toInt(obj Object) int64 {
	switch obj := obj.(type) {
	case *Integer:
		return obj.Value
	case *String:
		return leadingInt(obj.Value)
	default:
		return 0
	}
}

// leadingInt parses the longest integer prefix of s, after trimming
// whitespace. "12abc" is 12, "abc" is 0.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)

	i := 0
	neg := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}

	var n int64
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int64(s[i]-'0')
		i++
		digits++
	}
	if digits == 0 {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

// intLike reports whether a value orders numerically: an Int, or a String
// whose trimmed text is entirely an integer.
func intLike(obj Object) bool {
	switch obj := obj.(type) {
	case *Integer:
		return true
	case *String:
		s := strings.TrimSpace(obj.Value)
		if s == "" {
			return false
		}
		i := 0
		if s[i] == '-' || s[i] == '+' {
			i++
		}
		if i == len(s) {
			return false
		}
		for ; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// render produces the output-statement form of a value. Arrays are never
// flattened into text, only summarized.
func render(obj Object) string {
	switch obj := obj.(type) {
	case *Integer:
		return obj.Inspect()
	case *String:
		return obj.Value
	case *Array:
		return fmt.Sprintf("[Array(%d)]", len(obj.Elements))
	case *Pattern:
		return "/" + obj.Pattern + "/"
	default:
		return ""
	}
}

// copyObject deep-copies arrays so that two bindings never alias. Other
// values are immutable and shared as-is.
func copyObject(obj Object) Object {
	arr, ok := obj.(*Array)
	if !ok {
		return obj
	}
	elements := make([]Object, len(arr.Elements))
	for i, el := range arr.Elements {
		elements[i] = copyObject(el)
	}
	return &Array{Elements: elements}
}

// objectsEqual implements '=='. String-string compares text; every other
// pairing compares via integer coercion.
func objectsEqual(left, right Object) bool {
	ls, lok := left.(*String)
	rs, rok := right.(*String)
	if lok && rok {
		return ls.Value == rs.Value
	}
	return toInt(left) == toInt(right)
}

// compareObjects returns -1/0/1 and true when the operands are ordered:
// numerically when both are int-like, lexicographically when both are
// strings. Anything else is unordered and every relational operator on it
// is false.
func compareObjects(left, right Object) (int, bool) {
	if intLike(left) && intLike(right) {
		l, r := toInt(left), toInt(right)
		switch {
		case l < r:
			return -1, true
		case l > r:
			return 1, true
		default:
			return 0, true
		}
	}

	ls, lok := left.(*String)
	rs, rok := right.(*String)
	if lok && rok {
		return strings.Compare(ls.Value, rs.Value), true
	}

	return 0, false
}

func boolToInt(b bool) *Integer {
	if b {
		return &Integer{Value: 1}
	}
	return &Integer{Value: 0}
}
