// Package errors provides structured error types for the Minilux language.
//
// This package defines MiniluxError, a unified error type that can represent
// both parser and runtime errors with metadata for display and programmatic
// handling.
package errors

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse    ErrorClass = "parse"    // Parser/syntax errors
	ClassFormat   ErrorClass = "format"   // Invalid format (regex compile, ...)
	ClassInclude  ErrorClass = "include"  // File inclusion
	ClassNetwork  ErrorClass = "network"  // Socket operations
	ClassIO       ErrorClass = "io"       // File/stream operations
	ClassOperator ErrorClass = "operator" // Invalid operations
)

// MiniluxError represents any error from parsing or evaluation.
type MiniluxError struct {
	Class   ErrorClass // Error category
	Code    string     // Error code (e.g., "FMT-0001")
	Message string     // Human-readable message
	Hints   []string   // Suggestions for fixing
	Line    int        // 1-based line (0 if unknown)
	Column  int        // 1-based column (0 if unknown)
	File    string     // File path (if known)
}

// Error implements the error interface.
func (e *MiniluxError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *MiniluxError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *MiniluxError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Parser error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// WithFile returns a copy of the error with the file path set.
func (e *MiniluxError) WithFile(file string) *MiniluxError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *MiniluxError) WithPosition(line, column int) *MiniluxError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError returns true if this is a parser error.
func (e *MiniluxError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors (PARSE-0xxx)
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "unterminated string",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "unterminated regex literal",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "invalid number literal: {{.Literal}}",
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "{{.Keyword}} without matching 'end'",
	},

	// Format errors (FMT-0xxx)
	"FMT-0001": {
		Class:    ClassFormat,
		Template: "invalid regex /{{.Pattern}}/: {{.GoError}}",
	},

	// Include errors (INC-0xxx)
	"INC-0001": {
		Class:    ClassInclude,
		Template: "failed to include file '{{.Path}}': {{.GoError}}",
	},
	"INC-0002": {
		Class:    ClassInclude,
		Template: "include cycle detected (already in progress): {{.Path}}",
	},
	"INC-0003": {
		Class:    ClassInclude,
		Template: "parse errors in included file {{.Path}}",
	},

	// Network errors (NET-0xxx)
	"NET-0001": {
		Class:    ClassNetwork,
		Template: "failed to connect to {{.Address}}: {{.GoError}}",
	},

	// I/O errors (IO-0xxx)
	"IO-0001": {
		Class:    ClassIO,
		Template: "failed to read input: {{.GoError}}",
	},
	"IO-0002": {
		Class:    ClassIO,
		Template: "failed to read file '{{.Path}}': {{.GoError}}",
	},
}

// New creates a MiniluxError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *MiniluxError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &MiniluxError{
			Class:   ClassOperator,
			Code:    code,
			Message: msg,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &MiniluxError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
	}
}

// NewWithPosition creates a MiniluxError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *MiniluxError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *MiniluxError {
	return &MiniluxError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// FuzzyMatch represents a fuzzy match result with its distance.
type FuzzyMatch struct {
	Value    string
	Distance int
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise
// empty string. The threshold depends on the length of the input.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)

		dist := levenshteinDistance(inputLower, candidateLower)

		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	// Short words (1-3): max 1 edit
	// Medium words (4-6): max 2 edits
	// Longer words (7+): max 3 edits
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	// Don't suggest exact matches or matches over the threshold
	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}

	return bestMatch
}

// FindTopMatches returns the top N closest matches to the input.
func FindTopMatches(input string, candidates []string, n int) []string {
	if len(input) == 0 || len(candidates) == 0 || n <= 0 {
		return nil
	}

	inputLower := strings.ToLower(input)

	var matches []FuzzyMatch
	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)
		dist := levenshteinDistance(inputLower, candidateLower)
		if dist > 0 {
			matches = append(matches, FuzzyMatch{Value: candidate, Distance: dist})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		if matches[i].Distance <= threshold {
			result = append(result, matches[i].Value)
		}
	}

	return result
}

// NewUnknownFunction creates an unknown function error with optional fuzzy
// matching against the known function names.
func NewUnknownFunction(name string, availableFunctions []string) *MiniluxError {
	err := NewSimple(ClassOperator, fmt.Sprintf("unknown function '%s'", name))

	if suggestion := FindClosestMatch(name, availableFunctions); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}

	return err
}

// MiniluxKeywords lists reserved keywords for fuzzy matching against typos.
var MiniluxKeywords = []string{
	"if", "elseif", "else", "end", "while", "func", "return", "include",
	"printf", "read", "inc", "dec", "push", "pop", "shift", "unshift",
	"sockopen", "sockclose", "sockwrite", "sockread",
}
