package evaluator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/minilux-lang/minilux/pkg/minilux/ast"
	"github.com/minilux-lang/minilux/pkg/minilux/lexer"
	"github.com/minilux-lang/minilux/pkg/minilux/parser"
)

// ParseModulesList splits a module search specification on ':' or ';',
// trimming entries and dropping empty ones. Paths that canonicalize keep
// their canonical form.
func ParseModulesList(spec string) []string {
	normalized := strings.ReplaceAll(spec, ";", ":")

	var paths []string
	for _, part := range strings.Split(normalized, ":") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if abs, err := filepath.Abs(part); err == nil {
			if resolved, err := filepath.EvalSymlinks(abs); err == nil {
				part = resolved
			} else {
				part = abs
			}
		}
		paths = append(paths, part)
	}
	return paths
}

// resolveIncludePath finds the file an include names: an absolute path is
// taken as-is; otherwise the current base directory, then each module
// search path, then the working directory are probed for an existing file.
// When nothing exists the working-directory candidate is returned so the
// read failure reports a sensible path.
func resolveIncludePath(path string, env *Environment) string {
	if filepath.IsAbs(path) {
		return path
	}

	if base := env.CurrentBaseDir(); base != "" {
		candidate := filepath.Join(base, path)
		if fileExists(candidate) {
			return candidate
		}
	}

	for _, base := range env.ModulePaths() {
		candidate := filepath.Join(base, path)
		if fileExists(candidate) {
			return candidate
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// evalIncludeStatement reads, parses, and executes another source file in
// the same environment. The file's directory becomes the base directory
// while it runs. Re-including a file whose execution has not finished is a
// hard error; a return at the file's top level stops that file only.
func evalIncludeStatement(node *ast.IncludeStatement, env *Environment) Object {
	resolved := resolveIncludePath(node.Path, env)

	canonical := resolved
	if c, err := filepath.EvalSymlinks(resolved); err == nil {
		canonical = c
	}

	if env.including[canonical] {
		return newErrorAt("INC-0002", node.Token.Line, node.Token.Column,
			map[string]any{"Path": canonical})
	}
	env.including[canonical] = true
	defer delete(env.including, canonical)

	content, err := os.ReadFile(resolved)
	if err != nil {
		return newErrorAt("INC-0001", node.Token.Line, node.Token.Column,
			map[string]any{"Path": node.Path, "GoError": err.Error()})
	}

	p := parser.New(lexer.NewWithFilename(string(content), resolved))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		incErr := newErrorAt("INC-0003", node.Token.Line, node.Token.Column,
			map[string]any{"Path": resolved})
		for _, pe := range errs {
			incErr.Err.Hints = append(incErr.Err.Hints, pe.String())
		}
		return incErr
	}

	env.PushBaseDir(filepath.Dir(resolved))
	defer env.PopBaseDir()

	for _, stmt := range program.Statements {
		result := Eval(stmt, env)
		if isError(result) {
			return result
		}
		if _, ok := result.(*ReturnValue); ok {
			break
		}
	}

	return NULL
}
