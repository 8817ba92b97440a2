// Package repl implements the interactive Minilux prompt.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	perrors "github.com/minilux-lang/minilux/pkg/minilux/errors"
	"github.com/minilux-lang/minilux/pkg/minilux/evaluator"
	"github.com/minilux-lang/minilux/pkg/minilux/lexer"
	"github.com/minilux-lang/minilux/pkg/minilux/parser"
)

const PROMPT = "lux> "
const CONTINUATION_PROMPT = "...> "

// Options configures the REPL
type Options struct {
	// HistoryFile overrides the default history location
	HistoryFile string
	// Prompt overrides the default prompt
	Prompt string
	// ModulePaths seeds the include search path
	ModulePaths []string
}

// Minilux keywords and builtins for tab completion
var completionWords = []string{
	// Keywords
	"if", "elseif", "else", "end", "while", "func", "return", "include",
	// Statements
	"printf", "read", "inc", "dec",
	"push", "pop", "shift", "unshift",
	"sockopen", "sockclose", "sockwrite", "sockread",
	// Builtins
	"len", "strlen", "shell", "number", "lower", "upper", "sleep",
}

// Start runs the REPL with line editing, history, and tab completion. One
// environment persists across the whole session, so variables and functions
// defined on earlier lines stay available.
func Start(out io.Writer, version string, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	line.SetCompleter(func(line string) []string {
		return filterCompletions(line)
	})

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".minilux_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	env := evaluator.NewEnvironment()
	env.SetModulePaths(opts.ModulePaths)
	if cwd, err := os.Getwd(); err == nil {
		env.PushBaseDir(cwd)
	}
	defer env.CloseSockets()

	prompt := opts.Prompt
	if prompt == "" {
		prompt = PROMPT
	}

	fmt.Fprintf(out, "Minilux v%s\n", version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit, ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := prompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			handleReplCommand(trimmed, env, out)
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		// Blocks continue onto the next line until every 'end' arrives
		fullInput := inputBuffer.String()
		if openBlockDepth(fullInput) > 0 {
			continue
		}

		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		l := lexer.New(fullInput)
		p := parser.New(l)
		program := p.ParseProgram()

		if errs := p.StructuredErrors(); len(errs) != 0 {
			printStructuredErrors(out, errs)
			inputBuffer.Reset()
			continue
		}

		evaluated := evaluator.Eval(program, env)
		if errObj, ok := evaluated.(*evaluator.Error); ok {
			io.WriteString(out, errObj.Err.PrettyString())
			io.WriteString(out, "\n")
		} else if evaluated != nil && evaluated.Type() != evaluator.NULL_OBJ {
			io.WriteString(out, evaluated.Inspect())
			io.WriteString(out, "\n")
		}

		inputBuffer.Reset()
	}
}

// handleReplCommand handles meta-commands that start with ':'
func handleReplCommand(cmd string, env *evaluator.Environment, out io.Writer) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :env            Show variables in scope")
		fmt.Fprintln(out, "  :funcs          Show defined functions")
		fmt.Fprintln(out, "  :clear          Clear all variables and functions")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")

	case ":env":
		printEnvironment(env, out)

	case ":funcs":
		names := env.FunctionNames()
		if len(names) == 0 {
			fmt.Fprintln(out, "(no functions defined)")
			return
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s\n", name)
		}

	case ":clear":
		env.CloseSockets()
		*env = *evaluator.NewEnvironment()
		if cwd, err := os.Getwd(); err == nil {
			env.PushBaseDir(cwd)
		}
		fmt.Fprintln(out, "Environment cleared")

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printEnvironment displays all variables in the environment
func printEnvironment(env *evaluator.Environment, out io.Writer) {
	vars := env.Vars()
	if len(vars) == 0 {
		fmt.Fprintln(out, "(no variables)")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		obj := vars[name]
		value := obj.Inspect()
		if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(out, "  %s: %s = %s\n", name, obj.Type(), value)
	}
}

// filterCompletions returns completion suggestions for the word being typed
func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	lastWord := words[len(words)-1]
	prefix := line[:len(line)-len(lastWord)]

	var matches []string
	for _, word := range completionWords {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}

// openBlockDepth counts block openers (if, while, func) against 'end'
// keywords, ignoring strings and comments. A positive depth means the input
// is mid-block and needs more lines.
func openBlockDepth(input string) int {
	depth := 0
	for _, word := range keywordTokens(input) {
		switch word {
		case "if", "while", "func":
			depth++
		case "end":
			depth--
		}
	}
	return depth
}

// keywordTokens extracts bare words from source text, skipping string
// literals and # comments.
func keywordTokens(input string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	inString := false
	inComment := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inComment {
			if ch == '\n' {
				inComment = false
			}
			continue
		}
		if inString {
			if escapeNext {
				escapeNext = false
				continue
			}
			if ch == '\\' {
				escapeNext = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			flush()
			inString = true
		case ch == '#':
			flush()
			inComment = true
		case isWordChar(ch):
			current.WriteByte(ch)
		default:
			flush()
		}
	}
	flush()

	return words
}

func isWordChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') || ch == '_'
}

// printStructuredErrors prints parser errors using structured error format
func printStructuredErrors(out io.Writer, errs []*perrors.MiniluxError) {
	for _, err := range errs {
		io.WriteString(out, err.PrettyString())
		io.WriteString(out, "\n")
	}
}
