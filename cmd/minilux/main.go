package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/minilux-lang/minilux/config"
	perrors "github.com/minilux-lang/minilux/pkg/minilux/errors"
	"github.com/minilux-lang/minilux/pkg/minilux/evaluator"
	"github.com/minilux-lang/minilux/pkg/minilux/lexer"
	"github.com/minilux-lang/minilux/pkg/minilux/parser"
	"github.com/minilux-lang/minilux/pkg/minilux/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	// Evaluation flags
	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
	checkFlag    = flag.Bool("check", false, "Check syntax without executing")
	watchFlag    = flag.Bool("watch", false, "Rerun the script when its file changes")

	// Module search flags
	modulesFlag     = flag.String("m", "", "Include search paths (':' or ';' separated)")
	modulesLongFlag = flag.String("modules", "", "Include search paths (':' or ';' separated)")

	configFlag = flag.String("config", "", "Config file path")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag || *versionLongFlag {
		fmt.Printf("minilux version %s\n", Version)
		os.Exit(0)
	}

	cfg := loadConfig()
	modulePaths := resolveModulePaths(cfg)

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case evalCode != "":
		executeInline(evalCode, modulePaths)
	case *checkFlag:
		files := flag.Args()
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires at least one file")
			os.Exit(2)
		}
		os.Exit(checkFiles(files))
	case len(flag.Args()) > 0:
		filename := flag.Args()[0]
		if *watchFlag {
			watchFile(filename, modulePaths)
			return
		}
		if !executeFile(filename, modulePaths) {
			os.Exit(1)
		}
	default:
		repl.Start(os.Stdout, Version, repl.Options{
			HistoryFile: cfg.REPL.History,
			Prompt:      cfg.REPL.Prompt,
			ModulePaths: modulePaths,
		})
	}
}

func printHelp() {
	fmt.Printf(`minilux - Minilux language interpreter version %s

Usage:
  minilux [options] [file]
  minilux -e "code"
  minilux --check <file>...

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information

Evaluation Options:
  -e, --eval <code>     Evaluate code string
  --check               Check syntax without executing (can specify multiple files)
  --watch               Rerun the script whenever its file changes

Module Options:
  -m, --modules <list>  Include search paths, ':' or ';' separated
                        (overrides MINILUX_MODULES_PATH and the config file)
  --config <path>       Config file (default search: $MINILUX_CONFIG,
                        ./minilux.yaml, ~/.config/minilux/config.yaml)

Examples:
  minilux                     Start interactive REPL
  minilux script.lux          Execute a Minilux script
  minilux -e 'printf 1 + 2'   Evaluate inline code (outputs: 3)
  minilux -m ./lib script.lux Search ./lib for included files
  minilux --check script.lux  Check syntax without executing
  minilux --watch script.lux  Rerun on every save
`, Version)
}

// loadConfig finds and loads the config file; a missing file is fine, a
// broken one is fatal.
func loadConfig() *config.Config {
	path := config.Find(*configFlag)
	if path == "" {
		return config.Defaults()
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// resolveModulePaths applies the precedence order: -m flag, then the
// MINILUX_MODULES_PATH environment variable, then the config file.
func resolveModulePaths(cfg *config.Config) []string {
	spec := *modulesFlag
	if spec == "" {
		spec = *modulesLongFlag
	}
	if spec != "" {
		return evaluator.ParseModulesList(spec)
	}
	if envSpec := os.Getenv("MINILUX_MODULES_PATH"); envSpec != "" {
		return evaluator.ParseModulesList(envSpec)
	}
	return cfg.Modules
}

// executeInline evaluates code provided via -e
func executeInline(code string, modulePaths []string) {
	l := lexer.NewWithFilename(code, "<eval>")
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.StructuredErrors(); len(errs) != 0 {
		printStructuredErrors(code, errs)
		os.Exit(1)
	}

	env := evaluator.NewEnvironment()
	env.SetModulePaths(modulePaths)
	if cwd, err := os.Getwd(); err == nil {
		env.PushBaseDir(cwd)
	}
	defer env.CloseSockets()

	evaluated := evaluator.Eval(program, env)
	if errObj, ok := evaluated.(*evaluator.Error); ok {
		printRuntimeError("<eval>", code, errObj.Err)
		os.Exit(1)
	}
}

// checkFiles checks the syntax of one or more files without executing them
func checkFiles(files []string) int {
	hasErrors := false

	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			return 2
		}

		l := lexer.NewWithFilename(string(content), filename)
		p := parser.New(l)
		_ = p.ParseProgram()

		if errs := p.StructuredErrors(); len(errs) != 0 {
			printStructuredErrors(string(content), errs)
			hasErrors = true
		}
	}

	if hasErrors {
		return 1
	}
	return 0
}

// executeFile runs one source file. The script's directory becomes the
// initial base directory for relative includes. Returns false on any error.
func executeFile(filename string, modulePaths []string) bool {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
		return false
	}

	l := lexer.NewWithFilename(string(content), filename)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) != 0 {
		printStructuredErrors(string(content), errs)
		return false
	}

	env := evaluator.NewEnvironment()
	env.SetModulePaths(modulePaths)

	scriptDir := filepath.Dir(filename)
	if abs, err := filepath.Abs(scriptDir); err == nil {
		scriptDir = abs
	}
	env.PushBaseDir(scriptDir)
	defer env.CloseSockets()

	evaluated := evaluator.Eval(program, env)
	if errObj, ok := evaluated.(*evaluator.Error); ok {
		printRuntimeError(filename, string(content), errObj.Err)
		return false
	}
	return true
}

// watchFile reruns a script every time its file changes. Editors that
// replace the file on save remove the watched inode, so the watch is on the
// containing directory.
func watchFile(filename string, modulePaths []string) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", filepath.Dir(abs), err)
		os.Exit(1)
	}

	run := func() {
		fmt.Fprintf(os.Stderr, "--- %s @ %s\n", filename, time.Now().Format("15:04:05"))
		executeFile(filename, modulePaths)
	}
	run()

	var lastRun time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors fire bursts of events per save
			if time.Since(lastRun) < 100*time.Millisecond {
				continue
			}
			lastRun = time.Now()
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}

// printStructuredErrors prints parser errors with source context
func printStructuredErrors(source string, errs []*perrors.MiniluxError) {
	lines := strings.Split(source, "\n")

	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err.PrettyString())
		printSourceContext(lines, err.Line, err.Column)
	}
}

// printRuntimeError prints a runtime error with source context
func printRuntimeError(filename string, source string, err *perrors.MiniluxError) {
	displaySource := source
	if err.File != "" && err.File != filename {
		if content, readErr := os.ReadFile(err.File); readErr == nil {
			displaySource = string(content)
		}
	}

	fmt.Fprintln(os.Stderr, err.PrettyString())

	if err.Line > 0 {
		printSourceContext(strings.Split(displaySource, "\n"), err.Line, err.Column)
	}
}

// printSourceContext prints the offending source line and a position pointer
func printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]

	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == '\t' {
			trimCount += 8
		} else if sourceLine[i] == ' ' {
			trimCount++
		} else {
			break
		}
	}

	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	fmt.Fprintf(os.Stderr, "    %s\n", trimmedLine)

	if colNum > 0 {
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}

		adjustedCol := max(visualCol-trimCount, 0)
		fmt.Fprintf(os.Stderr, "    %s^\n", strings.Repeat(" ", adjustedCol))
	}
}
