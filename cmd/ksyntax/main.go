// Package main is the ksyntax command: it highlights files with grammar
// descriptors and writes them to the terminal.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/ksyntax/internal/grammar"
	"github.com/dshills/ksyntax/internal/highlight"
	"github.com/dshills/ksyntax/internal/syntax"
	"github.com/dshills/ksyntax/internal/theme"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var errNoDefinition = errors.New("no matching grammar")

type options struct {
	grammars []string
	syntax   string
	theme    string
	dump     bool
	tui      bool
	logLevel string
	files    []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	logger, err := newLogger(opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	paths, err := grammarFiles(opts.grammars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	repo, err := syntax.NewRepository(grammar.NewFSSource(grammar.DefaultFS(), paths...), syntax.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load grammars: %v\n", err)
		return 1
	}

	th := theme.DefaultTheme()
	if opts.theme != "" && opts.theme != "default" {
		if th, err = theme.FromChroma(opts.theme); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (available: %s)\n", err, strings.Join(theme.ChromaNames(), ", "))
			return 1
		}
	}

	if opts.tui {
		if err := previewFile(repo, th, opts, opts.files[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", opts.files[0], err)
			return 1
		}
		return 0
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	renderer := lipgloss.NewRenderer(os.Stdout)

	status := 0
	for _, file := range opts.files {
		if err := highlightFile(out, renderer, repo, th, opts, file); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", file, err)
			status = 1
		}
	}
	return status
}

func highlightFile(w io.Writer, r *lipgloss.Renderer, repo *syntax.Repository, th *theme.Theme, opts options, file string) error {
	p, lines, err := newFileProvider(repo, th, opts, file)
	if err != nil {
		return err
	}

	for i, line := range lines {
		if opts.dump {
			err = dumpLine(w, i, p.Spans(uint32(i)), p.Folds(uint32(i)))
		} else {
			err = writeLine(w, r, line, p.Styles(uint32(i)))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func previewFile(repo *syntax.Repository, th *theme.Theme, opts options, file string) error {
	p, lines, err := newFileProvider(repo, th, opts, file)
	if err != nil {
		return err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	return newPreview(screen, p, lines).run()
}

// newFileProvider reads file and returns a provider over its lines.
func newFileProvider(repo *syntax.Repository, th *theme.Theme, opts options, file string) (*highlight.Provider, []string, error) {
	def := repo.DefinitionForFileName(file)
	if opts.syntax != "" {
		def = repo.DefinitionForName(opts.syntax)
	}
	if def == nil {
		return nil, nil, errNoDefinition
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	lines := splitLines(string(data))

	p := highlight.NewProvider(syntax.NewHighlighter(def), func(line uint32) string {
		if int(line) < len(lines) {
			return lines[line]
		}
		return ""
	}, highlight.WithTheme(th), highlight.WithLogger(repo.Logger()))
	return p, lines, nil
}

// splitLines splits text at "\n", "\r\n" and "\r". A final terminator does
// not start another line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// grammarFiles expands directories to the descriptor files they contain.
func grammarFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			p := filepath.Join(arg, e.Name())
			if !e.IsDir() && grammar.EncodingForPath(p) != grammar.EncodingUnknown {
				paths = append(paths, p)
			}
		}
	}
	return paths, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", level)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	addGrammar := func(v string) error {
		opts.grammars = append(opts.grammars, v)
		return nil
	}
	flag.Func("grammar", "Grammar descriptor file or directory (repeatable)", addGrammar)
	flag.Func("g", "Grammar descriptor file or directory (shorthand)", addGrammar)
	flag.StringVar(&opts.syntax, "syntax", "", "Grammar name, overrides file name detection")
	flag.StringVar(&opts.syntax, "s", "", "Grammar name (shorthand)")
	flag.StringVar(&opts.theme, "theme", "default", "Theme: default or a chroma style name")
	flag.StringVar(&opts.theme, "t", "default", "Theme (shorthand)")
	flag.BoolVar(&opts.dump, "dump", false, "Print spans and folding markers instead of colored text")
	flag.BoolVar(&opts.tui, "tui", false, "Show the first file in a full screen pager")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ksyntax - rule based syntax highlighter\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ksyntax -g grammars/ [options] files...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ksyntax -g grammars main.c             Highlight a file\n")
		fmt.Fprintf(os.Stderr, "  ksyntax -g c.yaml -t monokai main.c    Use a chroma style\n")
		fmt.Fprintf(os.Stderr, "  ksyntax -g c.yaml -dump main.c         Show raw spans\n")
		fmt.Fprintf(os.Stderr, "  ksyntax -g c.yaml -tui main.c          Browse a file (q to quit)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("ksyntax %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.files = flag.Args()
	if len(opts.grammars) == 0 || len(opts.files) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	return opts
}
