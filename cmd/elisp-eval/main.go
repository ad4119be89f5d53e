// Package main is the command-line front-end for the expression console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/KarimAziev/elisp-eval/internal/config"
	"github.com/KarimAziev/elisp-eval/internal/console"
	"github.com/KarimAziev/elisp-eval/internal/eval"
	"github.com/KarimAziev/elisp-eval/internal/eval/lisp"
	"github.com/KarimAziev/elisp-eval/internal/eval/luaeval"
	"github.com/KarimAziev/elisp-eval/internal/ui"
)

// Version information (set via ldflags during build).
var version = "dev"

const (
	promptMain = "eval> "
	promptCont = "....> "
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath  string
	backend     string
	historyFile string
	historyMax  int
	contextName string
	expr        string
	showVersion bool
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.backend, "backend", "", "Expression backend: lisp or lua")
	flag.StringVar(&opts.historyFile, "history-file", "", "History file path")
	flag.IntVar(&opts.historyMax, "history-size", 0, "Maximum history entries")
	flag.StringVar(&opts.contextName, "context", "*scratch*", "Execution context name")
	flag.StringVar(&opts.expr, "e", "", "Evaluate expression and exit")
	flag.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	flag.Parse()
	return opts
}

func run() int {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("elisp-eval %s\n", version)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.backend != "" {
		cfg.Eval.Backend = opts.backend
	}
	if opts.historyFile != "" {
		cfg.History.FilePath = opts.historyFile
	}
	if opts.historyMax > 0 {
		cfg.History.MaxSize = opts.historyMax
	}

	var backend eval.Evaluator
	switch cfg.Eval.Backend {
	case "lua":
		lb := luaeval.New()
		defer lb.Close()
		backend = lb
	case "lisp":
		backend = lisp.New()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown backend %q\n", cfg.Eval.Backend)
		return 1
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	session, err := console.Open(console.Options{
		Engine:      eval.NewEngine(backend),
		Context:     eval.Context(opts.contextName),
		HistoryPath: cfg.History.FilePath,
		HistoryMax:  cfg.History.MaxSize,
		Inline:      ui.NewInline(os.Stdout),
		Auxiliary:   ui.NewAux(os.Stdout, interactive),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	if opts.expr != "" {
		if _, err := session.Submit(context.Background(), opts.expr); err != nil {
			return 1
		}
		return 0
	}

	if !interactive {
		return runPiped(session)
	}
	return runRepl(session, backend)
}

// runPiped evaluates stdin as one submission, for shell pipelines.
func runPiped(session *console.Session) int {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if strings.TrimSpace(string(data)) == "" {
		return 0
	}
	if _, err := session.Submit(context.Background(), string(data)); err != nil {
		return 1
	}
	return 0
}

func runRepl(session *console.Session, backend eval.Evaluator) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// seed line-editor recall with the restored ring
	for _, entry := range session.History() {
		ln.AppendHistory(strings.ReplaceAll(entry, "\n", " "))
	}

	// Ctrl-C is handled by liner itself in raw mode; only termination
	// signals need watching. The handler never touches the session: it
	// restores the terminal and flags the loop, and history is saved by
	// the caller's deferred Close once the loop returns.
	var terminated atomic.Bool
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		terminated.Store(true)
		ln.Close()
	}()

	fmt.Printf("elisp-eval %s console (:quit to exit)\n", version)

	for {
		text, ok := readSubmission(ln, backend)
		if terminated.Load() {
			fmt.Println()
			return 0
		}
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			if done := runCommand(session, trimmed); done {
				return 0
			}
			continue
		}

		// errors are rendered to a surface by the session; nothing else
		// to do with them here
		_, _ = session.Submit(context.Background(), text)
		ln.AppendHistory(strings.ReplaceAll(text, "\n", " "))
	}
}

// readSubmission reads one complete submission, prompting for continuation
// lines while the backend reports the text as incomplete.
func readSubmission(ln *liner.State, backend eval.Evaluator) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true // Ctrl-C drops the pending text
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if !backend.Incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// runCommand handles : console commands. Returns true when the console
// should exit.
func runCommand(session *console.Session, cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":history":
		entries := session.History()
		if len(entries) == 0 {
			fmt.Println("history is empty")
			return false
		}
		for i, entry := range entries {
			fmt.Printf("%3d  %s\n", i, strings.ReplaceAll(entry, "\n", " "))
		}
	case ":clear-history":
		session.ClearHistory()
		fmt.Println("history cleared")
	default:
		fmt.Printf("unknown command %s (try :quit, :history, :clear-history)\n", cmd)
	}
	return false
}
