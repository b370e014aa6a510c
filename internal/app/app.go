package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/bethropolis/toprompt/internal/bundle"
	"github.com/bethropolis/toprompt/internal/collector"
	"github.com/bethropolis/toprompt/internal/config"
	"github.com/bethropolis/toprompt/internal/diag"
	"github.com/bethropolis/toprompt/internal/logger"
	"github.com/bethropolis/toprompt/internal/resolver"
	"github.com/bethropolis/toprompt/internal/setup"
	"github.com/bethropolis/toprompt/internal/sink"
	"github.com/bethropolis/toprompt/internal/summary"
)

// App encapsulates the main application functionality
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	stdout  io.Writer
	stderr  io.Writer
	copier  sink.Copier
	workDir string

	isTerminal func(io.Writer) bool
}

// Option is a functional option for configuring the App
type Option func(*App)

// WithStdout sets where bundles and previews are written
func WithStdout(w io.Writer) Option {
	return func(a *App) { a.stdout = w }
}

// WithStderr sets where log lines and reports are written
func WithStderr(w io.Writer) Option {
	return func(a *App) { a.stderr = w }
}

// WithCopier replaces the system clipboard
func WithCopier(c sink.Copier) Option {
	return func(a *App) { a.copier = c }
}

// WithWorkDir sets the invocation root instead of the process working directory
func WithWorkDir(dir string) Option {
	return func(a *App) { a.workDir = dir }
}

// WithTerminalCheck replaces the check deciding whether stderr is a terminal
func WithTerminalCheck(fn func(io.Writer) bool) Option {
	return func(a *App) {
		if fn != nil {
			a.isTerminal = fn
		}
	}
}

// New creates a new App instance
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		stdout: os.Stdout,
		stderr: os.Stderr,
		copier: sink.SystemClipboard{},

		isTerminal: config.IsTerminal,
	}
	for _, opt := range opts {
		opt(a)
	}

	// Configure color globally
	cfg.DetectColors(a.isTerminal(a.stderr))
	color.NoColor = !cfg.UseColors

	a.log = logger.New(a.stderr, false, cfg.UseColors).WithLevel(cfg.Level())
	return a
}

// Logger returns the application logger.
func (a *App) Logger() *logger.Logger {
	return a.log
}

// Run executes the pipeline: classify, resolve, collect, render, emit. It
// returns nil whenever a bundle was emitted, even with warnings.
func (a *App) Run(ctx context.Context) error {
	startTime := time.Now()

	if len(a.cfg.Paths) == 0 {
		return diag.ErrNoArguments
	}
	if err := a.cfg.Validate(); err != nil {
		return diag.Fatal("invalid flags", err)
	}
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	// Helper for info messages, suppressed by quiet flag
	infoLog := func(format string, args ...interface{}) {
		if !a.cfg.Quiet {
			a.log.Info(format, args...)
		}
	}

	workDir, err := a.resolveWorkDir()
	if err != nil {
		return diag.Fatal("determining working directory", err)
	}

	if a.log.DebugEnabled() {
		a.log.Debug("Verbose mode enabled")
		a.log.Debug("Color output: %v", a.cfg.UseColors)
		a.log.Debug("Working directory: %s", workDir)
		a.log.Debug("Recursive: %v, ignore rules: %v, format: %s", a.cfg.Recursive, a.cfg.IgnoreEnabled(), a.cfg.Format())
		a.log.Debug("Concurrent mode: %v (workers: %d)", a.cfg.Concurrent, a.cfg.Workers())
	}

	var warnings diag.Collector

	// --- Classify arguments ---
	args := make([]resolver.Argument, 0, len(a.cfg.Paths))
	for _, raw := range a.cfg.Paths {
		arg, err := resolver.Classify(workDir, raw)
		if err != nil {
			if errors.Is(err, diag.ErrStdinUnsupported) {
				return err
			}
			a.warn(&warnings, diag.KindResolution, raw, err)
			continue
		}
		a.log.Debug("Argument %q classified as %s", raw, arg.Kind)
		args = append(args, arg)
	}

	// --- Build ignore rules and resolver ---
	res, ruleWarnings, err := setup.ConfigureResolver(setup.ResolverConfig{
		Config:  a.cfg,
		Args:    args,
		WorkDir: workDir,
		Context: ctx,
		Logger:  a.log,
	}, infoLog)
	if err != nil {
		return err
	}
	for _, w := range ruleWarnings {
		a.log.Warn("Could not read ignore file %s: %v", w.Path, w.Err)
	}
	warnings.Append(ruleWarnings...)

	// --- Resolve every argument in order ---
	var candidates []resolver.Candidate
	for _, arg := range args {
		cands, err := res.Resolve(arg)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return diag.Fatal("resolving paths", ctxErr)
			}
			a.warn(&warnings, diag.KindResolution, arg.Raw, err)
			continue
		}
		if len(cands) == 0 {
			a.warn(&warnings, diag.KindResolution, arg.Raw, fmt.Errorf("%s %w", arg.Kind, diag.ErrNoMatches))
			continue
		}
		candidates = append(candidates, cands...)
	}
	if len(candidates) == 0 {
		a.reportSkipped(res)
		summary.DisplayWarnings(a.log, warnings.Items())
		return diag.ErrNothingResolved
	}

	// --- Read files ---
	coll, err := collector.New(setup.CollectorOptions(a.cfg, a.log, infoLog)...).Collect(ctx, candidates)
	if err != nil {
		return diag.Fatal("reading files", err)
	}
	warnings.Append(coll.Failures...)
	if len(coll.Records) == 0 {
		a.reportSkipped(res)
		summary.DisplayWarnings(a.log, warnings.Items())
		return diag.ErrNothingResolved
	}

	// --- Render and emit ---
	out := bundle.Render(coll.Records, res.Config().Format)
	if err := ctx.Err(); err != nil {
		return diag.Fatal("rendering bundle", err)
	}

	target, destination := a.sink()
	if err := target.Emit(out); err != nil {
		if !errors.Is(err, sink.ErrClipboardUnavailable) {
			return diag.Fatal("writing bundle", err)
		}
		destination = "stdout (clipboard unavailable)"
		a.warn(&warnings, diag.KindSink, "clipboard", err)
	}

	// --- Show results summary ---
	a.reportSkipped(res)
	summary.DisplayWarnings(a.log, warnings.Items())
	summary.DisplayResults(a.log, summary.Stats{
		Files:       len(coll.Records),
		Bytes:       coll.TotalBytes(),
		BundleChars: utf8.RuneCountInString(out),
		Warnings:    warnings.Len(),
		Duration:    time.Since(startTime),
		Destination: destination,
	}, a.cfg.Quiet)
	return nil
}

func (a *App) warn(c *diag.Collector, kind diag.Kind, path string, err error) {
	w := c.Add(kind, path, err)
	a.log.Warn("%s", w.Error())
}

func (a *App) reportSkipped(res *resolver.Resolver) {
	if a.cfg.ShowSkipped && res != nil {
		summary.DisplaySkippedItems(a.log, res.Skipped(), a.stderr, a.cfg.Quiet)
	}
}

func (a *App) sink() (sink.Sink, string) {
	switch {
	case a.cfg.OutputFile != "":
		return sink.File{Path: a.cfg.OutputFile}, a.cfg.OutputFile
	case a.cfg.Stdout:
		return sink.Writer{W: a.stdout}, "stdout"
	default:
		return sink.Clipboard{
			Copier: a.copier,
			Out:    a.stdout,
			Full:   a.cfg.PrintAll,
		}, "clipboard"
	}
}

func (a *App) resolveWorkDir() (string, error) {
	if a.workDir != "" {
		return filepath.Abs(a.workDir)
	}
	return os.Getwd()
}
