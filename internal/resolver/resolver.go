package resolver

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bethropolis/toprompt/internal/ignore"
)

// Resolver expands classified arguments into candidate files. A Resolver is
// meant for a single invocation; its skipped list accumulates across calls.
type Resolver struct {
	cfg     MatchConfig
	rules   *ignore.RuleSet
	opts    Options
	tracker *SkippedTracker
}

// New creates a Resolver. rules may be nil, in which case nothing is excluded
// by ignore rules even when cfg.UseIgnoreFile is set.
func New(cfg MatchConfig, rules *ignore.RuleSet, opts ...Option) *Resolver {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.Root == "" {
		options.Root = rules.Root()
	}
	if options.Root == "" {
		if wd, err := os.Getwd(); err == nil {
			options.Root = wd
		}
	}
	if abs, err := filepath.Abs(options.Root); err == nil {
		options.Root = abs
	}

	return &Resolver{
		cfg:     cfg,
		rules:   rules,
		opts:    options,
		tracker: NewSkippedTracker(64),
	}
}

// Config returns the selection settings the resolver was built with.
func (r *Resolver) Config() MatchConfig {
	return r.cfg
}

// Root returns the absolute invocation root.
func (r *Resolver) Root() string {
	return r.opts.Root
}

// Resolve expands arg into candidates. Zero matches yield nil, nil; the caller
// decides how to report that.
func (r *Resolver) Resolve(arg Argument) ([]Candidate, error) {
	if err := r.opts.Context.Err(); err != nil {
		return nil, err
	}

	switch arg.Kind {
	case KindLiteral:
		r.opts.Logger.Debug("Resolver: literal %q -> %s", arg.Raw, arg.Path)
		return []Candidate{{
			AbsPath:     arg.Path,
			DisplayPath: filepath.ToSlash(arg.Raw),
		}}, nil
	case KindDirectory:
		return r.walk(arg)
	case KindPattern:
		return r.glob(arg)
	default:
		return nil, nil
	}
}

// Skipped returns every path dropped so far, in the order it was dropped.
func (r *Resolver) Skipped() []SkippedItem {
	return r.tracker.Items()
}

// acceptFile applies the per-file filters that only expansion results go
// through. display is the slash-separated path the file will be shown as.
func (r *Resolver) acceptFile(display string) bool {
	if len(r.cfg.Extensions) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(display), "."))
		if _, ok := r.cfg.Extensions[ext]; !ok {
			r.opts.Logger.Debug("Resolver: extension %q of %q not selected", ext, display)
			r.tracker.Track(display, ReasonFilteredExtension, false)
			return false
		}
	}

	if r.cfg.Include != nil && !r.cfg.Include.MatchString(display) {
		r.opts.Logger.Debug("Resolver: %q does not match include pattern", display)
		r.tracker.Track(display, ReasonFilteredPattern, false)
		return false
	}
	return true
}

// excluded consults the ignore rules for abs. The path is made relative to the
// rule set's root; paths outside it are checked relative to fallback instead.
func (r *Resolver) excluded(abs, fallback string, isDir bool) bool {
	if !r.cfg.UseIgnoreFile || r.rules == nil {
		return false
	}

	rel, ok := relativeTo(r.rules.Root(), abs)
	if !ok {
		if rel, ok = relativeTo(fallback, abs); !ok {
			return false
		}
	}

	pattern, excluded, matched := r.rules.Match(rel, isDir)
	if matched {
		r.opts.Logger.Debug("Resolver: %q matched %q (excluded: %v)", rel, pattern, excluded)
	}
	return excluded
}

func relativeTo(base, target string) (string, bool) {
	if base == "" {
		return "", false
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}
