package resolver

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// expandPattern returns the effective pattern for arg in slash form. In
// recursive mode a pattern without "**" is made to match at any depth below
// its directory part, so "src/*.go" becomes "src/**/*.go".
func expandPattern(raw string, recursive bool) string {
	pattern := filepath.ToSlash(raw)
	if !recursive || strings.Contains(pattern, "**") {
		return pattern
	}
	dir, file := path.Split(pattern)
	if dir == "" {
		return path.Join("**", file)
	}
	return strings.TrimSuffix(dir, "/") + "/**/" + file
}

// glob expands a pattern argument. Matching happens under the literal prefix
// of the pattern, resolved against the invocation root.
func (r *Resolver) glob(arg Argument) ([]Candidate, error) {
	log := r.opts.Logger
	pattern := expandPattern(arg.Raw, r.cfg.Recursive)

	base, rest := doublestar.SplitPattern(pattern)
	if !doublestar.ValidatePattern(rest) {
		return nil, fmt.Errorf("invalid pattern '%s': %w", arg.Raw, doublestar.ErrBadPattern)
	}

	baseAbs := filepath.FromSlash(base)
	if !filepath.IsAbs(baseAbs) {
		baseAbs = filepath.Join(r.opts.Root, baseAbs)
	}

	log.Debug("Resolver: expanding %q as %q under %s", arg.Raw, rest, baseAbs)

	matches, err := doublestar.Glob(os.DirFS(baseAbs), rest,
		doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		return nil, fmt.Errorf("cannot expand pattern '%s': %w", arg.Raw, err)
	}
	sortByComponents(matches)

	var candidates []Candidate
	for _, m := range matches {
		if err := r.opts.Context.Err(); err != nil {
			return nil, err
		}

		display := m
		if base != "." {
			display = path.Join(base, m)
		}
		abs := filepath.Join(baseAbs, filepath.FromSlash(m))

		info, err := os.Stat(abs)
		switch {
		case err != nil:
			r.tracker.Track(display, ReasonSkippedNotRegular, false)
			continue
		case info.IsDir():
			r.tracker.Track(display, ReasonSkippedSymlinkDir, true)
			continue
		case !info.Mode().IsRegular():
			r.tracker.Track(display, ReasonSkippedNotRegular, false)
			continue
		}

		if r.cfg.SkipHidden && hasHiddenComponent(m) {
			r.tracker.Track(display, ReasonIgnoredHidden, false)
			continue
		}
		if r.excluded(abs, r.opts.Root, false) {
			log.Debug("Resolver: ignored %q by ignore rules", display)
			r.tracker.Track(display, ReasonIgnoredRule, false)
			continue
		}
		if !r.acceptFile(display) {
			continue
		}

		candidates = append(candidates, Candidate{
			AbsPath:     abs,
			DisplayPath: display,
		})
	}

	log.Debug("Resolver: pattern %q matched %d file(s)", arg.Raw, len(candidates))
	return candidates, nil
}

func hasHiddenComponent(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}

// sortByComponents orders slash paths the way a depth-first, lexicographic
// walk visits them.
func sortByComponents(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return lessByComponents(paths[i], paths[j])
	})
}

func lessByComponents(a, b string) bool {
	pa, pb := strings.Split(a, "/"), strings.Split(b, "/")
	for k := 0; k < len(pa) && k < len(pb); k++ {
		if pa[k] != pb[k] {
			return pa[k] < pb[k]
		}
	}
	return len(pa) < len(pb)
}
