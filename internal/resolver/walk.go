package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"
)

// node is a pending entry on the traversal stack.
type node struct {
	abs   string
	rel   string // slash-separated, relative to the directory argument
	entry fs.DirEntry
}

// walk lists the files under a directory argument depth-first, in
// lexicographic order within each directory. Subdirectories are entered only
// when the configuration is recursive.
func (r *Resolver) walk(arg Argument) ([]Candidate, error) {
	startTime := time.Now()
	log := r.opts.Logger
	base := filepath.ToSlash(arg.Raw)

	log.Debug("Walker: started at %s (recursive: %v, ignore rules: %v)",
		arg.Path, r.cfg.Recursive, r.cfg.UseIgnoreFile)

	entries, err := os.ReadDir(arg.Path)
	if err != nil {
		return nil, fmt.Errorf("walker: cannot read directory '%s': %w", arg.Raw, err)
	}

	var (
		stack      []node
		candidates []Candidate
	)
	stack = pushChildren(stack, arg.Path, "", entries)

	for len(stack) > 0 {
		if err := r.opts.Context.Err(); err != nil {
			return nil, err
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		display := path.Join(base, n.rel)

		isDir, regular := r.entryKind(n, display)
		if !isDir && !regular {
			continue
		}

		if r.cfg.SkipHidden && isHidden(n.entry.Name()) {
			log.Debug("Walker: skipping hidden %q", display)
			r.tracker.Track(display, ReasonIgnoredHidden, isDir)
			continue
		}

		if r.excluded(n.abs, arg.Path, isDir) {
			log.Debug("Walker: ignored %q by ignore rules", display)
			r.tracker.Track(display, ReasonIgnoredRule, isDir)
			continue
		}

		if isDir {
			if !r.cfg.Recursive {
				log.Debug("Walker: not descending into %q (non-recursive)", display)
				r.tracker.Track(display, ReasonSkippedNoRecurse, true)
				continue
			}

			children, err := os.ReadDir(n.abs)
			if err != nil {
				reason := ReasonSkippedWalkError
				if os.IsPermission(err) {
					reason = ReasonSkippedPermError
				}
				log.Warn("Cannot read directory %q: %v", display, err)
				r.tracker.Track(display, reason, true)
				// ReadDir may still have returned the entries it managed to read
				if len(children) == 0 {
					continue
				}
			}
			log.Debug("Walker: descending into %q", display)
			stack = pushChildren(stack, n.abs, n.rel, children)
			continue
		}

		if !r.acceptFile(display) {
			continue
		}

		log.Debug("Walker: selected %q", display)
		candidates = append(candidates, Candidate{
			AbsPath:     n.abs,
			DisplayPath: display,
		})
	}

	log.Debug("Walker: %s yielded %d file(s) in %s", arg.Raw, len(candidates), time.Since(startTime))
	return candidates, nil
}

// entryKind classifies a stack entry. Symlinks are resolved: links to regular
// files count as files, links to directories are never followed.
func (r *Resolver) entryKind(n node, display string) (isDir, regular bool) {
	mode := n.entry.Type()

	switch {
	case mode&fs.ModeSymlink != 0:
		info, err := os.Stat(n.abs)
		if err != nil {
			r.opts.Logger.Debug("Walker: dangling symlink %q: %v", display, err)
			r.tracker.Track(display, ReasonSkippedNotRegular, false)
			return false, false
		}
		if info.IsDir() {
			r.opts.Logger.Debug("Walker: not following symlinked directory %q", display)
			r.tracker.Track(display, ReasonSkippedSymlinkDir, true)
			return false, false
		}
		if !info.Mode().IsRegular() {
			r.tracker.Track(display, ReasonSkippedNotRegular, false)
			return false, false
		}
		return false, true
	case mode.IsDir():
		return true, false
	case mode.IsRegular():
		return false, true
	default:
		r.opts.Logger.Debug("Walker: %q is not a regular file", display)
		r.tracker.Track(display, ReasonSkippedNotRegular, false)
		return false, false
	}
}

// pushChildren pushes entries in reverse so the smallest name is popped first.
// os.ReadDir already returns entries sorted by file name.
func pushChildren(stack []node, dirAbs, dirRel string, entries []fs.DirEntry) []node {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		stack = append(stack, node{
			abs:   filepath.Join(dirAbs, e.Name()),
			rel:   path.Join(dirRel, e.Name()),
			entry: e,
		})
	}
	return stack
}
