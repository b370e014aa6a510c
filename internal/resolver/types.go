// Package resolver turns command-line path arguments into an ordered list of
// candidate files.
package resolver

import (
	"regexp"
	"sync"

	"github.com/bethropolis/toprompt/internal/bundle"
)

// Kind is the shape of a command-line argument.
type Kind int

const (
	// KindLiteral is an existing path that is not a directory.
	KindLiteral Kind = iota
	// KindDirectory is an existing directory.
	KindDirectory
	// KindPattern is a glob that does not name an existing path.
	KindPattern
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "file"
	case KindDirectory:
		return "directory"
	case KindPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// Argument is a classified command-line argument.
type Argument struct {
	Raw  string // as typed
	Kind Kind
	Path string // absolute path; the absolute pattern for KindPattern
}

// MatchConfig holds the selection settings derived from flags. It is fixed
// before resolution starts.
type MatchConfig struct {
	Recursive     bool
	UseIgnoreFile bool
	Include       *regexp.Regexp      // nil selects everything
	Extensions    map[string]struct{} // lower-case, no dot; nil selects everything
	SkipHidden    bool
	Format        bundle.Format // output format of the bundle built from the selection
}

// Candidate is a file selected for the bundle whose content is not read yet.
type Candidate struct {
	AbsPath     string
	DisplayPath string // slash-separated
}

// SkippedReason clarifies why a file/directory was not selected.
type SkippedReason string

const (
	ReasonIgnoredHidden     SkippedReason = "Ignored (Hidden Rule)"
	ReasonIgnoredRule       SkippedReason = "Ignored (Ignore File Rule)"
	ReasonFilteredExtension SkippedReason = "Filtered (Extension Mismatch)"
	ReasonFilteredPattern   SkippedReason = "Filtered (Include Pattern Mismatch)"
	ReasonSkippedNotRegular SkippedReason = "Skipped (Not a Regular File)"
	ReasonSkippedSymlinkDir SkippedReason = "Skipped (Symlinked Directory)"
	ReasonSkippedNoRecurse  SkippedReason = "Skipped (Subdirectory, Not Recursive)"
	ReasonSkippedPermError  SkippedReason = "Skipped (Permission Error)"
	ReasonSkippedWalkError  SkippedReason = "Skipped (Walk Error)"
)

// SkippedItem holds information about a skipped path.
type SkippedItem struct {
	Path   string        `json:"path"`
	Reason SkippedReason `json:"reason"`
	IsDir  bool          `json:"is_dir"`
}

// SkippedTracker records skipped items; safe for concurrent use.
type SkippedTracker struct {
	items []SkippedItem
	mutex sync.Mutex
}

// NewSkippedTracker creates a new SkippedTracker
func NewSkippedTracker(capacity int) *SkippedTracker {
	return &SkippedTracker{
		items: make([]SkippedItem, 0, capacity),
	}
}

// Track adds a skipped item to the tracker
func (st *SkippedTracker) Track(path string, reason SkippedReason, isDir bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.items = append(st.items, SkippedItem{Path: path, Reason: reason, IsDir: isDir})
}

// Items returns a copy of the tracked items in the order they were recorded.
func (st *SkippedTracker) Items() []SkippedItem {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	out := make([]SkippedItem, len(st.items))
	copy(out, st.items)
	return out
}
