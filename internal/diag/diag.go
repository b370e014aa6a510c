// Package diag classifies the non-fatal warnings and fatal errors produced
// while building a bundle.
package diag

import (
	"errors"
	"fmt"
	"sync"
)

// Kind identifies the class of a non-fatal condition.
type Kind string

const (
	// KindResolution: an argument matched zero files.
	KindResolution Kind = "resolution"
	// KindRead: a selected file could not be read or decoded as text.
	KindRead Kind = "read"
	// KindIgnoreFile: the ignore file is missing or could not be read.
	KindIgnoreFile Kind = "ignore-file"
	// KindSink: the bundle went to the fallback output instead of the clipboard.
	KindSink Kind = "sink"
)

// Fatal conditions. Any of these aborts the run before a bundle is produced.
var (
	ErrNoArguments      = errors.New("no paths given")
	ErrNothingResolved  = errors.New("no files were resolved from the given paths")
	ErrStdinUnsupported = errors.New("reading from stdin via '-' is not supported")
)

// Non-fatal causes attached to warnings.
var (
	ErrPathNotFound = errors.New("path does not exist")
	ErrNoMatches    = errors.New("matched no files")
	ErrBinary       = errors.New("binary content")
	ErrNotUTF8      = errors.New("content is not valid UTF-8")
	ErrTooLarge     = errors.New("file exceeds size limit")
)

// Warning is a non-fatal condition tied to a path or argument.
type Warning struct {
	Kind Kind
	Path string
	Err  error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %s: %v", w.Kind, w.Path, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}

// FatalError aborts the run. Op names the stage that failed.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a FatalError for stage op.
func Fatal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Op: op, Err: err}
}

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return true
	}
	return errors.Is(err, ErrNoArguments) ||
		errors.Is(err, ErrNothingResolved) ||
		errors.Is(err, ErrStdinUnsupported)
}

// Collector accumulates warnings in the order they are reported.
type Collector struct {
	mu    sync.Mutex
	items []Warning
}

// Add records a warning.
func (c *Collector) Add(kind Kind, path string, err error) Warning {
	w := Warning{Kind: kind, Path: path, Err: err}
	c.mu.Lock()
	c.items = append(c.items, w)
	c.mu.Unlock()
	return w
}

// Append records already built warnings.
func (c *Collector) Append(ws ...Warning) {
	c.mu.Lock()
	c.items = append(c.items, ws...)
	c.mu.Unlock()
}

// Items returns a copy of the recorded warnings.
func (c *Collector) Items() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of recorded warnings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
