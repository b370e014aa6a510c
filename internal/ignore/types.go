// Package ignore evaluates gitignore-style rules against paths relative to a
// traversal root.
//
// Rules come from a single ignore file found at the root (".gitignore" unless
// configured otherwise), preceded by built-in defaults and followed by any
// extra patterns given on the command line. Evaluation is last-match-wins and
// a directory that is excluded excludes everything beneath it.
package ignore

import (
	"fmt"

	"github.com/bethropolis/toprompt/internal/logger"
	gitignore "github.com/denormal/go-gitignore"
)

// DefaultFileName is the ignore file looked up at the root.
const DefaultFileName = ".gitignore"

// RuleSet answers whether a relative path is excluded. A nil *RuleSet
// excludes nothing.
type RuleSet struct {
	engine gitignore.GitIgnore

	root      string
	source    string
	malformed int

	// configuration
	fileName     string
	explicitFile string
	defaults     bool
	extra        []string
	logger       logger.Interface
}

// ReadError reports an ignore file that exists but could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("ignore: cannot read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Root returns the absolute directory rules are evaluated against.
func (rs *RuleSet) Root() string {
	if rs == nil {
		return ""
	}
	return rs.root
}

// Source returns the ignore file the rules were loaded from, or "" when none
// was found.
func (rs *RuleSet) Source() string {
	if rs == nil {
		return ""
	}
	return rs.source
}

// Malformed returns how many lines were skipped because they did not parse.
func (rs *RuleSet) Malformed() int {
	if rs == nil {
		return 0
	}
	return rs.malformed
}
