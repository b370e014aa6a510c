package ignore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bethropolis/toprompt/internal/logger"
	gitignore "github.com/denormal/go-gitignore"
)

func newRuleSet(root string, opts []Option) *RuleSet {
	rs := &RuleSet{
		root:     root,
		fileName: DefaultFileName,
		defaults: true,
		logger:   logger.Nop{},
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Load builds the rule set for root. A missing ignore file is not an error;
// the result then holds only the defaults and extra rules. A file that exists
// but cannot be read yields a usable rule set together with a *ReadError.
func Load(root string, opts ...Option) (*RuleSet, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("ignore: failed to get absolute path for root '%s': %w", root, err)
	}
	rs := newRuleSet(absRoot, opts)

	path := rs.explicitFile
	if path == "" {
		path = filepath.Join(absRoot, rs.fileName)
	}

	rs.logger.Debug("ignore.Load: root %s, file %s", absRoot, path)

	content, readErr := os.ReadFile(path)
	switch {
	case readErr == nil:
		rs.source = path
	case errors.Is(readErr, fs.ErrNotExist):
		rs.logger.Debug("ignore.Load: no ignore file at %s", path)
		readErr = nil
	default:
		rs.logger.Debug("ignore.Load: cannot read %s: %v", path, readErr)
		readErr = &ReadError{Path: path, Err: readErr}
		content = nil
	}

	rs.compile(string(content))
	return rs, readErr
}

// Parse builds a rule set from in-memory rules evaluated against root.
func Parse(root string, r io.Reader, opts ...Option) (*RuleSet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ignore: failed to read rules: %w", err)
	}
	rs := newRuleSet(root, opts)
	rs.compile(string(content))
	return rs, nil
}

// Empty returns a rule set that excludes nothing.
func Empty(root string) *RuleSet {
	rs := newRuleSet(root, []Option{WithDefaults(false)})
	rs.compile("")
	return rs
}

func (rs *RuleSet) compile(fileContent string) {
	var b strings.Builder
	if rs.defaults {
		b.WriteString(".git/\n")
		name := rs.fileName
		if rs.explicitFile != "" {
			name = filepath.Base(rs.explicitFile)
		}
		b.WriteString("/" + filepath.ToSlash(name) + "\n")
	}
	b.WriteString(strings.ReplaceAll(fileContent, "\r\n", "\n"))
	if fileContent != "" && !strings.HasSuffix(fileContent, "\n") {
		b.WriteString("\n")
	}
	for _, p := range rs.extra {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteString(p + "\n")
		}
	}

	// Malformed lines are reported and skipped; parsing always continues.
	onError := func(e gitignore.Error) bool {
		rs.malformed++
		rs.logger.Debug("ignore: skipping malformed rule at %s: %v", e.Position(), e.Underlying())
		return true
	}
	rs.engine = gitignore.New(strings.NewReader(b.String()), rs.root, onError)
}
