package ignore

import "github.com/bethropolis/toprompt/internal/logger"

// Option configures a RuleSet
type Option func(*RuleSet)

// WithLogger sets the logger used for diagnostics
func WithLogger(l logger.Interface) Option {
	return func(rs *RuleSet) {
		if l != nil {
			rs.logger = l
		}
	}
}

// WithFileName changes the ignore file name looked up at the root.
func WithFileName(name string) Option {
	return func(rs *RuleSet) {
		if name != "" {
			rs.fileName = name
		}
	}
}

// WithFile loads rules from an explicit path instead of <root>/<name>.
func WithFile(path string) Option {
	return func(rs *RuleSet) {
		rs.explicitFile = path
	}
}

// WithDefaults toggles the built-in ".git/" and ignore-file-name rules.
func WithDefaults(enabled bool) Option {
	return func(rs *RuleSet) {
		rs.defaults = enabled
	}
}

// WithExtraRules appends patterns after the file's rules, so they win.
func WithExtraRules(patterns []string) Option {
	return func(rs *RuleSet) {
		rs.extra = append(rs.extra, patterns...)
	}
}
