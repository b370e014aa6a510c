// Package setup provides initialization and configuration functions
package setup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bethropolis/toprompt/internal/collector"
	"github.com/bethropolis/toprompt/internal/config"
	"github.com/bethropolis/toprompt/internal/diag"
	"github.com/bethropolis/toprompt/internal/ignore"
	"github.com/bethropolis/toprompt/internal/logger"
	"github.com/bethropolis/toprompt/internal/resolver"
)

// InfoLogger wraps the Info method for status updates
type InfoLogger func(format string, args ...interface{})

// ResolverConfig holds all parameters needed to configure a resolver
type ResolverConfig struct {
	Config  *config.Config
	Args    []resolver.Argument // classified arguments, in command-line order
	WorkDir string              // absolute invocation root
	Context context.Context
	Logger  logger.Interface
}

// IgnoreRoot is the directory whose ignore file applies: the first directory
// argument, or workDir when there is none.
func IgnoreRoot(args []resolver.Argument, workDir string) string {
	for _, a := range args {
		if a.Kind == resolver.KindDirectory {
			return a.Path
		}
	}
	return workDir
}

// LoadRules builds the ignore rule set. It returns nil rules when ignore
// filtering is off. A missing ignore file leaves only the built-in and
// --exclude rules; when it was named with --ignore-file that is reported as a
// warning. A file that exists but cannot be read is fatal when named
// explicitly, and a warning otherwise.
func LoadRules(cfg ResolverConfig, infoLog InfoLogger) (*ignore.RuleSet, []diag.Warning, error) {
	c := cfg.Config
	if !c.IgnoreEnabled() {
		return nil, nil, nil
	}

	root := IgnoreRoot(cfg.Args, cfg.WorkDir)
	opts := []ignore.Option{ignore.WithLogger(cfg.Logger)}

	var warnings []diag.Warning
	explicitMissing := false
	if c.IgnoreFile != "" {
		path := c.IgnoreFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.WorkDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, nil, diag.Fatal("loading ignore rules", err)
			}
			explicitMissing = true
			warnings = append(warnings, diag.Warning{Kind: diag.KindIgnoreFile, Path: path, Err: diag.ErrPathNotFound})
		}
		opts = append(opts, ignore.WithFile(path))
	}

	extra := c.ExcludePatterns()
	if len(extra) > 0 {
		infoLog("Using extra ignore patterns: %s", strings.Join(extra, ", "))
		opts = append(opts, ignore.WithExtraRules(extra))
	}

	rules, err := ignore.Load(root, opts...)
	if err != nil {
		var readErr *ignore.ReadError
		if !errors.As(err, &readErr) {
			return nil, nil, diag.Fatal("loading ignore rules", err)
		}
		if c.IgnoreFile != "" {
			return nil, nil, diag.Fatal("loading ignore rules", err)
		}
		w := diag.Warning{Kind: diag.KindIgnoreFile, Path: readErr.Path, Err: readErr.Err}
		return rules, append(warnings, w), nil
	}

	switch src := rules.Source(); {
	case src != "":
		infoLog("Loaded ignore rules from: %s", src)
	case !explicitMissing:
		infoLog("No %s found in %s; using built-in rules only.", ignore.DefaultFileName, root)
	}
	if n := rules.Malformed(); n > 0 {
		cfg.Logger.Warn("Skipped %d malformed ignore rule(s).", n)
	}
	return rules, warnings, nil
}

// ConfigureResolver sets up ignore rules and a resolver based on the config
func ConfigureResolver(cfg ResolverConfig, infoLog InfoLogger) (*resolver.Resolver, []diag.Warning, error) {
	c := cfg.Config

	match, err := c.MatchConfig()
	if err != nil {
		return nil, nil, diag.Fatal("configuring resolver", err)
	}

	// Print effective settings
	if exts := c.ExtensionList(); len(exts) > 0 {
		infoLog("Filtering enabled. Only including extensions: %s", strings.Join(exts, ", "))
	}
	if match.Include != nil {
		cfg.Logger.Debug("Include pattern: %s", match.Include)
	}
	if c.SkipHidden {
		infoLog("Skipping hidden files/directories (starting with '.').")
	}
	if !c.Recursive {
		cfg.Logger.Debug("Processing directories non-recursively")
	}

	rules, warnings, err := LoadRules(cfg, infoLog)
	if err != nil {
		return nil, nil, err
	}

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	res := resolver.New(match, rules,
		resolver.WithLogger(cfg.Logger),
		resolver.WithRoot(cfg.WorkDir),
		resolver.WithContext(ctx),
	)
	return res, warnings, nil
}

// CollectorOptions translates the processing settings into collector options.
func CollectorOptions(c *config.Config, log logger.Interface, infoLog InfoLogger) []collector.Option {
	opts := []collector.Option{collector.WithLogger(log)}

	if c.MaxFileSizeMB > 0 {
		opts = append(opts, collector.WithMaxFileSize(c.MaxFileSizeBytes()))
		infoLog("Ignoring files larger than %d MB.", c.MaxFileSizeMB)
	}
	if w := c.Workers(); w > 1 {
		opts = append(opts, collector.WithConcurrency(w))
		infoLog("Using concurrent reads with %d workers.", w)
	}
	return opts
}
