package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/bethropolis/toprompt/internal/bundle"
	"github.com/bethropolis/toprompt/internal/ignore"
	"github.com/bethropolis/toprompt/internal/logger"
	"github.com/bethropolis/toprompt/internal/resolver"
)

// Config holds all application configuration settings
type Config struct {
	// Positional arguments: files, directories and glob patterns
	Paths []string

	// Selection settings
	Recursive  bool
	UseIgnore  bool
	IgnoreFile string
	Exclude    []string
	Regex      string
	Extensions string
	SkipHidden bool

	// Output settings
	XML        bool
	FormatName string
	OutputFile string
	Stdout     bool
	PrintAll   bool

	// Processing settings
	Concurrent    bool
	MaxWorkers    int
	MaxFileSizeMB int64
	Timeout       time.Duration

	// Logging settings
	Verbose     bool
	Quiet       bool
	LogLevel    string
	NoColor     bool
	UseColors   bool
	ShowSkipped bool
}

// Default returns a Config with every flag at its default value.
func Default() *Config {
	return &Config{
		MaxWorkers: runtime.NumCPU(),
	}
}

// BindFlags registers every option on fs. Boolean short flags can be
// combined, as in -ri.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.Recursive, "recursive", "r", c.Recursive, "Recurse into subdirectories")
	fs.BoolVarP(&c.UseIgnore, "ignore", "i", c.UseIgnore, "Apply "+ignore.DefaultFileName+" rules (read from the first directory argument, else the current directory)")
	fs.StringVar(&c.IgnoreFile, "ignore-file", c.IgnoreFile, "Explicit ignore file to apply (implies --ignore)")
	fs.StringArrayVarP(&c.Exclude, "exclude", "e", c.Exclude, "Extra ignore pattern in gitignore syntax, applied after the ignore file (repeatable, implies --ignore)")
	fs.StringVarP(&c.Regex, "regex", "R", c.Regex, "Only include files whose relative path matches this regular expression")
	fs.StringVar(&c.Extensions, "ext", c.Extensions, "Only include files with these extensions (comma-separated, e.g., 'go,md,txt')")
	fs.BoolVar(&c.SkipHidden, "skip-hidden", c.SkipHidden, "Skip hidden files/directories (starting with '.') during expansion")

	fs.BoolVar(&c.XML, "xml", c.XML, "Produce an XML-tagged bundle instead of Markdown (same as --format xml)")
	fs.StringVar(&c.FormatName, "format", c.FormatName, "Bundle format: markdown or xml")
	fs.StringVarP(&c.OutputFile, "output", "o", c.OutputFile, "Write the bundle to a file instead of the clipboard")
	fs.BoolVar(&c.Stdout, "stdout", c.Stdout, "Write the bundle to stdout instead of the clipboard")
	fs.BoolVar(&c.PrintAll, "print", c.PrintAll, "Print the whole bundle after copying it")

	fs.BoolVar(&c.Concurrent, "concurrent", c.Concurrent, "Read files concurrently")
	fs.IntVar(&c.MaxWorkers, "workers", c.MaxWorkers, "Max number of concurrent readers (defaults to number of CPU cores)")
	fs.Int64Var(&c.MaxFileSizeMB, "max-size", c.MaxFileSizeMB, "Max file size to include in MB (0 = no limit)")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Maximum execution time (e.g., '30s', '5m')")

	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Enable verbose logging")
	fs.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "Suppress INFO messages (only show WARN, ERROR)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Set the logging level (debug, info, warn, error, none)")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable color output")
	fs.BoolVar(&c.ShowSkipped, "show-skipped", c.ShowSkipped, "Show a list of skipped files/directories and reasons at the end")
}

// Validate checks flag combinations and fills derived fields. It must run
// after flags are parsed.
func (c *Config) Validate() error {
	var errs []error

	if c.OutputFile != "" && c.Stdout {
		errs = append(errs, errors.New("--output and --stdout are mutually exclusive"))
	}
	if c.MaxFileSizeMB < 0 {
		errs = append(errs, fmt.Errorf("--max-size must not be negative (got %d)", c.MaxFileSizeMB))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("--timeout must not be negative (got %s)", c.Timeout))
	}
	if c.Concurrent && c.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("--workers must be at least 1 (got %d)", c.MaxWorkers))
	}
	if c.FormatName != "" {
		f, err := bundle.ParseFormat(c.FormatName)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid --format: %w", err))
		case c.XML && f != bundle.XML:
			errs = append(errs, fmt.Errorf("--xml conflicts with --format %s", f))
		}
	}
	if c.LogLevel != "" && !validLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown --log-level %q", c.LogLevel))
	}
	if c.Regex != "" {
		if _, err := regexp.Compile(c.Regex); err != nil {
			errs = append(errs, fmt.Errorf("invalid --regex: %w", err))
		}
	}

	c.UseIgnore = c.IgnoreEnabled()

	return errors.Join(errs...)
}

// DetectColors decides whether log output is colored. terminal reports
// whether the log destination is a terminal.
func (c *Config) DetectColors(terminal bool) {
	c.UseColors = !c.NoColor && terminal
}

// IsTerminal reports whether w is a terminal, Cygwin and MSYS included.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func validLevel(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "info", "warn", "warning", "error", "none", "off":
		return true
	}
	return false
}

// Level resolves --log-level, --verbose and --quiet into one level. An
// explicit --log-level wins.
func (c *Config) Level() logger.Level {
	switch {
	case c.LogLevel != "":
		return logger.ParseLevel(c.LogLevel)
	case c.Verbose:
		return logger.LevelDebug
	case c.Quiet:
		return logger.LevelWarn
	default:
		return logger.LevelInfo
	}
}

// Format returns the selected bundle format. --xml wins over --format;
// an unknown --format falls back to Markdown (Validate reports it).
func (c *Config) Format() bundle.Format {
	if c.XML {
		return bundle.XML
	}
	if f, err := bundle.ParseFormat(c.FormatName); err == nil {
		return f
	}
	return bundle.Markdown
}

// MaxFileSizeBytes converts --max-size to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// Workers returns the reader count for the collector; 1 means sequential.
func (c *Config) Workers() int {
	if !c.Concurrent || c.MaxWorkers < 1 {
		return 1
	}
	return c.MaxWorkers
}

// ExtensionSet parses --ext into lower-case extensions without dots. It
// returns nil when no filter is configured.
func (c *Config) ExtensionSet() map[string]struct{} {
	if strings.TrimSpace(c.Extensions) == "" {
		return nil
	}
	set := make(map[string]struct{})
	for _, ext := range strings.Split(c.Extensions, ",") {
		clean := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
		if clean != "" {
			set[clean] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// ExtensionList returns the extension filter sorted, with leading dots.
func (c *Config) ExtensionList() []string {
	set := c.ExtensionSet()
	out := make([]string, 0, len(set))
	for ext := range set {
		out = append(out, "."+ext)
	}
	sort.Strings(out)
	return out
}

// IgnoreEnabled reports whether ignore rules apply. --ignore-file and
// --exclude both imply --ignore.
func (c *Config) IgnoreEnabled() bool {
	return c.UseIgnore || c.IgnoreFile != "" || len(c.ExcludePatterns()) > 0
}

// ExcludePatterns returns the non-empty --exclude values, trimmed.
func (c *Config) ExcludePatterns() []string {
	var out []string
	for _, p := range c.Exclude {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MatchConfig builds the immutable selection settings used for resolution.
func (c *Config) MatchConfig() (resolver.MatchConfig, error) {
	mc := resolver.MatchConfig{
		Recursive:     c.Recursive,
		UseIgnoreFile: c.IgnoreEnabled(),
		Extensions:    c.ExtensionSet(),
		SkipHidden:    c.SkipHidden,
		Format:        c.Format(),
	}
	if c.Regex != "" {
		re, err := regexp.Compile(c.Regex)
		if err != nil {
			return resolver.MatchConfig{}, fmt.Errorf("invalid --regex: %w", err)
		}
		mc.Include = re
	}
	return mc, nil
}
