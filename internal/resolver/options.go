package resolver

import (
	"context"

	"github.com/bethropolis/toprompt/internal/logger"
)

// Options configures a Resolver beyond its MatchConfig.
type Options struct {
	Logger  logger.Interface
	Context context.Context
	Root    string // absolute invocation root; relative patterns expand here
}

func defaultOptions() Options {
	return Options{
		Logger:  logger.Nop{},
		Context: context.Background(),
	}
}

// Option is a functional option for configuring Options
type Option func(*Options)

// WithLogger sets a custom logger for the resolver
func WithLogger(l logger.Interface) Option {
	return func(opts *Options) {
		if l != nil {
			opts.Logger = l
		}
	}
}

// WithContext sets the context checked between entries
func WithContext(ctx context.Context) Option {
	return func(opts *Options) {
		if ctx != nil {
			opts.Context = ctx
		}
	}
}

// WithRoot sets the invocation root. Relative arguments and patterns are
// resolved against it instead of the process working directory.
func WithRoot(root string) Option {
	return func(opts *Options) {
		opts.Root = root
	}
}
