// Package collector reads resolved candidates into bundle records.
package collector

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bethropolis/toprompt/internal/bundle"
	"github.com/bethropolis/toprompt/internal/diag"
	"github.com/bethropolis/toprompt/internal/logger"
	"github.com/bethropolis/toprompt/internal/resolver"
)

// Collection is the ordered, duplicate-free set of readable files plus the
// files that had to be dropped.
type Collection struct {
	Records  []bundle.Record
	Failures []diag.Warning
}

// TotalBytes returns the summed size of all records.
func (c *Collection) TotalBytes() int64 {
	var n int64
	for _, r := range c.Records {
		n += r.Size
	}
	return n
}

// Collector reads candidate files, sequentially or with a bounded pool.
type Collector struct {
	logger      logger.Interface
	maxFileSize int64
	workers     int
	readFile    func(string) ([]byte, error)
}

// Option is a functional option for configuring the Collector
type Option func(*Collector)

// WithLogger sets a custom logger
func WithLogger(l logger.Interface) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxFileSize drops files larger than n bytes. Zero disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(c *Collector) {
		if n >= 0 {
			c.maxFileSize = n
		}
	}
}

// WithConcurrency reads with up to workers goroutines. Values below two keep
// reads sequential.
func WithConcurrency(workers int) Option {
	return func(c *Collector) {
		c.workers = workers
	}
}

// WithReadFile replaces os.ReadFile.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(c *Collector) {
		if fn != nil {
			c.readFile = fn
		}
	}
}

// New creates a Collector.
func New(opts ...Option) *Collector {
	c := &Collector{
		logger:   logger.Nop{},
		workers:  1,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect reads candidates in order. Duplicates by absolute path are dropped,
// keeping the first occurrence. Per-file failures are reported in the
// Collection; only cancellation of ctx returns an error, in which case no
// collection is returned at all.
func (c *Collector) Collect(ctx context.Context, candidates []resolver.Candidate) (*Collection, error) {
	startTime := time.Now()
	unique := Dedupe(candidates)
	if dropped := len(candidates) - len(unique); dropped > 0 {
		c.logger.Debug("Collector: dropped %d duplicate path(s)", dropped)
	}

	results := make([]result, len(unique))
	var err error
	if c.workers > 1 && len(unique) > 1 {
		err = c.collectConcurrent(ctx, unique, results)
	} else {
		err = c.collectSequential(ctx, unique, results)
	}
	if err != nil {
		return nil, err
	}

	coll := &Collection{Records: make([]bundle.Record, 0, len(unique))}
	for _, res := range results {
		switch {
		case res.record != nil:
			coll.Records = append(coll.Records, *res.record)
		case res.failure != nil:
			coll.Failures = append(coll.Failures, *res.failure)
		}
	}

	c.logger.Debug("Collector: read %d file(s), %d failure(s) in %s",
		len(coll.Records), len(coll.Failures), time.Since(startTime))
	return coll, nil
}

func (c *Collector) collectSequential(ctx context.Context, cands []resolver.Candidate, results []result) error {
	for i, cand := range cands {
		if err := ctx.Err(); err != nil {
			return err
		}
		results[i] = c.readOne(cand)
	}
	return nil
}

// collectConcurrent fills results by index so the output order matches the
// sequential run. Read failures are values, never group errors, so one bad
// file cannot cancel its siblings.
func (c *Collector) collectConcurrent(ctx context.Context, cands []resolver.Candidate, results []result) error {
	c.logger.Debug("Collector: starting %d workers for %d file(s)", c.workers, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, cand := range cands {
		if gctx.Err() != nil {
			break
		}
		i, cand := i, cand
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.readOne(cand)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Dedupe removes candidates whose absolute path was already seen. The first
// occurrence and its display path win.
func Dedupe(candidates []resolver.Candidate) []resolver.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]resolver.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if _, ok := seen[cand.AbsPath]; ok {
			continue
		}
		seen[cand.AbsPath] = struct{}{}
		out = append(out, cand)
	}
	return out
}
