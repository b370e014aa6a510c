package collector

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/bethropolis/toprompt/internal/bundle"
	"github.com/bethropolis/toprompt/internal/diag"
	"github.com/bethropolis/toprompt/internal/langtag"
	"github.com/bethropolis/toprompt/internal/resolver"
)

// result is the outcome of reading one candidate. Exactly one of record and
// failure is set.
type result struct {
	record  *bundle.Record
	failure *diag.Warning
}

// readOne reads a single candidate and decides whether it is usable text.
func (c *Collector) readOne(cand resolver.Candidate) result {
	display := cand.DisplayPath
	c.logger.Debug("readOne: reading [%s]", display)

	// Only stat when a size limit is configured
	if c.maxFileSize > 0 {
		if info, err := os.Stat(cand.AbsPath); err == nil && info.Size() > c.maxFileSize {
			return c.fail(display, fmt.Errorf("%w (%d > %d bytes)", diag.ErrTooLarge, info.Size(), c.maxFileSize))
		}
	}

	content, err := c.readFile(cand.AbsPath)
	if err != nil {
		return c.fail(display, fmt.Errorf("failed to read file: %w", err))
	}

	if c.maxFileSize > 0 && int64(len(content)) > c.maxFileSize {
		return c.fail(display, fmt.Errorf("%w (%d > %d bytes)", diag.ErrTooLarge, len(content), c.maxFileSize))
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return c.fail(display, diag.ErrBinary)
	}
	if !utf8.Valid(content) {
		return c.fail(display, diag.ErrNotUTF8)
	}

	c.logger.Debug("readOne: [%s] read %d bytes", display, len(content))
	return result{record: &bundle.Record{
		AbsPath:     cand.AbsPath,
		DisplayPath: display,
		Content:     string(content),
		Tag:         langtag.For(cand.AbsPath),
		Size:        int64(len(content)),
	}}
}

func (c *Collector) fail(display string, err error) result {
	c.logger.Warn("Skipping %s: %v", display, err)
	return result{failure: &diag.Warning{Kind: diag.KindRead, Path: display, Err: err}}
}
