// Package summary handles display of run results and statistics
package summary

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bethropolis/toprompt/internal/diag"
	"github.com/bethropolis/toprompt/internal/resolver"
)

// Logger defines the minimal logging interface required
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Stats describes one completed run.
type Stats struct {
	Files       int
	Bytes       int64
	BundleChars int
	Warnings    int
	Duration    time.Duration
	Destination string
}

// DisplayResults shows the end results of a run
func DisplayResults(logger Logger, stats Stats, quiet bool) {
	if quiet {
		return
	}
	logger.Info("Bundled %d file(s), %s of source, %s characters -> %s.",
		stats.Files, humanize.Bytes(uint64(stats.Bytes)), humanize.Comma(int64(stats.BundleChars)), stats.Destination)
	if stats.Warnings > 0 {
		logger.Info("Completed with %d warning(s) in %v.", stats.Warnings, stats.Duration.Round(time.Millisecond))
		return
	}
	logger.Info("Completed in %v.", stats.Duration.Round(time.Millisecond))
}

// DisplayWarnings repeats every warning of the run, grouped in report order.
func DisplayWarnings(logger Logger, warnings []diag.Warning) {
	if len(warnings) == 0 {
		return
	}
	logger.Warn("--- Warnings (%d) ---", len(warnings))
	for _, w := range warnings {
		logger.Warn("[%s] %s: %v", w.Kind, w.Path, w.Err)
	}
}

// DisplaySkippedItems formats and prints information about skipped items
func DisplaySkippedItems(
	logger Logger,
	skippedItems []resolver.SkippedItem,
	output io.Writer,
	quiet bool,
) {
	infoLog := func(format string, args ...interface{}) {
		if !quiet {
			logger.Info(format, args...)
		}
	}

	infoLog("--- Skipped Items (%d) ---", len(skippedItems))
	if len(skippedItems) > 0 {
		items := make([]resolver.SkippedItem, len(skippedItems))
		copy(items, skippedItems)
		// Sort for consistent output
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Path < items[j].Path
		})
		for _, item := range items {
			typeStr := "FILE"
			if item.IsDir {
				typeStr = "DIR " // Add space for alignment
			}
			fmt.Fprintf(output, "Skipped %s: %-50s [%s]\n", typeStr, item.Path, item.Reason)
		}
	} else {
		infoLog("No items were skipped.")
	}
	infoLog("--- End Skipped Items ---")
}
