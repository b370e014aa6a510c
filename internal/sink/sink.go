// Package sink delivers a finished bundle to its destination.
package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
)

// DefaultPreviewLen is the number of characters echoed after a clipboard copy.
const DefaultPreviewLen = 500

// ErrClipboardUnavailable reports that no clipboard could be written. The
// bundle has been written to the fallback writer instead.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Sink receives the bundle exactly once.
type Sink interface {
	Emit(bundle string) error
}

// Copier places text on a clipboard.
type Copier interface {
	Copy(text string) error
}

// SystemClipboard is the Copier backed by the platform clipboard tools
// (pbcopy, clip, xclip, xsel, wl-copy).
type SystemClipboard struct{}

func (SystemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility found")
	}
	return clipboard.WriteAll(text)
}

// Clipboard copies the bundle and reports a preview to Out. When copying
// fails the whole bundle goes to Out instead.
type Clipboard struct {
	Copier     Copier
	Out        io.Writer
	PreviewLen int  // characters; <= 0 uses DefaultPreviewLen
	Full       bool // echo the whole bundle instead of a preview
}

func (c Clipboard) Emit(bundle string) error {
	copier := c.Copier
	if copier == nil {
		copier = SystemClipboard{}
	}
	out := c.Out
	if out == nil {
		out = os.Stdout
	}

	if err := copier.Copy(bundle); err != nil {
		if _, werr := fmt.Fprintf(out, "\n--- Output (not copied) ---\n\n%s\n", bundle); werr != nil {
			return fmt.Errorf("sink: writing fallback output: %w", werr)
		}
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}

	chars := utf8.RuneCountInString(bundle)
	if c.Full {
		_, err := fmt.Fprintf(out, "Copied %s characters to the clipboard.\n\n%s\n", humanize.Comma(int64(chars)), bundle)
		return err
	}

	n := c.PreviewLen
	if n <= 0 {
		n = DefaultPreviewLen
	}
	preview, truncated := Preview(bundle, n)
	if truncated {
		preview += "..."
	}
	_, err := fmt.Fprintf(out, "Copied %s characters to the clipboard.\n\n--- Clipboard preview (first %d characters) ---\n\n%s\n",
		humanize.Comma(int64(chars)), n, preview)
	return err
}

// Preview returns the first n characters of s and whether anything was cut.
func Preview(s string, n int) (string, bool) {
	if n <= 0 {
		return "", s != ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}

// Writer writes the bundle unchanged, e.g. to stdout.
type Writer struct {
	W io.Writer
}

func (w Writer) Emit(bundle string) error {
	if _, err := io.WriteString(w.W, bundle); err != nil {
		return fmt.Errorf("sink: writing bundle: %w", err)
	}
	return nil
}

// File writes the bundle to Path, replacing any existing content.
type File struct {
	Path string
}

func (f File) Emit(bundle string) error {
	if err := os.WriteFile(f.Path, []byte(bundle), 0o644); err != nil {
		return fmt.Errorf("sink: writing %s: %w", f.Path, err)
	}
	return nil
}
