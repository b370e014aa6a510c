// Package bundle renders collected files into a single prompt-ready text.
package bundle

import (
	"fmt"
	"strings"
)

// Format selects the bundle layout.
type Format int

const (
	// Markdown emits a heading and a fenced code block per file.
	Markdown Format = iota
	// XML emits one <file> element per file.
	XML
)

func (f Format) String() string {
	switch f {
	case Markdown:
		return "markdown"
	case XML:
		return "xml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a user-supplied name onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "markdown", "md":
		return Markdown, nil
	case "xml":
		return XML, nil
	default:
		return Markdown, fmt.Errorf("bundle: unknown format %q", name)
	}
}

// Record is one file ready for rendering.
type Record struct {
	AbsPath     string
	DisplayPath string // slash-separated
	Content     string // exact file content, valid UTF-8
	Tag         string // language tag, "" when unknown
	Size        int64
}
