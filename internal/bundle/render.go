package bundle

import (
	"encoding/xml"
	"strings"
)

const (
	minFence   = 3
	closingTag = "</file>"
)

// Render formats records in order. It is pure: identical inputs produce
// byte-identical output.
func Render(records []Record, format Format) string {
	var b strings.Builder
	b.Grow(estimate(records))

	switch format {
	case XML:
		renderXML(&b, records)
	default:
		renderMarkdown(&b, records)
	}
	return b.String()
}

func renderMarkdown(b *strings.Builder, records []Record) {
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		fence := Fence(r.Content)

		b.WriteString("# ")
		b.WriteString(r.DisplayPath)
		b.WriteByte('\n')
		b.WriteString(fence)
		b.WriteString(r.Tag)
		b.WriteByte('\n')
		writeBody(b, r.Content)
		b.WriteString(fence)
		b.WriteByte('\n')
	}
}

func renderXML(b *strings.Builder, records []Record) {
	b.WriteString("<files>\n")
	for _, r := range records {
		b.WriteString(`<file path="`)
		// strings.Builder writes never fail
		_ = xml.EscapeText(b, []byte(r.DisplayPath))
		b.WriteString("\">\n")
		writeBody(b, strings.ReplaceAll(r.Content, closingTag, "&lt;/file>"))
		b.WriteString(closingTag)
		b.WriteByte('\n')
	}
	b.WriteString("</files>\n")
}

// writeBody writes content and makes sure the next delimiter starts a line.
func writeBody(b *strings.Builder, content string) {
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteByte('\n')
	}
}

// Fence returns the backtick fence for content: three backticks, or one more
// than the longest backtick run inside content.
func Fence(content string) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}

	n := minFence
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}

func estimate(records []Record) int {
	n := 0
	for _, r := range records {
		n += len(r.Content) + len(r.DisplayPath) + len(r.Tag) + 32
	}
	return n
}
