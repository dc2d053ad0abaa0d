package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/dinos/internal/dino"
)

// Format is an output format for a record collection.
type Format string

const (
	FormatJSON     Format = "json"
	FormatJSONL    Format = "jsonl"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatJSONL, FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, jsonl, markdown or html)", s)
	}
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders records as a GitHub-style table.
func Markdown(records []dino.Dino) string {
	var b strings.Builder
	b.WriteString("| Species | Period | Diet | Status |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, d := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", escapeCell(d.Species), d.Period, d.Diet(), d.Status())
	}
	return b.String()
}

// HTML renders records as an HTML table by converting Markdown with goldmark.
func HTML(records []dino.Dino) (string, error) {
	return MarkdownToHTML(Markdown(records))
}

// MarkdownToHTML converts arbitrary markdown with the table extension enabled.
// Raw HTML in the input is not passed through.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// escapeCell keeps species text from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
