package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies how a document's raw bytes are encoded.
type Format string

// Supported document formats.
const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
)

// Document is a readable-text view of an ingested file.
type Document struct {
	Title  string
	Text   string
	Format Format
}

// DetectFormat maps a filename extension to a document format.
// Unknown extensions are treated as plain text.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatText
	}
}

// ExtractText reduces a document to readable text. HTML is converted
// to markdown; markdown and plain text pass through with whitespace
// cleanup. The title comes from the page title or first H1 where one
// exists, otherwise the base filename.
func (c *Converter) ExtractText(content []byte, filename string) (*Document, error) {
	format := DetectFormat(filename)

	switch format {
	case FormatHTML:
		result, err := c.Convert(content)
		if err != nil {
			return nil, fmt.Errorf("convert html document: %w", err)
		}
		title := result.Title
		if title == "" {
			title = baseTitle(filename)
		}
		return &Document{Title: title, Text: result.Markdown, Format: format}, nil

	case FormatMarkdown:
		text := cleanMarkdown(string(content))
		title := extractMarkdownTitle(text)
		if title == "" {
			title = baseTitle(filename)
		}
		return &Document{Title: title, Text: text, Format: format}, nil

	default:
		text := strings.TrimSpace(string(content))
		return &Document{Title: baseTitle(filename), Text: text, Format: FormatText}, nil
	}
}

// baseTitle derives a title from the base filename without extension.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
