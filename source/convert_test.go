package source

import (
	"strings"
	"testing"
)

func TestExtractHTMLTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "simple title",
			html:     "<html><head><title>My Page</title></head><body></body></html>",
			expected: "My Page",
		},
		{
			name:     "title with whitespace",
			html:     "<html><head><title>  Spaced Title  </title></head></html>",
			expected: "Spaced Title",
		},
		{
			name:     "no title",
			html:     "<html><head></head><body>Content</body></html>",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractHTMLTitle([]byte(tt.html))
			if got != tt.expected {
				t.Errorf("extractHTMLTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractMarkdownTitle(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "H1 at start",
			markdown: "# Hello World\n\nContent here",
			expected: "Hello World",
		},
		{
			name:     "H1 after text",
			markdown: "Some text\n\n# Title Here\n\nMore content",
			expected: "Title Here",
		},
		{
			name:     "no H1",
			markdown: "## Section\n\nContent",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractMarkdownTitle(tt.markdown)
			if got != tt.expected {
				t.Errorf("extractMarkdownTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCleanMarkdown(t *testing.T) {
	got := cleanMarkdown("Line 1\n\n\n\n\n\nLine 2   \n")
	if strings.Contains(got, "\n\n\n\n") {
		t.Error("cleanMarkdown should remove excessive newlines")
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.HasSuffix(line, " ") {
			t.Errorf("cleanMarkdown should remove trailing spaces: %q", line)
		}
	}
}

func TestConverter(t *testing.T) {
	converter := NewConverter()

	html := []byte(`<!DOCTYPE html>
<html>
<head><title>Checkout Flow Notes</title></head>
<body>
<nav>Navigation</nav>
<main>
<h1>Checkout Flow</h1>
<p>The customer submits an order and the payment gateway <strong>validates</strong> the card.</p>
<ul>
<li>Order is created</li>
<li>Confirmation email is sent</li>
</ul>
</main>
<footer>Footer</footer>
</body>
</html>`)

	result, err := converter.Convert(html)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if result.Title != "Checkout Flow Notes" {
		t.Errorf("Title = %q, want %q", result.Title, "Checkout Flow Notes")
	}
	if !strings.Contains(result.Markdown, "payment gateway") {
		t.Error("Markdown should contain the main paragraph")
	}
	if !strings.Contains(result.Markdown, "Order is created") {
		t.Error("Markdown should contain list items")
	}
	if strings.Contains(result.Markdown, "Navigation") {
		t.Error("Markdown should not contain navigation chrome")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"notes.md", FormatMarkdown},
		{"notes.markdown", FormatMarkdown},
		{"page.html", FormatHTML},
		{"page.HTM", FormatHTML},
		{"notes.txt", FormatText},
		{"README", FormatText},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.filename); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestExtractTextMarkdownPassthrough(t *testing.T) {
	converter := NewConverter()

	doc, err := converter.ExtractText([]byte("# Billing Rules\n\nInvoices are due in 30 days.\n"), "billing.md")
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if doc.Format != FormatMarkdown {
		t.Errorf("Format = %q", doc.Format)
	}
	if doc.Title != "Billing Rules" {
		t.Errorf("Title = %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "due in 30 days") {
		t.Errorf("Text = %q", doc.Text)
	}
}

func TestExtractTextPlainFallsBackToFilename(t *testing.T) {
	converter := NewConverter()

	doc, err := converter.ExtractText([]byte("  raw notes about sessions  "), "session-notes.txt")
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if doc.Title != "session-notes" {
		t.Errorf("Title = %q, want base filename", doc.Title)
	}
	if doc.Text != "raw notes about sessions" {
		t.Errorf("Text = %q, want trimmed content", doc.Text)
	}
}
