package cmd

import (
	"testing"
	"text/template"

	"github.com/mattn/go-runewidth"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "no padding when width is negative",
			input:    "Hello",
			width:    -1,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "1. a very long file name that needs truncation.webm",
			width:    20,
			expected: "1. a very long fi...",
		},
		{
			name:     "handle unicode characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
		{
			name:     "truncate unicode text",
			input:    "日本語とても長いテキスト",
			width:    10,
			expected: "日本語... ", // 日本語 is 6 columns, ... is 3, need 1 space
		},
		{
			name:     "empty string padding",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "minimum width for truncation",
			input:    "Hello",
			width:    3,
			expected: "...",
		},
		{
			name:     "width below ellipsis",
			input:    "Hello",
			width:    2,
			expected: "..",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}

			if tt.width > 0 {
				resultWidth := runewidth.StringWidth(result)
				if resultWidth != tt.width {
					t.Errorf("padToWidth(%q, %d) produced width %d, expected %d",
						tt.input, tt.width, resultWidth, tt.width)
				}
			}
		})
	}
}

func TestFormatEntry(t *testing.T) {
	entry := listEntry{
		Index:     3,
		Title:     "cat.webm",
		URL:       "https://i.example.org/wsg/1.webm",
		Thumbnail: "https://i.example.org/wsg/1s.jpg",
		Current:   true,
	}

	tests := []struct {
		name     string
		format   string
		expected string
	}{
		{
			name:     "default format",
			format:   "{{.Index}}. {{.Title}}",
			expected: "3. cat.webm",
		},
		{
			name:     "url only",
			format:   "{{.URL}}",
			expected: "https://i.example.org/wsg/1.webm",
		},
		{
			name:     "current marker",
			format:   "{{if .Current}}>{{else}} {{end}} {{.Title}}",
			expected: "> cat.webm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := template.Must(template.New("output").Parse(tt.format))
			got, err := formatEntry(tmpl, entry)
			if err != nil {
				t.Fatalf("formatEntry() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("formatEntry() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFormatEntry_ExecutionError(t *testing.T) {
	tmpl := template.Must(template.New("output").Parse("{{.Missing}}"))
	if _, err := formatEntry(tmpl, listEntry{}); err == nil {
		t.Error("formatEntry() with unknown field should fail")
	}
}
