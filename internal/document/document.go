// Package document collects extracted text in memory and saves it as a
// single file whose format follows the output path's extension.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTitle heads every generated document.
const DefaultTitle = "Extracted Text from Images"

// ErrUnsupportedFormat is returned by Save for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Entry is the text read from one image.
type Entry struct {
	File string
	Text string
}

type Document struct {
	title   string
	entries []Entry
}

func New(title string) *Document {
	return &Document{title: title}
}

func (d *Document) Title() string { return d.title }

// AddEntry appends the text of one image. Text and page formats render it as
// two paragraphs, the file header and the text; newlines inside text are kept
// as line breaks.
func (d *Document) AddEntry(file, text string) {
	d.entries = append(d.entries, Entry{File: file, Text: text})
}

// Entries returns a copy of the entries added so far.
func (d *Document) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// Paragraphs returns the body paragraphs in render order.
func (d *Document) Paragraphs() []string {
	out := make([]string, 0, 2*len(d.entries))
	for _, e := range d.entries {
		out = append(out, FileHeader(e.File), e.Text)
	}
	return out
}

// FileHeader formats the paragraph that introduces one image's text.
func FileHeader(name string) string {
	return "--- File: " + name + " ---"
}

// Format reports the output format for path, or ErrUnsupportedFormat.
func Format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx", ".xlsx", ".txt", ".md":
		return strings.TrimPrefix(ext, "."), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Save writes the document to path. The parent directory must already exist.
func (d *Document) Save(path string) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	switch format {
	case "docx":
		return d.saveDOCX(path)
	case "xlsx":
		return d.saveXLSX(path)
	case "md":
		return d.saveText(path, true)
	default:
		return d.saveText(path, false)
	}
}

func (d *Document) saveText(path string, markdown bool) error {
	var sb strings.Builder
	if d.title != "" {
		if markdown {
			sb.WriteString("# ")
		}
		sb.WriteString(d.title)
		sb.WriteString("\n\n")
	}
	for _, p := range d.Paragraphs() {
		sb.WriteString(p)
		sb.WriteString("\n\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
