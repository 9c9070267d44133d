// Package render serializes a document tree: as HTML, as a listing of
// begin/end events, or as plain text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
)

// Format names an output syntax.
type Format string

const (
	FormatHTML   Format = "html"
	FormatText   Format = "text"
	FormatEvents Format = "events"
)

// ParseFormat maps a format name to a Format. The empty string selects HTML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatText:
		return FormatText, nil
	case FormatEvents:
		return FormatEvents, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// ContentType is the MIME type of output in format f.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Write renders t to w in format f.
func Write(w io.Writer, t *doctree.Tree, f Format) error {
	switch f {
	case FormatHTML:
		return HTML(w, t)
	case FormatText:
		_, err := io.WriteString(w, Text(t))
		return err
	case FormatEvents:
		_, err := io.WriteString(w, Events(t))
		return err
	}
	return fmt.Errorf("unknown output format %q", f)
}

// String renders t in format f.
func String(t *doctree.Tree, f Format) (string, error) {
	var buf strings.Builder
	if err := Write(&buf, t, f); err != nil {
		return "", err
	}
	return buf.String(), nil
}
