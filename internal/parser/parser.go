package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
)

// ErrUnsupportedFormat is returned for file types no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported file extension")

// Parser converts raw document bytes into a document tree. Macro calls in the
// source are left as unexpanded macro markers.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Tree, error)
}

// Options tune parser selection.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename
}

// detached parses into a throwaway container and returns its children
// detached, ready to be attached by the caller.
func detached(t *doctree.Tree, fill func(b *doctree.Builder) error) ([]doctree.NodeID, error) {
	holder := t.NewNode(doctree.Node{Role: doctree.RoleGroup})
	if err := fill(doctree.NewBuilder(t, holder)); err != nil {
		return nil, err
	}
	children := t.Children(holder)
	for _, c := range children {
		t.Detach(c)
	}
	return children, nil
}
