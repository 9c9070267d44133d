package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/numref/internal/doctree"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", tree.Title)
	}
	children := tree.Children(tree.Root())
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}

	want := []string{
		"First paragraph line one. First paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if tree.Node(children[i]).Role != doctree.RoleParagraph {
			t.Errorf("child[%d]: expected paragraph, got %s", i, tree.Node(children[i]).Role)
		}
		if got := tree.PlainText(children[i]); got != w {
			t.Errorf("child[%d]: expected %q, got %q", i, w, got)
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", tree.Title)
	}
	if n := tree.NumChildren(tree.Root()); n != 0 {
		t.Errorf("expected 0 children for empty input, got %d", n)
	}
}

func TestTextParser_StandaloneMacro(t *testing.T) {
	input := "Intro\n\n{{id name='anchor'/}}\n\nMore"
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "macros.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	children := tree.Children(tree.Root())
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	m := tree.Node(children[1])
	if m.Role != doctree.RoleMacro || m.Inline || m.Macro.Name != "id" || m.Macro.Params["name"] != "anchor" {
		t.Errorf("expected block id macro, got %s %+v", m.Role, m.Macro)
	}
	if got := tree.PlainText(children[2]); got != "More" {
		t.Errorf("expected %q, got %q", "More", got)
	}
}

func TestTextParser_BlankLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		// Multiple consecutive blank lines should not produce empty paragraphs.
		{"multiple blank lines", "Para one.\n\n\n\nPara two."},
		// Lines with only whitespace should be treated as blank.
		{"whitespace only lines", "Para one.\n   \nPara two."},
	}
	p := &TextParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := p.Parse(strings.NewReader(tt.input), "gaps.txt")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n := tree.NumChildren(tree.Root()); n != 2 {
				t.Fatalf("expected 2 children, got %d", n)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.MD", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"a.csv", "*parser.CSVParser"},
		{"a.htm", "*parser.HTMLParser"},
		{"a.pdf", "*parser.PDFParser"},
		{"a.docx", "*parser.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Fatalf("ForFile(%q): unexpected error: %v", tt.filename, err)
		}
		if got := typeName(p); got != tt.want {
			t.Errorf("ForFile(%q): expected %s, got %s", tt.filename, tt.want, got)
		}
		if !IsSupportedExtension(tt.filename) {
			t.Errorf("IsSupportedExtension(%q) = false", tt.filename)
		}
	}

	if _, err := ForFile("image.png", Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if IsSupportedExtension("image.png") {
		t.Error("IsSupportedExtension(image.png) = true")
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *TextParser:
		return "*parser.TextParser"
	case *MarkdownParser:
		return "*parser.MarkdownParser"
	case *CSVParser:
		return "*parser.CSVParser"
	case *HTMLParser:
		return "*parser.HTMLParser"
	case *PDFParser:
		return "*parser.PDFParser"
	case *DOCXParser:
		return "*parser.DOCXParser"
	}
	return "unknown"
}
