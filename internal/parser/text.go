package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/macro"
)

// TextParser handles plain text files. Blank lines separate paragraphs and
// macro calls on a line of their own become block macros.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var src strings.Builder
	for scanner.Scan() {
		src.WriteString(scanner.Text())
		src.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	tree := doctree.New(trimExt(filename, ".txt"))
	b := doctree.NewBuilder(tree, tree.Root())
	for _, seg := range macro.Split(src.String()) {
		if seg.Call != nil {
			b.Add(macro.Marker(tree, seg.Call, false))
			continue
		}
		for _, para := range paragraphs(seg.Text) {
			b.Add(tree.NewNode(doctree.Node{Role: doctree.RoleParagraph}, macro.Inline(tree, para)...))
		}
	}

	return tree, nil
}

// paragraphs splits text on blank lines. Lines of one paragraph stay joined
// by their newline.
func paragraphs(text string) []string {
	var out []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				out = append(out, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
