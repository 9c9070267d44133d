package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/macro"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs with a heading style open
// sections; a paragraph styled "Caption" directly after a table captions it.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "numref-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	tree := doctree.New(trimExt(filename, ".docx"))
	b := doctree.NewBuilder(tree, tree.Root())

	var lastTable doctree.NodeID = doctree.None
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if text == "" {
				continue
			}
			if level := docxHeadingLevel(it); level > 0 {
				b.Heading(level, "", macro.Inline(tree, text)...)
				lastTable = doctree.None
				continue
			}
			if lastTable != doctree.None && docxIsCaption(it) {
				caption := tree.NewNode(doctree.Node{Role: doctree.RoleFigureCaption}, macro.Inline(tree, text)...)
				fig := tree.NewNode(doctree.Node{Role: doctree.RoleFigure})
				tree.Replace(lastTable, fig)
				tree.Append(fig, lastTable, caption)
				lastTable = doctree.None
				continue
			}
			b.Add(tree.NewNode(doctree.Node{Role: doctree.RoleParagraph}, macro.Inline(tree, text)...))
			lastTable = doctree.None

		case *docx.Table:
			lastTable = docxTable(tree, it)
			b.Add(lastTable)
		}
	}

	return tree, nil
}

func docxTable(t *doctree.Tree, tbl *docx.Table) doctree.NodeID {
	table := t.NewNode(doctree.Node{Role: doctree.RoleTable})
	for _, row := range tbl.TableRows {
		r := t.NewNode(doctree.Node{Role: doctree.RoleTableRow})
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if text := docxParagraphText(para); text != "" {
					parts = append(parts, text)
				}
			}
			t.Append(r, t.NewNode(doctree.Node{Role: doctree.RoleTableCell}, macro.Inline(t, strings.Join(parts, " "))...))
		}
		t.Append(table, r)
	}
	return table
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxIsCaption(para *docx.Paragraph) bool {
	return strings.EqualFold(docxStyle(para), "Caption")
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style := strings.ToLower(strings.ReplaceAll(docxStyle(para), " ", ""))
	switch style {
	case "heading1":
		return 1
	case "heading2":
		return 2
	case "heading3":
		return 3
	case "heading4":
		return 4
	case "heading5":
		return 5
	case "heading6":
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
