package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/macro"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MarkdownParser handles Markdown files using goldmark. Standalone macro
// calls split the source into markdown runs; inline calls stay in text.
// It also parses macro content for the macro expander.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	tree := doctree.New(trimExt(filename, ".md", ".markdown"))
	p.build(tree, doctree.NewBuilder(tree, tree.Root()), string(src))
	return tree, nil
}

// ParseBlocks parses macro content as block-level markdown.
func (p *MarkdownParser) ParseBlocks(t *doctree.Tree, content string) ([]doctree.NodeID, error) {
	return detached(t, func(b *doctree.Builder) error {
		p.build(t, b, content)
		return nil
	})
}

// ParseInline parses macro content as inline markdown: paragraphs are
// unwrapped and joined by a space.
func (p *MarkdownParser) ParseInline(t *doctree.Tree, content string) ([]doctree.NodeID, error) {
	blocks, err := p.ParseBlocks(t, content)
	if err != nil {
		return nil, err
	}
	var out []doctree.NodeID
	for i, b := range blocks {
		if i > 0 {
			out = append(out, t.NewNode(doctree.Node{Role: doctree.RoleSpace}))
		}
		if t.Node(b).Role == doctree.RoleParagraph {
			for _, c := range t.Children(b) {
				t.Detach(c)
				out = append(out, c)
			}
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (p *MarkdownParser) build(t *doctree.Tree, b *doctree.Builder, src string) {
	ids := newHeadingIDs(t)
	for _, seg := range macro.Split(src) {
		if seg.Call != nil {
			b.Add(macro.Marker(t, seg.Call, false))
			continue
		}
		source := []byte(seg.Text)
		ctx := parser.NewContext(parser.WithIDs(ids))
		doc := newMarkdown().Parser().Parse(text.NewReader(source), parser.WithContext(ctx))
		c := &mdConverter{tree: t, src: source}
		for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
			c.block(n, b)
		}
	}
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
	)
}

// headingIDs generates heading anchors from the heading text with macro
// calls removed. It is shared by every markdown run of a tree and starts
// out holding the ids already in the tree, so anchors never collide.
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs(t *doctree.Tree) *headingIDs {
	ids := &headingIDs{used: map[string]bool{}}
	for i := 0; i < t.Len(); i++ {
		if id := t.Node(doctree.NodeID(i)).ID; id != "" {
			ids.used[id] = true
		}
	}
	return ids
}

func (s *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	var plain []byte
	for _, seg := range macro.ScanInline(string(value)) {
		if seg.Call == nil {
			plain = append(plain, seg.Text...)
		}
	}
	plain = util.TrimRightSpace(util.TrimLeftSpace(plain))

	var id []byte
	for i := 0; i < len(plain); {
		v := plain[i]
		l := util.UTF8Len(v)
		i += int(l)
		if l != 1 {
			continue
		}
		switch {
		case util.IsAlphaNumeric(v):
			if 'A' <= v && v <= 'Z' {
				v += 'a' - 'A'
			}
			id = append(id, v)
		case util.IsSpace(v) || v == '-' || v == '_':
			id = append(id, '-')
		}
	}
	if len(id) == 0 {
		id = []byte("heading")
		if kind != ast.KindHeading {
			id = []byte("id")
		}
	}

	base := string(id)
	out := base
	for n := 1; s.used[out]; n++ {
		out = fmt.Sprintf("%s-%d", base, n)
	}
	s.used[out] = true
	return []byte(out)
}

func (s *headingIDs) Put(value []byte) {
	s.used[string(value)] = true
}

type mdConverter struct {
	tree *doctree.Tree
	src  []byte
}

func (c *mdConverter) block(n ast.Node, b *doctree.Builder) {
	t := c.tree
	switch node := n.(type) {
	case *ast.Heading:
		b.Heading(node.Level, attrString(node, "id"), trimSpaces(t, c.inlines(node))...)

	case *ast.Paragraph:
		b.Add(t.NewNode(doctree.Node{Role: doctree.RoleParagraph}, trimSpaces(t, c.inlines(node))...))

	case *ast.TextBlock:
		// Tight list items carry their text without a paragraph.
		b.Add(c.inlines(node)...)

	case *ast.FencedCodeBlock:
		b.Add(macro.CodeRegion(t, c.lines(node), string(node.Language(c.src)), false))

	case *ast.CodeBlock:
		b.Add(macro.CodeRegion(t, c.lines(node), "", false))

	case *ast.HTMLBlock:
		b.Add(t.NewNode(doctree.Node{Role: doctree.RoleVerbatim, Text: c.lines(node), Class: "html"}))

	case *ast.ThematicBreak:
		// Nothing to number or reference.

	case *ast.Blockquote:
		b.Add(c.container(doctree.Node{Role: doctree.RoleQuote}, node))

	case *ast.List:
		list := doctree.Node{Role: doctree.RoleList}
		if node.IsOrdered() {
			list.Class = "ordered"
		}
		l := t.NewNode(list)
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			t.Append(l, c.container(doctree.Node{Role: doctree.RoleListItem}, item))
		}
		b.Add(l)

	case *east.Table:
		table := t.NewNode(doctree.Node{Role: doctree.RoleTable})
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			r := t.NewNode(doctree.Node{Role: doctree.RoleTableRow})
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				t.Append(r, t.NewNode(doctree.Node{Role: doctree.RoleTableCell}, trimSpaces(t, c.inlines(cell))...))
			}
			t.Append(table, r)
		}
		b.Add(table)

	default:
		b.Add(c.container(doctree.Node{Role: doctree.RoleGroup}, node))
	}
}

// container converts the block children of n under a new node, with its own
// section nesting.
func (c *mdConverter) container(parent doctree.Node, n ast.Node) doctree.NodeID {
	id := c.tree.NewNode(parent)
	sub := doctree.NewBuilder(c.tree, id)
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		c.block(child, sub)
	}
	return id
}

// inlines converts the inline children of n. Adjacent text runs are merged
// first so that macro calls split by the markdown lexer are seen whole.
func (c *mdConverter) inlines(n ast.Node) []doctree.NodeID {
	t := c.tree
	var out []doctree.NodeID
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, macro.Inline(t, buf.String())...)
			buf.Reset()
		}
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(c.src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		default:
			flush()
			out = append(out, c.inline(child)...)
		}
	}
	flush()
	return out
}

func (c *mdConverter) inline(n ast.Node) []doctree.NodeID {
	t := c.tree
	switch node := n.(type) {
	case *ast.Emphasis:
		class := "em"
		if node.Level >= 2 {
			class = "strong"
		}
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleFormat, Class: class}, c.inlines(node)...)}
	case *ast.CodeSpan:
		var buf bytes.Buffer
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if txt, ok := child.(*ast.Text); ok {
				buf.Write(txt.Segment.Value(c.src))
			}
		}
		return []doctree.NodeID{macro.CodeRegion(t, buf.String(), "", true)}
	case *ast.Link:
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleLink, Text: string(node.Destination)}, c.inlines(node)...)}
	case *ast.AutoLink:
		url := string(node.URL(c.src))
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleLink, Text: url}, doctree.Tokenize(t, url)...)}
	case *ast.Image:
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleImage, Text: string(node.Destination)})}
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(c.src))
		}
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleVerbatim, Text: buf.String(), Class: "html", Inline: true})}
	}
	return c.inlines(n)
}

func (c *mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func attrString(n ast.Node, name string) string {
	v, ok := n.AttributeString(name)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case []byte:
		return string(val)
	case string:
		return val
	}
	return ""
}
