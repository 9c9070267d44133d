package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/macro"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Headings open sections, <figure> elements
// with a <figcaption> become numbered figures, and macro calls written in
// text are kept as markers.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := trimExt(filename, ".html", ".htm")
	// Extract title from <title> tag if present.
	if t := findTitle(doc); t != "" {
		title = t
	}
	tree := doctree.New(title)

	c := &htmlConverter{tree: tree}
	b := doctree.NewBuilder(tree, tree.Root())
	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		c.blocks(body, b)
	} else {
		c.blocks(doc, b)
	}
	return tree, nil
}

type htmlConverter struct {
	tree *doctree.Tree
}

// blocks converts the children of n, collecting loose inline content into
// paragraphs.
func (c *htmlConverter) blocks(n *html.Node, b *doctree.Builder) {
	t := c.tree
	var loose []*html.Node
	flush := func() {
		if len(loose) == 0 {
			return
		}
		var content []doctree.NodeID
		for _, l := range loose {
			content = append(content, c.inline(l)...)
		}
		loose = nil
		if len(trimSpaces(t, content)) > 0 {
			b.Add(t.NewNode(doctree.Node{Role: doctree.RoleParagraph}, trimSpaces(t, content)...))
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if !isBlock(child) {
			loose = append(loose, child)
			continue
		}
		flush()
		c.block(child, b)
	}
	flush()
}

func (c *htmlConverter) block(n *html.Node, b *doctree.Builder) {
	t := c.tree
	if level := headingLevel(n.Data); level > 0 {
		b.Heading(level, attr(n, "id"), trimSpaces(t, c.inlines(n))...)
		return
	}

	switch n.Data {
	// Skip non-content elements.
	case "script", "style", "nav", "footer", "header", "template", "head":
		return
	case "p":
		if content := trimSpaces(t, c.inlines(n)); len(content) > 0 {
			b.Add(t.NewNode(doctree.Node{Role: doctree.RoleParagraph, ID: attr(n, "id")}, content...))
		}
	case "pre":
		b.Add(macro.CodeRegion(t, textContent(n), codeLanguage(n), false))
	case "figure":
		b.Add(c.container(doctree.Node{Role: doctree.RoleFigure, ID: attr(n, "id")}, n))
	case "figcaption":
		b.Add(t.NewNode(doctree.Node{Role: doctree.RoleFigureCaption, ID: attr(n, "id")}, trimSpaces(t, c.inlines(n))...))
	case "table":
		b.Add(c.table(n))
	case "ul", "ol":
		list := doctree.Node{Role: doctree.RoleList}
		if n.Data == "ol" {
			list.Class = "ordered"
		}
		l := t.NewNode(list)
		for item := n.FirstChild; item != nil; item = item.NextSibling {
			if item.Type == html.ElementNode && item.Data == "li" {
				t.Append(l, c.container(doctree.Node{Role: doctree.RoleListItem}, item))
			}
		}
		b.Add(l)
	case "blockquote":
		b.Add(c.container(doctree.Node{Role: doctree.RoleQuote}, n))
	case "hr":
	default:
		// Transparent containers such as div, section and article.
		c.blocks(n, b)
	}
}

func (c *htmlConverter) container(parent doctree.Node, n *html.Node) doctree.NodeID {
	id := c.tree.NewNode(parent)
	c.blocks(n, doctree.NewBuilder(c.tree, id))
	return id
}

func (c *htmlConverter) table(n *html.Node) doctree.NodeID {
	t := c.tree
	table := t.NewNode(doctree.Node{Role: doctree.RoleTable, ID: attr(n, "id")})
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.Data {
			case "thead", "tbody", "tfoot":
				rows(child)
			case "tr":
				row := t.NewNode(doctree.Node{Role: doctree.RoleTableRow})
				for cell := child.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						t.Append(row, t.NewNode(doctree.Node{Role: doctree.RoleTableCell}, trimSpaces(t, c.inlines(cell))...))
					}
				}
				t.Append(table, row)
			}
		}
	}
	rows(n)
	return table
}

func (c *htmlConverter) inlines(n *html.Node) []doctree.NodeID {
	var out []doctree.NodeID
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		out = append(out, c.inline(child)...)
	}
	return out
}

func (c *htmlConverter) inline(n *html.Node) []doctree.NodeID {
	t := c.tree
	switch n.Type {
	case html.TextNode:
		return macro.Inline(t, n.Data)
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "script", "style":
		return nil
	case "em", "i":
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleFormat, Class: "em"}, c.inlines(n)...)}
	case "strong", "b":
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleFormat, Class: "strong"}, c.inlines(n)...)}
	case "span":
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleFormat, Class: attr(n, "class"), ID: attr(n, "id")}, c.inlines(n)...)}
	case "code":
		return []doctree.NodeID{macro.CodeRegion(t, textContent(n), "", true)}
	case "a":
		if name := attr(n, "name"); name != "" && attr(n, "href") == "" {
			return append([]doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleID, ID: name})}, c.inlines(n)...)
		}
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleLink, Text: attr(n, "href")}, c.inlines(n)...)}
	case "img":
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleImage, Text: attr(n, "src")})}
	case "br":
		return []doctree.NodeID{t.NewNode(doctree.Node{Role: doctree.RoleSpace})}
	}
	return c.inlines(n)
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if headingLevel(n.Data) > 0 {
		return true
	}
	switch n.Data {
	case "p", "div", "section", "article", "main", "aside", "pre", "figure", "figcaption",
		"table", "ul", "ol", "blockquote", "hr", "script", "style", "nav", "footer", "header",
		"template", "head", "body", "html":
		return true
	}
	return false
}

// trimSpaces drops leading and trailing Space nodes.
func trimSpaces(t *doctree.Tree, ids []doctree.NodeID) []doctree.NodeID {
	for len(ids) > 0 && t.Node(ids[0]).Role == doctree.RoleSpace {
		ids = ids[1:]
	}
	for len(ids) > 0 && t.Node(ids[len(ids)-1]).Role == doctree.RoleSpace {
		ids = ids[:len(ids)-1]
	}
	return ids
}

func codeLanguage(pre *html.Node) string {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			for _, cls := range strings.Fields(attr(c, "class")) {
				if lang, ok := strings.CutPrefix(cls, "language-"); ok {
					return lang
				}
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Trim(buf.String(), "\n")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(textContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
