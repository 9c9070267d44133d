package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dgallion1/numref/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML writes the body content of t as an HTML fragment.
func HTML(w io.Writer, t *doctree.Tree) error {
	for _, c := range t.Children(t.Root()) {
		for _, n := range htmlNodes(t, c) {
			if err := html.Render(w, n); err != nil {
				return fmt.Errorf("render html: %w", err)
			}
		}
	}
	return nil
}

// htmlNodes converts id into zero or more HTML nodes. Transparent roles
// contribute their children directly.
func htmlNodes(t *doctree.Tree, id doctree.NodeID) []*html.Node {
	n := t.Node(id)
	switch n.Role {
	case doctree.RoleWord, doctree.RoleSymbol:
		return []*html.Node{{Type: html.TextNode, Data: n.Text}}
	case doctree.RoleSpace:
		return []*html.Node{{Type: html.TextNode, Data: " "}}
	case doctree.RoleSection, doctree.RoleMacro, doctree.RoleDocument, doctree.RoleOther:
		return htmlChildren(t, id)
	case doctree.RolePlaceholder:
		return nil
	case doctree.RoleID:
		return []*html.Node{element("span", "id", n.ID)}
	case doctree.RoleImage:
		return []*html.Node{element("img", "src", n.Text)}
	case doctree.RoleVerbatim:
		return []*html.Node{verbatim(n)}
	}

	var el *html.Node
	switch n.Role {
	case doctree.RoleHeader:
		el = element("h"+strconv.Itoa(min(max(n.Level, 1), 6)), "id", n.ID)
	case doctree.RoleParagraph:
		el = element("p", "id", n.ID)
	case doctree.RoleGroup:
		el = element("div", "id", n.ID, "class", n.Class)
	case doctree.RoleFormat:
		switch n.Class {
		case "em", "strong":
			el = element(n.Class, "id", n.ID)
		default:
			el = element("span", "id", n.ID, "class", n.Class)
		}
	case doctree.RoleFigure:
		el = element("figure", "id", n.ID)
	case doctree.RoleFigureCaption:
		el = element("figcaption", "id", n.ID)
	case doctree.RoleLink:
		href := n.Text
		if n.Ref != nil {
			href = "#" + n.Ref.Target
		}
		el = element("a", "href", href)
	case doctree.RoleTable:
		el = element("table", "id", n.ID)
	case doctree.RoleTableRow:
		el = element("tr")
	case doctree.RoleTableCell:
		el = element("td")
	case doctree.RoleList:
		if n.Class == "ordered" {
			el = element("ol")
		} else {
			el = element("ul")
		}
	case doctree.RoleListItem:
		el = element("li")
	case doctree.RoleQuote:
		el = element("blockquote")
	default:
		el = element("div")
	}
	for _, c := range htmlChildren(t, id) {
		el.AppendChild(c)
	}
	return []*html.Node{el}
}

func htmlChildren(t *doctree.Tree, id doctree.NodeID) []*html.Node {
	var out []*html.Node
	for _, c := range t.Children(id) {
		out = append(out, htmlNodes(t, c)...)
	}
	return out
}

func verbatim(n *doctree.Node) *html.Node {
	if n.Class == "html" {
		return &html.Node{Type: html.RawNode, Data: n.Text}
	}
	code := element("code")
	if n.Class != "" {
		code = element("code", "class", "language-"+n.Class)
	}
	code.AppendChild(&html.Node{Type: html.TextNode, Data: n.Text})
	if n.Inline {
		return code
	}
	pre := element("pre")
	pre.AppendChild(code)
	return pre
}

// element builds an element with the given key/value attributes, skipping
// empty values.
func element(tag string, attrs ...string) *html.Node {
	el := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] != "" {
			el.Attr = append(el.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
		}
	}
	return el
}
