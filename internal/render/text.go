package render

import (
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
)

// Text renders t as plain text: one block per paragraph separated by blank
// lines. Headers are prefixed with one '=' per level and hidden error
// descriptions are left out.
func Text(t *doctree.Tree) string {
	var blocks []string
	textBlocks(t, t.Root(), &blocks)
	return strings.Join(blocks, "\n\n")
}

func textBlocks(t *doctree.Tree, id doctree.NodeID, out *[]string) {
	n := t.Node(id)
	switch n.Role {
	case doctree.RoleHeader:
		*out = append(*out, strings.Repeat("=", max(n.Level, 1))+" "+inlineText(t, id))
		return
	case doctree.RoleParagraph, doctree.RoleFigureCaption, doctree.RoleListItem, doctree.RoleTableRow:
		if s := inlineText(t, id); s != "" {
			*out = append(*out, s)
		}
		return
	case doctree.RoleVerbatim:
		*out = append(*out, n.Text)
		return
	case doctree.RoleGroup:
		if hidden(n) {
			return
		}
		if allInline(t, id) {
			if s := inlineText(t, id); s != "" {
				*out = append(*out, s)
			}
			return
		}
	case doctree.RoleMacro:
		if n.Inline {
			if s := inlineText(t, id); s != "" {
				*out = append(*out, s)
			}
			return
		}
	case doctree.RoleWord, doctree.RoleSymbol, doctree.RoleSpace, doctree.RoleFormat, doctree.RoleLink:
		if s := inlineText(t, id); s != "" {
			*out = append(*out, s)
		}
		return
	}
	for _, c := range t.Children(id) {
		textBlocks(t, c, out)
	}
}

func inlineText(t *doctree.Tree, id doctree.NodeID) string {
	var buf strings.Builder
	var visit func(doctree.NodeID)
	visit = func(id doctree.NodeID) {
		n := t.Node(id)
		switch n.Role {
		case doctree.RoleWord, doctree.RoleSymbol, doctree.RoleVerbatim:
			buf.WriteString(n.Text)
			return
		case doctree.RoleSpace:
			buf.WriteByte(' ')
			return
		case doctree.RoleTableCell:
			if buf.Len() > 0 {
				buf.WriteString(" | ")
			}
		case doctree.RoleFormat, doctree.RoleGroup:
			if hidden(n) {
				return
			}
		}
		for _, c := range t.Children(id) {
			visit(c)
		}
	}
	visit(id)
	return strings.TrimSpace(buf.String())
}

func hidden(n *doctree.Node) bool {
	for _, c := range strings.Fields(n.Class) {
		if c == "hidden" {
			return true
		}
	}
	return false
}

func allInline(t *doctree.Tree, id doctree.NodeID) bool {
	for _, c := range t.Children(id) {
		switch t.Node(c).Role {
		case doctree.RoleWord, doctree.RoleSymbol, doctree.RoleSpace, doctree.RoleFormat, doctree.RoleLink:
		case doctree.RoleVerbatim:
			if !t.Node(c).Inline {
				return false
			}
		default:
			return false
		}
	}
	return true
}
