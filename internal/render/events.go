package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
)

// Events lists the tree as begin/end events, one per line. The listing is
// stable and shows every role, class and id, which makes it the format of
// choice for asserting tree shapes.
func Events(t *doctree.Tree) string {
	var lines []string
	var visit func(id doctree.NodeID)
	visit = func(id doctree.NodeID) {
		n := t.Node(id)
		if name, arg, leaf := event(n); leaf {
			lines = append(lines, strings.TrimSpace("on"+name+" "+arg))
		} else {
			lines = append(lines, strings.TrimSpace("begin"+name+" "+arg))
			for _, c := range t.Children(id) {
				visit(c)
			}
			lines = append(lines, strings.TrimSpace("end"+name+" "+arg))
		}
	}
	visit(t.Root())
	return strings.Join(lines, "\n")
}

// event returns the event name and argument text for n, and whether it is
// a leaf event.
func event(n *doctree.Node) (name, arg string, leaf bool) {
	switch n.Role {
	case doctree.RoleDocument:
		return "Document", "", false
	case doctree.RoleSection:
		return "Section", attrs("id", n.ID), false
	case doctree.RoleHeader:
		id := n.ID
		if id == "" {
			id = "null"
		}
		return "Header", fmt.Sprintf("[%d, %s]", n.Level, id), false
	case doctree.RoleParagraph:
		return "Paragraph", attrs("id", n.ID), false
	case doctree.RoleGroup:
		return "Group", attrs("class", n.Class, "id", n.ID), false
	case doctree.RoleFormat:
		return "Format", "[NONE] " + attrs("class", n.Class, "id", n.ID), false
	case doctree.RoleFigure:
		return "Figure", attrs("id", n.ID), false
	case doctree.RoleFigureCaption:
		return "FigureCaption", attrs("id", n.ID), false
	case doctree.RoleMacro:
		name := "MacroMarkerStandalone"
		if n.Inline {
			name = "MacroMarkerInline"
		}
		return name, fmt.Sprintf("[%s] [%s]", n.Macro.Name, params(n.Macro.Params)), false
	case doctree.RoleLink:
		target := n.Text
		if n.Ref != nil {
			target = n.Ref.Kind.String() + ":" + n.Ref.Target
		}
		return "Link", "[" + target + "]", false
	case doctree.RoleTable:
		return "Table", attrs("id", n.ID), false
	case doctree.RoleTableRow:
		return "TableRow", "", false
	case doctree.RoleTableCell:
		return "TableCell", "", false
	case doctree.RoleList:
		if n.Class == "ordered" {
			return "List", "[NUMBERED]", false
		}
		return "List", "[BULLETED]", false
	case doctree.RoleListItem:
		return "ListItem", "", false
	case doctree.RoleQuote:
		return "Quotation", "", false

	case doctree.RoleWord:
		return "Word", "[" + n.Text + "]", true
	case doctree.RoleSpace:
		return "Space", "", true
	case doctree.RoleSymbol:
		return "SpecialSymbol", "[" + n.Text + "]", true
	case doctree.RoleID:
		return "Id", "[" + n.ID + "]", true
	case doctree.RolePlaceholder:
		return "Reference", fmt.Sprintf("[%s] [%s]", n.Ref.Kind, n.Ref.Target), true
	case doctree.RoleVerbatim:
		kind := "Standalone"
		if n.Inline {
			kind = "Inline"
		}
		return "Verbatim", fmt.Sprintf("[%s] [%s]", n.Text, kind), true
	case doctree.RoleImage:
		return "Image", "[" + n.Text + "]", true
	}
	return "Other", "", false
}

func attrs(kv ...string) string {
	var parts []string
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			parts = append(parts, fmt.Sprintf("[%s]=[%s]", kv[i], kv[i+1]))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, "") + "]"
}

func params(p map[string]string) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, "|")
}
