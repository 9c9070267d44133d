package doctree

// NodeID is a handle into a Tree's node arena.
type NodeID int32

// None is the handle of no node (absent parent, missing child).
const None NodeID = -1

// Role is the structural role of a node.
type Role uint8

const (
	RoleOther Role = iota
	RoleDocument
	RoleSection
	RoleHeader
	RoleParagraph
	RoleGroup
	RoleFormat
	RolePlaceholder
	RoleID
	RoleFigure
	RoleFigureCaption
	RoleMacro
	RoleWord
	RoleSpace
	RoleSymbol
	RoleLink
	RoleVerbatim
	RoleImage
	RoleTable
	RoleTableRow
	RoleTableCell
	RoleList
	RoleListItem
	RoleQuote
)

func (r Role) String() string {
	switch r {
	case RoleDocument:
		return "Document"
	case RoleSection:
		return "Section"
	case RoleHeader:
		return "Header"
	case RoleParagraph:
		return "Paragraph"
	case RoleGroup:
		return "Group"
	case RoleFormat:
		return "Format"
	case RolePlaceholder:
		return "Placeholder"
	case RoleID:
		return "Id"
	case RoleFigure:
		return "Figure"
	case RoleFigureCaption:
		return "FigureCaption"
	case RoleMacro:
		return "MacroMarker"
	case RoleWord:
		return "Word"
	case RoleSpace:
		return "Space"
	case RoleSymbol:
		return "SpecialSymbol"
	case RoleLink:
		return "Link"
	case RoleVerbatim:
		return "Verbatim"
	case RoleImage:
		return "Image"
	case RoleTable:
		return "Table"
	case RoleTableRow:
		return "TableRow"
	case RoleTableCell:
		return "TableCell"
	case RoleList:
		return "List"
	case RoleListItem:
		return "ListItem"
	case RoleQuote:
		return "Quotation"
	}
	return "Other"
}

// RefKind is the family a reference points into.
type RefKind uint8

const (
	RefSection RefKind = iota
	RefFigure
)

func (k RefKind) String() string {
	if k == RefFigure {
		return "figure"
	}
	return "section"
}

func (k RefKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseRefKind maps a reference type name to a RefKind.
func ParseRefKind(s string) (RefKind, bool) {
	switch s {
	case "section", "heading", "":
		return RefSection, true
	case "figure", "table":
		return RefFigure, true
	}
	return RefSection, false
}

// Macro is the payload of a RoleMacro node: a macro invocation marker
// wrapping whatever the macro expanded to.
type Macro struct {
	Name     string
	Params   map[string]string
	Content  string
	Expanded bool
}

// Ref is the payload of RolePlaceholder and RoleLink nodes.
type Ref struct {
	Kind   RefKind
	Target string
}

// Node is a single tree element. Which fields are meaningful depends on Role:
//
//	Section, Header, Figure  ID is the anchor id; Header uses Level
//	ID                       ID is the identifier name
//	Word, Symbol, Verbatim   Text
//	Image                    Text is the image source
//	Format, Group            Class; a caption prefix Format also sets Count
//	Macro                    Macro, Inline
//	Placeholder              Ref, Inline
//	Link                     Ref for references, else Text is the destination
type Node struct {
	Role   Role
	ID     string
	Text   string
	Level  int
	Count  int
	Class  string
	Inline bool
	Macro  *Macro
	Ref    *Ref

	parent   NodeID
	children []NodeID
}

// Parent returns the parent handle, or None for a root or detached node.
func (n *Node) Parent() NodeID { return n.parent }

// Tree is an arena of nodes rooted at a Document node. Parent and child links
// are NodeID handles; nodes removed from the tree stay in the arena detached.
type Tree struct {
	Title string

	nodes []*Node
	root  NodeID
}

// New creates a tree holding an empty Document root.
func New(title string) *Tree {
	t := &Tree{Title: title}
	t.root = t.NewNode(Node{Role: RoleDocument})
	return t
}

// Root returns the Document node.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the arena, attached or not.
func (t *Tree) Len() int { return len(t.nodes) }

// Valid reports whether id refers to a node of this tree.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Node returns the node for id. It panics on an invalid handle.
func (t *Tree) Node(id NodeID) *Node {
	return t.nodes[id]
}

// NewNode stores a detached copy of n and attaches children under it.
func (t *Tree) NewNode(n Node, children ...NodeID) NodeID {
	n.parent = None
	n.children = nil
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &n)
	t.Append(id, children...)
	return id
}

// Parent returns the parent of id, or None.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns a copy of the child list of id.
func (t *Tree) Children(id NodeID) []NodeID {
	c := t.nodes[id].children
	out := make([]NodeID, len(c))
	copy(out, c)
	return out
}

// NumChildren returns the number of children of id.
func (t *Tree) NumChildren(id NodeID) int {
	return len(t.nodes[id].children)
}

// FirstChild returns the first child of id, or None.
func (t *Tree) FirstChild(id NodeID) NodeID {
	c := t.nodes[id].children
	if len(c) == 0 {
		return None
	}
	return c[0]
}

// Append attaches children at the end of parent, detaching them first.
func (t *Tree) Append(parent NodeID, children ...NodeID) {
	for _, c := range children {
		t.Detach(c)
		t.nodes[c].parent = parent
		t.nodes[parent].children = append(t.nodes[parent].children, c)
	}
}

// InsertBefore attaches nodes under parent ahead of ref, in order.
// A ref of None (or one that is not a child of parent) appends.
func (t *Tree) InsertBefore(parent, ref NodeID, nodes ...NodeID) {
	for _, n := range nodes {
		t.Detach(n)
	}
	pos := t.Index(ref)
	if ref == None || t.nodes[ref].parent != parent || pos < 0 {
		t.Append(parent, nodes...)
		return
	}
	p := t.nodes[parent]
	merged := make([]NodeID, 0, len(p.children)+len(nodes))
	merged = append(merged, p.children[:pos]...)
	merged = append(merged, nodes...)
	merged = append(merged, p.children[pos:]...)
	p.children = merged
	for _, n := range nodes {
		t.nodes[n].parent = parent
	}
}

// Replace puts with in place of old and detaches old.
func (t *Tree) Replace(old NodeID, with ...NodeID) {
	parent := t.nodes[old].parent
	if parent == None {
		return
	}
	t.InsertBefore(parent, old, with...)
	t.Detach(old)
}

// ReplaceChildren drops every child of id and attaches with instead.
func (t *Tree) ReplaceChildren(id NodeID, with ...NodeID) {
	for _, c := range t.Children(id) {
		t.Detach(c)
	}
	t.Append(id, with...)
}

// Detach removes id from its parent. The node keeps its own subtree.
func (t *Tree) Detach(id NodeID) {
	n := t.nodes[id]
	if n.parent == None {
		return
	}
	p := t.nodes[n.parent]
	for i, c := range p.children {
		if c == id {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = None
}

// Index returns the position of id among its siblings, or -1.
func (t *Tree) Index(id NodeID) int {
	if id == None {
		return -1
	}
	parent := t.nodes[id].parent
	if parent == None {
		return -1
	}
	for i, c := range t.nodes[parent].children {
		if c == id {
			return i
		}
	}
	return -1
}

// Ancestors returns the ancestors of id, nearest first.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := t.nodes[id].parent; p != None; p = t.nodes[p].parent {
		out = append(out, p)
	}
	return out
}

// PrecedingSiblings returns the siblings before id, nearest first.
func (t *Tree) PrecedingSiblings(id NodeID) []NodeID {
	pos := t.Index(id)
	if pos <= 0 {
		return nil
	}
	siblings := t.nodes[t.nodes[id].parent].children
	out := make([]NodeID, 0, pos)
	for i := pos - 1; i >= 0; i-- {
		out = append(out, siblings[i])
	}
	return out
}

// Walk visits id and its descendants in document order (depth-first,
// pre-order). Returning false from fn skips the children of that node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range t.Children(id) {
		t.Walk(c, fn)
	}
}

// Descendants returns the strict descendants of id matching match,
// in document order. A nil match selects every descendant.
func (t *Tree) Descendants(id NodeID, match func(*Node) bool) []NodeID {
	var out []NodeID
	for _, c := range t.nodes[id].children {
		t.Walk(c, func(n NodeID) bool {
			if match == nil || match(t.nodes[n]) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// ByRole is a Descendants matcher selecting a single role.
func ByRole(r Role) func(*Node) bool {
	return func(n *Node) bool { return n.Role == r }
}

// Clone returns a deep copy of the tree. Handles stay valid in the copy.
func (t *Tree) Clone() *Tree {
	c := &Tree{Title: t.Title, root: t.root, nodes: make([]*Node, len(t.nodes))}
	for i, n := range t.nodes {
		cp := *n
		cp.children = append([]NodeID(nil), n.children...)
		if n.Macro != nil {
			m := *n.Macro
			m.Params = make(map[string]string, len(n.Macro.Params))
			for k, v := range n.Macro.Params {
				m.Params[k] = v
			}
			cp.Macro = &m
		}
		if n.Ref != nil {
			r := *n.Ref
			cp.Ref = &r
		}
		c.nodes[i] = &cp
	}
	return c
}
