package doctree

// Builder appends blocks to a tree while nesting them into sections by
// heading level: a heading closes every open section at its level or deeper.
type Builder struct {
	tree  *Tree
	stack []stackEntry
}

type stackEntry struct {
	node  NodeID
	level int
}

// NewBuilder starts building under parent, which acts as level 0.
func NewBuilder(t *Tree, parent NodeID) *Builder {
	return &Builder{
		tree:  t,
		stack: []stackEntry{{node: parent, level: 0}},
	}
}

// Heading opens a new Section holding a Header with the given inline content
// and returns the Header. Levels below 1 are treated as 1.
func (b *Builder) Heading(level int, id string, content ...NodeID) NodeID {
	if level < 1 {
		level = 1
	}
	// Pop stack until we find a parent with lower level.
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}

	header := b.tree.NewNode(Node{Role: RoleHeader, Level: level, ID: id}, content...)
	section := b.tree.NewNode(Node{Role: RoleSection}, header)
	b.tree.Append(b.stack[len(b.stack)-1].node, section)
	b.stack = append(b.stack, stackEntry{node: section, level: level})
	return header
}

// Add appends blocks to the innermost open section.
func (b *Builder) Add(blocks ...NodeID) {
	b.tree.Append(b.Current(), blocks...)
}

// Current returns the innermost open container.
func (b *Builder) Current() NodeID {
	return b.stack[len(b.stack)-1].node
}
