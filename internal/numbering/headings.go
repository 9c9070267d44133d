package numbering

import (
	"github.com/dgallion1/numref/internal/doctree"
)

// Headings numbers Header nodes by section nesting: 1, 1.1, 1.2, 1.2.1, ...
type Headings struct {
	Protection Protection
}

func (h Headings) Name() string { return "section" }

func (h Headings) Candidates(t *doctree.Tree, root doctree.NodeID) []doctree.NodeID {
	return t.Descendants(root, doctree.ByRole(doctree.RoleHeader))
}

func (h Headings) Eligible(t *doctree.Tree, cand doctree.NodeID) bool {
	return t.NumChildren(cand) > 0
}

// Unit returns the Section wrapping the header. A header outside a section
// breaks the sibling/ancestor scans and is reported as malformed.
func (h Headings) Unit(t *doctree.Tree, cand doctree.NodeID) (doctree.NodeID, error) {
	section := t.Parent(cand)
	if section == doctree.None || t.Node(section).Role != doctree.RoleSection {
		return doctree.None, malformedf(cand, "header is not wrapped in a section")
	}
	return section, nil
}

func (h Headings) Previous(t *doctree.Tree, unit doctree.NodeID) []doctree.NodeID {
	return sections(t, t.PrecedingSiblings(unit))
}

func (h Headings) Enclosing(t *doctree.Tree, unit doctree.NodeID) []doctree.NodeID {
	return sections(t, t.Ancestors(unit))
}

// Read extracts the number from the section's header, which must start with
// a numbered-reference span.
func (h Headings) Read(t *doctree.Tree, unit doctree.NodeID) (Number, bool) {
	header := t.FirstChild(unit)
	if header == doctree.None || t.Node(header).Role != doctree.RoleHeader {
		return nil, false
	}
	return ParseFragment(t, t.FirstChild(header), NumberClass)
}

// Write produces <number><space><previous content>.
func (h Headings) Write(t *doctree.Tree, cand doctree.NodeID, n Number) error {
	first := t.FirstChild(cand)
	space := t.NewNode(doctree.Node{Role: doctree.RoleSpace})
	t.InsertBefore(cand, first, Fragment(t, n, NumberClass), space)
	return nil
}

// Identifiers returns the header and section anchors plus every id marker
// placed inside the header.
func (h Headings) Identifiers(t *doctree.Tree, cand, unit doctree.NodeID) []string {
	ids := []string{t.Node(cand).ID, t.Node(unit).ID}
	return append(ids, identifierMarkers(t, cand, h.Protection)...)
}

func sections(t *doctree.Tree, nodes []doctree.NodeID) []doctree.NodeID {
	out := nodes[:0:0]
	for _, n := range nodes {
		if t.Node(n).Role == doctree.RoleSection {
			out = append(out, n)
		}
	}
	return out
}
