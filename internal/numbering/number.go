package numbering

import (
	"strconv"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
)

// NumberClass marks the Format span holding a heading number.
const NumberClass = "numbered-reference"

// Number is a hierarchical number, most significant component first:
// Number{1, 2, 1} is "1.2.1".
type Number []int

func (n Number) String() string {
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Valid reports whether n is non-empty with every component >= 1.
func (n Number) Valid() bool {
	if len(n) == 0 {
		return false
	}
	for _, v := range n {
		if v < 1 {
			return false
		}
	}
	return true
}

// Next returns the following sibling number: last component plus one.
func (n Number) Next() Number {
	out := append(Number(nil), n...)
	out[len(out)-1]++
	return out
}

// Child returns the first number nested under n.
func (n Number) Child() Number {
	out := make(Number, len(n), len(n)+1)
	copy(out, n)
	return append(out, 1)
}

// Serialize renders n as detached nodes: Word ("." Word)*.
func Serialize(t *doctree.Tree, n Number) []doctree.NodeID {
	out := make([]doctree.NodeID, 0, 2*len(n))
	for i, v := range n {
		if i > 0 {
			out = append(out, t.NewNode(doctree.Node{Role: doctree.RoleSymbol, Text: "."}))
		}
		out = append(out, t.NewNode(doctree.Node{Role: doctree.RoleWord, Text: strconv.Itoa(v)}))
	}
	return out
}

// Fragment wraps the serialized number in a Format span tagged with class.
func Fragment(t *doctree.Tree, n Number, class string) doctree.NodeID {
	return t.NewNode(doctree.Node{Role: doctree.RoleFormat, Class: class}, Serialize(t, n)...)
}

// Parse reads a number back from serialized nodes. Words are components and
// everything else is a separator. Any word that is not a positive integer
// makes the whole fragment unreadable.
func Parse(t *doctree.Tree, nodes []doctree.NodeID) (Number, bool) {
	var out Number
	for _, id := range nodes {
		n := t.Node(id)
		if n.Role != doctree.RoleWord {
			continue
		}
		v, err := strconv.Atoi(n.Text)
		if err != nil || v < 1 {
			return nil, false
		}
		out = append(out, v)
	}
	if !out.Valid() {
		return nil, false
	}
	return out, true
}

// ParseFragment reads the number of a Format span carrying class.
func ParseFragment(t *doctree.Tree, id doctree.NodeID, class string) (Number, bool) {
	if id == doctree.None {
		return nil, false
	}
	n := t.Node(id)
	if n.Role != doctree.RoleFormat || !HasClass(n.Class, class) {
		return nil, false
	}
	return Parse(t, t.Children(id))
}

// HasClass reports whether the space-separated class list contains class.
func HasClass(list, class string) bool {
	for _, c := range strings.Fields(list) {
		if c == class {
			return true
		}
	}
	return false
}
