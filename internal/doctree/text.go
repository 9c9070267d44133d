package doctree

import (
	"strings"
	"unicode"
)

// Tokenize splits text into detached Word, Space and Symbol nodes.
// Runs of letters and digits form words, whitespace runs collapse to a
// single Space, and every other rune becomes its own Symbol.
func Tokenize(t *Tree, text string) []NodeID {
	var out []NodeID
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			out = append(out, t.NewNode(Node{Role: RoleWord, Text: word.String()}))
			word.Reset()
		}
	}

	lastSpace := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			word.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			flush()
			if !lastSpace {
				out = append(out, t.NewNode(Node{Role: RoleSpace}))
			}
			lastSpace = true
		default:
			flush()
			out = append(out, t.NewNode(Node{Role: RoleSymbol, Text: string(r)}))
			lastSpace = false
		}
	}
	flush()
	return out
}

// PlainText flattens the text content of id and its descendants.
// Unexpanded macros contribute nothing.
func (t *Tree) PlainText(id NodeID) string {
	var buf strings.Builder
	t.Walk(id, func(n NodeID) bool {
		node := t.nodes[n]
		switch node.Role {
		case RoleWord, RoleSymbol, RoleVerbatim:
			buf.WriteString(node.Text)
		case RoleSpace:
			buf.WriteByte(' ')
		}
		return true
	})
	return buf.String()
}
