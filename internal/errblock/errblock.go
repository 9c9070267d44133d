// Package errblock renders failures as document nodes so that a problem in
// one element is reported in place instead of aborting the whole render.
package errblock

import (
	"github.com/dgallion1/numref/internal/doctree"
)

const (
	MessageClass     = "rendering-error"
	DescriptionClass = "rendering-error-description hidden"
)

// Generator produces error nodes. The zero value is ready to use.
type Generator struct{}

// Generate returns a message span followed by a collapsed description.
// Inline errors use Format spans; standalone ones use Group blocks.
func (Generator) Generate(t *doctree.Tree, message, description string, inline bool) []doctree.NodeID {
	role := doctree.RoleGroup
	if inline {
		role = doctree.RoleFormat
	}
	msg := t.NewNode(doctree.Node{Role: role, Class: MessageClass},
		t.NewNode(doctree.Node{Role: doctree.RoleWord, Text: message}))
	out := []doctree.NodeID{msg}
	if description != "" {
		desc := t.NewNode(doctree.Node{Role: role, Class: DescriptionClass},
			t.NewNode(doctree.Node{Role: doctree.RoleVerbatim, Text: description, Inline: true}))
		out = append(out, desc)
	}
	return out
}
