package numbering

import (
	"fmt"

	"github.com/dgallion1/numref/internal/doctree"
)

// ErrorGenerator builds the presentational nodes reporting a failure in
// place of content.
type ErrorGenerator interface {
	Generate(t *doctree.Tree, message, description string, inline bool) []doctree.NodeID
}

// Unresolved describes a reference whose target was not registered.
type Unresolved struct {
	Kind   doctree.RefKind `json:"kind"`
	Target string          `json:"target"`
}

// Resolver rewrites reference placeholders of one kind into links labelled
// with the target's number, or into error nodes when the target is unknown.
type Resolver struct {
	Kind       doctree.RefKind
	Errors     ErrorGenerator
	Protection Protection
}

// Resolve replaces every reachable placeholder of the resolver's kind.
// Placeholders in protected regions are left untouched.
func (r *Resolver) Resolve(t *doctree.Tree, reg Registry) ([]Unresolved, error) {
	var missing []Unresolved

	placeholders := t.Descendants(t.Root(), func(n *doctree.Node) bool {
		return n.Role == doctree.RolePlaceholder && n.Ref != nil && n.Ref.Kind == r.Kind
	})
	for _, ph := range placeholders {
		if r.Protection.Protected(t, ph) {
			continue
		}
		wrapper := t.Parent(ph)
		if wrapper == doctree.None {
			return missing, malformedf(ph, "reference placeholder has no parent")
		}

		node := t.Node(ph)
		target := node.Ref.Target
		if number, ok := reg.Lookup(target); ok {
			link := t.NewNode(doctree.Node{
				Role: doctree.RoleLink,
				Ref:  &doctree.Ref{Kind: r.Kind, Target: target},
			}, Serialize(t, number)...)
			t.Replace(ph, link)
			continue
		}

		inline := node.Inline
		if w := t.Node(wrapper); w.Role == doctree.RoleMacro {
			inline = w.Inline
		}
		message := fmt.Sprintf("No %s id named [%s] was found", r.Kind, target)
		description := fmt.Sprintf("Verify the %s id used.", r.Kind)
		t.Replace(ph, r.Errors.Generate(t, message, description, inline)...)
		missing = append(missing, Unresolved{Kind: r.Kind, Target: target})
	}
	return missing, nil
}
