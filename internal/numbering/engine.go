package numbering

import (
	"github.com/dgallion1/numref/internal/doctree"
)

// Registry maps identifiers to the number of the unit they name.
// One registry is built per family per run.
type Registry map[string]Number

// Lookup returns the number registered for id.
func (r Registry) Lookup(id string) (Number, bool) {
	n, ok := r[id]
	return n, ok
}

// Labels returns the registry with numbers rendered as dotted strings.
func (r Registry) Labels() map[string]string {
	out := make(map[string]string, len(r))
	for id, n := range r {
		out[id] = n.String()
	}
	return out
}

// Family is an independent numbering domain: which nodes get numbers, how
// the structural unit around them relates to earlier units, and how the
// number is written into and read back from the tree.
type Family interface {
	// Name identifies the family in logs and metrics.
	Name() string
	// Candidates returns the numberable nodes under root, in document order.
	Candidates(t *doctree.Tree, root doctree.NodeID) []doctree.NodeID
	// Eligible reports whether the candidate has content to prefix and
	// belongs to this family.
	Eligible(t *doctree.Tree, cand doctree.NodeID) bool
	// Unit returns the structural unit the candidate numbers.
	Unit(t *doctree.Tree, cand doctree.NodeID) (doctree.NodeID, error)
	// Previous returns earlier units at the same level, nearest first.
	Previous(t *doctree.Tree, unit doctree.NodeID) []doctree.NodeID
	// Enclosing returns the units enclosing unit, nearest first.
	Enclosing(t *doctree.Tree, unit doctree.NodeID) []doctree.NodeID
	// Read returns the number already written into unit, if any.
	Read(t *doctree.Tree, unit doctree.NodeID) (Number, bool)
	// Write inserts the tagged number at the front of the candidate.
	Write(t *doctree.Tree, cand doctree.NodeID, n Number) error
	// Identifiers returns every identifier naming the numbered unit.
	Identifiers(t *doctree.Tree, cand, unit doctree.NodeID) []string
}

// Engine assigns hierarchical numbers to the members of a family.
type Engine struct {
	protection Protection
}

// NewEngine creates an engine skipping nodes protected by p.
func NewEngine(p Protection) *Engine {
	return &Engine{protection: p}
}

// Number walks the tree in document order and numbers every eligible,
// unprotected candidate of fam. It returns the registry of identifiers and
// the count of units numbered during this call.
func (e *Engine) Number(t *doctree.Tree, fam Family) (Registry, int, error) {
	reg := Registry{}
	numbered := 0

	for _, cand := range fam.Candidates(t, t.Root()) {
		if !fam.Eligible(t, cand) || e.protection.Protected(t, cand) {
			continue
		}
		unit, err := fam.Unit(t, cand)
		if err != nil {
			return nil, 0, err
		}

		// A unit numbered by an earlier run keeps its number.
		number, ok := fam.Read(t, unit)
		if !ok {
			number = e.compute(t, fam, unit)
			if err := fam.Write(t, cand, number); err != nil {
				return nil, 0, err
			}
			numbered++
		}

		for _, id := range fam.Identifiers(t, cand, unit) {
			if id != "" {
				reg[id] = number
			}
		}
	}
	return reg, numbered, nil
}

func (e *Engine) compute(t *doctree.Tree, fam Family, unit doctree.NodeID) Number {
	for _, prev := range fam.Previous(t, unit) {
		if n, ok := fam.Read(t, prev); ok {
			return n.Next()
		}
	}
	for _, outer := range fam.Enclosing(t, unit) {
		if n, ok := fam.Read(t, outer); ok {
			return n.Child()
		}
	}
	return Number{1}
}

// identifierMarkers returns the names of the IDMarker nodes under id that
// are genuine anchors: markers owned by a reference, or sitting in a
// protected region, are left out.
func identifierMarkers(t *doctree.Tree, id doctree.NodeID, p Protection) []string {
	var names []string
	t.Walk(id, func(n doctree.NodeID) bool {
		node := t.Node(n)
		switch {
		case node.Role == doctree.RolePlaceholder:
			return false
		case node.Role == doctree.RoleMacro && node.Macro != nil && node.Macro.Name == ReferenceMacro:
			return false
		case p.isProtected(node):
			return false
		case node.Role == doctree.RoleID && node.ID != "":
			names = append(names, node.ID)
		}
		return true
	})
	return names
}

// ReferenceMacro is the macro whose expansion yields reference placeholders.
const ReferenceMacro = "reference"
