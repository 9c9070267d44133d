package numbering

import "github.com/dgallion1/numref/internal/doctree"

// DefaultProtectedMacros lists the macros whose content is never numbered.
var DefaultProtectedMacros = []string{"code"}

// Protection decides whether a node sits inside a protected macro region.
type Protection struct {
	macros map[string]bool
}

// NewProtection protects the given macro ids; with none it falls back to
// DefaultProtectedMacros.
func NewProtection(macros ...string) Protection {
	if len(macros) == 0 {
		macros = DefaultProtectedMacros
	}
	p := Protection{macros: make(map[string]bool, len(macros))}
	for _, m := range macros {
		p.macros[m] = true
	}
	return p
}

// Protected reports whether id or any of its ancestors is a protected
// macro region.
func (p Protection) Protected(t *doctree.Tree, id doctree.NodeID) bool {
	for cur := id; cur != doctree.None; cur = t.Parent(cur) {
		if p.isProtected(t.Node(cur)) {
			return true
		}
	}
	return false
}

func (p Protection) isProtected(n *doctree.Node) bool {
	return n.Role == doctree.RoleMacro && n.Macro != nil && p.macros[n.Macro.Name]
}
