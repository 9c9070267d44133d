package macro

import (
	"github.com/dgallion1/numref/internal/doctree"
)

// Marker creates an unexpanded macro marker for call.
func Marker(t *doctree.Tree, call *Call, inline bool) doctree.NodeID {
	return t.NewNode(doctree.Node{
		Role:   doctree.RoleMacro,
		Inline: inline,
		Macro: &doctree.Macro{
			Name:    call.Name,
			Params:  call.Params,
			Content: call.Content,
		},
	})
}

// Inline tokenizes text, turning the macro calls it contains into inline
// markers.
func Inline(t *doctree.Tree, text string) []doctree.NodeID {
	var out []doctree.NodeID
	for _, seg := range ScanInline(text) {
		if seg.Call != nil {
			out = append(out, Marker(t, seg.Call, true))
			continue
		}
		out = append(out, doctree.Tokenize(t, seg.Text)...)
	}
	return out
}

// CodeRegion wraps verbatim text in an already expanded code macro marker,
// which protects it the same way an explicit {{code}} call does.
func CodeRegion(t *doctree.Tree, text, language string, inline bool) doctree.NodeID {
	verbatim := t.NewNode(doctree.Node{Role: doctree.RoleVerbatim, Text: text, Class: language, Inline: inline})
	return t.NewNode(doctree.Node{
		Role:   doctree.RoleMacro,
		Inline: inline,
		Macro: &doctree.Macro{
			Name:     "code",
			Params:   map[string]string{},
			Content:  text,
			Expanded: true,
		},
	}, verbatim)
}
