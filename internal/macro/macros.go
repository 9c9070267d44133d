package macro

import (
	"errors"
	"fmt"

	"github.com/dgallion1/numref/internal/doctree"
)

// referenceMacro leaves a placeholder naming its target; the numbering
// transformations later replace it with the target's number.
//
// Accepted forms: section='id', figure='id', or id='id' with type='section|figure'.
func referenceMacro(x *Context, m *doctree.Macro) ([]doctree.NodeID, error) {
	var (
		kind   doctree.RefKind
		target string
	)
	switch {
	case m.Params["section"] != "":
		kind, target = doctree.RefSection, m.Params["section"]
	case m.Params["figure"] != "":
		kind, target = doctree.RefFigure, m.Params["figure"]
	case m.Params["id"] != "":
		k, ok := doctree.ParseRefKind(m.Params["type"])
		if !ok {
			return nil, fmt.Errorf("unknown reference type %q", m.Params["type"])
		}
		kind, target = k, m.Params["id"]
	default:
		return nil, errors.New("missing reference target: set one of the section, figure or id parameters")
	}

	ph := x.Tree.NewNode(doctree.Node{
		Role:   doctree.RolePlaceholder,
		Inline: x.Inline,
		Ref:    &doctree.Ref{Kind: kind, Target: target},
	})
	return []doctree.NodeID{ph}, nil
}

func idMacro(x *Context, m *doctree.Macro) ([]doctree.NodeID, error) {
	name := m.Params["name"]
	if name == "" {
		return nil, errors.New("missing parameter: name")
	}
	return []doctree.NodeID{x.Tree.NewNode(doctree.Node{Role: doctree.RoleID, ID: name})}, nil
}

func figureMacro(x *Context, m *doctree.Macro) ([]doctree.NodeID, error) {
	content, err := x.Parser.ParseBlocks(x.Tree, m.Content)
	if err != nil {
		return nil, fmt.Errorf("parse figure content: %w", err)
	}
	fig := x.Tree.NewNode(doctree.Node{Role: doctree.RoleFigure, ID: m.Params["id"]}, content...)
	return []doctree.NodeID{fig}, nil
}

func figureCaptionMacro(x *Context, m *doctree.Macro) ([]doctree.NodeID, error) {
	content, err := x.Parser.ParseInline(x.Tree, m.Content)
	if err != nil {
		return nil, fmt.Errorf("parse caption: %w", err)
	}
	return []doctree.NodeID{x.Tree.NewNode(doctree.Node{Role: doctree.RoleFigureCaption}, content...)}, nil
}

// codeMacro keeps its content verbatim. Its marker is a protected region.
func codeMacro(x *Context, m *doctree.Macro) ([]doctree.NodeID, error) {
	return []doctree.NodeID{x.Tree.NewNode(doctree.Node{
		Role:   doctree.RoleVerbatim,
		Text:   m.Content,
		Class:  m.Params["language"],
		Inline: x.Inline,
	})}, nil
}
