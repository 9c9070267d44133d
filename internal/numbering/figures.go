package numbering

import (
	"github.com/dgallion1/numref/internal/doctree"
)

// Translation keys handed to the Translator for caption prefixes.
const (
	FigurePrefixKey = "transformation.numberedReferences.figurePrefix"
	TablePrefixKey  = "transformation.numberedReferences.tablePrefix"
)

// Translator renders a localized caption prefix such as "Figure 3:" as
// detached nodes. It must always return a usable fragment.
type Translator interface {
	Translate(t *doctree.Tree, key string, count int) []doctree.NodeID
}

// FigureKind splits caption units into independently counted kinds.
type FigureKind uint8

const (
	KindFigure FigureKind = iota
	KindTable
)

func (k FigureKind) String() string {
	if k == KindTable {
		return "table"
	}
	return "figure"
}

// Class is the class of the Format span wrapping the caption prefix.
func (k FigureKind) Class() string {
	if k == KindTable {
		return "numbered-table"
	}
	return "numbered-figure"
}

// Key is the translation key of the caption prefix.
func (k FigureKind) Key() string {
	if k == KindTable {
		return TablePrefixKey
	}
	return FigurePrefixKey
}

// KindOf classifies a Figure: it is a table when, apart from its caption,
// its content is a single table (possibly inside macro markers).
func KindOf(t *doctree.Tree, fig doctree.NodeID) FigureKind {
	var content []doctree.NodeID
	for _, c := range t.Children(fig) {
		if containsCaption(t, c) {
			continue
		}
		content = append(content, c)
	}
	if len(content) != 1 {
		return KindFigure
	}
	n := content[0]
	for t.Node(n).Role == doctree.RoleMacro && t.NumChildren(n) == 1 {
		n = t.FirstChild(n)
	}
	if t.Node(n).Role == doctree.RoleTable {
		return KindTable
	}
	return KindFigure
}

// Figures numbers Figure nodes of one kind in document order: 1, 2, 3, ...
// Figures do not nest, so every earlier figure of the same kind is a
// previous unit and there is no enclosing unit.
type Figures struct {
	Kind       FigureKind
	Translator Translator
	Protection Protection
}

func (f Figures) Name() string { return f.Kind.String() }

func (f Figures) Candidates(t *doctree.Tree, root doctree.NodeID) []doctree.NodeID {
	return t.Descendants(root, doctree.ByRole(doctree.RoleFigure))
}

func (f Figures) Eligible(t *doctree.Tree, cand doctree.NodeID) bool {
	caption := CaptionOf(t, cand)
	return caption != doctree.None && t.NumChildren(caption) > 0 && KindOf(t, cand) == f.Kind
}

func (f Figures) Unit(t *doctree.Tree, cand doctree.NodeID) (doctree.NodeID, error) {
	return cand, nil
}

func (f Figures) Previous(t *doctree.Tree, unit doctree.NodeID) []doctree.NodeID {
	var before []doctree.NodeID
	done := false
	t.Walk(t.Root(), func(n doctree.NodeID) bool {
		if done {
			return false
		}
		if n == unit {
			done = true
			return false
		}
		if t.Node(n).Role == doctree.RoleFigure && KindOf(t, n) == f.Kind {
			before = append(before, n)
		}
		return true
	})
	for i, j := 0, len(before)-1; i < j; i, j = i+1, j-1 {
		before[i], before[j] = before[j], before[i]
	}
	return before
}

func (f Figures) Enclosing(t *doctree.Tree, unit doctree.NodeID) []doctree.NodeID {
	return nil
}

// Read returns the count stored on the caption prefix span. The prefix
// text is translated and may hold other numbers, so it is never parsed.
func (f Figures) Read(t *doctree.Tree, unit doctree.NodeID) (Number, bool) {
	caption := CaptionOf(t, unit)
	if caption == doctree.None {
		return nil, false
	}
	span := t.FirstChild(caption)
	if span == doctree.None {
		return nil, false
	}
	n := t.Node(span)
	if n.Role != doctree.RoleFormat || !HasClass(n.Class, f.Kind.Class()) {
		return nil, false
	}
	number := Number{n.Count}
	if !number.Valid() {
		return nil, false
	}
	return number, true
}

// Write produces <prefix span: "Figure N:" space><space><caption content>.
func (f Figures) Write(t *doctree.Tree, cand doctree.NodeID, n Number) error {
	caption := CaptionOf(t, cand)
	if caption == doctree.None {
		return malformedf(cand, "figure has no caption")
	}
	prefix := f.Translator.Translate(t, f.Kind.Key(), n[len(n)-1])
	prefix = append(prefix, t.NewNode(doctree.Node{Role: doctree.RoleSpace}))
	span := t.NewNode(doctree.Node{Role: doctree.RoleFormat, Class: f.Kind.Class(), Count: n[len(n)-1]}, prefix...)
	space := t.NewNode(doctree.Node{Role: doctree.RoleSpace})
	t.InsertBefore(caption, t.FirstChild(caption), span, space)
	return nil
}

// Identifiers returns the figure and caption anchors plus the id markers in
// the caption.
func (f Figures) Identifiers(t *doctree.Tree, cand, unit doctree.NodeID) []string {
	ids := []string{t.Node(unit).ID}
	if caption := CaptionOf(t, unit); caption != doctree.None {
		ids = append(ids, t.Node(caption).ID)
		ids = append(ids, identifierMarkers(t, caption, f.Protection)...)
	}
	return ids
}

// CaptionOf returns the FigureCaption belonging to fig, ignoring captions of
// nested figures, or None.
func CaptionOf(t *doctree.Tree, fig doctree.NodeID) doctree.NodeID {
	found := doctree.None
	for _, c := range t.Children(fig) {
		t.Walk(c, func(n doctree.NodeID) bool {
			if found != doctree.None {
				return false
			}
			switch t.Node(n).Role {
			case doctree.RoleFigure:
				return false
			case doctree.RoleFigureCaption:
				found = n
				return false
			}
			return true
		})
		if found != doctree.None {
			break
		}
	}
	return found
}

func containsCaption(t *doctree.Tree, id doctree.NodeID) bool {
	found := false
	t.Walk(id, func(n doctree.NodeID) bool {
		if found {
			return false
		}
		switch t.Node(n).Role {
		case doctree.RoleFigure:
			return false
		case doctree.RoleFigureCaption:
			found = true
			return false
		}
		return true
	})
	return found
}
