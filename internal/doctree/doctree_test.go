package doctree

import (
	"reflect"
	"testing"
)

func word(t *Tree, text string) NodeID {
	return t.NewNode(Node{Role: RoleWord, Text: text})
}

func texts(t *Tree, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.Node(id).Text
	}
	return out
}

func TestTree_AppendAndParent(t *testing.T) {
	tree := New("doc")
	a, b := word(tree, "a"), word(tree, "b")
	p := tree.NewNode(Node{Role: RoleParagraph}, a, b)
	tree.Append(tree.Root(), p)

	if tree.Parent(a) != p || tree.Parent(p) != tree.Root() {
		t.Fatalf("unexpected parents: a->%d p->%d", tree.Parent(a), tree.Parent(p))
	}
	if tree.Parent(tree.Root()) != None {
		t.Errorf("expected root without parent")
	}
	if got := texts(tree, tree.Children(p)); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", got)
	}

	// Appending an attached node moves it.
	q := tree.NewNode(Node{Role: RoleParagraph})
	tree.Append(q, a)
	if tree.Parent(a) != q || tree.NumChildren(p) != 1 {
		t.Errorf("expected a moved to q, p has %d children", tree.NumChildren(p))
	}
}

func TestTree_ChildrenIsACopy(t *testing.T) {
	tree := New("doc")
	p := tree.NewNode(Node{Role: RoleParagraph}, word(tree, "a"))
	kids := tree.Children(p)
	kids[0] = None
	if tree.FirstChild(p) == None {
		t.Error("mutating the returned slice changed the tree")
	}
}

func TestTree_InsertBeforeReplaceDetach(t *testing.T) {
	tree := New("doc")
	a, c := word(tree, "a"), word(tree, "c")
	p := tree.NewNode(Node{Role: RoleParagraph}, a, c)

	b := word(tree, "b")
	tree.InsertBefore(p, c, b)
	if got := texts(tree, tree.Children(p)); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("after InsertBefore: %v", got)
	}

	x, y := word(tree, "x"), word(tree, "y")
	tree.Replace(b, x, y)
	if got := texts(tree, tree.Children(p)); !reflect.DeepEqual(got, []string{"a", "x", "y", "c"}) {
		t.Fatalf("after Replace: %v", got)
	}
	if tree.Parent(b) != None {
		t.Errorf("expected replaced node detached")
	}

	tree.InsertBefore(p, None, word(tree, "z"))
	if got := texts(tree, tree.Children(p)); got[len(got)-1] != "z" {
		t.Errorf("expected InsertBefore(None) to append, got %v", got)
	}

	tree.Detach(a)
	if tree.Index(x) != 0 || tree.Index(a) != -1 {
		t.Errorf("unexpected indexes after Detach: x=%d a=%d", tree.Index(x), tree.Index(a))
	}

	tree.ReplaceChildren(p, word(tree, "only"))
	if got := texts(tree, tree.Children(p)); !reflect.DeepEqual(got, []string{"only"}) {
		t.Errorf("after ReplaceChildren: %v", got)
	}
}

func TestTree_Navigation(t *testing.T) {
	tree := New("doc")
	w := word(tree, "w")
	header := tree.NewNode(Node{Role: RoleHeader, Level: 2}, w)
	s1 := tree.NewNode(Node{Role: RoleSection, ID: "s1"})
	s2 := tree.NewNode(Node{Role: RoleSection, ID: "s2"}, header)
	s3 := tree.NewNode(Node{Role: RoleSection, ID: "s3"})
	outer := tree.NewNode(Node{Role: RoleSection, ID: "outer"}, s1, s2, s3)
	tree.Append(tree.Root(), outer)

	if got := tree.Ancestors(w); !reflect.DeepEqual(got, []NodeID{header, s2, outer, tree.Root()}) {
		t.Errorf("Ancestors: got %v", got)
	}
	if got := tree.PrecedingSiblings(s3); !reflect.DeepEqual(got, []NodeID{s2, s1}) {
		t.Errorf("PrecedingSiblings: got %v", got)
	}
	if got := tree.PrecedingSiblings(s1); len(got) != 0 {
		t.Errorf("expected no preceding siblings for first child, got %v", got)
	}

	sections := tree.Descendants(tree.Root(), ByRole(RoleSection))
	if !reflect.DeepEqual(sections, []NodeID{outer, s1, s2, s3}) {
		t.Errorf("Descendants: got %v", sections)
	}

	// Returning false skips the subtree.
	var visited []NodeID
	tree.Walk(tree.Root(), func(id NodeID) bool {
		visited = append(visited, id)
		return id != s2
	})
	for _, id := range visited {
		if id == header {
			t.Error("expected Walk to skip the children of s2")
		}
	}
}

func TestTree_Clone(t *testing.T) {
	tree := New("doc")
	m := tree.NewNode(Node{Role: RoleMacro, Macro: &Macro{Name: "code", Params: map[string]string{"language": "go"}}})
	ph := tree.NewNode(Node{Role: RolePlaceholder, Ref: &Ref{Kind: RefSection, Target: "a"}})
	tree.Append(tree.Root(), m, ph)

	c := tree.Clone()
	c.Node(m).Macro.Params["language"] = "c"
	c.Node(ph).Ref.Target = "b"
	c.Append(c.Root(), c.NewNode(Node{Role: RoleParagraph}))

	if tree.Node(m).Macro.Params["language"] != "go" || tree.Node(ph).Ref.Target != "a" {
		t.Error("clone shares payloads with the original")
	}
	if tree.NumChildren(tree.Root()) != 2 || c.NumChildren(c.Root()) != 3 {
		t.Errorf("clone shares child lists: original %d, clone %d", tree.NumChildren(tree.Root()), c.NumChildren(c.Root()))
	}
	if c.Title != "doc" || c.Len() != tree.Len()+1 {
		t.Errorf("unexpected clone: title %q len %d", c.Title, c.Len())
	}
}

func TestTokenize(t *testing.T) {
	tree := New("doc")
	ids := Tokenize(tree, "Figure 1.2:  done")
	var got []string
	for _, id := range ids {
		n := tree.Node(id)
		got = append(got, n.Role.String()+"("+n.Text+")")
	}
	want := []string{"Word(Figure)", "Space()", "Word(1)", "SpecialSymbol(.)", "Word(2)", "SpecialSymbol(:)", "Space()", "Word(done)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize:\nwant %v\ngot  %v", want, got)
	}

	p := tree.NewNode(Node{Role: RoleParagraph}, ids...)
	if s := tree.PlainText(p); s != "Figure 1.2: done" {
		t.Errorf("PlainText: got %q", s)
	}
}

func TestBuilder_NestsByLevel(t *testing.T) {
	tree := New("doc")
	b := NewBuilder(tree, tree.Root())
	ha := b.Heading(1, "a", word(tree, "A"))
	hb := b.Heading(2, "b", word(tree, "B"))
	b.Add(tree.NewNode(Node{Role: RoleParagraph}))
	hc := b.Heading(2, "c", word(tree, "C"))
	hd := b.Heading(3, "d", word(tree, "D"))
	he := b.Heading(1, "e", word(tree, "E"))

	sa, sb, sc, sd, se := tree.Parent(ha), tree.Parent(hb), tree.Parent(hc), tree.Parent(hd), tree.Parent(he)
	if tree.Parent(sa) != tree.Root() || tree.Parent(se) != tree.Root() {
		t.Error("expected level 1 sections under the root")
	}
	if tree.Parent(sb) != sa || tree.Parent(sc) != sa || tree.Parent(sd) != sc {
		t.Error("unexpected nesting of level 2/3 sections")
	}
	if tree.NumChildren(sb) != 2 {
		t.Errorf("expected paragraph added to section b, got %d children", tree.NumChildren(sb))
	}
	if b.Current() != se {
		t.Errorf("expected current container to be section e")
	}
	if tree.Node(hd).Level != 3 || tree.Node(hd).ID != "d" {
		t.Errorf("unexpected header d: %+v", tree.Node(hd))
	}
}

func TestRefKind(t *testing.T) {
	tests := []struct {
		in   string
		want RefKind
		ok   bool
	}{
		{"", RefSection, true},
		{"section", RefSection, true},
		{"heading", RefSection, true},
		{"figure", RefFigure, true},
		{"table", RefFigure, true},
		{"chapter", RefSection, false},
	}
	for _, tt := range tests {
		got, ok := ParseRefKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRefKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if b, _ := RefFigure.MarshalText(); string(b) != "figure" {
		t.Errorf("MarshalText: got %q", b)
	}
}
