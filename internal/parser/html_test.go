package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/numref/internal/doctree"
)

func TestHTMLParser_SectionsAndFigures(t *testing.T) {
	input := `<html><head><title>Guide</title></head><body>
<nav>Skip me</nav>
<h1 id="intro">Intro</h1>
<p>See {{reference section='intro'/}} now.</p>
<figure id="f1"><img src="x.png"><figcaption>A <em>chart</em></figcaption></figure>
<h2>Details</h2>
<pre><code class="language-go">x := {{reference section='intro'/}}</code></pre>
</body></html>`

	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "guide.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Guide" {
		t.Errorf("expected title %q, got %q", "Guide", tree.Title)
	}

	top := tree.Children(tree.Root())
	if len(top) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(top))
	}
	h1 := top[0]
	if hdr := headerOf(tree, h1); hdr.ID != "intro" || hdr.Level != 1 {
		t.Errorf("expected level 1 header with id intro, got level %d id %q", hdr.Level, hdr.ID)
	}

	paras := childrenWithRole(tree, h1, doctree.RoleParagraph)
	if len(paras) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paras))
	}
	if refs := childrenWithRole(tree, paras[0], doctree.RoleMacro); len(refs) != 1 {
		t.Errorf("expected 1 reference marker in paragraph, got %d", len(refs))
	}

	figs := childrenWithRole(tree, h1, doctree.RoleFigure)
	if len(figs) != 1 {
		t.Fatalf("expected 1 figure, got %d", len(figs))
	}
	if tree.Node(figs[0]).ID != "f1" {
		t.Errorf("expected figure id f1, got %q", tree.Node(figs[0]).ID)
	}
	captions := childrenWithRole(tree, figs[0], doctree.RoleFigureCaption)
	if len(captions) != 1 || tree.PlainText(captions[0]) != "A chart" {
		t.Errorf("expected caption %q", "A chart")
	}

	subs := childrenWithRole(tree, h1, doctree.RoleSection)
	if len(subs) != 1 {
		t.Fatalf("expected 1 nested section, got %d", len(subs))
	}
	code := childrenWithRole(tree, subs[0], doctree.RoleMacro)
	if len(code) != 1 || tree.Node(code[0]).Macro.Name != "code" {
		t.Fatalf("expected code region under Details")
	}
	verbatim := tree.Node(tree.FirstChild(code[0]))
	if verbatim.Class != "go" || !strings.Contains(verbatim.Text, "{{reference") {
		t.Errorf("expected verbatim go code kept as is, got %+v", verbatim)
	}

	if strings.Contains(tree.PlainText(tree.Root()), "Skip me") {
		t.Error("expected nav content to be skipped")
	}
}

func TestHTMLParser_TitleFallback(t *testing.T) {
	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader("<p>hello</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "page" {
		t.Errorf("expected title %q, got %q", "page", tree.Title)
	}
	paras := childrenWithRole(tree, tree.Root(), doctree.RoleParagraph)
	if len(paras) != 1 || tree.PlainText(paras[0]) != "hello" {
		t.Errorf("expected one paragraph %q", "hello")
	}
}

func TestCSVParser_TableFigure(t *testing.T) {
	p := &CSVParser{}
	tree, err := p.Parse(strings.NewReader("name,qty\napple,3\npear\n"), "stock.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	figs := childrenWithRole(tree, tree.Root(), doctree.RoleFigure)
	if len(figs) != 1 {
		t.Fatalf("expected 1 figure, got %d", len(figs))
	}
	fig := figs[0]
	if tree.Node(fig).ID != "stock" {
		t.Errorf("expected figure id %q, got %q", "stock", tree.Node(fig).ID)
	}
	tables := childrenWithRole(tree, fig, doctree.RoleTable)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if rows := tree.NumChildren(tables[0]); rows != 3 {
		t.Errorf("expected 3 rows, got %d", rows)
	}
	captions := childrenWithRole(tree, fig, doctree.RoleFigureCaption)
	if len(captions) != 1 || tree.PlainText(captions[0]) != "stock" {
		t.Errorf("expected caption %q", "stock")
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	tree, err := p.Parse(strings.NewReader(""), "none.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := tree.NumChildren(tree.Root()); n != 0 {
		t.Errorf("expected empty tree, got %d children", n)
	}
}
