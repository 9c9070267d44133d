package macro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/numbering"
)

// Priority runs macro expansion before every other transformation.
const Priority = 100

// MaxPasses bounds how many times expansion may revisit a tree whose macros
// keep producing new macros.
const MaxPasses = 32

// ErrRecursion is returned when expansion does not settle within MaxPasses.
var ErrRecursion = errors.New("macro expansion did not settle")

// ContentParser parses macro content into detached nodes.
type ContentParser interface {
	ParseBlocks(t *doctree.Tree, content string) ([]doctree.NodeID, error)
	ParseInline(t *doctree.Tree, content string) ([]doctree.NodeID, error)
}

// Context is handed to every macro execution.
type Context struct {
	Tree   *doctree.Tree
	Parser ContentParser
	Inline bool
}

// Func executes a macro and returns the nodes it expands to.
type Func func(x *Context, m *doctree.Macro) ([]doctree.NodeID, error)

// Expander is the transformation replacing unexpanded macro markers with
// the output of their macro.
type Expander struct {
	macros map[string]Func
	parser ContentParser
	errors numbering.ErrorGenerator
	log    *slog.Logger
}

// NewExpander creates an expander with the built-in macros registered.
func NewExpander(parser ContentParser, errs numbering.ErrorGenerator, log *slog.Logger) *Expander {
	e := &Expander{
		macros: map[string]Func{},
		parser: parser,
		errors: errs,
		log:    log,
	}
	e.Register(numbering.ReferenceMacro, referenceMacro)
	e.Register("id", idMacro)
	e.Register("figure", figureMacro)
	e.Register("figureCaption", figureCaptionMacro)
	e.Register("code", codeMacro)
	return e
}

// Register adds or replaces a macro.
func (e *Expander) Register(name string, fn Func) {
	e.macros[name] = fn
}

func (e *Expander) Name() string  { return "macro" }
func (e *Expander) Priority() int { return Priority }

// Transform expands macros until none is left pending.
func (e *Expander) Transform(ctx context.Context, t *doctree.Tree, _ *numbering.Report) error {
	pending := func(n *doctree.Node) bool {
		return n.Role == doctree.RoleMacro && n.Macro != nil && !n.Macro.Expanded
	}
	for pass := 0; pass < MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ids := t.Descendants(t.Root(), pending)
		if len(ids) == 0 {
			return nil
		}
		for _, id := range ids {
			e.expand(t, id)
		}
	}
	return fmt.Errorf("%w after %d passes", ErrRecursion, MaxPasses)
}

func (e *Expander) expand(t *doctree.Tree, id doctree.NodeID) {
	node := t.Node(id)
	m := node.Macro
	m.Expanded = true

	fn, ok := e.macros[m.Name]
	if !ok {
		e.log.Debug("unknown macro", "macro", m.Name)
		t.Append(id, e.errors.Generate(t,
			fmt.Sprintf("Unknown macro: %s.", m.Name),
			fmt.Sprintf("The %q macro is not in the list of registered macros. Verify the spelling.", m.Name),
			node.Inline)...)
		return
	}

	nodes, err := fn(&Context{Tree: t, Parser: e.parser, Inline: node.Inline}, m)
	if err != nil {
		e.log.Debug("macro failed", "macro", m.Name, "error", err)
		t.Append(id, e.errors.Generate(t,
			fmt.Sprintf("Failed to execute the [%s] macro.", m.Name),
			err.Error(),
			node.Inline)...)
		return
	}
	t.Append(id, nodes...)
}
