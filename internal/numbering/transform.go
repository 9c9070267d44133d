package numbering

import (
	"context"
	"log/slog"

	"github.com/dgallion1/numref/internal/doctree"
)

// Priority places the numbering transformations after macro expansion and
// any other transformation contributing headings or figures.
const Priority = 2000

// Report collects what the numbering transformations produced in one run.
type Report struct {
	Sections   Registry
	Figures    Registry
	Numbered   map[string]int
	Unresolved []Unresolved
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		Sections: Registry{},
		Figures:  Registry{},
		Numbered: map[string]int{},
	}
}

// HeadingsTransformation numbers headings and then resolves section
// references against the registry it just built.
type HeadingsTransformation struct {
	engine   *Engine
	family   Headings
	resolver *Resolver
	log      *slog.Logger
}

// NewHeadingsTransformation wires the heading family.
func NewHeadingsTransformation(p Protection, errs ErrorGenerator, log *slog.Logger) *HeadingsTransformation {
	return &HeadingsTransformation{
		engine:   NewEngine(p),
		family:   Headings{Protection: p},
		resolver: &Resolver{Kind: doctree.RefSection, Errors: errs, Protection: p},
		log:      log,
	}
}

func (h *HeadingsTransformation) Name() string  { return "numberedheadings" }
func (h *HeadingsTransformation) Priority() int { return Priority }

func (h *HeadingsTransformation) Transform(ctx context.Context, t *doctree.Tree, rep *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	reg, n, err := h.engine.Number(t, h.family)
	if err != nil {
		return err
	}
	missing, err := h.resolver.Resolve(t, reg)
	if err != nil {
		return err
	}

	for id, num := range reg {
		rep.Sections[id] = num
	}
	rep.Numbered[h.family.Name()] += n
	rep.Unresolved = append(rep.Unresolved, missing...)
	logUnresolved(h.log, missing)
	h.log.Debug("numbered headings", "numbered", n, "ids", len(reg))
	return nil
}

// FiguresTransformation numbers figures and tables, each kind counting on
// its own, and resolves figure references against both.
type FiguresTransformation struct {
	engine   *Engine
	families []Figures
	resolver *Resolver
	log      *slog.Logger
}

// NewFiguresTransformation wires the figure and table families.
func NewFiguresTransformation(p Protection, tr Translator, errs ErrorGenerator, log *slog.Logger) *FiguresTransformation {
	return &FiguresTransformation{
		engine: NewEngine(p),
		families: []Figures{
			{Kind: KindFigure, Translator: tr, Protection: p},
			{Kind: KindTable, Translator: tr, Protection: p},
		},
		resolver: &Resolver{Kind: doctree.RefFigure, Errors: errs, Protection: p},
		log:      log,
	}
}

func (f *FiguresTransformation) Name() string  { return "numberedfigures" }
func (f *FiguresTransformation) Priority() int { return Priority }

func (f *FiguresTransformation) Transform(ctx context.Context, t *doctree.Tree, rep *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	captions := Registry{}
	for _, fam := range f.families {
		reg, n, err := f.engine.Number(t, fam)
		if err != nil {
			return err
		}
		for id, num := range reg {
			captions[id] = num
		}
		rep.Numbered[fam.Name()] += n
		f.log.Debug("numbered captions", "kind", fam.Name(), "numbered", n, "ids", len(reg))
	}

	missing, err := f.resolver.Resolve(t, captions)
	if err != nil {
		return err
	}
	for id, num := range captions {
		rep.Figures[id] = num
	}
	rep.Unresolved = append(rep.Unresolved, missing...)
	logUnresolved(f.log, missing)
	return nil
}

func logUnresolved(log *slog.Logger, missing []Unresolved) {
	for _, m := range missing {
		log.Warn("unresolved reference", "kind", m.Kind.String(), "target", m.Target)
	}
}
