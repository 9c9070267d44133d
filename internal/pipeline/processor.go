package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/errblock"
	"github.com/dgallion1/numref/internal/localize"
	"github.com/dgallion1/numref/internal/macro"
	"github.com/dgallion1/numref/internal/numbering"
	"github.com/dgallion1/numref/internal/parser"
	"github.com/dgallion1/numref/internal/render"
)

// Request is one document to number and render.
type Request struct {
	Filename string
	Data     []byte
	Format   render.Format
	// Locale overrides the processor's default locale when set.
	Locale string
}

// Result is a rendered document together with what numbering produced.
type Result struct {
	Title      string                 `json:"title"`
	Format     render.Format          `json:"format"`
	Output     string                 `json:"output"`
	Sections   map[string]string      `json:"sections"`
	Figures    map[string]string      `json:"figures"`
	Numbered   map[string]int         `json:"numbered"`
	Unresolved []numbering.Unresolved `json:"unresolved"`
}

// Processor parses, expands macros, numbers, resolves references and
// renders documents. It is safe for concurrent use.
type Processor struct {
	catalog    *localize.Catalog
	protection numbering.Protection
	parserOpts parser.Options
	content    macro.ContentParser
	log        *slog.Logger
}

// NewProcessor creates a processor. Macro content is always parsed as
// markdown, whatever the document's own format.
func NewProcessor(cat *localize.Catalog, protected []string, opts parser.Options, log *slog.Logger) *Processor {
	return &Processor{
		catalog:    cat,
		protection: numbering.NewProtection(protected...),
		parserOpts: opts,
		content:    &parser.MarkdownParser{},
		log:        log,
	}
}

// Chain returns the transformation chain for locale: macro expansion, then
// heading numbering, then figure numbering.
func (p *Processor) Chain(locale string) (*Chain, error) {
	tr := p.catalog
	if locale != "" {
		var err error
		if tr, err = p.catalog.WithLocale(locale); err != nil {
			return nil, err
		}
	}
	errs := errblock.Generator{}
	return NewChain(p.log,
		macro.NewExpander(p.content, errs, p.log),
		numbering.NewHeadingsTransformation(p.protection, errs, p.log),
		numbering.NewFiguresTransformation(p.protection, tr, errs, p.log),
	), nil
}

// Parse converts raw document bytes into a tree.
func (p *Processor) Parse(filename string, data []byte) (*doctree.Tree, error) {
	ps, err := parser.ForFile(filename, p.parserOpts)
	if err != nil {
		return nil, err
	}
	tree, err := ps.Parse(bytes.NewReader(data), filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// Transform runs the transformation chain on tree. On failure the tree is
// left as it was.
func (p *Processor) Transform(ctx context.Context, tree *doctree.Tree, locale string) (*numbering.Report, error) {
	chain, err := p.Chain(locale)
	if err != nil {
		return nil, err
	}
	return chain.Run(ctx, tree)
}

// Process runs the whole pipeline for req.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	format := string(req.Format)
	log := p.log.With("filename", req.Filename, "format", format)

	tree, err := p.Parse(req.Filename, req.Data)
	if err != nil {
		RecordDocument(format, "parse_error")
		return nil, err
	}

	rep, err := p.Transform(ctx, tree, req.Locale)
	if err != nil {
		RecordDocument(format, "transform_error")
		log.Error("transform failed", "error", err)
		return nil, err
	}

	out, err := render.String(tree, req.Format)
	if err != nil {
		RecordDocument(format, "render_error")
		return nil, err
	}
	RecordDocument(format, "ok")
	log.Info("document processed",
		"sections", len(rep.Sections),
		"figures", len(rep.Figures),
		"unresolved", len(rep.Unresolved))

	unresolved := rep.Unresolved
	if unresolved == nil {
		unresolved = []numbering.Unresolved{}
	}
	return &Result{
		Title:      strings.TrimSpace(tree.Title),
		Format:     req.Format,
		Output:     out,
		Sections:   rep.Sections.Labels(),
		Figures:    rep.Figures.Labels(),
		Numbered:   rep.Numbered,
		Unresolved: unresolved,
	}, nil
}
