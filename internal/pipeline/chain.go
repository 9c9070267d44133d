package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/numbering"
)

// Transformation rewrites a document tree in place. Lower priorities run
// first.
type Transformation interface {
	Name() string
	Priority() int
	Transform(ctx context.Context, t *doctree.Tree, rep *numbering.Report) error
}

// Chain runs transformations in priority order. Transformations sharing a
// priority keep their registration order.
type Chain struct {
	steps []Transformation
	log   *slog.Logger
}

// NewChain creates a chain holding steps.
func NewChain(log *slog.Logger, steps ...Transformation) *Chain {
	c := &Chain{log: log}
	c.Add(steps...)
	return c
}

// Add registers more transformations.
func (c *Chain) Add(steps ...Transformation) {
	c.steps = append(c.steps, steps...)
	sort.SliceStable(c.steps, func(i, j int) bool {
		return c.steps[i].Priority() < c.steps[j].Priority()
	})
}

// Names lists the transformations in the order they run.
func (c *Chain) Names() []string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name()
	}
	return names
}

// Run applies every transformation to t. When one fails, t is restored to
// its state before the run and the error is returned.
func (c *Chain) Run(ctx context.Context, t *doctree.Tree) (*numbering.Report, error) {
	snapshot := t.Clone()
	rep := numbering.NewReport()

	for _, step := range c.steps {
		start := time.Now()
		err := step.Transform(ctx, t, rep)
		RecordTransform(step.Name(), time.Since(start).Seconds())
		if err != nil {
			*t = *snapshot
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
		c.log.Debug("transformation done", "transformation", step.Name(), "duration_ms", time.Since(start).Milliseconds())
	}

	for family, n := range rep.Numbered {
		RecordNumbered(family, n)
	}
	for _, u := range rep.Unresolved {
		RecordUnresolved(u.Kind.String())
	}
	return rep, nil
}
