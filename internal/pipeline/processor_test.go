package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/numref/internal/config"
	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/localize"
	"github.com/dgallion1/numref/internal/numbering"
	"github.com/dgallion1/numref/internal/parser"
	"github.com/dgallion1/numref/internal/render"
)

const sampleDoc = `# Intro

See {{reference section='usage'/}} and {{reference figure='arch'/}}.

## Usage {#usage}

{{figure id='arch'}}
![diagram](arch.png)

{{figureCaption}}Architecture{{/figureCaption}}
{{/figure}}

Missing {{reference section='nope'/}}.
`

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	cat, err := localize.New("en")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return NewProcessor(cat, nil, parser.Options{}, discardLogger())
}

func TestProcessor_Process(t *testing.T) {
	p := newTestProcessor(t)
	res, err := p.Process(context.Background(), Request{
		Filename: "guide.md",
		Data:     []byte(sampleDoc),
		Format:   render.FormatText,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if res.Title != "guide" {
		t.Errorf("expected title %q, got %q", "guide", res.Title)
	}
	if want := map[string]string{"intro": "1", "usage": "1.1"}; !reflect.DeepEqual(res.Sections, want) {
		t.Errorf("expected sections %v, got %v", want, res.Sections)
	}
	if want := map[string]string{"arch": "1"}; !reflect.DeepEqual(res.Figures, want) {
		t.Errorf("expected figures %v, got %v", want, res.Figures)
	}
	if want := []numbering.Unresolved{{Kind: doctree.RefSection, Target: "nope"}}; !reflect.DeepEqual(res.Unresolved, want) {
		t.Errorf("expected unresolved %v, got %v", want, res.Unresolved)
	}

	for _, want := range []string{
		"= 1 Intro",
		"See 1.1 and 1.",
		"== 1.1 Usage",
		"Figure 1:  Architecture",
		"Missing No section id named [nope] was found.",
	} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, res.Output)
		}
	}
	if strings.Contains(res.Output, "{{") {
		t.Errorf("expected every macro expanded, got:\n%s", res.Output)
	}
}

func TestProcessor_Locale(t *testing.T) {
	p := newTestProcessor(t)
	res, err := p.Process(context.Background(), Request{
		Filename: "guide.md",
		Data:     []byte(sampleDoc),
		Format:   render.FormatText,
		Locale:   "fr",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(res.Output, "Figure 1 :  Architecture") {
		t.Errorf("expected French caption prefix, got:\n%s", res.Output)
	}

	if _, err := p.Process(context.Background(), Request{Filename: "guide.md", Locale: "??"}); err == nil {
		t.Error("expected an error for a malformed locale")
	}
}

func TestProcessor_CodeIsProtected(t *testing.T) {
	p := newTestProcessor(t)
	doc := "```\n# not a heading {{reference section='x'/}}\n```\n\n# Real\n"
	res, err := p.Process(context.Background(), Request{Filename: "code.md", Data: []byte(doc), Format: render.FormatText})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(res.Output, "# not a heading {{reference section='x'/}}") {
		t.Errorf("expected code left verbatim, got:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "= 1 Real") {
		t.Errorf("expected real heading numbered, got:\n%s", res.Output)
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("expected no unresolved references, got %v", res.Unresolved)
	}
}

func TestProcessor_UnsupportedFormat(t *testing.T) {
	p := newTestProcessor(t)
	_, err := p.Process(context.Background(), Request{Filename: "image.png", Data: []byte("x")})
	if !errors.Is(err, parser.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestProcessor_UnresolvedNeverNil(t *testing.T) {
	p := newTestProcessor(t)
	res, err := p.Process(context.Background(), Request{Filename: "a.txt", Data: []byte("plain"), Format: render.FormatText})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Unresolved == nil {
		t.Error("expected an empty, non-nil unresolved list")
	}
}

func TestOrchestrator_RunsJobs(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 2, JobTTL: time.Hour, RenderTimeout: 5 * time.Second}
	o := NewOrchestrator(cfg, newTestProcessor(t), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("guide.md", render.FormatHTML, "", []byte(sampleDoc))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		snap := o.GetJob(job.ID).Snapshot()
		if snap.Status == StatusCompleted {
			break
		}
		if snap.Status == StatusFailed {
			t.Fatalf("job failed: %v", snap.Errors)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, status %q", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	res := job.Result()
	if res == nil || !strings.Contains(res.Output, `<a href="#usage">1.1</a>`) {
		t.Errorf("expected rendered HTML with resolved link, got %+v", res)
	}
	if job.FileData() != nil {
		t.Error("expected input released after completion")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, newTestProcessor(t), discardLogger())
	// Workers are not started, so the queue fills up.
	if err := o.Submit(NewJob("a.md", render.FormatText, "", nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	rejected := NewJob("b.md", render.FormatText, "", nil)
	if err := o.Submit(rejected); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if rejected.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job marked failed, got %q", rejected.Snapshot().Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestProcessor_FigcaptionAnchor(t *testing.T) {
	p := newTestProcessor(t)
	res, err := p.Process(context.Background(), Request{
		Filename: "page.html",
		Data:     []byte(`<figure><img src="x.png"><figcaption id="f">F</figcaption></figure><p>{{reference figure='f'/}}</p>`),
		Format:   render.FormatText,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if want := map[string]string{"f": "1"}; !reflect.DeepEqual(res.Figures, want) {
		t.Errorf("expected figures %v, got %v", want, res.Figures)
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("expected no unresolved references, got %v", res.Unresolved)
	}
}
