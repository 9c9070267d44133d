package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/numref/internal/config"
	"github.com/dgallion1/numref/internal/localize"
	"github.com/dgallion1/numref/internal/parser"
	"github.com/dgallion1/numref/internal/pipeline"
)

const testKey = "secret"

const testDoc = "# Intro\n\nSee {{reference section='intro'/}} and {{reference section='gone'/}}.\n"

func newTestServer(t *testing.T, start bool) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:         testKey,
		Locale:         "en",
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		RenderTimeout:  5 * time.Second,
		JobTTL:         time.Hour,
	}
	cat, err := localize.New(cfg.Locale)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	orch := pipeline.NewOrchestrator(cfg, pipeline.NewProcessor(cat, nil, parser.Options{}, log), log)
	if start {
		orch.Start(t.Context())
		t.Cleanup(orch.Stop)
	}
	return NewServer(orch, log, cfg)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, field, filename, content string, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, false)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tt.name, rec.Code)
		}
	}
}

func TestRender_RawBody(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/render?filename=doc.md&format=text", strings.NewReader(testDoc))
	rec := do(t, s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res pipeline.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Sections["intro"] != "1" {
		t.Errorf("expected intro numbered 1, got %v", res.Sections)
	}
	if !strings.Contains(res.Output, "See 1 and No section id named [gone] was found.") {
		t.Errorf("unexpected output:\n%s", res.Output)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0].Target != "gone" {
		t.Errorf("expected one unresolved reference, got %v", res.Unresolved)
	}
}

func TestRender_MultipartRaw(t *testing.T) {
	s := newTestServer(t, false)
	body, ctype := multipartBody(t, "file", "doc.md", testDoc, map[string]string{"format": "html"})
	req := httptest.NewRequest(http.MethodPost, "/api/render?raw=true", body)
	req.Header.Set("Content-Type", ctype)
	rec := do(t, s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `<a href="#intro">1</a>`) {
		t.Errorf("expected resolved link, got %s", rec.Body.String())
	}
}

func TestRender_BadRequests(t *testing.T) {
	s := newTestServer(t, false)
	tests := []struct {
		name string
		url  string
		code int
	}{
		{"no filename", "/api/render", http.StatusBadRequest},
		{"unsupported type", "/api/render?filename=a.png", http.StatusBadRequest},
		{"unknown format", "/api/render?filename=a.md&format=pdf", http.StatusBadRequest},
		{"bad locale", "/api/render?filename=a.md&locale=%3F%3F", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		rec := do(t, s, httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader("x")))
		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d: %s", tt.name, tt.code, rec.Code, rec.Body.String())
		}
	}
}

func TestJobs_SubmitAndFetch(t *testing.T) {
	s := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs?filename=doc.md&format=text", strings.NewReader(testDoc))
	rec := do(t, s, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = do(t, s, httptest.NewRequest(http.MethodGet, accepted.PollURL, nil))
		var snap pipeline.JobSnapshot
		if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted {
			if snap.Unresolved != 1 {
				t.Errorf("expected 1 unresolved reference, got %d", snap.Unresolved)
			}
			break
		}
		if snap.Status == pipeline.StatusFailed || time.Now().After(deadline) {
			t.Fatalf("job did not complete: %+v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+accepted.JobID+"/result?raw=true", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "= 1 Intro") {
		t.Errorf("unexpected raw result %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJobs_NotFoundAndPending(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs/missing/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	// Workers are not started, so the job stays queued.
	rec = do(t, s, httptest.NewRequest(http.MethodPost, "/api/jobs?filename=doc.md", strings.NewReader(testDoc)))
	var accepted struct {
		JobID string `json:"job_id"`
	}
	json.NewDecoder(rec.Body).Decode(&accepted)
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+accepted.JobID+"/result", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for a queued job, got %d", rec.Code)
	}
}

func TestJobs_Batch(t *testing.T) {
	s := newTestServer(t, false)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("format", "text")
	for _, name := range []string{"a.md", "b.txt", "c.png"} {
		fw, _ := mw.CreateFormFile("files", name)
		fw.Write([]byte("content"))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(t, s, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Jobs) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out.Jobs))
	}
	if out.Jobs[0]["job_id"] == nil || out.Jobs[1]["job_id"] == nil {
		t.Errorf("expected supported files queued: %v", out.Jobs)
	}
	if out.Jobs[2]["error"] == nil {
		t.Errorf("expected the png rejected: %v", out.Jobs[2])
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	var stats map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["queue_capacity"] != float64(4) || stats["locale"] != "en" {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"doc.md":           "doc.md",
		"../../etc/passwd": "passwd",
		"a..b.md":          "a_b.md",
		"":                 "unnamed",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
