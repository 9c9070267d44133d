package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/numref/internal/parser"
	"github.com/dgallion1/numref/internal/pipeline"
	"github.com/dgallion1/numref/internal/render"
)

// upload is a document received over HTTP together with its render options.
type upload struct {
	filename string
	data     []byte
	format   render.Format
	locale   string
}

// httpError carries the status code to answer with.
type httpError struct {
	msg  string
	code int
}

func (e *httpError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &httpError{msg: fmt.Sprintf(format, args...), code: http.StatusBadRequest}
}

// readUpload accepts either a multipart form with a "file" field or a raw
// body named by the "filename" query parameter. Options come from the form
// or, for raw bodies, from the query string.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	// Limit total request size, with 1MB extra for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	var (
		name string
		src  io.Reader
	)
	// The raw body is never parsed as a form.
	values := r.URL.Query()
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, badRequest("invalid multipart form: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, badRequest("file is required: %v", err)
		}
		defer file.Close()
		name, src = header.Filename, file
		values = r.Form
	} else {
		name = values.Get("filename")
		if name == "" {
			return nil, badRequest("filename query parameter is required")
		}
		src = r.Body
	}

	filename := sanitizeFilename(name)
	if !parser.IsSupportedExtension(filename) {
		return nil, badRequest("unsupported file type: %s", filepath.Ext(filename))
	}

	format, err := render.ParseFormat(values.Get("format"))
	if err != nil {
		return nil, badRequest("%v", err)
	}

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, &httpError{msg: "failed to read file", code: http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, &httpError{
			msg:  fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes),
			code: http.StatusRequestEntityTooLarge,
		}
	}

	return &upload{
		filename: filename,
		data:     data,
		format:   format,
		locale:   values.Get("locale"),
	}, nil
}

// handleRender numbers and renders a document synchronously.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	ctx := r.Context()
	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}

	res, err := s.orchestrator.Processor().Process(ctx, pipeline.Request{
		Filename: up.filename,
		Data:     up.data,
		Format:   up.format,
		Locale:   up.locale,
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if r.URL.Query().Get("raw") == "true" {
		w.Header().Set("Content-Type", up.format.ContentType())
		io.WriteString(w, res.Output)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// handleSubmit queues a document for asynchronous rendering.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	job := pipeline.NewJob(up.filename, up.format, up.locale, up.data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
	})
}

// handleBatchSubmit queues every file of a multipart "files" field. Files
// share the format and locale given in the form.
func (s *Server) handleBatchSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	format, err := render.ParseFormat(r.FormValue("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	locale := r.FormValue("locale")

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		job := pipeline.NewJob(filename, format, locale, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func writeError(w http.ResponseWriter, err error) {
	var he *httpError
	if errors.As(err, &he) {
		jsonError(w, he.msg, he.code)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
