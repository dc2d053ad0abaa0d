package web

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hpungsan/dinos/internal/codec"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
	"github.com/hpungsan/dinos/internal/logging"
	"github.com/hpungsan/dinos/internal/ops"
	"github.com/hpungsan/dinos/internal/render"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "dinos", "partition"
}

// ListPageData is the template data for the pipeline page.
type ListPageData struct {
	PageData
	Pipeline   string // comma-separated, as typed into the form
	Steps      []ops.StepResult
	InputCount int
	Count      int
	Table      template.HTML
	Operations []ops.Operation
}

// GroupView is one half of a partition.
type GroupView struct {
	Name  string
	Count int
	Table template.HTML
}

// PartitionPageData is the template data for the partition page.
type PartitionPageData struct {
	PageData
	By     ops.PartitionBy
	Groups []GroupView
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	layoutTmpl, err := template.New("layout").ParseFS(templateFS, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := map[string]string{
		"list":      "list.html",
		"partition": "partition.html",
		"error":     "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t, err := layoutTmpl.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}, nil
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed", "template", name, logging.ErrorAttr(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	dErr := asDinoError(err)
	if dErr.Code == errors.ErrInternal {
		r.logger.Error("request failed", "path", req.URL.Path, logging.ErrorAttr(err))
	}

	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(dErr.Status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(dErr.Message))
		return
	}

	if wantsJSON(req) {
		renderJSONError(w, dErr)
		return
	}

	r.renderPageStatus(w, req, dErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", dErr.Status),
			Version: r.version,
		},
		StatusCode: dErr.Status,
		Message:    dErr.Message,
	})
}

// asDinoError unwraps err into a coded error. Anything else becomes INTERNAL
// with a generic message.
func asDinoError(err error) *errors.DinoError {
	var dErr *errors.DinoError
	if stderrors.As(err, &dErr) {
		return dErr
	}
	return errors.NewInternal(nil)
}

func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSONError writes the {"error": {...}} payload used by every JSON endpoint.
func renderJSONError(w http.ResponseWriter, dErr *errors.DinoError) {
	errObj := map[string]any{
		"code":    string(dErr.Code),
		"message": dErr.Message,
		"status":  dErr.Status,
	}
	if dErr.Code != errors.ErrInternal && dErr.Details != nil {
		errObj["details"] = dErr.Details
	}
	renderJSON(w, dErr.Status, map[string]any{"error": errObj})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = codec.EncodeJSON(w, data)
}

// renderTable renders records as an HTML table through goldmark.
func renderTable(records []dino.Dino) template.HTML {
	html, err := render.HTML(records)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(render.Markdown(records)))
	}
	return template.HTML(html)
}
