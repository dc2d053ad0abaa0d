package web

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hpungsan/dinos/internal/codec"
	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
	"github.com/hpungsan/dinos/internal/ops"
)

// maxBodyBytes caps POST /api/dinos request bodies.
const maxBodyBytes = 4 << 20

// Handlers contains HTTP route handlers for the web UI and JSON API.
type Handlers struct {
	cfg      *config.Config
	logger   *slog.Logger
	renderer *Renderer
}

// HandleList handles GET /dinos: the sample collection run through a pipeline.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	pipeline := h.pipelineParam(r)

	result, err := ops.Run(r.Context(), h.cfg, ops.RunInput{
		Records:  dino.Sample(),
		Pipeline: pipeline,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Dinosaurs",
			Version: h.renderer.version,
			Nav:     "dinos",
		},
		Pipeline:   strings.Join(pipeline, ", "),
		Steps:      result.Steps,
		InputCount: result.InputCount,
		Count:      result.Count,
		Table:      renderTable(result.Records),
		Operations: ops.Operations(),
	})
}

// HandlePartition handles GET /dinos/partition: the sample split by diet or status.
func (h *Handlers) HandlePartition(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Partition(r.Context(), h.cfg, ops.PartitionInput{
		Records: dino.Sample(),
		By:      ops.PartitionBy(r.URL.Query().Get("by")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	names := []string{"carnivores", "herbivores"}
	if result.By == ops.PartitionByStatus {
		names = []string{"extinct", "not_extinct"}
	}
	groups := make([]GroupView, 0, len(names))
	for _, name := range names {
		records := result.Groups[name]
		groups = append(groups, GroupView{
			Name:  name,
			Count: len(records),
			Table: renderTable(records),
		})
	}

	h.renderer.renderPage(w, r, "partition", PartitionPageData{
		PageData: PageData{
			Title:   "Partition",
			Version: h.renderer.version,
			Nav:     "partition",
		},
		By:     result.By,
		Groups: groups,
	})
}

// HandleAPIList handles GET /api/dinos: the sample collection as JSON.
func (h *Handlers) HandleAPIList(w http.ResponseWriter, r *http.Request) {
	h.runJSON(w, r, dino.Sample())
}

// HandleAPIRun handles POST /api/dinos: a JSON array or JSONL body run
// through the pipeline. Any invalid record rejects the whole request.
func (h *Handlers) HandleAPIRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			renderJSONError(w, errors.NewInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)))
			return
		}
		renderJSONError(w, errors.NewInvalidRequest("failed to read request body"))
		return
	}

	records, lineErrs, err := codec.Decode(bytes.NewReader(body))
	if err != nil {
		renderJSONError(w, asDinoError(err))
		return
	}
	if len(lineErrs) > 0 {
		dErr := errors.NewInvalidRequest("request body contains invalid records")
		dErr.Details = map[string]any{"errors": lineErrs}
		renderJSONError(w, dErr)
		return
	}

	h.runJSON(w, r, records)
}

// HandleAPIOperations handles GET /api/operations.
func (h *Handlers) HandleAPIOperations(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"operations": ops.Operations()})
}

func (h *Handlers) runJSON(w http.ResponseWriter, r *http.Request, records []dino.Dino) {
	result, err := ops.Run(r.Context(), h.cfg, ops.RunInput{
		Records:  records,
		Pipeline: h.pipelineParam(r),
	})
	if err != nil {
		renderJSONError(w, asDinoError(err))
		return
	}
	h.logger.Debug("api pipeline applied", "method", r.Method, "steps", len(result.Steps), "in", result.InputCount, "out", result.Count)
	renderJSON(w, http.StatusOK, result)
}

// pipelineParam collects repeated op= parameters and the comma-separated
// pipeline= form field, in that order. With neither present the configured
// default pipeline applies.
func (h *Handlers) pipelineParam(r *http.Request) []string {
	q := r.URL.Query()
	names := make([]string, 0)
	for _, op := range q["op"] {
		if op = strings.TrimSpace(op); op != "" {
			names = append(names, op)
		}
	}
	names = append(names, splitList(q.Get("pipeline"))...)

	_, hasOp := q["op"]
	_, hasPipeline := q["pipeline"]
	if !hasOp && !hasPipeline && h.cfg != nil {
		return h.cfg.DefaultPipeline
	}
	return names
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
