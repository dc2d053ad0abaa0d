package mcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/dinos/internal/codec"
	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
	"github.com/hpungsan/dinos/internal/logging"
	"github.com/hpungsan/dinos/internal/ops"
	"github.com/hpungsan/dinos/internal/render"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handlers{cfg: cfg, logger: logger}
}

// Request types for each tool

// MakeRequest represents the arguments for dino_make.
type MakeRequest struct {
	Species   string `json:"species"`
	Period    string `json:"period"`
	Carnivore *bool  `json:"carnivore"`
	Extinct   *bool  `json:"extinct,omitempty"`
}

// CheckRequest represents the arguments for dino_check.
type CheckRequest struct {
	Record jsoniter.RawMessage `json:"record"`
}

// CompareRequest represents the arguments for dino_compare.
type CompareRequest struct {
	X jsoniter.RawMessage `json:"x"`
	Y jsoniter.RawMessage `json:"y"`
}

// RunRequest represents the arguments for dino_run.
type RunRequest struct {
	Records  []jsoniter.RawMessage `json:"records,omitempty"`
	Pipeline []string              `json:"pipeline,omitempty"`
	Format   string                `json:"format,omitempty"`
}

// PartitionRequest represents the arguments for dino_partition.
type PartitionRequest struct {
	Records []jsoniter.RawMessage `json:"records,omitempty"`
	By      string                `json:"by,omitempty"`
}

// ExportRequest represents the arguments for dino_export.
type ExportRequest struct {
	Records []jsoniter.RawMessage `json:"records,omitempty"`
	Path    string                `json:"path,omitempty"`
	Name    string                `json:"name,omitempty"`
}

// ImportRequest represents the arguments for dino_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// SampleOutput is the dino_sample result.
type SampleOutput struct {
	Count   int         `json:"count"`
	Records []dino.Dino `json:"records"`
}

// OperationsOutput is the dino_operations result.
type OperationsOutput struct {
	Operations []ops.Operation `json:"operations"`
}

// Handler implementations

// HandleMake handles the dino_make tool call.
func (h *Handlers) HandleMake(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MakeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Carnivore == nil {
		return errorResult(errors.NewInvalidRequest("carnivore is required")), nil
	}

	d, err := ops.Make(ops.MakeInput{
		Species:   input.Species,
		Period:    input.Period,
		Carnivore: *input.Carnivore,
		Extinct:   input.Extinct,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(d)
}

// HandleCheck handles the dino_check tool call.
func (h *Handlers) HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CheckRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	d, err := requiredRecord("record", input.Record)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ops.Check(d))
}

// HandleCompare handles the dino_compare tool call.
func (h *Handlers) HandleCompare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompareRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	x, err := requiredRecord("x", input.X)
	if err != nil {
		return errorResult(err), nil
	}
	y, err := requiredRecord("y", input.Y)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ops.Compare(x, y))
}

// HandleRun handles the dino_run tool call.
func (h *Handlers) HandleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RunRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	format := render.FormatJSON
	if input.Format != "" {
		format, err = render.ParseFormat(input.Format)
		if err != nil {
			return errorResult(errors.NewInvalidRequest(err.Error())), nil
		}
		if format != render.FormatJSON && format != render.FormatMarkdown {
			return errorResult(errors.NewInvalidRequest("format must be one of: json, markdown")), nil
		}
	}

	records, err := decodeRecords(input.Records)
	if err != nil {
		return errorResult(err), nil
	}

	pipeline := input.Pipeline
	if pipeline == nil && h.cfg != nil {
		pipeline = h.cfg.DefaultPipeline
	}

	result, err := ops.Run(ctx, h.cfg, ops.RunInput{
		Records:  records,
		Pipeline: pipeline,
	})
	if err != nil {
		return errorResult(err), nil
	}
	h.logger.Debug("pipeline applied", "steps", len(result.Steps), "in", result.InputCount, "out", result.Count)

	if format == render.FormatMarkdown {
		return mcp.NewToolResultText(render.Markdown(result.Records)), nil
	}
	return successResult(result)
}

// HandlePartition handles the dino_partition tool call.
func (h *Handlers) HandlePartition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PartitionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	records, err := decodeRecords(input.Records)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Partition(ctx, h.cfg, ops.PartitionInput{
		Records: records,
		By:      ops.PartitionBy(input.By),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSample handles the dino_sample tool call.
func (h *Handlers) HandleSample(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records := dino.Sample()
	return successResult(SampleOutput{Count: len(records), Records: records})
}

// HandleOperations handles the dino_operations tool call.
func (h *Handlers) HandleOperations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(OperationsOutput{Operations: ops.Operations()})
}

// HandleExport handles the dino_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	records, err := decodeRecords(input.Records)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.cfg, ops.ExportInput{
		Path:    input.Path,
		Name:    input.Name,
		Records: records,
	})
	if err != nil {
		h.logger.Warn("export failed", logging.ErrorAttr(err))
		return errorResult(err), nil
	}
	h.logger.Info("export written", "path", result.Path, "count", result.Count, "export_id", result.ExportID)

	return successResult(result)
}

// HandleImport handles the dino_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

func requiredRecord(name string, raw jsoniter.RawMessage) (dino.Dino, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return dino.Dino{}, errors.NewInvalidRequest(name + " is required")
	}
	d, err := codec.DecodeRecord(raw)
	if err != nil {
		return dino.Dino{}, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var dErr *errors.DinoError
	if stderrors.As(err, &dErr) {
		// Keep wrapper context such as "records[2]: " in front of the message.
		prefix := strings.TrimSuffix(err.Error(), dErr.Error())
		errorObj := map[string]any{
			"code":    dErr.Code,
			"message": prefix + dErr.Message,
			"status":  dErr.Status,
		}
		if dErr.Code != errors.ErrInternal && dErr.Details != nil {
			errorObj["details"] = dErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    string(errors.ErrInternal),
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
