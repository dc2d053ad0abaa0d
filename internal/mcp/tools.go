package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/dinos/internal/ops"
)

// recordSchema is the JSON schema of a single dinosaur record.
var recordSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"species":   map[string]any{"type": "string"},
		"period":    map[string]any{"type": "string", "enum": []string{"Triassic", "Jurassic", "Cretaceous"}},
		"carnivore": map[string]any{"type": "boolean"},
		"extinct":   map[string]any{"type": "boolean"},
	},
	"required": []string{"species", "period", "carnivore"},
}

func withRecords(desc string) mcp.ToolOption {
	return mcp.WithArray("records",
		mcp.Description(desc),
		mcp.Items(recordSchema),
	)
}

func withRecord(name, desc string) mcp.ToolOption {
	return mcp.WithObject(name,
		mcp.Required(),
		mcp.Description(desc),
		mcp.Properties(recordSchema["properties"].(map[string]any)),
	)
}

var makeToolDef = mcp.NewTool("dino_make",
	mcp.WithDescription("Build one dinosaur record. New records are living unless extinct is set."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("species", mcp.Required(), mcp.Description("Species name")),
	mcp.WithString("period", mcp.Required(),
		mcp.Description("Geological period"),
		mcp.Enum("Triassic", "Jurassic", "Cretaceous"),
	),
	mcp.WithBoolean("carnivore", mcp.Required(), mcp.Description("true for carnivores, false for herbivores")),
	mcp.WithBoolean("extinct", mcp.Description("Default false")),
)

var checkToolDef = mcp.NewTool("dino_check",
	mcp.WithDescription("Evaluate every predicate (carnivore, extinct, triassic, jurassic, cretaceous) for one record."),
	mcp.WithReadOnlyHintAnnotation(true),
	withRecord("record", "Record to check"),
)

var compareToolDef = mcp.NewTool("dino_compare",
	mcp.WithDescription("Evaluate every ordering for a pair of records. Negative means x sorts first."),
	mcp.WithReadOnlyHintAnnotation(true),
	withRecord("x", "First record"),
	withRecord("y", "Second record"),
)

var runToolDef = mcp.NewTool("dino_run",
	mcp.WithDescription("Apply a pipeline of collection operations (see dino_operations) left to right. "+
		"Omitting records runs over the sample collection."),
	mcp.WithReadOnlyHintAnnotation(true),
	withRecords("Input records (default: sample collection)"),
	mcp.WithArray("pipeline",
		mcp.Description("Operation names applied in order (default: configured default_pipeline)"),
		mcp.Items(map[string]any{"type": "string", "enum": ops.Names()}),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default json)"),
		mcp.Enum("json", "markdown"),
	),
)

var partitionToolDef = mcp.NewTool("dino_partition",
	mcp.WithDescription("Split records into two disjoint groups by diet (carnivores/herbivores) or status (extinct/not_extinct)."),
	mcp.WithReadOnlyHintAnnotation(true),
	withRecords("Input records (default: sample collection)"),
	mcp.WithString("by",
		mcp.Description("Field to split on (default diet)"),
		mcp.Enum(string(ops.PartitionByDiet), string(ops.PartitionByStatus)),
	),
)

var sampleToolDef = mcp.NewTool("dino_sample",
	mcp.WithDescription("Return the six-record sample collection."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var operationsToolDef = mcp.NewTool("dino_operations",
	mcp.WithDescription("List the collection operations usable as pipeline steps."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("dino_export",
	mcp.WithDescription("Write records to a JSONL file with an export header. "+
		"Paths must sit directly in ~/.dinos/exports or a configured allowed_paths entry."),
	withRecords("Records to export (default: sample collection)"),
	mcp.WithString("path", mcp.Description("Destination .jsonl file (default: ~/.dinos/exports/<name>-<timestamp>.jsonl)")),
	mcp.WithString("name", mcp.Description("Label used in the default file name")),
)

var importToolDef = mcp.NewTool("dino_import",
	mcp.WithDescription("Read records from a JSONL export or a JSON array file."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl or .json file")),
	mcp.WithString("mode",
		mcp.Description("error (default) rejects the file on any invalid record; skip drops invalid records"),
		mcp.Enum(string(ops.ImportModeError), string(ops.ImportModeSkip)),
	),
)
