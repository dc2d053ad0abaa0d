package ops

import (
	"github.com/hpungsan/dinos/internal/codec"
	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
)

// ImportMode controls how record errors are handled during import.
type ImportMode string

const (
	ImportModeError ImportMode = "error" // fail if any record is invalid
	ImportModeSkip  ImportMode = "skip"  // drop invalid records, report them
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required, .jsonl or .json
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Errors   []codec.LineError `json:"errors"`
	Records  []dino.Dino       `json:"records"`
}

// Import reads records from a JSONL export or a JSON array file.
func Import(cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: error, skip")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.DinoError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(err)
	}
	defer file.Close()

	records, lineErrs, err := codec.Decode(file)
	if err != nil {
		return nil, err
	}
	if lineErrs == nil {
		lineErrs = []codec.LineError{}
	}

	// mode:error is all-or-nothing.
	if input.Mode == ImportModeError && len(lineErrs) > 0 {
		return &ImportOutput{
			Imported: 0,
			Skipped:  len(records) + len(lineErrs),
			Errors:   lineErrs,
			Records:  []dino.Dino{},
		}, nil
	}

	if err := checkRecordLimit(cfg, len(records)); err != nil {
		return nil, err
	}

	return &ImportOutput{
		Imported: len(records),
		Skipped:  len(lineErrs),
		Errors:   lineErrs,
		Records:  records,
	}, nil
}
