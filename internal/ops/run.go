package ops

import (
	"context"

	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
)

// RunInput contains parameters for the Run operation.
type RunInput struct {
	Records  []dino.Dino
	Pipeline []string // operation names, applied left to right
}

// StepResult records the collection size after one pipeline step.
type StepResult struct {
	Operation string `json:"operation"`
	Kind      Kind   `json:"kind"`
	Count     int    `json:"count"`
}

// RunOutput contains the result of the Run operation.
type RunOutput struct {
	InputCount int          `json:"input_count"`
	Count      int          `json:"count"`
	Steps      []StepResult `json:"steps"`
	Records    []dino.Dino  `json:"records"`
}

// Run applies a pipeline of collection operations to a copy of the input.
// An empty pipeline returns the records unchanged (as a new slice).
func Run(ctx context.Context, cfg *config.Config, input RunInput) (*RunOutput, error) {
	if err := checkRecordLimit(cfg, len(input.Records)); err != nil {
		return nil, err
	}

	steps, err := resolvePipeline(input.Pipeline)
	if err != nil {
		return nil, err
	}

	records := append(make([]dino.Dino, 0, len(input.Records)), input.Records...)
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("run")
		default:
		}

		records = step.Apply(records)
		results = append(results, StepResult{
			Operation: step.Name,
			Kind:      step.Kind,
			Count:     len(records),
		})
	}

	return &RunOutput{
		InputCount: len(input.Records),
		Count:      len(records),
		Steps:      results,
		Records:    records,
	}, nil
}
