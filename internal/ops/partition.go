package ops

import (
	"context"

	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
)

// PartitionBy selects the field a collection is split on.
type PartitionBy string

const (
	PartitionByDiet   PartitionBy = "diet"   // carnivores / herbivores
	PartitionByStatus PartitionBy = "status" // extinct / not_extinct
)

// PartitionInput contains parameters for the Partition operation.
type PartitionInput struct {
	Records []dino.Dino
	By      PartitionBy // default: diet
}

// PartitionOutput holds two disjoint, order-preserving halves of the input.
type PartitionOutput struct {
	By     PartitionBy            `json:"by"`
	Count  int                    `json:"count"`
	Groups map[string][]dino.Dino `json:"groups"`
}

// Partition splits records into two groups using a filter and its negation.
// Every input record lands in exactly one group.
func Partition(ctx context.Context, cfg *config.Config, input PartitionInput) (*PartitionOutput, error) {
	if err := checkRecordLimit(cfg, len(input.Records)); err != nil {
		return nil, err
	}
	if input.By == "" {
		input.By = PartitionByDiet
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("partition")
	}

	var groups map[string][]dino.Dino
	switch input.By {
	case PartitionByDiet:
		groups = map[string][]dino.Dino{
			"carnivores": dino.CarnivoresOnly(input.Records),
			"herbivores": dino.HerbivoresOnly(input.Records),
		}
	case PartitionByStatus:
		groups = map[string][]dino.Dino{
			"extinct":     dino.ExtinctOnly(input.Records),
			"not_extinct": dino.NotExtinct(input.Records),
		}
	default:
		return nil, errors.NewInvalidRequest("by must be one of: diet, status")
	}

	return &PartitionOutput{
		By:     input.By,
		Count:  len(input.Records),
		Groups: groups,
	}, nil
}
