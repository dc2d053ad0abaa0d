package ops

import (
	"strings"

	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
)

// MakeInput contains parameters for the Make operation.
type MakeInput struct {
	Species   string
	Period    string
	Carnivore bool
	Extinct   *bool // optional, default false
}

// Make builds a single record. Unlike dino.New, it validates its input,
// because it is reached from user-facing surfaces.
func Make(input MakeInput) (dino.Dino, error) {
	if strings.TrimSpace(input.Species) == "" {
		return dino.Dino{}, errors.NewInvalidRequest("species is required")
	}

	period, err := dino.ParsePeriod(input.Period)
	if err != nil {
		return dino.Dino{}, errors.NewInvalidPeriod(input.Period)
	}

	if input.Extinct == nil {
		return dino.New(input.Species, period, input.Carnivore), nil
	}
	return dino.NewWithStatus(input.Species, period, input.Carnivore, *input.Extinct), nil
}
