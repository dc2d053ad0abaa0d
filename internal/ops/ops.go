package ops

import (
	"sort"

	"github.com/hpungsan/dinos/internal/config"
	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
)

// Kind classifies a collection operation.
type Kind string

const (
	KindMap    Kind = "map"
	KindFilter Kind = "filter"
	KindSort   Kind = "sort"
)

// Operation is a named collection operation usable as a pipeline step.
type Operation struct {
	Name        string                        `json:"name"`
	Kind        Kind                          `json:"kind"`
	Description string                        `json:"description"`
	Apply       func([]dino.Dino) []dino.Dino `json:"-"`
}

// registry maps pipeline step names to collection operations.
var registry = map[string]Operation{
	"singularize": {
		Kind:        KindMap,
		Description: `Strip a trailing "us" from every species name`,
		Apply:       dino.SingularizeDinos,
	},
	"truncate": {
		Kind:        KindMap,
		Description: "Shorten species names longer than 8 characters to 7 characters plus ...",
		Apply:       dino.TruncateDinos,
	},
	"make_all_extinct": {
		Kind:        KindMap,
		Description: "Mark every record extinct",
		Apply:       dino.MakeAllExtinct,
	},
	"carnivores_only": {
		Kind:        KindFilter,
		Description: "Keep carnivores",
		Apply:       dino.CarnivoresOnly,
	},
	"herbivores_only": {
		Kind:        KindFilter,
		Description: "Keep herbivores",
		Apply:       dino.HerbivoresOnly,
	},
	"extinct_only": {
		Kind:        KindFilter,
		Description: "Keep extinct records",
		Apply:       dino.ExtinctOnly,
	},
	"not_extinct": {
		Kind:        KindFilter,
		Description: "Keep living records",
		Apply:       dino.NotExtinct,
	},
	"triassic_only": {
		Kind:        KindFilter,
		Description: "Keep Triassic records",
		Apply:       dino.TriassicOnly,
	},
	"not_triassic": {
		Kind:        KindFilter,
		Description: "Drop Triassic records",
		Apply:       dino.NotTriassic,
	},
	"by_species": {
		Kind:        KindSort,
		Description: "Stable sort by species name",
		Apply:       dino.BySpecies,
	},
	"by_extinct_last": {
		Kind:        KindSort,
		Description: "Stable sort with living records before extinct ones",
		Apply:       dino.ByExtinctLast,
	},
	"by_carnivores_first": {
		Kind:        KindSort,
		Description: "Stable sort with carnivores before herbivores",
		Apply:       dino.ByCarnivoresFirst,
	},
	"by_period": {
		Kind:        KindSort,
		Description: "Stable sort by period: Triassic, Jurassic, Cretaceous",
		Apply:       dino.ByPeriod,
	},
}

// Lookup returns the named operation.
func Lookup(name string) (Operation, bool) {
	op, ok := registry[name]
	if !ok {
		return Operation{}, false
	}
	op.Name = name
	return op, true
}

// Names returns all operation names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Operations returns all operations sorted by name.
func Operations() []Operation {
	names := Names()
	out := make([]Operation, 0, len(names))
	for _, name := range names {
		op, _ := Lookup(name)
		out = append(out, op)
	}
	return out
}

// resolvePipeline looks up every step before anything runs, so a bad name
// never produces a partial result.
func resolvePipeline(names []string) ([]Operation, error) {
	steps := make([]Operation, 0, len(names))
	var unknown []string
	for _, name := range names {
		op, ok := Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		steps = append(steps, op)
	}
	if len(unknown) > 0 {
		return nil, errors.NewUnknownOperation(unknown)
	}
	return steps, nil
}

// checkRecordLimit enforces cfg.MaxRecords. A nil config or a zero limit disables the check.
func checkRecordLimit(cfg *config.Config, n int) error {
	if cfg == nil || cfg.MaxRecords <= 0 {
		return nil
	}
	if n > cfg.MaxRecords {
		return errors.NewTooManyRecords(cfg.MaxRecords, n)
	}
	return nil
}
