package ops

import "github.com/hpungsan/dinos/internal/dino"

// CheckOutput reports every predicate for one record.
type CheckOutput struct {
	Record       dino.Dino `json:"record"`
	IsCarnivore  bool      `json:"is_carnivore"`
	IsExtinct    bool      `json:"is_extinct"`
	IsTriassic   bool      `json:"is_triassic"`
	IsJurassic   bool      `json:"is_jurassic"`
	IsCretaceous bool      `json:"is_cretaceous"`
}

// Check evaluates all predicates against d.
func Check(d dino.Dino) CheckOutput {
	return CheckOutput{
		Record:       d,
		IsCarnivore:  dino.IsCarnivore(d),
		IsExtinct:    dino.IsExtinct(d),
		IsTriassic:   dino.IsTriassic(d),
		IsJurassic:   dino.IsJurassic(d),
		IsCretaceous: dino.IsCretaceous(d),
	}
}

// CompareOutput reports every comparator for an ordered pair.
// Negative means X sorts first.
type CompareOutput struct {
	X               dino.Dino `json:"x"`
	Y               dino.Dino `json:"y"`
	Species         int       `json:"species"`
	ExtinctLast     int       `json:"extinct_last"`
	CarnivoresFirst int       `json:"carnivores_first"`
	Period          int       `json:"period"`
}

// Compare evaluates all comparators for (x, y).
func Compare(x, y dino.Dino) CompareOutput {
	return CompareOutput{
		X:               x,
		Y:               y,
		Species:         dino.CompareSpecies(x, y),
		ExtinctLast:     dino.CompareExtinctLast(x, y),
		CarnivoresFirst: dino.CompareCarnivoreFirst(x, y),
		Period:          dino.ComparePeriod(x, y),
	}
}
