package dino

import (
	"cmp"
	"strings"
)

// Comparator orders two records along one dimension.
// It returns -1 if x sorts first, 1 if y sorts first and 0 on a tie.
type Comparator func(x, y Dino) int

// CompareSpecies orders records alphabetically by species (byte order).
func CompareSpecies(x, y Dino) int {
	return strings.Compare(x.Species, y.Species)
}

// CompareExtinctLast orders living records before extinct ones.
func CompareExtinctLast(x, y Dino) int {
	return cmp.Compare(boolRank(x.Extinct), boolRank(y.Extinct))
}

// CompareCarnivoreFirst orders carnivores before herbivores.
func CompareCarnivoreFirst(x, y Dino) int {
	return cmp.Compare(boolRank(y.Carnivore), boolRank(x.Carnivore))
}

// ComparePeriod orders records chronologically: Triassic, Jurassic, Cretaceous.
func ComparePeriod(x, y Dino) int {
	return cmp.Compare(x.Period.Rank(), y.Period.Rank())
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
