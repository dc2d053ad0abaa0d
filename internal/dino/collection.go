package dino

import "slices"

// Map applies fn to every element of in and returns the results in a new slice.
func Map[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of in that satisfy keep, in their original order.
// The input slice is not modified.
func Filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// SortStable returns a sorted copy of in. Elements that compare equal keep
// their relative input order.
func SortStable[T any](in []T, compare func(a, b T) int) []T {
	out := make([]T, len(in))
	copy(out, in)
	slices.SortStableFunc(out, compare)
	return out
}

func SingularizeDinos(ds []Dino) []Dino { return Map(ds, MakeSingular) }

func TruncateDinos(ds []Dino) []Dino { return Map(ds, TruncateSpecies) }

func MakeAllExtinct(ds []Dino) []Dino { return Map(ds, MakeExtinct) }

func CarnivoresOnly(ds []Dino) []Dino { return Filter(ds, IsCarnivore) }

func HerbivoresOnly(ds []Dino) []Dino { return Filter(ds, Not(IsCarnivore)) }

func ExtinctOnly(ds []Dino) []Dino { return Filter(ds, IsExtinct) }

func NotExtinct(ds []Dino) []Dino { return Filter(ds, Not(IsExtinct)) }

func TriassicOnly(ds []Dino) []Dino { return Filter(ds, IsTriassic) }

func NotTriassic(ds []Dino) []Dino { return Filter(ds, Not(IsTriassic)) }

// BySpecies sorts alphabetically by species.
func BySpecies(ds []Dino) []Dino { return SortStable(ds, CompareSpecies) }

// ByExtinctLast moves extinct records after living ones.
func ByExtinctLast(ds []Dino) []Dino { return SortStable(ds, CompareExtinctLast) }

// ByCarnivoresFirst moves carnivores ahead of herbivores.
func ByCarnivoresFirst(ds []Dino) []Dino { return SortStable(ds, CompareCarnivoreFirst) }

// ByPeriod sorts chronologically.
func ByPeriod(ds []Dino) []Dino { return SortStable(ds, ComparePeriod) }
