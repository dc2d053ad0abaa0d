package dino

// Predicate reports whether a record matches some condition.
type Predicate func(Dino) bool

func IsCarnivore(d Dino) bool { return d.Carnivore }

func IsExtinct(d Dino) bool { return d.Extinct }

func IsTriassic(d Dino) bool { return d.Period == Triassic }

func IsJurassic(d Dino) bool { return d.Period == Jurassic }

func IsCretaceous(d Dino) bool { return d.Period == Cretaceous }

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(d Dino) bool { return !p(d) }
}
