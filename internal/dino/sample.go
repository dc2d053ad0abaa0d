package dino

// Sample returns a fresh copy of the six-record reference collection.
func Sample() []Dino {
	return []Dino{
		New("Archaeopteryx", Jurassic, true),
		New("Eoraptor", Triassic, true),
		NewWithStatus("Brachiosaurus", Jurassic, false, true),
		New("Herrerasaurus", Triassic, false),
		NewWithStatus("T-Rex", Cretaceous, true, true),
		NewWithStatus("Styracosaurus", Cretaceous, false, true),
	}
}
