package dino

import (
	"errors"
	"fmt"
)

// Period is a geological period tag.
type Period string

const (
	Triassic   Period = "Triassic"
	Jurassic   Period = "Jurassic"
	Cretaceous Period = "Cretaceous"
)

// Periods lists the known periods in chronological order.
var Periods = []Period{Triassic, Jurassic, Cretaceous}

// ErrUnknownPeriod is returned when a period literal is not one of Periods.
var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod returns the Period for an exact, case-sensitive literal.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	return p, nil
}

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	return p.Rank() >= 0
}

// Rank returns the chronological position of p (Triassic = 0).
// Unknown periods rank -1.
func (p Period) Rank() int {
	switch p {
	case Triassic:
		return 0
	case Jurassic:
		return 1
	case Cretaceous:
		return 2
	default:
		return -1
	}
}

// String implements fmt.Stringer.
func (p Period) String() string {
	return string(p)
}

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Unknown literals are rejected so malformed records fail at the boundary.
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Dino is an immutable dinosaur record. Every transform in this package
// takes and returns a Dino by value.
type Dino struct {
	Species   string `json:"species"`
	Period    Period `json:"period"`
	Carnivore bool   `json:"carnivore"`
	Extinct   bool   `json:"extinct"`
}

// New creates a record that is not extinct.
func New(species string, period Period, carnivore bool) Dino {
	return NewWithStatus(species, period, carnivore, false)
}

// NewWithStatus creates a record with an explicit extinction status.
// Values are stored as given.
func NewWithStatus(species string, period Period, carnivore, extinct bool) Dino {
	return Dino{
		Species:   species,
		Period:    period,
		Carnivore: carnivore,
		Extinct:   extinct,
	}
}

// Diet returns "carnivore" or "herbivore".
func (d Dino) Diet() string {
	if d.Carnivore {
		return "carnivore"
	}
	return "herbivore"
}

// Status returns "extinct" or "living".
func (d Dino) Status() string {
	if d.Extinct {
		return "extinct"
	}
	return "living"
}

// clone rebuilds d through the constructor.
func clone(d Dino) Dino {
	return NewWithStatus(d.Species, d.Period, d.Carnivore, d.Extinct)
}
