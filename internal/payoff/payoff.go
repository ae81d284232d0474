// Package payoff holds the closed set of European payoffs the engine prices.
package payoff

import (
	"fmt"
	"math"
	"strings"

	"github.com/Higerald/OptionPricing/internal/model"
)

// Kind is the payoff shape.
type Kind int

const (
	Call Kind = iota
	Put
)

func (k Kind) String() string {
	switch k {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts "call" or "put" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return 0, fmt.Errorf("%w: unknown option type %q", model.ErrInvalidArgument, s)
	}
}

// Payoff is a vanilla payoff fixed at construction. The zero value is not
// usable; build one with New.
type Payoff struct {
	Kind   Kind
	Strike float64
}

// New validates the strike and returns the payoff.
func New(kind Kind, strike float64) (Payoff, error) {
	p := Payoff{Kind: kind, Strike: strike}
	if err := p.Validate(); err != nil {
		return Payoff{}, err
	}
	return p, nil
}

// Validate reports a non-positive strike or an unknown kind.
func (p Payoff) Validate() error {
	if !(p.Strike > 0) || math.IsInf(p.Strike, 0) {
		return fmt.Errorf("%w: strike must be positive, got %v", model.ErrInvalidArgument, p.Strike)
	}
	if p.Kind != Call && p.Kind != Put {
		return fmt.Errorf("%w: unknown payoff kind %d", model.ErrInvalidArgument, int(p.Kind))
	}
	return nil
}

// Evaluate returns the payoff at the given terminal spot.
func (p Payoff) Evaluate(spot float64) float64 {
	var val float64
	switch p.Kind {
	case Call:
		val = spot - p.Strike
	case Put:
		val = p.Strike - spot
	}
	if val > 0 {
		return val
	}
	return 0
}

func (p Payoff) String() string {
	return fmt.Sprintf("%s(%g)", p.Kind, p.Strike)
}
