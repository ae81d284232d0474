// Package path turns Gaussian draws into simulated terminal spot values under
// geometric Brownian motion.
package path

import (
	"fmt"
	"math"
	"strings"

	"github.com/Higerald/OptionPricing/internal/gaussian"
	"github.com/Higerald/OptionPricing/internal/model"
)

// Generator produces one terminal spot sample per call. Implementations hold
// no state between calls.
type Generator interface {
	Name() string
	Validate(p model.Parameters) error
	Terminal(p model.Parameters, s gaussian.Sampler) (float64, error)
}

const (
	NameDirect  = "direct"
	NameMonthly = "monthly"
)

// Parse maps a config or flag value to a Generator.
func Parse(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameDirect, "", "terminal":
		return DirectTerminal{}, nil
	case NameMonthly, "averaged":
		return MonthlyAveraged{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown generator %q", model.ErrInvalidArgument, name)
	}
}

// movedSpot is the forward-drifted spot at horizon t including the Ito
// correction, together with the standard deviation of log(S_t).
func movedSpot(p model.Parameters, t float64) (moved, rootVariance float64) {
	variance := p.Volatility * p.Volatility * t
	rootVariance = math.Sqrt(variance)
	itoCorrection := -0.5 * variance
	moved = p.Spot * math.Exp(p.Rate*t+itoCorrection)
	return moved, rootVariance
}

// DirectTerminal draws S_T in one step from its closed-form lognormal law.
type DirectTerminal struct{}

func (DirectTerminal) Name() string { return NameDirect }

func (DirectTerminal) Validate(p model.Parameters) error { return p.Validate() }

func (DirectTerminal) Terminal(p model.Parameters, s gaussian.Sampler) (float64, error) {
	moved, rootVariance := movedSpot(p, p.Expiry)
	g, err := s.Sample()
	if err != nil {
		return 0, err
	}
	return moved * math.Exp(rootVariance*g), nil
}

// MonthlyAveraged returns the arithmetic mean of monthly spot observations.
//
// Each month's spot is drawn from its own marginal lognormal law with a fresh,
// independent Gaussian. Consecutive observations are therefore uncorrelated,
// unlike a compounded Brownian path. This is kept on purpose.
type MonthlyAveraged struct{}

func (MonthlyAveraged) Name() string { return NameMonthly }

// MonthlySteps is the number of monthly observations for expiry, i.e. the
// number of j ≥ 1 with j ≤ 12·expiry. The tolerance absorbs binary rounding
// such as 12·(1/3) = 3.9999999999999996.
func MonthlySteps(expiry float64) int {
	return int(math.Floor(12*expiry + 1e-9))
}

func (MonthlyAveraged) Validate(p model.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if MonthlySteps(p.Expiry) < 1 {
		return fmt.Errorf("%w: monthly averaging needs expiry of at least one month, got %v years", model.ErrInvalidArgument, p.Expiry)
	}
	return nil
}

func (MonthlyAveraged) Terminal(p model.Parameters, s gaussian.Sampler) (float64, error) {
	steps := MonthlySteps(p.Expiry)
	var runningSpot float64
	for j := 1; j <= steps; j++ {
		t := float64(j) / 12
		moved, rootVariance := movedSpot(p, t)
		g, err := s.Sample()
		if err != nil {
			return 0, err
		}
		runningSpot += moved * math.Exp(rootVariance*g)
	}
	return runningSpot / float64(steps), nil
}
