// Package gaussian draws standard normal variates from an explicit, seeded
// uniform stream. There is no package-level random state: two samplers built
// from the same method and seed produce the same sequence.
package gaussian

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/Higerald/OptionPricing/internal/model"
)

// Method selects the Gaussian generation algorithm.
type Method string

const (
	MethodSummation Method = "summation" // 12 uniforms minus 6, legacy
	MethodPolar     Method = "polar"     // Marsaglia polar Box-Muller
	MethodDirect    Method = "direct"    // cosine Box-Muller
)

// MaxAttempts bounds every rejection or resample loop.
const MaxAttempts = 1000

// Source is a uniform stream on [0, 1).
type Source interface {
	Float64() float64
}

// Sampler produces draws from N(0,1).
type Sampler interface {
	Sample() (float64, error)
	Method() Method
}

// ParseMethod maps a config or flag value to a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodSummation, MethodPolar, MethodDirect:
		return m, nil
	case "":
		return MethodPolar, nil
	default:
		return "", fmt.Errorf("%w: unknown sampler %q", model.ErrInvalidArgument, s)
	}
}

// NewSource returns a PCG uniform stream seeded with seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// New builds a sampler of the given method over src.
func New(m Method, src Source) (Sampler, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil uniform source", model.ErrInvalidArgument)
	}
	switch m {
	case MethodSummation:
		return &Summation{src: src}, nil
	case MethodPolar:
		return &Polar{src: src}, nil
	case MethodDirect:
		return &Direct{src: src}, nil
	default:
		return nil, fmt.Errorf("%w: unknown sampler %q", model.ErrInvalidArgument, m)
	}
}

// NewSeeded is New over a fresh stream seeded with seed.
func NewSeeded(m Method, seed uint64) (Sampler, error) {
	return New(m, NewSource(seed))
}

// Summation approximates N(0,1) by the central limit theorem. Its variance is
// exactly 1 but the tails are truncated at ±6.
type Summation struct {
	src Source
}

func (s *Summation) Method() Method { return MethodSummation }

func (s *Summation) Sample() (float64, error) {
	var result float64
	for j := 0; j < 12; j++ {
		result += s.src.Float64()
	}
	return result - 6.0, nil
}

// Polar is the rejection form of Box-Muller.
type Polar struct {
	src Source
}

func (p *Polar) Method() Method { return MethodPolar }

func (p *Polar) Sample() (float64, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		x := 2.0*p.src.Float64() - 1
		y := 2.0*p.src.Float64() - 1
		sizeSquared := x*x + y*y
		if sizeSquared >= 1.0 || sizeSquared == 0 {
			continue
		}
		return x * math.Sqrt(-2*math.Log(sizeSquared)/sizeSquared), nil
	}
	return 0, fmt.Errorf("%w: polar sampler rejected %d points", model.ErrNumericDegeneracy, MaxAttempts)
}

// Direct is the trigonometric form of Box-Muller. It needs no rejection,
// only a resample when u1 is exactly zero.
type Direct struct {
	src Source
}

func (d *Direct) Method() Method { return MethodDirect }

func (d *Direct) Sample() (float64, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		u1 := d.src.Float64()
		u2 := d.src.Float64()
		if u1 <= 0 {
			continue
		}
		return math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2*math.Pi*u2), nil
	}
	return 0, fmt.Errorf("%w: direct sampler drew u1=0 %d times", model.ErrNumericDegeneracy, MaxAttempts)
}
