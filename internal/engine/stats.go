package engine

import (
	"fmt"
	"math"

	"github.com/Higerald/OptionPricing/internal/model"
)

// Stats accumulates undiscounted payoffs. It is owned by a single run.
type Stats struct {
	Count      int
	Sum        float64
	SumSquares float64
}

// Add records one payoff.
func (s *Stats) Add(payoff float64) {
	s.Count++
	s.Sum += payoff
	s.SumSquares += payoff * payoff
}

// Merge folds partial statistics into s.
func (s *Stats) Merge(o Stats) {
	s.Count += o.Count
	s.Sum += o.Sum
	s.SumSquares += o.SumSquares
}

// Finalize turns the accumulated payoffs into a discounted price and the
// standard error of the undiscounted mean. The variance uses the expanded
// form (sumSq + n·mean² − 2·mean·sum) / (n·(n−1)).
func (s Stats) Finalize(discount float64) (model.Result, error) {
	if s.Count < 2 {
		return model.Result{}, fmt.Errorf("%w: need at least 2 paths to finalize, have %d", model.ErrInvalidArgument, s.Count)
	}
	n := float64(s.Count)
	mean := s.Sum / n
	radicand := (s.SumSquares + n*mean*mean - 2*mean*s.Sum) / (n * (n - 1))
	// Identical payoffs leave only rounding noise, which can be negative.
	if radicand < 0 {
		radicand = 0
	}
	price, se := mean*discount, math.Sqrt(radicand)
	if !isFinite(price) || !isFinite(se) {
		return model.Result{}, fmt.Errorf("%w: non-finite result over %d paths (price %v, standard error %v)",
			model.ErrNumericDegeneracy, s.Count, price, se)
	}
	return model.Result{
		Price:         price,
		StandardError: se,
		Paths:         s.Count,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
