/*
PURPOSE:
  Core Monte Carlo loop. Drives a path generator N times, evaluates the
  payoff on each terminal value and finalizes price and standard error.

REQUIREMENTS:
  User-specified:
  - Accumulate sum and sum of squares of undiscounted payoffs.
  - Discount the mean once, after averaging.
  - Fail with ErrInvalidArgument for fewer than 2 paths.

  Implementation-discovered:
  - Convergence traces need intermediate finalizations (Trace).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go, internal/server
  - Uses: internal/gaussian, internal/path, internal/payoff, internal/model

ERROR HANDLING:
  - All validation happens before the first path.
  - Sampler failures abort the run; no partial result is returned.

IMPLEMENTATION RULES:
  - Single goroutine, no cancellation point inside a run.
  - Never share a Simulator between goroutines: the sampler stream is stateful.
*/

package engine

import (
	"fmt"

	"github.com/Higerald/OptionPricing/internal/gaussian"
	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/path"
	"github.com/Higerald/OptionPricing/internal/payoff"
)

// Simulator pairs a path generator with the Gaussian stream it consumes.
type Simulator struct {
	Generator path.Generator
	Sampler   gaussian.Sampler
}

// NewSimulator creates a Simulator.
func NewSimulator(gen path.Generator, s gaussian.Sampler) *Simulator {
	return &Simulator{Generator: gen, Sampler: s}
}

func (s *Simulator) validate(po payoff.Payoff, p model.Parameters, paths int) error {
	if s.Generator == nil || s.Sampler == nil {
		return fmt.Errorf("%w: simulator needs a generator and a sampler", model.ErrInvalidArgument)
	}
	if paths < 2 {
		return fmt.Errorf("%w: number of paths must be at least 2, got %d", model.ErrInvalidArgument, paths)
	}
	if err := po.Validate(); err != nil {
		return err
	}
	return s.Generator.Validate(p)
}

// Run prices po with the given number of independent paths.
func (s *Simulator) Run(po payoff.Payoff, p model.Parameters, paths int) (model.Result, error) {
	if err := s.validate(po, p, paths); err != nil {
		return model.Result{}, err
	}
	var stats Stats
	for i := 0; i < paths; i++ {
		if err := s.step(po, p, &stats); err != nil {
			return model.Result{}, err
		}
	}
	return stats.Finalize(p.Discount())
}

// Trace runs like Run and additionally finalizes a checkpoint every `every`
// paths. The last checkpoint always covers all paths and equals the result.
func (s *Simulator) Trace(po payoff.Payoff, p model.Parameters, paths, every int) (model.Result, []model.Checkpoint, error) {
	if err := s.validate(po, p, paths); err != nil {
		return model.Result{}, nil, err
	}
	if every < 2 {
		return model.Result{}, nil, fmt.Errorf("%w: checkpoint interval must be at least 2, got %d", model.ErrInvalidArgument, every)
	}

	discount := p.Discount()
	checkpoints := make([]model.Checkpoint, 0, paths/every+1)
	var stats Stats
	for i := 1; i <= paths; i++ {
		if err := s.step(po, p, &stats); err != nil {
			return model.Result{}, nil, err
		}
		if i%every != 0 && i != paths {
			continue
		}
		res, err := stats.Finalize(discount)
		if err != nil {
			return model.Result{}, nil, err
		}
		checkpoints = append(checkpoints, model.Checkpoint{
			Paths:         res.Paths,
			Price:         res.Price,
			StandardError: res.StandardError,
		})
	}

	res, err := stats.Finalize(discount)
	return res, checkpoints, err
}

func (s *Simulator) step(po payoff.Payoff, p model.Parameters, stats *Stats) error {
	spot, err := s.Generator.Terminal(p, s.Sampler)
	if err != nil {
		return fmt.Errorf("path %d: %w", stats.Count+1, err)
	}
	stats.Add(po.Evaluate(spot))
	return nil
}
