/*
PURPOSE:
  Defines the core data structures used throughout the option pricer.
  These models describe the inputs of a simulation run and its outputs.

REQUIREMENTS:
  User-specified:
  - Spot, volatility, risk-free rate and expiry drive every run.
  - A run yields a discounted price and a standard error.

  Implementation-discovered:
  - Need JSON tags for the HTTP endpoint and JSON-lines output.
  - Need a flat Record for CSV/JSON persistence of a run.

ARCHITECTURE INTEGRATION:
  - Used by: internal/path, internal/engine, internal/output, internal/server
  - Shared across boundaries.

ERROR HANDLING:
  - Parameters.Validate returns ErrInvalidArgument (see errors.go).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Parameters are passed by value and never mutated by the engine.

USAGE:
  p := model.Parameters{Spot: 100, Volatility: 0.2, Rate: 0.05, Expiry: 1}
  if err := p.Validate(); err != nil { ... }

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update the CSV row mapping when Record gains fields.
*/

package model

import (
	"fmt"
	"math"
	"time"
)

// Parameters holds the lognormal model inputs of a single run.
type Parameters struct {
	Spot       float64 `json:"spot" yaml:"spot"`
	Volatility float64 `json:"volatility" yaml:"volatility"`
	Rate       float64 `json:"rate" yaml:"rate"`
	Expiry     float64 `json:"expiry" yaml:"expiry"` // years
}

// Validate checks the domain of every parameter.
func (p Parameters) Validate() error {
	switch {
	case !(p.Spot > 0) || math.IsInf(p.Spot, 0):
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidArgument, p.Spot)
	case !(p.Volatility >= 0) || math.IsInf(p.Volatility, 0):
		return fmt.Errorf("%w: volatility must be non-negative, got %v", ErrInvalidArgument, p.Volatility)
	case math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0):
		return fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidArgument, p.Rate)
	case !(p.Expiry > 0) || math.IsInf(p.Expiry, 0):
		return fmt.Errorf("%w: expiry must be positive, got %v", ErrInvalidArgument, p.Expiry)
	}
	return nil
}

// Discount returns exp(-rate*expiry).
func (p Parameters) Discount() float64 {
	return math.Exp(-p.Rate * p.Expiry)
}

// Result is the terminal output of a simulation run.
type Result struct {
	Price         float64 `json:"price"`
	StandardError float64 `json:"standard_error"`
	Paths         int     `json:"paths"`
}

// Checkpoint is an intermediate estimate taken while a run is in progress.
type Checkpoint struct {
	Paths         int     `json:"paths"`
	Price         float64 `json:"price"`
	StandardError float64 `json:"standard_error"`
}

// Record represents one persisted pricing run.
type Record struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	OptionType    string        `json:"option_type"`
	Strike        float64       `json:"strike"`
	Parameters    Parameters    `json:"parameters"`
	Generator     string        `json:"generator"`
	Sampler       string        `json:"sampler"`
	Seed          uint64        `json:"seed"`
	Paths         int           `json:"paths"`
	Price         float64       `json:"price"`
	StandardError float64       `json:"standard_error"`
	AnalyticPrice *float64      `json:"analytic_price,omitempty"` // DirectTerminal only
	Duration      time.Duration `json:"duration"`
	Error         string        `json:"error,omitempty"` // If the run failed
}
