package model

import "errors"

var (
	// ErrInvalidArgument reports inputs outside the model's domain. It is
	// raised before any path is simulated.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNumericDegeneracy reports a sampling loop that exhausted its retry
	// bound, or a run whose price or standard error overflowed to a
	// non-finite value.
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)
