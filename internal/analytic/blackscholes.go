// Package analytic prices European options in closed form. It is the
// reference the Monte Carlo estimate is compared against.
package analytic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/payoff"
)

// BlackScholes returns the closed-form price of po under p.
func BlackScholes(po payoff.Payoff, p model.Parameters) (float64, error) {
	if err := po.Validate(); err != nil {
		return 0, err
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	discountedStrike := po.Strike * p.Discount()
	if p.Volatility == 0 {
		forward := p.Spot - discountedStrike
		if po.Kind == payoff.Put {
			forward = -forward
		}
		return math.Max(forward, 0), nil
	}

	norm := distuv.UnitNormal
	sqrtT := math.Sqrt(p.Expiry)
	d1 := (math.Log(p.Spot/po.Strike) + (p.Rate+0.5*p.Volatility*p.Volatility)*p.Expiry) / (p.Volatility * sqrtT)
	d2 := d1 - p.Volatility*sqrtT

	switch po.Kind {
	case payoff.Call:
		return p.Spot*norm.CDF(d1) - discountedStrike*norm.CDF(d2), nil
	case payoff.Put:
		return discountedStrike*norm.CDF(-d2) - p.Spot*norm.CDF(-d1), nil
	default:
		return 0, fmt.Errorf("%w: unsupported payoff %s", model.ErrInvalidArgument, po.Kind)
	}
}
