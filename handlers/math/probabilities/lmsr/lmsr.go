// Package lmsr implements the Logarithmic Market Scoring Rule (LMSR)
// for binary markets. Originally developed by Robin Hanson for
// prediction markets.
//
// LMSR provides:
// - Bounded loss for the market maker
// - Always available liquidity
// - Price = probability interpretation
// - Well-defined cost function
//
// Reference: "Logarithmic Market Scoring Rules for Modular Combinatorial
// Information Aggregation" by Robin Hanson, 2003, George Mason University
//
// All functions here are pure; market state lives elsewhere. The math is
// done in float64 and assumes the operating ranges of this system
// (b in (0, ~50], |q| up to a few hundred), where the exponentials stay
// far from overflow and no log-sum-exp rescaling is needed.
package lmsr

import (
	"errors"
	"math"

	"friendsmarket/models"
)

// Numeric-solver failures. These should never occur within the documented
// operating ranges; callers log and alert rather than retry.
var (
	// ErrInvalidProbability is returned when a target probability is not
	// strictly inside (0,1).
	ErrInvalidProbability = errors.New("initial probability must be strictly between 0 and 1")

	// ErrInvalidAmount is returned when a trade amount is not positive.
	ErrInvalidAmount = errors.New("trade amount must be positive")

	// ErrBracketingFailed is returned when the sizer cannot bracket the
	// target cost below the expansion ceiling.
	ErrBracketingFailed = errors.New("failed to bracket the root for trade computation")

	// ErrDidNotConverge is returned when bisection exhausts its iteration
	// budget without meeting tolerance.
	ErrDidNotConverge = errors.New("trade computation did not converge")
)

const (
	// Tolerance is the absolute cost tolerance accepted by the sizer.
	Tolerance = 1e-9

	maxIterations = 200
	bracketCeil   = 1e9
)

// Cost is the LMSR cost function C(qYes, qNo) = b * ln(exp(qYes/b) + exp(qNo/b)):
// the total the market maker would have collected to reach this state from
// the zero state.
func Cost(qYes, qNo, b float64) float64 {
	return b * math.Log(math.Exp(qYes/b)+math.Exp(qNo/b))
}

// PriceYes returns the instantaneous price (probability) of the YES outcome,
// dC/dqYes = exp(qYes/b) / (exp(qYes/b) + exp(qNo/b)).
func PriceYes(qYes, qNo, b float64) float64 {
	expYes := math.Exp(qYes / b)
	expNo := math.Exp(qNo / b)
	return expYes / (expYes + expNo)
}

// PriceNo returns the instantaneous price of the NO outcome. It is always
// the exact complement of PriceYes so that the two prices sum to one by
// construction; it must never be computed independently.
func PriceNo(qYes, qNo, b float64) float64 {
	return 1.0 - PriceYes(qYes, qNo, b)
}

// InitialQValues returns the starting (qYes, qNo) for a market opened at
// probability pYes with the given subsidy. Shifting both quantities by the
// subsidy scales both exponentials in the price ratio by the same factor,
// so the starting price is untouched while Cost rises by exactly the
// subsidy; that is how the creator's seed funds the market maker.
func InitialQValues(pYes, subsidy, b float64) (float64, float64, error) {
	if !(pYes > 0 && pYes < 1) {
		return 0, 0, ErrInvalidProbability
	}
	qYes := b*math.Log(pYes) + subsidy
	qNo := b*math.Log(1-pYes) + subsidy
	return qYes, qNo, nil
}

// SolveDelta finds the new (qYes, qNo) such that buying on side moved the
// cost function up by exactly amount, holding the other side's quantity
// fixed. There is no closed-form inverse for an added amount, but cost is
// monotonic in the moved side's delta, so bisection is correct: bracket
// [0, 50b], double the upper bound while it still undershoots the target
// (ErrBracketingFailed past 1e9), then bisect until |cost - target| <
// Tolerance (ErrDidNotConverge after the iteration budget).
//
// The routine is pure and stateless: the same call sizes live trades,
// replays historical trades for odds curves, and prices previews.
func SolveDelta(amount float64, side models.Side, qYes, qNo, b float64) (float64, float64, error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}

	target := Cost(qYes, qNo, b) + amount

	costAt := func(delta float64) float64 {
		if side == models.SideYes {
			return Cost(qYes+delta, qNo, b)
		}
		return Cost(qYes, qNo+delta, b)
	}

	low, high := 0.0, 50*b
	for costAt(high) < target {
		high *= 2
		if high > bracketCeil {
			return 0, 0, ErrBracketingFailed
		}
	}

	for i := 0; i < maxIterations; i++ {
		mid := (low + high) / 2
		current := costAt(mid)
		if math.Abs(current-target) < Tolerance {
			if side == models.SideYes {
				return qYes + mid, qNo, nil
			}
			return qYes, qNo + mid, nil
		}
		if current < target {
			low = mid
		} else {
			high = mid
		}
	}
	return 0, 0, ErrDidNotConverge
}
