package lmsr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendsmarket/models"
)

func TestCost_EqualQuantities(t *testing.T) {
	// C(q, q) = b*ln(2*exp(q/b)) = q + b*ln(2)
	got := Cost(10, 10, 5)
	assert.InDelta(t, 10+5*math.Log(2), got, 1e-12)
}

func TestCost_SubsidyShiftRaisesCostExactly(t *testing.T) {
	b := 5.0
	base := Cost(2, -3, b)
	shifted := Cost(2+10, -3+10, b)
	assert.InDelta(t, base+10, shifted, 1e-9)
}

func TestPriceYes_EqualQuantitiesIsHalf(t *testing.T) {
	assert.InDelta(t, 0.5, PriceYes(10, 10, 5), 1e-12)
}

func TestPriceYes_PlusPriceNoIsExactlyOne(t *testing.T) {
	// Exact by construction: PriceNo is the complement, not an
	// independent computation.
	cases := [][3]float64{
		{10, 10, 5},
		{37.2, -14.8, 5},
		{1, 250, 50},
		{-200, 113, 7.5},
	}
	for _, c := range cases {
		sum := PriceYes(c[0], c[1], c[2]) + PriceNo(c[0], c[1], c[2])
		assert.Equal(t, 1.0, sum)
	}
}

func TestInitialQValues_RejectsOutOfRangeProbability(t *testing.T) {
	for _, p := range []float64{0, 1, -0.2, 1.5} {
		_, _, err := InitialQValues(p, 10, 5)
		assert.ErrorIs(t, err, ErrInvalidProbability, "p=%v", p)
	}
}

func TestInitialQValues_PriceRoundTrip(t *testing.T) {
	// For every p in (0,1) and any subsidy, the opening price equals p.
	probs := []float64{0.01, 0.1, 0.25, 0.5, 0.7, 0.9, 0.99}
	subsidies := []float64{0, 1, 10, 250}
	bs := []float64{0.5, 5, 50}

	for _, b := range bs {
		for _, s := range subsidies {
			for _, p := range probs {
				qYes, qNo, err := InitialQValues(p, s, b)
				require.NoError(t, err)
				assert.InDelta(t, p, PriceYes(qYes, qNo, b), 1e-9,
					"p=%v s=%v b=%v", p, s, b)
			}
		}
	}
}

func TestInitialQValues_SubsidyFundsCost(t *testing.T) {
	// cost(initial_q(p, s, b)) == cost(initial_q(p, 0, b)) + s
	qYes0, qNo0, err := InitialQValues(0.3, 0, 5)
	require.NoError(t, err)
	qYes, qNo, err := InitialQValues(0.3, 10, 5)
	require.NoError(t, err)
	assert.InDelta(t, Cost(qYes0, qNo0, 5)+10, Cost(qYes, qNo, 5), 1e-9)
}

func TestSolveDelta_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -1} {
		_, _, err := SolveDelta(amount, models.SideYes, 10, 10, 5)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestSolveDelta_CostMovesByExactlyTheAmount(t *testing.T) {
	b := 5.0
	qYes, qNo := 6.5, 8.1
	for _, amount := range []float64{0.25, 1, 7, 42} {
		for _, side := range []models.Side{models.SideYes, models.SideNo} {
			newQYes, newQNo, err := SolveDelta(amount, side, qYes, qNo, b)
			require.NoError(t, err, "amount=%v side=%v", amount, side)
			assert.InDelta(t, Cost(qYes, qNo, b)+amount, Cost(newQYes, newQNo, b), 1e-9)
		}
	}
}

func TestSolveDelta_OnlyChosenSideMoves(t *testing.T) {
	newQYes, newQNo, err := SolveDelta(1, models.SideYes, 10, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, newQNo)
	assert.Greater(t, newQYes, 10.0)

	newQYes, newQNo, err = SolveDelta(1, models.SideNo, 10, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, newQYes)
	assert.Greater(t, newQNo, 10.0)
}

func TestSolveDelta_UnitStakeAtEvenOdds(t *testing.T) {
	// With qYes == qNo the sizer has a closed form:
	// delta = b*ln(2*exp(amount/b) - 1). For b=5 and a unit stake that is
	// about 1.83278, and the post-trade YES price follows from the delta.
	b := 5.0
	qYes, qNo, err := InitialQValues(0.5, 10, b)
	require.NoError(t, err)
	assert.InDelta(t, qYes, qNo, 1e-12)
	assert.InDelta(t, 0.5, PriceYes(qYes, qNo, b), 1e-12)

	newQYes, newQNo, err := SolveDelta(1, models.SideYes, qYes, qNo, b)
	require.NoError(t, err)

	wantDelta := b * math.Log(2*math.Exp(1/b)-1)
	assert.InDelta(t, wantDelta, newQYes-qYes, 1e-6)

	wantPrice := math.Exp(wantDelta/b) / (math.Exp(wantDelta/b) + 1)
	assert.InDelta(t, wantPrice, PriceYes(newQYes, newQNo, b), 1e-6)
}

func TestSolveDelta_ReplayIsDeterministic(t *testing.T) {
	// The sizer is pure: replaying the same sequence from the same
	// starting quantities lands on identical state.
	b := 5.0
	q1Yes, q1No, _ := InitialQValues(0.4, 10, b)
	q2Yes, q2No := q1Yes, q1No

	sides := []models.Side{models.SideYes, models.SideNo, models.SideYes, models.SideYes}
	for _, side := range sides {
		var err error
		q1Yes, q1No, err = SolveDelta(1, side, q1Yes, q1No, b)
		require.NoError(t, err)
		q2Yes, q2No, err = SolveDelta(1, side, q2Yes, q2No, b)
		require.NoError(t, err)
	}
	assert.Equal(t, q1Yes, q2Yes)
	assert.Equal(t, q1No, q2No)
}

func TestSolveDelta_BracketingFailure(t *testing.T) {
	// Pathological liquidity far outside the operating range: the cost
	// curve is so flat that no delta below the expansion ceiling reaches
	// the target, and the sizer must abort instead of looping.
	_, _, err := SolveDelta(2e9, models.SideYes, 0, 0, 1e7)
	assert.ErrorIs(t, err, ErrBracketingFailed)
}
