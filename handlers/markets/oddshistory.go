package markets

import (
	"sort"
	"time"

	"friendsmarket/handlers/math/probabilities/lmsr"
	"friendsmarket/models"
)

// OddsPoint is one sample of a market's reconstructed price curve.
type OddsPoint struct {
	Timestamp time.Time    `json:"timestamp"`
	PriceYes  float64      `json:"priceYes"`
	PriceNo   float64      `json:"priceNo"`
	Side      *models.Side `json:"side,omitempty"`
	UserID    *uint        `json:"userId,omitempty"`
}

// ComputeOddsHistory replays every bet in placement order from the
// market's initial quantities, re-running the trade sizer for each stake.
// The first point is the opening price with no side or actor. Because the
// sizer is deterministic, the final replayed state matches the market's
// live quantities.
func ComputeOddsHistory(market *models.Market, betRows []models.Bet) ([]OddsPoint, error) {
	qYes, qNo, err := lmsr.InitialQValues(market.InitialProbYes, market.Seed, market.LiquidityB)
	if err != nil {
		return nil, err
	}

	history := make([]OddsPoint, 0, len(betRows)+1)
	openPrice := lmsr.PriceYes(qYes, qNo, market.LiquidityB)
	history = append(history, OddsPoint{
		Timestamp: market.CreatedAt,
		PriceYes:  openPrice,
		PriceNo:   1 - openPrice,
	})

	ordered := make([]models.Bet, len(betRows))
	copy(ordered, betRows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PlacedAt.Before(ordered[j].PlacedAt)
	})

	for i := range ordered {
		bet := ordered[i]
		qYes, qNo, err = lmsr.SolveDelta(bet.Cost, bet.Side, qYes, qNo, market.LiquidityB)
		if err != nil {
			return nil, err
		}
		price := lmsr.PriceYes(qYes, qNo, market.LiquidityB)
		history = append(history, OddsPoint{
			Timestamp: bet.PlacedAt,
			PriceYes:  price,
			PriceNo:   1 - price,
			Side:      &ordered[i].Side,
			UserID:    &ordered[i].UserID,
		})
	}
	return history, nil
}
