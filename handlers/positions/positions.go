// Package positions aggregates a user's bets into per-market holdings.
package positions

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/handlers/users"
	"friendsmarket/models"
	"friendsmarket/util"
)

// Position is a user's aggregate holding on one side of one market.
type Position struct {
	MarketID        uint                `json:"marketId"`
	MarketQuestion  string              `json:"marketQuestion"`
	Side            models.Side         `json:"side"`
	TotalShares     float64             `json:"totalShares"`
	TotalStake      float64             `json:"totalStake"`
	AvgOdds         float64             `json:"avgOdds"`
	PotentialPayout float64             `json:"potentialPayout"`
	MarketStatus    models.MarketStatus `json:"marketStatus"`
	MarketOutcome   models.Outcome      `json:"marketOutcome,omitempty"`
}

// UserPositions folds a user's bets into positions keyed by (market, side).
// While the market is unsettled the potential payout is the share total
// (each share pays one unit on a win); after resolution it is the share
// total on the winning side and zero on the losing one.
func UserPositions(db *gorm.DB, userID uint) ([]Position, error) {
	var betRows []models.Bet
	if err := db.Where("user_id = ?", userID).Order("placed_at").Find(&betRows).Error; err != nil {
		return nil, err
	}

	type key struct {
		marketID uint
		side     models.Side
	}
	byKey := make(map[key]*Position)
	var order []key

	for _, bet := range betRows {
		k := key{bet.MarketID, bet.Side}
		pos, ok := byKey[k]
		if !ok {
			var market models.Market
			if err := db.First(&market, bet.MarketID).Error; err != nil {
				continue
			}
			pos = &Position{
				MarketID:       market.ID,
				MarketQuestion: market.Question,
				Side:           bet.Side,
				MarketStatus:   market.Status,
				MarketOutcome:  market.Outcome,
			}
			byKey[k] = pos
			order = append(order, k)
		}

		pos.TotalShares += bet.Shares
		pos.TotalStake += bet.Cost
		if pos.TotalStake > 0 {
			pos.AvgOdds = pos.TotalShares / pos.TotalStake
		}
		switch pos.MarketStatus {
		case models.StatusResolved, models.StatusInvalid:
			if pos.Side.Matches(pos.MarketOutcome) {
				pos.PotentialPayout = pos.TotalShares
			} else {
				pos.PotentialPayout = 0
			}
		default:
			pos.PotentialPayout = pos.TotalShares
		}
	}

	result := make([]Position, 0, len(order))
	for _, k := range order {
		result = append(result, *byKey[k])
	}
	return result, nil
}

// UserPositionsHandler handles GET /v0/users/{id}/positions.
func UserPositionsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := users.ParseUserID(r)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			http.Error(w, "User not found", util.HTTPStatus(err))
			return
		}

		positions, err := UserPositions(db, userID)
		if err != nil {
			http.Error(w, "Failed to compute positions", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(positions)
	}
}
