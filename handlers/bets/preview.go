package bets

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/handlers/math/probabilities/lmsr"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

// Preview is "what would a unit stake pay right now" for one side.
type Preview struct {
	Payout      float64 `json:"payout"`
	Probability float64 `json:"probability"`
}

// ComputePreview runs the trade sizer against current state without
// committing anything: the shares a unit stake would grant and the
// probability of the chosen side after that trade.
func ComputePreview(market *models.Market, side models.Side, stake float64) (Preview, error) {
	newQYes, newQNo, err := lmsr.SolveDelta(stake, side, market.QYes, market.QNo, market.LiquidityB)
	if err != nil {
		return Preview{}, err
	}
	priceYes := lmsr.PriceYes(newQYes, newQNo, market.LiquidityB)
	if side == models.SideYes {
		return Preview{Payout: newQYes - market.QYes, Probability: priceYes}, nil
	}
	return Preview{Payout: newQNo - market.QNo, Probability: 1 - priceYes}, nil
}

// PreviewHandler handles GET /v0/markets/{id}/preview?side=YES.
func PreviewHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := parseMarketID(r)
		if err != nil {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		side, err := models.ParseSide(r.URL.Query().Get("side"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var market models.Market
		if err := db.First(&market, marketID).Error; err != nil {
			http.Error(w, "Market not found", util.HTTPStatus(err))
			return
		}

		preview, err := ComputePreview(&market, side, cfg.Economics.UnitStake)
		if err != nil {
			http.Error(w, "Trade sizing failed", util.HTTPStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(preview)
	}
}
