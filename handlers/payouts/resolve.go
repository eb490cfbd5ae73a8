package payouts

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/handlers/markets"
	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

// ResolutionRequest is the request body for resolving a market.
type ResolutionRequest struct {
	Outcome string `json:"outcome"`
}

// ResolveMarketHandler handles POST /v0/markets/{id}/resolve. Only the
// creator may resolve their market.
func ResolveMarketHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, httpErr := middleware.ValidateTokenAndGetUser(r, db, cfg)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		marketID, err := markets.ParseMarketID(r)
		if err != nil {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		var req ResolutionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		outcome, err := models.ParseOutcome(req.Outcome)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var market models.Market
		if err := db.First(&market, marketID).Error; err != nil {
			http.Error(w, "Market not found", util.HTTPStatus(err))
			return
		}
		if market.CreatorID != user.ID {
			http.Error(w, models.ErrNotCreator.Error(), http.StatusForbidden)
			return
		}

		summary, err := ResolveMarket(db, marketID, outcome)
		if err != nil {
			http.Error(w, err.Error(), util.HTTPStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summary)
	}
}
