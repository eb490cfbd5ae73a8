package markets

import (
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

// MarkPending freezes trading on an OPEN market ahead of resolution. Only
// the creator may do this.
func MarkPending(db *gorm.DB, marketID uint, actorID uint) error {
	unlock := util.LockMarket(marketID)
	defer unlock()

	var market models.Market
	if err := db.First(&market, marketID).Error; err != nil {
		return err
	}
	if market.CreatorID != actorID {
		return models.ErrNotCreator
	}
	if market.IsDeleted {
		return models.ErrMarketDeleted
	}
	if market.Status != models.StatusOpen {
		return models.ErrMarketNotOpen
	}

	return db.Model(&models.Market{}).Where("id = ?", market.ID).
		Update("status", models.StatusPending).Error
}

// MarkPendingHandler handles POST /v0/markets/{id}/pending.
func MarkPendingHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, httpErr := middleware.ValidateTokenAndGetUser(r, db, cfg)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		marketID, err := ParseMarketID(r)
		if err != nil {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		if err := MarkPending(db, marketID, user.ID); err != nil {
			http.Error(w, err.Error(), util.HTTPStatus(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
