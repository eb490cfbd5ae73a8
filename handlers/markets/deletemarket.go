package markets

import (
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

// DeleteMarket withdraws a market. Only the creator may do this, and only
// before settlement (OPEN or PENDING).
//
// Two mutually exclusive policies exist, chosen by configuration:
//
//   - "hide": the market is marked CLOSED and soft-deleted. Stakes are not
//     refunded; the market simply disappears from listings.
//   - "refund": every bettor gets their stake back, the creator gets the
//     seed back, and the market is hard-removed together with its bets and
//     market-scoped ledger entries. The removed entries sum to exactly the
//     restored balances, so every user's ledger still reconciles.
func DeleteMarket(db *gorm.DB, cfg *setup.Config, marketID uint, actorID uint) error {
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
	if market.Status.Terminal() {
		return models.ErrAlreadyResolved
	}

	if cfg.Economics.DeletePolicy == setup.DeletePolicyRefund {
		return hardDeleteWithRefunds(db, &market)
	}

	return db.Model(&models.Market{}).Where("id = ?", market.ID).Updates(map[string]interface{}{
		"status":     models.StatusClosed,
		"is_deleted": true,
	}).Error
}

func hardDeleteWithRefunds(db *gorm.DB, market *models.Market) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var betRows []models.Bet
		if err := tx.Where("market_id = ?", market.ID).Find(&betRows).Error; err != nil {
			return err
		}

		for _, bet := range betRows {
			if err := tx.Model(&models.User{}).Where("id = ?", bet.UserID).
				Update("balance", gorm.Expr("balance + ?", bet.Cost)).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.User{}).Where("id = ?", market.CreatorID).
			Update("balance", gorm.Expr("balance + ?", market.Seed)).Error; err != nil {
			return err
		}

		// The removed market-scoped entries (seed deposit, bet debits) sum
		// to the negatives of the balance restorations above, so ledger
		// sums still equal balances afterwards.
		if err := tx.Unscoped().Where("market_id = ?", market.ID).Delete(&models.LedgerEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("market_id = ?", market.ID).Delete(&models.Bet{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Market{}, market.ID).Error
	})
}

// DeleteMarketHandler handles DELETE /v0/markets/{id}.
func DeleteMarketHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
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
		if err := DeleteMarket(db, cfg, marketID, user.ID); err != nil {
			http.Error(w, err.Error(), util.HTTPStatus(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
