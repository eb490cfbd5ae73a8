package markets

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/models"
	"friendsmarket/setup"
)

// ListMarketsHandler handles GET /v0/markets. Soft-deleted markets are
// hidden from listings.
func ListMarketsHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var marketRows []models.Market
		if err := db.Where("is_deleted = ?", false).Order("created_at DESC").Find(&marketRows).Error; err != nil {
			http.Error(w, "Failed to fetch markets", http.StatusInternalServerError)
			return
		}

		reads := make([]MarketRead, 0, len(marketRows))
		for i := range marketRows {
			read, err := BuildMarketRead(db, cfg, &marketRows[i])
			if err != nil {
				http.Error(w, "Failed to read market", http.StatusInternalServerError)
				return
			}
			reads = append(reads, read)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reads)
	}
}
