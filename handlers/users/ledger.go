package users

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/models"
)

// UserLedgerHandler handles GET /v0/users/{id}/ledger: the append-only
// entry log ordered by creation time. Summing the amounts reproduces the
// user's balance.
func UserLedgerHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ParseUserID(r)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}

		var entries []models.LedgerEntry
		if err := db.Where("user_id = ?", userID).Order("created_at").Find(&entries).Error; err != nil {
			http.Error(w, "Failed to fetch ledger", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
