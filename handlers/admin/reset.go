// Package adminhandlers holds destructive admin-only maintenance endpoints.
package adminhandlers

import (
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/setup"
)

// ResetHandler handles POST /v0/admin/reset: wipes every table. Intended
// for test and demo environments only.
func ResetHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httpErr := middleware.ValidateAdmin(r, cfg); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, model := range []interface{}{
				&models.LedgerEntry{},
				&models.Bet{},
				&models.Market{},
				&models.User{},
			} {
				if err := tx.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, "Failed to reset state", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
