package users

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

// DepositRequest is the admin request body for topping up an account.
type DepositRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// Deposit credits an account and records the grant in the ledger.
func Deposit(db *gorm.DB, userID uint, amount float64) (*models.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}
		return models.AddLedgerEntry(tx, user.ID, nil, amount,
			models.LedgerStartingBalance, "Manual top-up")
	})
	if err != nil {
		return nil, err
	}
	user.Balance += amount
	return &user, nil
}

// DepositHandler handles POST /v0/users/{id}/deposit (admin only).
func DepositHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httpErr := middleware.ValidateAdmin(r, cfg); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		userID, err := ParseUserID(r)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}

		var req DepositRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}

		user, err := Deposit(db, userID, req.Amount)
		if err != nil {
			http.Error(w, err.Error(), util.HTTPStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user.ToPublic())
	}
}
