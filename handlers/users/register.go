// Package users implements account management around the core: accounts
// hold the mutable balance the engine debits and credits, always paired
// with ledger entries.
package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

var validate = validator.New()

// CreateUserRequest is the admin request body for creating an account.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=4,max=100"`
}

// CreateUser creates an account with the configured starting balance. The
// grant is the only point where money enters the system, and it is recorded
// as a STARTING_BALANCE ledger entry in the same transaction.
func CreateUser(db *gorm.DB, cfg *setup.Config, req CreateUserRequest) (*models.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         req.Name,
		PasswordHash: string(hash),
		Balance:      cfg.Economics.StartingBalance,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return models.AddLedgerEntry(tx, user.ID, nil, cfg.Economics.StartingBalance,
			models.LedgerStartingBalance, "Initial allocation")
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUserHandler handles POST /v0/users (admin only).
func CreateUserHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httpErr := middleware.ValidateAdmin(r, cfg); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		user, err := CreateUser(db, cfg, req)
		if err != nil {
			http.Error(w, err.Error(), util.HTTPStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(user.ToPublic())
	}
}

// ListUsersHandler handles GET /v0/users.
func ListUsersHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userRows []models.User
		if err := db.Order("name").Find(&userRows).Error; err != nil {
			http.Error(w, "Failed to fetch users", http.StatusInternalServerError)
			return
		}
		public := make([]models.UserPublic, 0, len(userRows))
		for i := range userRows {
			public = append(public, userRows[i].ToPublic())
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(public)
	}
}

// GetUserHandler handles GET /v0/users/{id}.
func GetUserHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ParseUserID(r)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			http.Error(w, "User not found", util.HTTPStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user.ToPublic())
	}
}

// ParseUserID extracts the {id} route variable.
func ParseUserID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
