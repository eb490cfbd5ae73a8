package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/setup"
)

// LoginRequest is the request body for authentication.
type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and the account.
type LoginResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// LoginHandler handles POST /v0/auth/login.
func LoginHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "Name and password are required", http.StatusBadRequest)
			return
		}

		var user models.User
		result := db.Where("LOWER(name) = LOWER(?)", req.Name).First(&user)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				http.Error(w, "Invalid credentials", http.StatusForbidden)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "Invalid credentials", http.StatusForbidden)
			return
		}

		token, err := middleware.IssueToken(&user, cfg.Server.JWTSecret)
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(LoginResponse{Token: token, User: user.ToPublic()})
	}
}
