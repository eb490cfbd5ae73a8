// Package middleware validates credentials in front of the handlers: JWT
// bearer tokens for users, basic auth for admin endpoints, and a per-user
// rate limit on bet placement.
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"friendsmarket/models"
	"friendsmarket/setup"
)

// HTTPError carries a status code alongside a user-safe message.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Claims is the JWT payload for a logged-in user.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

const tokenLifetime = 72 * time.Hour

// IssueToken creates a signed session token for a user.
func IssueToken(user *models.User, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("middleware: JWT secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		Username: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Name,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateTokenAndGetUser resolves the acting user from the Authorization
// header and loads the current account row.
func ValidateTokenAndGetUser(r *http.Request, db *gorm.DB, cfg *setup.Config) (*models.User, *HTTPError) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Bearer token required",
		}
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.Server.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid or expired token",
		}
	}

	var user models.User
	if result := db.Where("name = ?", claims.Username).First(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, &HTTPError{
				StatusCode: http.StatusUnauthorized,
				Message:    "Unknown user",
			}
		}
		return nil, &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Database error validating user",
		}
	}
	return &user, nil
}

// ValidateAdmin checks the request against the configured admin basic-auth
// credentials in constant time.
func ValidateAdmin(r *http.Request, cfg *setup.Config) *HTTPError {
	username, password, ok := r.BasicAuth()
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Admin credentials required",
		}
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Server.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Server.AdminPassword)) == 1
	if !userOK || !passOK {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Admin credentials required",
		}
	}
	return nil
}
