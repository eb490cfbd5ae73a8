package util

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"friendsmarket/handlers/math/probabilities/lmsr"
	"friendsmarket/models"
)

// HTTPStatus maps core error kinds to HTTP status codes at the boundary.
// Business-rule rejections are 4xx and safe to surface verbatim; solver
// exhaustion is internal and reported as 500 so callers can alert on it.
func HTTPStatus(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotCreator):
		return http.StatusForbidden
	case errors.Is(err, models.ErrMarketNotOpen),
		errors.Is(err, models.ErrMarketDeleted),
		errors.Is(err, models.ErrSideSaturated),
		errors.Is(err, models.ErrLossCapExceeded),
		errors.Is(err, models.ErrAlreadyResolved),
		errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrInvalidSide),
		errors.Is(err, models.ErrInvalidOutcome),
		errors.Is(err, lmsr.ErrInvalidProbability),
		errors.Is(err, lmsr.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, lmsr.ErrBracketingFailed),
		errors.Is(err, lmsr.ErrDidNotConverge):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
