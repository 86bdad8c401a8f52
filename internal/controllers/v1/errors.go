package v1

import (
	"errors"
	"net/http"

	"github.com/moneta-app/backend/internal/ledger"
	"github.com/moneta-app/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate HTTP status for an error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) || errors.Is(err, ledger.ErrPersistence) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, ledger.ErrRecordNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

var (
	errStatsTypeInvalid    = errors.New("the type parameter must be one of: income, expense, transfer")
	errStatsPeriodInvalid  = errors.New("the period parameter must be one of: day, week, month, year")
	errBalanceNotPatchable = errors.New("the balance of an account cannot be set directly, record transactions instead")
)
