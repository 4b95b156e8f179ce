package services

import (
	"errors"

	"investment-tracker/models"
)

var (
	// ErrNotFound means the provider does not know the symbol
	ErrNotFound = errors.New("symbol not found")
	// ErrProvider means the upstream call failed or returned an unusable payload
	ErrProvider = models.ErrProviderError
	// ErrCircuitOpen means the provider's breaker is rejecting calls
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrNotConfigured means a required credential is missing
	ErrNotConfigured = errors.New("not configured")
)
