package models

import "errors"

// Domain error kinds shared by the store, fetcher and analysis layers.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrPriceUnavailable   = errors.New("price unavailable")
	ErrInsufficientAssets = errors.New("insufficient assets")
	ErrProviderError      = errors.New("provider error")
)
