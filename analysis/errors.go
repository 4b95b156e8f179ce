package analysis

import "investment-tracker/models"

// Error kinds returned by the analysis functions. Callers match them with errors.Is.
var (
	ErrPriceUnavailable   = models.ErrPriceUnavailable
	ErrInsufficientAssets = models.ErrInsufficientAssets
	ErrInvalidInput       = models.ErrInvalidInput
	ErrProviderError      = models.ErrProviderError
)
