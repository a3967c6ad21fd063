package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrFreeLimitExceeded   = errors.New("free limit exceeded")
	ErrBudgetExceeded      = errors.New("budget exceeded")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrNoImageReturned     = errors.New("no image returned")
	ErrNotConfigured       = errors.New("provider not configured")
	ErrProviderFailure     = errors.New("provider failure")
)
