package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("iqcode invalid or not active")
	ErrSessionInvalid      = errors.New("session invalid or revoked")
	ErrForbidden           = errors.New("operation not allowed for this code")
	ErrCodeNotFound        = errors.New("iqcode not found")
	ErrCodeConflict        = errors.New("iqcode already exists")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrNoUsesRemaining     = errors.New("no one-time uses remaining")
	ErrOTCNotFound         = errors.New("one-time code not found")
	ErrAlreadyUsed         = errors.New("one-time code already used")
	ErrPlafondExhausted    = errors.New("discount plafond exhausted")
	ErrPartnerExcluded     = errors.New("partner excluded")
	ErrAlreadyActivated    = errors.New("recovery already activated")
	ErrNotActivated        = errors.New("recovery not activated")
	ErrRecoveryNotFound    = errors.New("no code matches the recovery data")
	ErrRecoveryPairTaken   = errors.New("recovery data already used by another code")
	ErrRedemptionNotFound  = errors.New("no matching redemption for feedback")
	ErrFeedbackExists      = errors.New("feedback already recorded for this code")
	ErrOfferNotFound       = errors.New("offer not found")
	ErrProfileNotFound     = errors.New("partner profile not found")
	ErrValidation          = errors.New("validation failed")
)

// ValidationError carries a user-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Msg: msg} }
