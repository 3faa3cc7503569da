package errs

import "errors"

// Domain-specific sentinel errors shared across the usecase layers.
// Handlers translate these to HTTP statuses:
// not-found -> 404, conflict -> 409, forbidden -> 403, the rest -> 400/422.
var (
	// Booking errors
	ErrBookingNotFound    = errors.New("booking not found")
	ErrSlotConflict       = errors.New("slot conflict")
	ErrInvalidTransition  = errors.New("invalid booking transition")
	ErrCancelCutoffPassed = errors.New("cancel cutoff passed")
	ErrSessionNotEnded    = errors.New("session not ended")

	// Escrow errors
	ErrEscrowNotFound      = errors.New("escrow not found")
	ErrEscrowNotHeld       = errors.New("escrow is not held")
	ErrInsufficientCredits = errors.New("insufficient credits")

	// Catalog errors
	ErrSkillNotFound = errors.New("skill not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user inactive")

	// Authorization errors
	ErrNotAuthorizedParty = errors.New("caller is not an authorized party")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
