package domain

import "errors"

var (
	// ErrInvalidQuantity is returned when the requested batch size is <= 0 or above the cap.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidOptions is returned for generation options that cannot be satisfied at all.
	ErrInvalidOptions = errors.New("invalid generation options")
	// ErrStoreUnavailable is returned when the historical dataset is not loaded.
	ErrStoreUnavailable = errors.New("historical draw store unavailable")
	// ErrGenerationExhausted is returned when a slot runs out of attempts.
	ErrGenerationExhausted = errors.New("generation exhausted")
	// ErrOutOfRange is returned for numbers outside [1,60].
	ErrOutOfRange = errors.New("number out of range")
	ErrInvalidDraw = errors.New("invalid draw")
	ErrNotFound    = errors.New("not found")
)
