package change

import "errors"

var (
	// ErrNoDenominations is returned when no denomination slots are provided.
	ErrNoDenominations = errors.New("at least one denomination is required")
	// ErrInvalidDenomination is returned when a denomination value is not positive.
	ErrInvalidDenomination = errors.New("denomination value must be a positive integer")
	// ErrNegativeCount is returned when a slot reports fewer than zero pieces on hand.
	ErrNegativeCount = errors.New("denomination count must be a non-negative integer")
	// ErrDuplicateDenomination is returned when two slots share the same value.
	ErrDuplicateDenomination = errors.New("duplicate denomination value")
	// ErrTooManyDenominations is returned when more than MaxDenominations slots are provided.
	ErrTooManyDenominations = errors.New("too many denominations")
	// ErrAmountTooLarge is returned when the exhaustive strategy is asked for more than its configured limit.
	ErrAmountTooLarge = errors.New("amount exceeds the exhaustive search limit")
)
