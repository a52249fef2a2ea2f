package password

import "github.com/cockroachdb/errors"

var (
	// ErrExceedsTotalLength is returned when the number of digits and symbols
	// is greater than the total length.
	ErrExceedsTotalLength = errors.New("number of digits and symbols must be less than total length")

	// ErrLettersExceedsAvailable is returned when the number of letters exceeds
	// the number of available letters and repeats are not allowed.
	ErrLettersExceedsAvailable = errors.New("number of letters exceeds available letters and repeats are not allowed")

	// ErrDigitsExceedsAvailable is returned when the number of digits exceeds
	// the number of available digits and repeats are not allowed.
	ErrDigitsExceedsAvailable = errors.New("number of digits exceeds available digits and repeats are not allowed")

	// ErrSymbolsExceedsAvailable is returned when the number of symbols exceeds
	// the number of available symbols and repeats are not allowed.
	ErrSymbolsExceedsAvailable = errors.New("number of symbols exceeds available symbols and repeats are not allowed")

	// ErrNegativeCount is returned when a length or count is negative.
	ErrNegativeCount = errors.New("length and counts must not be negative")

	// ErrInvalidPool is returned when a custom pool is not valid UTF-8.
	ErrInvalidPool = errors.New("character pool is not valid utf-8")

	// ErrEntropy marks failures of the underlying random source.
	ErrEntropy = errors.New("random source failed")

	// ErrRange is returned when a random range cannot be represented.
	ErrRange = errors.New("random range could not be represented")
)

// entropyError reports a random source failure. It matches ErrEntropy and
// unwraps to the underlying cause.
type entropyError struct {
	cause error
}

func (e *entropyError) Error() string {
	return ErrEntropy.Error() + ": " + e.cause.Error()
}

func (e *entropyError) Is(target error) bool {
	return target == ErrEntropy
}

func (e *entropyError) Unwrap() error {
	return e.cause
}
