package goals

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("goal not found")

	// ErrForbiddenTransition covers both state-machine guard failures and
	// ownership mismatches; it surfaces as an authorization failure, not a
	// server error.
	ErrForbiddenTransition = errors.New("action not allowed in the goal's current state")

	ErrMissingFields    = errors.New("required goal fields are missing")
	ErrInvalidWeightage = errors.New("goal weightage must be greater than 0 and at most 100")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrFeedbackRequired = errors.New("feedback is required")
	ErrCommentsRequired = errors.New("self-appraisal comments are required")
)

// WeightageExceededError rejects a create or update that would push the
// employee's total past 100%. Remaining is the budget still available.
type WeightageExceededError struct {
	Remaining float64
}

func (e WeightageExceededError) Error() string {
	return fmt.Sprintf("total weightage exceeds 100%%; remaining available weight is %.2f%%", e.Remaining)
}
