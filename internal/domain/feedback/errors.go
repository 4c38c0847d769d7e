package feedback

import "errors"

var (
	// ErrSelfReview rejects feedback aimed at the reviewer themselves.
	ErrSelfReview = errors.New("you cannot submit feedback for yourself")

	// ErrDuplicate means the reviewer already submitted feedback for this
	// employee in the current cycle.
	ErrDuplicate = errors.New("feedback for this employee has already been submitted in this cycle")

	ErrMissingFields = errors.New("recipient and feedback text are required")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
