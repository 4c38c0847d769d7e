package cycle

import "errors"

var (
	ErrNotFound = errors.New("appraisal cycle not found")

	// ErrNoActiveCycle surfaces from almost every operation that needs a
	// working cycle context.
	ErrNoActiveCycle = errors.New("no active appraisal cycle found")

	ErrInvalidStatus = errors.New("invalid cycle status value")
	ErrMissingFields = errors.New("cycle name, start date and end date are required")
)
