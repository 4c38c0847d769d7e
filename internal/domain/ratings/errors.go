package ratings

import "errors"

var (
	ErrNotFound       = errors.New("final rating not found")
	ErrReportNotFound = errors.New("no appraisal report exists for this employee and cycle")
	ErrMissingFields  = errors.New("required rating fields are missing")
)
