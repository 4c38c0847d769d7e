package goals

const (
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusInProgress      = "in_progress"
	StatusCompleted       = "completed"
)

// MaxTotalWeightage is the per-(employee, cycle) budget across non-deleted
// goals.
const MaxTotalWeightage = 100.0

const (
	MinRating = 1
	MaxRating = 5
)
