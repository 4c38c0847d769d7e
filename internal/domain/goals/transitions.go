package goals

// Event names an action against a goal's state machine.
type Event string

const (
	EventApprove             Event = "approve"
	EventSubmitSelfAppraisal Event = "submit_self_appraisal"
	EventSubmitReview        Event = "submit_review"
)

// The goal lifecycle is strictly linear:
// pending_approval -> approved -> in_progress -> completed.
// Edit and delete are not transitions; they are only legal while the goal is
// still pending approval.
var transitions = map[Event]struct{ from, to string }{
	EventApprove:             {StatusPendingApproval, StatusApproved},
	EventSubmitSelfAppraisal: {StatusApproved, StatusInProgress},
	EventSubmitReview:        {StatusInProgress, StatusCompleted},
}

// NextStatus returns the status the goal moves to when event fires from
// current, or ErrForbiddenTransition when the event is not legal there.
func NextStatus(current string, event Event) (string, error) {
	t, ok := transitions[event]
	if !ok || t.from != current {
		return "", ErrForbiddenTransition
	}
	return t.to, nil
}

// Mutable reports whether the employee may still edit or delete the goal.
func Mutable(status string) bool {
	return status == StatusPendingApproval
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

func ValidWeightage(weightage float64) bool {
	return weightage > 0 && weightage <= MaxTotalWeightage
}
