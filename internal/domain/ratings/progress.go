package ratings

// The six appraisal stages, in order. The numeric prefix keeps clients able
// to sort and match stages without parsing the wording.
const (
	StageGoalsNotSubmitted = "1. goals not yet submitted"
	StageGoalsNotApproved  = "2. goals not yet approved"
	StageAwaitingSelf      = "3. awaiting self-appraisal"
	StageManagerReview     = "4. manager review in progress"
	StageAwaitingFinal     = "5. awaiting final feedback"
	StageCompleted         = "6. completed"
)

// StageLabel projects a status tally onto the single stage the employee's
// appraisal is in. An employee is only as far along as their least advanced
// goal, so earlier stages win.
func StageLabel(c ProgressCounts) string {
	switch {
	case c.TotalGoals == 0:
		return StageGoalsNotSubmitted
	case c.PendingGoals > 0:
		return StageGoalsNotApproved
	case c.ApprovedGoals > 0:
		return StageAwaitingSelf
	case c.InProgressGoals > 0:
		return StageManagerReview
	case c.HasFinalRating:
		return StageCompleted
	default:
		return StageAwaitingFinal
	}
}
