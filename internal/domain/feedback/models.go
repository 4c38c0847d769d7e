package feedback

import "time"

type Feedback struct {
	FeedbackID   int64     `json:"feedbackId"`
	EmployeeID   int64     `json:"employeeId"`
	ReviewerID   int64     `json:"reviewerId"`
	ReviewerName string    `json:"reviewerName"`
	CycleID      int64     `json:"cycleId"`
	Rating       int       `json:"rating"`
	Comments     string    `json:"comments"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
