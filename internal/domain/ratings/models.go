package ratings

import "time"

type FinalRating struct {
	RatingID      int64     `json:"ratingId"`
	EmployeeID    int64     `json:"employeeId"`
	EmployeeName  string    `json:"employeeName"`
	CycleID       int64     `json:"cycleId"`
	WeightedScore float64   `json:"weightedScore"`
	Rank          int       `json:"rank"`
	Comments      *string   `json:"comments"`
	CalculatedAt  time.Time `json:"calculatedAt"`
}

// ReportSummary heads the employee appraisal report.
type ReportSummary struct {
	EmployeeID     int64   `json:"employeeId"`
	EmployeeName   string  `json:"employeeName"`
	DepartmentName *string `json:"departmentName"`
	ManagerName    *string `json:"managerName"`
	CycleName      string  `json:"cycleName"`
	WeightedScore  float64 `json:"weightedScore"`
	Rank           int     `json:"rank"`
}

// ReportGoal is one goal line with the manager's verdict attached.
type ReportGoal struct {
	Title           string  `json:"title"`
	Weightage       float64 `json:"weightage"`
	Status          string  `json:"status"`
	Rating          *int    `json:"rating"`
	ManagerFeedback *string `json:"managerFeedback"`
}

type ReportSelfAppraisal struct {
	GoalTitle   string    `json:"goalTitle"`
	Comments    string    `json:"comments"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type ReportFeedback struct {
	ReviewerName string    `json:"reviewerName"`
	Rating       int       `json:"rating"`
	Comments     string    `json:"comments"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// Report bundles the four result sets of the employee appraisal report.
type Report struct {
	Summary        ReportSummary         `json:"summary"`
	Goals          []ReportGoal          `json:"goals"`
	SelfAppraisals []ReportSelfAppraisal `json:"selfAppraisals"`
	Feedback       []ReportFeedback      `json:"feedback"`
}

// ProgressCounts is the raw status tally the stage projection runs over.
type ProgressCounts struct {
	TotalGoals      int
	PendingGoals    int
	ApprovedGoals   int
	InProgressGoals int
	CompletedGoals  int
	HasFinalRating  bool
}

type Progress struct {
	CycleID int64  `json:"cycleId"`
	Stage   string `json:"stage"`
}
