package goals

import "time"

type Goal struct {
	GoalID      int64     `json:"goalId"`
	EmployeeID  int64     `json:"employeeId"`
	CycleID     int64     `json:"cycleId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Weightage   float64   `json:"weightage"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GoalRecord is the transactional view of a goal used by guard checks.
type GoalRecord struct {
	GoalID      int64
	EmployeeID  int64
	CycleID     int64
	Title       string
	Description string
	Weightage   float64
	Status      string
}

// GoalSummary is the employee dashboard row.
type GoalSummary struct {
	GoalID    int64   `json:"goalId"`
	Title     string  `json:"title"`
	Weightage float64 `json:"weightage"`
	Status    string  `json:"status"`
}

// PendingGoal is a manager approval-queue row.
type PendingGoal struct {
	GoalID       int64   `json:"goalId"`
	Title        string  `json:"title"`
	EmployeeName string  `json:"employeeName"`
	Weightage    float64 `json:"weightage"`
}

// ReviewGoal is a goal whose self-appraisal is in and which awaits the
// manager's rating.
type ReviewGoal struct {
	GoalID       int64   `json:"goalId"`
	Title        string  `json:"title"`
	Weightage    float64 `json:"weightage"`
	EmployeeID   int64   `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
}

type TeamMember struct {
	EmployeeID     int64   `json:"employeeId"`
	EmployeeName   string  `json:"employeeName"`
	DepartmentName *string `json:"departmentName"`
}
