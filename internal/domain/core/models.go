package core

type Role struct {
	RoleID   int64  `json:"roleId"`
	RoleName string `json:"roleName"`
}

type Department struct {
	DepartmentID   int64  `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
}

type EmployeeRef struct {
	EmployeeID   int64  `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
}

type Peer struct {
	EmployeeID   int64  `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	DepartmentID *int64 `json:"departmentId"`
}

// Profile is the manager back-reference shown on the employee dashboard.
type Profile struct {
	ManagerID   *int64  `json:"managerId"`
	ManagerName *string `json:"managerName"`
}

type Account struct {
	EmployeeID   int64
	EmployeeName string
	RoleID       int64
	RoleName     string
	PasswordHash string
}
