package cycle

import "time"

type Cycle struct {
	CycleID   int64     `json:"cycleId"`
	CycleName string    `json:"cycleName"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}
