package cycle

const (
	StatusInactive = "inactive"
	StatusActive   = "active"
	StatusClosed   = "closed"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusInactive, StatusActive, StatusClosed:
		return true
	}
	return false
}
