package core

// Role ids are fixed by the seed and referenced by the 360 peer-exclusion
// rule, so they are constants rather than lookups.
const (
	RoleSystemAdmin int64 = 1
	RoleHR          int64 = 2
	RoleManager     int64 = 3
	RoleEmployee    int64 = 4
)

// PeerExcludedRoles are never offered as 360 review subjects.
var PeerExcludedRoles = []int64{RoleSystemAdmin, RoleHR, RoleManager}
