package role

// Role is a member's rank within a single store. The three values form a
// strict total order: OWNER > EDITOR > VIEWER. The string values are a wire
// contract with the membership-management UI and the database column.
type Role string

const (
	Owner  Role = "OWNER"
	Editor Role = "EDITOR"
	Viewer Role = "VIEWER"
)

var rank = map[Role]int{
	Owner:  3,
	Editor: 2,
	Viewer: 1,
}

// AtLeast reports whether actual ranks at or above required. An unknown role
// ranks below every defined role.
func AtLeast(required, actual Role) bool {
	return rank[actual] >= rank[required]
}

// Valid reports whether r is one of the three defined roles.
func Valid(r Role) bool {
	_, ok := rank[r]
	return ok
}
