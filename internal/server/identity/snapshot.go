// Package identity holds the denormalized identity snapshot handed to
// authorization checks on every request, and its Redis-backed cache.
package identity

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Snapshot is a point-in-time denormalization of a user record, cached per
// username. It can go stale if the source row changes after caching;
// staleness is bounded by the cache TTL, there is no proactive invalidation.
type Snapshot struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the snapshot carries the admin role.
func (s *Snapshot) IsAdmin() bool {
	return s.Role == RoleAdmin
}
