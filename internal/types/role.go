package types

// UserRole is the role of an actor within its company.
type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleMember UserRole = "member"
)

func (r UserRole) Validate() bool {
	switch r {
	case RoleOwner, RoleMember:
		return true
	}
	return false
}
