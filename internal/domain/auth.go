package domain

// Role enumerates account roles.
type Role string

const (
	RoleEngineer Role = "engineer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEngineer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Caller is the resolved identity a request is executed on behalf of.
type Caller struct {
	ID   string
	Role Role
}

// CanManage reports whether the caller may mutate projects and assignments.
func (c Caller) CanManage() bool {
	return c.Role == RoleManager || c.Role == RoleAdmin
}

// IsAdmin reports whether the caller is an administrator.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Owns reports whether the caller is the subject with the given id.
func (c Caller) Owns(id string) bool {
	return c.ID != "" && c.ID == id
}
