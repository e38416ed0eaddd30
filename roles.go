package session

// Role is the closed set of roles the HCAS backend issues. Consumers should
// never compare raw strings; use the capability helpers instead.
type Role string

const (
	// RolePatient is the self-service role assigned on registration
	RolePatient Role = "patient"
	// RoleStaff is a health-center staff member (doctors, nurses, lab)
	RoleStaff Role = "staff"
	// RoleAdmin is an administrator of the whole center
	RoleAdmin Role = "admin"
)

// RoleChecker defines the interface for role-based access decisions
type RoleChecker interface {
	// HasRole checks if the user holds a specific role
	HasRole(role Role) bool

	// IsAtLeast checks if the user's role is at least the minimum required role
	IsAtLeast(minRole Role) bool
}

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanViewDashboard checks if this role can open the dashboard shell
func (r Role) CanViewDashboard() bool {
	return r.IsValid()
}

// CanManagePatients checks if this role can browse and edit patient files
func (r Role) CanManagePatients() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanManageAppointments checks if this role can approve or reject appointments
func (r Role) CanManageAppointments() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanViewRecords checks if this role can open medical records. Patients see
// their own; staff and admins see the files they handle.
func (r Role) CanViewRecords() bool {
	return r.IsValid()
}

// CanManageStaff checks if this role can administer staff accounts and departments
func (r Role) CanManageStaff() bool {
	return r == RoleAdmin
}

// IsAtLeast checks if this role meets the minimum required level
func (r Role) IsAtLeast(minRole Role) bool {
	roleHierarchy := map[Role]int{
		RolePatient: 0,
		RoleStaff:   1,
		RoleAdmin:   2,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// OneOf checks membership against a route's allowed role list. An empty list
// means any valid role is accepted.
func (r Role) OneOf(allowed ...Role) bool {
	if len(allowed) == 0 {
		return r.IsValid()
	}
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []Role {
	return []Role{
		RolePatient,
		RoleStaff,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
