package auth

const (
	RoleEmployee   = "employee"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

var validRoles = map[string]bool{
	RoleEmployee:   true,
	RoleSupervisor: true,
	RoleAdmin:      true,
}

func ValidRole(name string) bool {
	return validRoles[name]
}

// IsAdministrator reports whether the role carries administrative
// capability, such as managing the blackout calendar or acting on
// requests outside the normal supervisor chain.
func IsAdministrator(roleName string) bool {
	return roleName == RoleAdmin
}
