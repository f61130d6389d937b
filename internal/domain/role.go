// internal/domain/role.go
package domain

// Role is the job function an identity provider asserts for a user.
type Role string

const (
	RoleTechnician           Role = "Technician"
	RoleOperator             Role = "Operator"
	RoleForeman              Role = "Foreman"
	RoleStorekeeper          Role = "Storekeeper"
	RoleSecurity             Role = "Security"
	RoleProductionSupervisor Role = "Production Supervisor"
	RoleManagement           Role = "Management"
	RoleAdmin                Role = "Admin"
)

var roles = []Role{
	RoleTechnician,
	RoleOperator,
	RoleForeman,
	RoleStorekeeper,
	RoleSecurity,
	RoleProductionSupervisor,
	RoleManagement,
	RoleAdmin,
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// CanReverse reports whether the role may void ledger entries.
func (r Role) CanReverse() bool {
	return r == RoleAdmin || r == RoleManagement || r == RoleProductionSupervisor
}

// CanEditMasterData reports whether the role may change the registry.
func (r Role) CanEditMasterData() bool {
	return r == RoleAdmin || r == RoleManagement
}
