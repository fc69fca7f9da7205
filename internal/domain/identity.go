package domain

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Identity is the authenticated principal as asserted by the external
// identity provider. It is threaded explicitly into services, never read
// from ambient state.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}
