package constants

// Role is the role claim carried by bearer tokens
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

func (r Role) String() string { return string(r) }

// Valid reports whether r is a role tokens may be issued for
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator:
		return true
	}
	return false
}
