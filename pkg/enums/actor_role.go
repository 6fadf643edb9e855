package enums

// ActorRole determines which lifecycle operations a caller may trigger.
type ActorRole string

const (
	// ActorRoleCrafter may create orders and adjust progress.
	ActorRoleCrafter ActorRole = "crafter"
	// ActorRoleHandler may additionally complete and hand off orders.
	ActorRoleHandler ActorRole = "handler"
	// ActorRoleAdmin may trigger administrative operations like reconciliation.
	ActorRoleAdmin ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	ActorRoleCrafter,
	ActorRoleHandler,
	ActorRoleAdmin,
}

func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if r == candidate {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role grants the permissions of required.
func (r ActorRole) AtLeast(required ActorRole) bool {
	return roleRank(r) >= roleRank(required)
}

func roleRank(r ActorRole) int {
	switch r {
	case ActorRoleCrafter:
		return 1
	case ActorRoleHandler:
		return 2
	case ActorRoleAdmin:
		return 3
	default:
		return 0
	}
}

// ParseActorRole normalizes a raw role string.
func ParseActorRole(value string) (ActorRole, bool) {
	role := ActorRole(value)
	return role, role.IsValid()
}
