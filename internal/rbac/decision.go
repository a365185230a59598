package rbac

// Allowed reports whether the grants satisfy required. A grant whose role name
// equals adminRole satisfies every check; otherwise required must appear verbatim
// in at least one role's permission list.
func Allowed(grants []RoleGrant, required, adminRole string) bool {
	for _, g := range grants {
		if adminRole != "" && g.Role == adminRole {
			return true
		}
	}
	if required == "" {
		return false
	}
	for _, g := range grants {
		for _, p := range g.Permissions {
			if p == required {
				return true
			}
		}
	}
	return false
}

// AllowedAny reports whether any of required is satisfied.
func AllowedAny(grants []RoleGrant, required []string, adminRole string) bool {
	for _, perm := range required {
		if Allowed(grants, perm, adminRole) {
			return true
		}
	}
	return len(required) == 0 && Allowed(grants, "", adminRole)
}
