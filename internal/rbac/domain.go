package rbac

// Permission represents an atomic capability such as "user:create".
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleGrant is one role held by a user together with that role's permissions.
type RoleGrant struct {
	Role        string
	Permissions []string
}
