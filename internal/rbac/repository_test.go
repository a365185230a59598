package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldGrants(t *testing.T) {
	perm := func(s string) *string { return &s }

	t.Run("rows of one role collapse", func(t *testing.T) {
		grants := foldGrants([]grantRow{
			{role: "staff", perm: perm("client:read")},
			{role: "staff", perm: perm("contract:read")},
			{role: "auditor", perm: perm("audit:read")},
		})
		require.Equal(t, []RoleGrant{
			{Role: "staff", Permissions: []string{"client:read", "contract:read"}},
			{Role: "auditor", Permissions: []string{"audit:read"}},
		}, grants)
	})

	t.Run("role without permissions", func(t *testing.T) {
		grants := foldGrants([]grantRow{{role: "viewer"}})
		require.Len(t, grants, 1)
		require.NotNil(t, grants[0].Permissions)
		require.Empty(t, grants[0].Permissions)
		require.False(t, Allowed(grants, "client:read", "admin"))
	})

	t.Run("admin role with no permission rows", func(t *testing.T) {
		grants := foldGrants([]grantRow{{role: "admin"}, {role: "staff", perm: perm("client:read")}})
		require.True(t, Allowed(grants, "user:create", "admin"))
	})

	t.Run("no rows", func(t *testing.T) {
		require.Empty(t, foldGrants(nil))
	})
}
