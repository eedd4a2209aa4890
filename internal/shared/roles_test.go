package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	require.True(t, RoleAdmin.Valid())
	require.True(t, RoleManager.Valid())
	require.True(t, RoleCashier.Valid())
	require.False(t, Role("intern").Valid())
	require.False(t, Role("").Valid())
}

func TestRoleSets(t *testing.T) {
	require.True(t, CatalogWriters.Allows(RoleAdmin))
	require.True(t, CatalogWriters.Allows(RoleManager))
	require.False(t, CatalogWriters.Allows(RoleCashier))

	require.True(t, Deleters.Allows(RoleAdmin))
	require.False(t, Deleters.Allows(RoleManager))

	for _, r := range []Role{RoleAdmin, RoleManager, RoleCashier} {
		require.True(t, Sellers.Allows(r))
	}
}
