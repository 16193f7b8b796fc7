package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

func newServices(t *testing.T) (*Service, *roles.Service) {
	t.Helper()
	roleSvc := roles.NewService(roles.NewMemoryRepository(roles.Fixtures()), nil, nil, nil)
	svc := NewService(NewMemoryRepository(Fixtures()), roleSvc, nil, nil)
	return svc, roleSvc
}

func ptr[T any](v T) *T { return &v }

func TestParseRoleFilter(t *testing.T) {
	id, err := ParseRoleFilter("")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = ParseRoleFilter("2")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(2), *id)

	_, err = ParseRoleFilter("abc")
	require.ErrorIs(t, err, shared.ErrInvalidRoleID)

	// trailing garbage is rejected rather than read as a numeric prefix
	for _, raw := range []string{"2abc", "2.5", "0x2", "2 3"} {
		_, err = ParseRoleFilter(raw)
		require.ErrorIsf(t, err, shared.ErrInvalidRoleID, "roleId=%q", raw)
	}
}

func TestListFilteredTotalCountsOnlyMatches(t *testing.T) {
	svc, _ := newServices(t)
	page, err := svc.List(context.Background(), Filter{RoleID: ptr(int64(2))}, shared.PageRequest{Page: 1, ResultsPerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 2)
	for _, p := range page.Results {
		assert.Equal(t, int64(2), p.RoleID)
	}

	page, err = svc.List(context.Background(), Filter{}, shared.PageRequest{Page: 2, ResultsPerPage: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Results, 2)
}

func TestCreateRequiresExistingRole(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, PermissionInput{RoleID: 9, MainModule: "Reports", ModuleName: "Exports"})
	require.ErrorIs(t, err, shared.ErrUnknownRole)

	_, err = svc.Create(ctx, PermissionInput{RoleID: 3, MainModule: " "})
	require.ErrorIs(t, err, shared.ErrValidation)

	p, err := svc.Create(ctx, PermissionInput{RoleID: 3, MainModule: "Reports", ModuleName: "Exports", ViewAccess: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.False(t, p.CreateAccess)
}

func TestAllows(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	ok, err := svc.Allows(ctx, 1, "users", CapabilityDelete)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Allows(ctx, 2, "Users", CapabilityUpdate)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Allows(ctx, 3, "Dashboard", CapabilityView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Allows(ctx, 3, "Billing", CapabilityView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletingRoleDropsPermissions(t *testing.T) {
	svc, roleSvc := newServices(t)
	ctx := context.Background()
	roleSvc.OnDelete(svc.DeleteByRole)

	require.NoError(t, roleSvc.Delete(ctx, 1))

	page, err := svc.List(ctx, Filter{RoleID: ptr(int64(1))}, shared.PageRequest{Page: 1, ResultsPerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Results)

	page, err = svc.List(ctx, Filter{}, shared.PageRequest{Page: 1, ResultsPerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	p, err := svc.Update(ctx, 5, PermissionInput{RoleID: 3, MainModule: "Dashboard", ModuleName: "Viewer Panel", ViewAccess: true, UpdateAccess: true})
	require.NoError(t, err)
	assert.True(t, p.UpdateAccess)

	require.NoError(t, svc.Delete(ctx, 5))
	_, err = svc.Get(ctx, 5)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, 5), shared.ErrNotFound)
}
