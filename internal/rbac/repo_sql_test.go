package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

func TestListPermissionsQueryFiltersByRole(t *testing.T) {
	roleID := int64(2)
	query, args, err := listPermissionsQuery(Filter{RoleID: &roleID}, shared.PageRequest{Page: 1, ResultsPerPage: 10}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, role_id, main_module, module_name, view_access, create_access, update_access, delete_access "+
		"FROM role_permissions WHERE role_id = $1 ORDER BY id LIMIT 10 OFFSET 0", query)
	assert.Equal(t, []any{int64(2)}, args)
}

func TestListPermissionsQueryWithoutFilter(t *testing.T) {
	query, args, err := listPermissionsQuery(Filter{}, shared.PageRequest{Page: 2, ResultsPerPage: 4}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "LIMIT 4 OFFSET 4")
	assert.Empty(t, args)
}
