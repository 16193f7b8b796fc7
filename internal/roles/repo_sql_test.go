package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

func TestListRolesQueryUsesOffsetPaging(t *testing.T) {
	query, args, err := listRolesQuery(shared.PageRequest{Page: 3, ResultsPerPage: 10}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, is_active, created_at, updated_at FROM roles ORDER BY id LIMIT 10 OFFSET 20", query)
	assert.Empty(t, args)
}

func TestListRolesQueryClampsOverflowingOffset(t *testing.T) {
	query, _, err := listRolesQuery(shared.PageRequest{Page: 4611686018427387905, ResultsPerPage: 2}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, is_active, created_at, updated_at FROM roles ORDER BY id LIMIT 2 OFFSET 9223372036854775807", query)
}
