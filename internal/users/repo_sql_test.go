package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

func TestListUsersQueryExcludesDeleted(t *testing.T) {
	query, args, err := listUsersQuery(shared.PageRequest{Page: 2, ResultsPerPage: 5}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "FROM users WHERE deleted_at IS NULL ORDER BY id LIMIT 5 OFFSET 5")
	assert.Empty(t, args)
}
