package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaRoleNamesUniqueIgnoringCase(t *testing.T) {
	raw, err := fs.ReadFile(FS, "00001_schema.sql")
	require.NoError(t, err)
	schema := string(raw)

	assert.Contains(t, schema, "CREATE UNIQUE INDEX roles_name_lower_key ON roles (lower(name));")
	assert.NotContains(t, schema, "name        TEXT        NOT NULL UNIQUE")
}

func TestMigrationsAreOrdered(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for i, name := range names {
		assert.Truef(t, strings.HasPrefix(name, "0000"), "unexpected migration name %s", name)
		if i > 0 {
			assert.Less(t, names[i-1], name)
		}
	}
}
