package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/console"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	_ "github.com/odyssey-erp/odyssey-admin/testing"
)

func newEnv(t *testing.T) (*environment, *bytes.Buffer) {
	t.Helper()
	t.Setenv("ODYSSEY_TEST_MODE", "1")
	app.RefreshTestMode()
	params := app.HandlersFor(nil, app.NewMemoryServices(nil))
	params.Config = &app.Config{RateLimitPerMinute: 1000}
	srv := httptest.NewServer(app.NewRouter(params))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	return &environment{
		client: console.NewClient(srv.URL, 5*time.Second),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:    &out,
	}, &out
}

func TestRolesCommandPrintsTable(t *testing.T) {
	env, out := newEnv(t)
	require.NoError(t, run(context.Background(), env, []string{"roles"}))
	assert.Contains(t, out.String(), "Admin")
	assert.Contains(t, out.String(), "Viewer")
	assert.Contains(t, out.String(), "page 1 of 1, 3 total")
}

func TestPermissionsCommandFiltersByRole(t *testing.T) {
	env, out := newEnv(t)
	require.NoError(t, run(context.Background(), env, []string{"permissions", "-role", "2"}))
	assert.Contains(t, out.String(), "2 total")

	err := run(context.Background(), env, []string{"permissions", "-role", "abc"})
	require.ErrorIs(t, err, shared.ErrInvalidRoleID)
}

func TestRoleCreateThenList(t *testing.T) {
	env, out := newEnv(t)
	ctx := context.Background()
	require.NoError(t, run(ctx, env, []string{"-as", "ops", "role-create", "-name", "QA"}))
	out.Reset()
	require.NoError(t, run(ctx, env, []string{"roles"}))
	assert.Contains(t, out.String(), "QA")
}

func TestRoleCreateFailureReturnsAlert(t *testing.T) {
	env, _ := newEnv(t)
	err := run(context.Background(), env, []string{"role-create", "-name", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Save failed")
}

func TestPermissionUpdateNeedsID(t *testing.T) {
	env, _ := newEnv(t)
	err := run(context.Background(), env, []string{"permission-update", "-main", "Content"})
	require.ErrorIs(t, err, errUsage)
}

func TestRoleUpdateKeepsFieldsNotGiven(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()
	require.NoError(t, run(ctx, env, []string{"role-create", "-name", "Legacy", "-inactive"}))

	require.NoError(t, run(ctx, env, []string{"role-update", "-id", "4", "-name", "Legacy2"}))
	role, err := env.client.GetRole(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Legacy2", role.Name)
	assert.False(t, role.IsActive)

	require.NoError(t, run(ctx, env, []string{"role-update", "-id", "4", "-inactive=false"}))
	role, err = env.client.GetRole(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Legacy2", role.Name)
	assert.True(t, role.IsActive)
}

func TestPermissionUpdateKeepsOtherCapabilities(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()
	require.NoError(t, run(ctx, env, []string{"permission-update", "-id", "1", "-view=false"}))

	p, err := env.client.GetPermission(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.RoleID)
	assert.Equal(t, "Dashboard", p.MainModule)
	assert.Equal(t, "Admin Panel", p.ModuleName)
	assert.False(t, p.ViewAccess)
	assert.True(t, p.CreateAccess)
	assert.True(t, p.UpdateAccess)
	assert.True(t, p.DeleteAccess)
}

func TestRoleUpdateUnknownID(t *testing.T) {
	env, _ := newEnv(t)
	err := run(context.Background(), env, []string{"role-update", "-id", "99", "-name", "Ghost"})
	assert.True(t, console.IsStatus(err, http.StatusNotFound))
}

func TestOperatorRoleGatesWrites(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()

	// Viewer holds only view on User Management.
	err := run(ctx, env, []string{"-as-role", "3", "role-create", "-name", "QA"})
	require.ErrorIs(t, err, errForbidden)

	// Editor may create but not update or delete.
	require.NoError(t, run(ctx, env, []string{"-as-role", "2", "role-create", "-name", "QA"}))
	require.ErrorIs(t, run(ctx, env, []string{"-as-role", "2", "role-update", "-id", "4", "-name", "QA2"}), errForbidden)
	require.ErrorIs(t, run(ctx, env, []string{"-as-role", "2", "permission-delete", "-id", "1"}), errForbidden)

	require.NoError(t, run(ctx, env, []string{"-as-role", "1", "role-delete", "-id", "4"}))
}

func TestDashboardCommand(t *testing.T) {
	env, out := newEnv(t)
	require.NoError(t, run(context.Background(), env, []string{"dashboard"}))
	assert.Contains(t, out.String(), "Total users")
	assert.Contains(t, out.String(), "Oct 2023")
}

func TestJobsNeedsRedis(t *testing.T) {
	env, _ := newEnv(t)
	require.ErrorContains(t, run(context.Background(), env, []string{"jobs", "stats"}), "REDIS_ADDR")
}

func TestUnknownCommand(t *testing.T) {
	env, out := newEnv(t)
	require.ErrorIs(t, run(context.Background(), env, []string{"reports"}), errUsage)
	assert.Contains(t, out.String(), "usage:")
}
