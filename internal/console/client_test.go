package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	_ "github.com/odyssey-erp/odyssey-admin/testing"
)

func newAPI(t *testing.T) *Client {
	t.Helper()
	t.Setenv("ODYSSEY_TEST_MODE", "1")
	app.RefreshTestMode()
	params := app.HandlersFor(nil, app.NewMemoryServices(nil))
	params.Config = &app.Config{RateLimitPerMinute: 1000}
	srv := httptest.NewServer(app.NewRouter(params))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestClientListsPermissionsForRole(t *testing.T) {
	c := newAPI(t)
	roleID := int64(2)
	page, err := c.ListRolePermissions(context.Background(), shared.PageRequest{Page: 1, ResultsPerPage: 10}, &roleID)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	for _, p := range page.Results {
		assert.Equal(t, int64(2), p.RoleID)
	}
}

func TestClientCreateRoleRecordsActor(t *testing.T) {
	c := newAPI(t).WithActor("ops")
	ctx := context.Background()
	active := true
	role, err := c.CreateRole(ctx, roles.RoleInput{Name: "QA", IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, "QA", role.Name)

	all, err := c.AllRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	log, err := c.Activities(ctx)
	require.NoError(t, err)
	last := log[len(log)-1]
	assert.Equal(t, "Role created: QA", last.Action)
	assert.Equal(t, "ops", last.User)

	m, err := c.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, m.ActiveRoles)
}

func TestClientReturnsAPIErrors(t *testing.T) {
	c := newAPI(t)
	err := c.DeleteRole(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	_, err = c.CreateRole(context.Background(), roles.RoleInput{Name: ""})
	assert.True(t, IsStatus(err, http.StatusBadRequest))
}

func TestDecodeErrorUsesCompactBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid roleId parameter"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, time.Second).ListRolePermissions(context.Background(), shared.PageRequest{}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid roleId parameter", apiErr.Message)
}
