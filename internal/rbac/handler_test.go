package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newServices(t)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListByRole(t *testing.T) {
	h := newRouter(t)
	rr := do(t, h, http.MethodGet, "/?roleId=2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	var page shared.Page[RolePermission]
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Editor Panel", page.Results[0].ModuleName)
	assert.Contains(t, body, `"role_id":2`)
}

func TestListInvalidRoleID(t *testing.T) {
	h := newRouter(t)
	rr := do(t, h, http.MethodGet, "/?roleId=abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid roleId parameter"}`, rr.Body.String())
}

func TestCreatePermissionEndpoint(t *testing.T) {
	h := newRouter(t)
	rr := do(t, h, http.MethodPost, "/", `{"role_id":2,"main_module":"Reports","module_name":"Exports","view_access":true}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodPost, "/", `{"role_id":42,"main_module":"Reports","module_name":"Exports"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/?roleId=2", "")
	var page shared.Page[RolePermission]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	assert.Equal(t, 3, page.Total)
}

func TestDeletePermissionEndpoint(t *testing.T) {
	h := newRouter(t)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/1", "").Code)
}

func TestCheckAccessEndpoint(t *testing.T) {
	h := newRouter(t)

	rr := do(t, h, http.MethodGet, "/check?roleId=2&module=users&capability=create", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"role_id":2,"module":"users","capability":"create","allowed":true}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/check?roleId=2&module=User%20Management&capability=Update", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var check AccessCheck
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&check))
	assert.False(t, check.Allowed)
	assert.Equal(t, CapabilityUpdate, check.Capability)

	rr = do(t, h, http.MethodGet, "/check?module=Users&capability=view", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid roleId parameter"}`, rr.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/check?roleId=1&module=Users&capability=own", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/check?roleId=1&capability=view", "").Code)
}
