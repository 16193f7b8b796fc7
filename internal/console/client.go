// Package console drives the admin API from a terminal: an HTTP client plus
// page-view state holders for lists, create/edit forms and the dashboard.
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

// ActorHeader names the operator on write requests.
const ActorHeader = "X-Admin-User"

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the admin API.
type Client struct {
	baseURL    string
	actor      string
	httpClient *http.Client
}

// NewClient constructs a client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithActor returns a copy that labels writes with actor.
func (c *Client) WithActor(actor string) *Client {
	cp := *c
	cp.actor = actor
	return &cp
}

// ListUsers fetches one page of users.
func (c *Client) ListUsers(ctx context.Context, page shared.PageRequest) (shared.Page[users.User], error) {
	var out shared.Page[users.User]
	err := c.do(ctx, http.MethodGet, "/api/users", page.Query(), nil, &out)
	return out, err
}

// ListRoles fetches one page of roles.
func (c *Client) ListRoles(ctx context.Context, page shared.PageRequest) (shared.Page[roles.Role], error) {
	var out shared.Page[roles.Role]
	err := c.do(ctx, http.MethodGet, "/api/roles", page.Query(), nil, &out)
	return out, err
}

// AllRoles walks every roles page.
func (c *Client) AllRoles(ctx context.Context) ([]roles.Role, error) {
	req := shared.PageRequest{Page: 1, ResultsPerPage: 100}
	var all []roles.Role
	for {
		page, err := c.ListRoles(ctx, req)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if len(page.Results) == 0 || len(all) >= page.Total {
			return all, nil
		}
		req.Page++
	}
}

// GetRole fetches a single role.
func (c *Client) GetRole(ctx context.Context, id int64) (roles.Role, error) {
	var out roles.Role
	err := c.do(ctx, http.MethodGet, "/api/roles/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

// ListRolePermissions fetches one page of permissions, optionally for a single role.
func (c *Client) ListRolePermissions(ctx context.Context, page shared.PageRequest, roleID *int64) (shared.Page[rbac.RolePermission], error) {
	q := page.Query()
	if roleID != nil {
		q.Set("roleId", strconv.FormatInt(*roleID, 10))
	}
	var out shared.Page[rbac.RolePermission]
	err := c.do(ctx, http.MethodGet, "/api/role_permissions", q, nil, &out)
	return out, err
}

// GetPermission fetches a single role permission.
func (c *Client) GetPermission(ctx context.Context, id int64) (rbac.RolePermission, error) {
	var out rbac.RolePermission
	err := c.do(ctx, http.MethodGet, "/api/role_permissions/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

// CheckAccess asks whether roleID holds capability on module.
func (c *Client) CheckAccess(ctx context.Context, roleID int64, module string, capability rbac.Capability) (rbac.AccessCheck, error) {
	q := url.Values{}
	q.Set("roleId", strconv.FormatInt(roleID, 10))
	q.Set("module", module)
	q.Set("capability", string(capability))
	var out rbac.AccessCheck
	err := c.do(ctx, http.MethodGet, "/api/role_permissions/check", q, nil, &out)
	return out, err
}

// Metrics fetches the headline counters.
func (c *Client) Metrics(ctx context.Context) (dashboard.Metrics, error) {
	var out dashboard.Metrics
	err := c.do(ctx, http.MethodGet, "/api/metrics", nil, nil, &out)
	return out, err
}

// Activities fetches the full activity log.
func (c *Client) Activities(ctx context.Context) ([]activities.Activity, error) {
	var out []activities.Activity
	err := c.do(ctx, http.MethodGet, "/api/activities", nil, nil, &out)
	return out, err
}

// CreateRole creates a role.
func (c *Client) CreateRole(ctx context.Context, in roles.RoleInput) (roles.Role, error) {
	var out roles.Role
	err := c.do(ctx, http.MethodPost, "/api/roles", nil, in, &out)
	return out, err
}

// UpdateRole replaces a role's attributes.
func (c *Client) UpdateRole(ctx context.Context, id int64, in roles.RoleInput) (roles.Role, error) {
	var out roles.Role
	err := c.do(ctx, http.MethodPut, "/api/roles/"+strconv.FormatInt(id, 10), nil, in, &out)
	return out, err
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/roles/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// CreatePermission creates a role permission.
func (c *Client) CreatePermission(ctx context.Context, in rbac.PermissionInput) (rbac.RolePermission, error) {
	var out rbac.RolePermission
	err := c.do(ctx, http.MethodPost, "/api/role_permissions", nil, in, &out)
	return out, err
}

// UpdatePermission replaces a role permission.
func (c *Client) UpdatePermission(ctx context.Context, id int64, in rbac.PermissionInput) (rbac.RolePermission, error) {
	var out rbac.RolePermission
	err := c.do(ctx, http.MethodPut, "/api/role_permissions/"+strconv.FormatInt(id, 10), nil, in, &out)
	return out, err
}

// DeletePermission removes a role permission.
func (c *Client) DeletePermission(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/role_permissions/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actor != "" {
		req.Header.Set(ActorHeader, c.actor)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body struct {
		httpx.ProblemDetail
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return apiErr
	}
	switch {
	case body.Error != "":
		apiErr.Message = body.Error
	case body.Detail != "":
		apiErr.Message = body.Detail
	case body.Title != "":
		apiErr.Message = body.Title
	}
	return apiErr
}
