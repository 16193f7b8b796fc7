package roles

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

type recorderSpy struct {
	entries []activities.Entry
	err     error
}

func (r *recorderSpy) Record(_ context.Context, e activities.Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

type invalidatorSpy struct{ bumps int }

func (i *invalidatorSpy) Bump(context.Context) error {
	i.bumps++
	return nil
}

func newService(t *testing.T, seed []Role) (*Service, *recorderSpy, *invalidatorSpy) {
	t.Helper()
	rec := &recorderSpy{}
	inv := &invalidatorSpy{}
	return NewService(NewMemoryRepository(seed), rec, inv, nil), rec, inv
}

func manyRoles(n int) []Role {
	out := make([]Role, n)
	for i := range out {
		out[i] = Role{ID: int64(i + 1), Name: fmt.Sprintf("Role %02d", i+1), IsActive: true}
	}
	return out
}

func TestListThirdPageOfTwentyFive(t *testing.T) {
	svc, _, _ := newService(t, manyRoles(25))
	page, err := svc.List(context.Background(), shared.PageRequest{Page: 3, ResultsPerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	require.Len(t, page.Results, 5)
	assert.Equal(t, int64(21), page.Results[0].ID)
	assert.Equal(t, int64(25), page.Results[4].ID)
}

func TestListPastEndIsEmpty(t *testing.T) {
	svc, _, _ := newService(t, Fixtures())
	page, err := svc.List(context.Background(), shared.PageRequest{Page: 9, ResultsPerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Equal(t, 3, page.Total)
}

func TestCreateRecordsActivityAndBumpsCache(t *testing.T) {
	svc, rec, inv := newService(t, Fixtures())
	ctx := shared.ContextWithActor(context.Background(), "John Doe")

	role, err := svc.Create(ctx, RoleInput{Name: "  QA "})
	require.NoError(t, err)
	assert.Equal(t, int64(4), role.ID)
	assert.Equal(t, "QA", role.Name)
	assert.True(t, role.IsActive)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "Role created: QA", rec.entries[0].Action)
	assert.Equal(t, "John Doe", rec.entries[0].User)
	assert.Equal(t, 1, inv.bumps)

	page, err := svc.List(ctx, shared.PageRequest{Page: 1, ResultsPerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, "QA", page.Results[3].Name)
}

func TestCreateValidation(t *testing.T) {
	svc, rec, _ := newService(t, Fixtures())
	_, err := svc.Create(context.Background(), RoleInput{Name: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Empty(t, rec.entries)
}

func TestCreateDuplicateName(t *testing.T) {
	svc, _, _ := newService(t, Fixtures())
	_, err := svc.Create(context.Background(), RoleInput{Name: "admin"})
	assert.True(t, errors.Is(err, shared.ErrDuplicate))
}

func TestUpdateKeepsIDAndTogglesActive(t *testing.T) {
	svc, rec, _ := newService(t, Fixtures())
	inactive := false
	role, err := svc.Update(context.Background(), 2, RoleInput{Name: "Author", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, int64(2), role.ID)
	assert.Equal(t, "Author", role.Name)
	assert.False(t, role.IsActive)
	assert.Equal(t, "Role updated: Author", rec.entries[0].Action)

	count, err := svc.ActiveCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpdateMissingRole(t *testing.T) {
	svc, _, _ := newService(t, Fixtures())
	_, err := svc.Update(context.Background(), 99, RoleInput{Name: "Ghost"})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestDeleteRunsHooks(t *testing.T) {
	svc, rec, _ := newService(t, Fixtures())
	var seen []int64
	svc.OnDelete(func(_ context.Context, roleID int64) error {
		seen = append(seen, roleID)
		return nil
	})

	require.NoError(t, svc.Delete(context.Background(), 3))
	assert.Equal(t, []int64{3}, seen)
	assert.Equal(t, "Role deleted: Viewer", rec.entries[0].Action)

	_, err := svc.Get(context.Background(), 3)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestDeleteKeepsRoleWhenHookFails(t *testing.T) {
	svc, rec, inv := newService(t, Fixtures())
	ctx := context.Background()
	fail := true
	svc.OnDelete(func(ctx context.Context, roleID int64) error {
		_, err := svc.Get(ctx, roleID)
		require.NoError(t, err)
		if fail {
			return errors.New("users store down")
		}
		return nil
	})

	require.Error(t, svc.Delete(ctx, 2))
	role, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Editor", role.Name)
	assert.Empty(t, rec.entries)
	assert.Zero(t, inv.bumps)

	fail = false
	require.NoError(t, svc.Delete(ctx, 2))
	_, err = svc.Get(ctx, 2)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "Role deleted: Editor", rec.entries[0].Action)
}

func TestActivityFailureDoesNotFailWrite(t *testing.T) {
	svc, rec, _ := newService(t, Fixtures())
	rec.err = errors.New("queue down")
	_, err := svc.Create(context.Background(), RoleInput{Name: "QA"})
	assert.NoError(t, err)
}
