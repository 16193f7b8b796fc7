package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

func TestComputeMetricsFromFixtures(t *testing.T) {
	m := ComputeMetrics(roles.Fixtures(), users.Fixtures())
	assert.Equal(t, Metrics{TotalUsers: 2, ActiveRoles: 3}, m)
}

func TestComputeMetricsSkipsDeletedAndInactive(t *testing.T) {
	deleted := time.Now()
	us := append(users.Fixtures(), users.User{ID: 3, DeletedAt: &deleted})
	rs := append(roles.Fixtures(), roles.Role{ID: 4, Name: "Guest"})
	assert.Equal(t, Metrics{TotalUsers: 2, ActiveRoles: 3}, ComputeMetrics(rs, us))
}

func TestRoleDistribution(t *testing.T) {
	ds := RoleDistribution(roles.Fixtures(), users.Fixtures())
	assert.Equal(t, []string{"Admin", "Editor", "Viewer"}, ds.Labels)
	assert.Equal(t, []int{1, 1, 0}, ds.Values)
	assert.Equal(t, []string{"hsl(0, 70%, 60%)", "hsl(120, 70%, 60%)", "hsl(240, 70%, 60%)"}, ds.Colors)
	assert.Equal(t, 2, ds.Sum())
}

func TestRoleDistributionSumMatchesAssignedUsers(t *testing.T) {
	us := append(users.Fixtures(),
		users.User{ID: 3, Role: &users.RoleRef{ID: 1}},
		users.User{ID: 4},
	)
	ds := RoleDistribution(roles.Fixtures(), us)
	assigned := 0
	for _, u := range us {
		if u.Role != nil {
			assigned++
		}
	}
	assert.Equal(t, assigned, ds.Sum())
}

func TestActivitySeriesBucketsByMonth(t *testing.T) {
	acts := []activities.Activity{
		{Action: "c", Timestamp: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Action: "a", Timestamp: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Action: "b", Timestamp: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)},
	}
	ds := ActivitySeries(acts)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, ds.Labels)
	assert.Equal(t, []int{2, 0, 1}, ds.Values)
}

func TestActivitySeriesFixturesAndEmpty(t *testing.T) {
	ds := ActivitySeries(activities.Fixtures())
	assert.Equal(t, []string{"Oct 2023"}, ds.Labels)
	assert.Equal(t, []int{2}, ds.Values)

	empty := ActivitySeries(nil)
	assert.NotNil(t, empty.Labels)
	assert.Empty(t, empty.Values)
}

func TestUserStatus(t *testing.T) {
	st := UserStatus(roles.Fixtures(), users.Fixtures())
	assert.Equal(t, []int{1, 0, 0}, st.Active)
	assert.Equal(t, []int{0, 1, 0}, st.Inactive)
}
