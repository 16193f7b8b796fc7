// Package dashboard derives the metrics and chart datasets shown on the admin dashboard.
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

// MonthLayout labels activity buckets.
const MonthLayout = "Jan 2006"

// Metrics is the headline counter pair.
type Metrics struct {
	TotalUsers  int `json:"totalUsers"`
	ActiveRoles int `json:"activeRoles"`
}

// ChartDataset is one labelled series with optional per-point colors.
type ChartDataset struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Colors []string `json:"colors,omitempty"`
}

// Sum adds up the values.
func (d ChartDataset) Sum() int {
	total := 0
	for _, v := range d.Values {
		total += v
	}
	return total
}

// StatusSeries splits users per role into active and inactive counts.
type StatusSeries struct {
	Labels   []string `json:"labels"`
	Active   []int    `json:"active"`
	Inactive []int    `json:"inactive"`
}

// Summary is the cached dashboard payload.
type Summary struct {
	Metrics        Metrics      `json:"metrics"`
	UsersByRole    ChartDataset `json:"usersByRole"`
	ActivityCounts ChartDataset `json:"activityCounts"`
	UserStatus     StatusSeries `json:"userStatus"`
	GeneratedAt    time.Time    `json:"generatedAt"`
}

// ComputeMetrics counts live users and active roles.
func ComputeMetrics(rs []roles.Role, us []users.User) Metrics {
	var m Metrics
	for _, u := range us {
		if !u.Deleted() {
			m.TotalUsers++
		}
	}
	for _, r := range rs {
		if r.IsActive {
			m.ActiveRoles++
		}
	}
	return m
}

// RoleDistribution plots live users per role, one point per role in the given order.
// The values sum to the number of users assigned to one of the roles.
func RoleDistribution(rs []roles.Role, us []users.User) ChartDataset {
	counts := users.CountByRole(us)
	ds := ChartDataset{
		Labels: make([]string, len(rs)),
		Values: make([]int, len(rs)),
		Colors: make([]string, len(rs)),
	}
	for i, r := range rs {
		ds.Labels[i] = r.Name
		ds.Values[i] = counts[r.ID]
		ds.Colors[i] = Color(i, len(rs))
	}
	return ds
}

// Color spreads n hues evenly around the wheel.
func Color(i, n int) string {
	if n <= 0 {
		n = 1
	}
	return fmt.Sprintf("hsl(%d, 70%%, 60%%)", i*360/n)
}

// ActivitySeries buckets activities per calendar month (UTC), chronologically.
// Months without activity between the first and last bucket are reported as zero.
func ActivitySeries(acts []activities.Activity) ChartDataset {
	ds := ChartDataset{Labels: []string{}, Values: []int{}}
	if len(acts) == 0 {
		return ds
	}
	counts := make(map[time.Time]int)
	months := make([]time.Time, 0)
	for _, a := range acts {
		ts := a.Timestamp.UTC()
		month := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
		if _, ok := counts[month]; !ok {
			months = append(months, month)
		}
		counts[month]++
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	for m := months[0]; !m.After(months[len(months)-1]); m = m.AddDate(0, 1, 0) {
		ds.Labels = append(ds.Labels, m.Format(MonthLayout))
		ds.Values = append(ds.Values, counts[m])
	}
	return ds
}

// UserStatus counts active and inactive live users per role.
func UserStatus(rs []roles.Role, us []users.User) StatusSeries {
	idx := make(map[int64]int, len(rs))
	series := StatusSeries{
		Labels:   make([]string, len(rs)),
		Active:   make([]int, len(rs)),
		Inactive: make([]int, len(rs)),
	}
	for i, r := range rs {
		idx[r.ID] = i
		series.Labels[i] = r.Name
	}
	for _, u := range us {
		if u.Role == nil || u.Deleted() {
			continue
		}
		i, ok := idx[u.Role.ID]
		if !ok {
			continue
		}
		if u.IsActive {
			series.Active[i]++
		} else {
			series.Inactive[i]++
		}
	}
	return series
}
