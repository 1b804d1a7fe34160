package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := f.register(t, "me", "me@example.com")
	courses := f.seedCourses(t, 10)

	for _, c := range courses[:3] {
		_, err := f.enrollment.CreateEnrollment(ctx, me.ID, c.ID)
		require.NoError(t, err)
	}

	// give courses[5..9] increasing popularity: course i gets i-4 students
	for i := 5; i < 10; i++ {
		for j := 0; j < i-4; j++ {
			u := f.register(t, fmt.Sprintf("u%d-%d", i, j), fmt.Sprintf("u%d-%d@example.com", i, j))
			_, err := f.enrollment.CreateEnrollment(ctx, u.ID, courses[i].ID)
			require.NoError(t, err)
		}
	}

	total, err := f.stores.Users.Count(ctx)
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalCourses)
	assert.Equal(t, 3, stats.EnrolledCourses)
	assert.Equal(t, total, stats.TotalStudents)

	require.Len(t, stats.PopularCourses, PopularCoursesLimit)
	for i := 1; i < len(stats.PopularCourses); i++ {
		assert.GreaterOrEqual(t, stats.PopularCourses[i-1].StudentCount, stats.PopularCourses[i].StudentCount)
	}
	assert.Equal(t, courses[9].ID, stats.PopularCourses[0].ID)
	assert.Equal(t, 5, stats.PopularCourses[0].StudentCount)

	var logged bool
	for _, entry := range f.logs.AllEntries() {
		if entry.Message == "dashboard stats" {
			logged = true
			assert.Equal(t, logrus.DebugLevel, entry.Level)
			assert.Equal(t, 10, entry.Data["total_courses"])
		}
	}
	assert.True(t, logged)
}

func TestDashboardEnrolledCourses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := f.register(t, "me", "me@example.com")
	other := f.register(t, "other", "other@example.com")
	courses := f.seedCourses(t, 4)

	for _, c := range []int{1, 3} {
		_, err := f.enrollment.CreateEnrollment(ctx, me.ID, courses[c].ID)
		require.NoError(t, err)
	}
	_, err := f.enrollment.CreateEnrollment(ctx, other.ID, courses[3].ID)
	require.NoError(t, err)

	views, err := f.dashboard.EnrolledCourses(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, courses[1].ID, views[0].ID)
	assert.Equal(t, 1, views[0].StudentCount)
	assert.Equal(t, courses[3].ID, views[1].ID)
	assert.Equal(t, 2, views[1].StudentCount)

	none, err := f.dashboard.EnrolledCourses(ctx, f.register(t, "new", "new@example.com").ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
