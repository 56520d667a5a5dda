package dashboard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/appointments"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/dashboard"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/forum"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/records"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/database/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	var all []interface{}
	all = append(all, forum.New(nil, nil).Models()...)
	all = append(all, records.New(t.TempDir()).Models()...)
	all = append(all, appointments.New().Models()...)
	return dbtest.Open(t, all...)
}

func TestBuild_Empty(t *testing.T) {
	db := openDB(t)

	summary, err := dashboard.NewDashboardService(db).Build(context.Background(), uuid.New(), time.Now())

	require.NoError(t, err)
	assert.Zero(t, summary.MedicationCount)
	assert.Zero(t, summary.AppointmentCount)
	assert.Empty(t, summary.RecentActivity)
	assert.Empty(t, summary.EngagementMessage)
	assert.Len(t, summary.Chart.Labels, 7)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, summary.Chart.Data)
}

func TestBuild(t *testing.T) {
	db := openDB(t)
	userID := uuid.New()
	now := time.Now()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format("2006-01-02") }

	profile := records.Profile{UserID: userID, FullName: "Alice"}
	require.NoError(t, db.Create(&profile).Error)
	history := records.MedicalHistory{ProfileID: profile.ID, Disease: "Anxiety"}
	require.NoError(t, db.Create(&history).Error)
	require.NoError(t, db.Create(&[]records.Medication{
		{MedicalHistoryID: history.ID, Name: "Active", StartDate: day(-3)},
		{MedicalHistoryID: history.ID, Name: "Finished", StartDate: day(-30), EndDate: day(-10)},
	}).Error)

	for i, offset := range []int{-1, 1, 1, 3, 20, 30, 40} {
		require.NoError(t, db.Create(&appointments.Appointment{
			UserID: userID, Title: "Appt", Date: day(offset), Time: fmt.Sprintf("10:%02d", i),
		}).Error)
	}

	post := forum.ForumPost{UserID: userID, Title: "Hello", Content: "c"}
	require.NoError(t, db.Create(&post).Error)
	reply := forum.ForumReply{PostID: post.ID, UserID: userID, Content: "r", CreatedAt: now.Add(time.Second)}
	require.NoError(t, db.Create(&reply).Error)
	old := forum.ForumPost{UserID: userID, Title: "Old", Content: "c", CreatedAt: now.AddDate(0, 0, -30)}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&forum.ForumPost{UserID: uuid.New(), Title: "Other", Content: "c"}).Error)

	summary, err := dashboard.NewDashboardService(db).Build(context.Background(), userID, now)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.MedicationCount)
	assert.Equal(t, dashboard.ReminderStats{Active: 1, Total: 2}, summary.MedicationReminderStats)

	assert.Equal(t, 6, summary.AppointmentCount)
	assert.Len(t, summary.NextAppointments, 5)
	assert.Equal(t, []string{day(1), day(3)}, summary.AppointmentDatesNextWeek)

	assert.Equal(t, int64(2), summary.ForumPostCount)
	assert.Equal(t, int64(1), summary.ForumReplyCount)
	require.Len(t, summary.RecentActivity, 3)
	assert.Equal(t, dashboard.Activity{Type: "Reply", Title: "Reply on Hello", Timestamp: summary.RecentActivity[0].Timestamp}, summary.RecentActivity[0])
	assert.Equal(t, "Hello", summary.RecentActivity[1].Title)
	assert.Equal(t, "Old", summary.RecentActivity[2].Title)

	assert.Equal(t, now.Format("Mon"), summary.Chart.Labels[6])
	assert.Equal(t, 2, summary.Chart.Data[6])
	assert.Equal(t, "You have been active 1 day this week.", summary.EngagementMessage)
}
