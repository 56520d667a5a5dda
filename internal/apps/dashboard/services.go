package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/appointments"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/forum"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/records"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	dateLayout    = "2006-01-02"
	chartDays     = 7
	recentLimit   = 5
	upcomingLimit = 5
	weekAheadDays = 7
	typePost      = "Post"
	typeReply     = "Reply"
	replyTitleFmt = "Reply on %s"
	engagementFmt = "You have been active %d %s this week."
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Build aggregates the user's records, appointments and forum activity
// as of now.
func (s *DashboardService) Build(ctx context.Context, userID uuid.UUID, now time.Time) (*Summary, error) {
	db := s.db.WithContext(ctx)
	summary := &Summary{}

	if err := s.medications(db, userID, now, summary); err != nil {
		return nil, fmt.Errorf("medication stats: %w", err)
	}
	if err := s.appointments(db, userID, now, summary); err != nil {
		return nil, fmt.Errorf("appointment stats: %w", err)
	}
	if err := s.forumActivity(db, userID, now, summary); err != nil {
		return nil, fmt.Errorf("forum stats: %w", err)
	}
	return summary, nil
}

func (s *DashboardService) medications(db *gorm.DB, userID uuid.UUID, now time.Time, summary *Summary) error {
	var profile records.Profile
	err := db.Preload("MedicalHistories.Medications").Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, h := range profile.MedicalHistories {
		for _, m := range h.Medications {
			summary.MedicationCount++
			if m.IsActiveOn(now) {
				summary.MedicationReminderStats.Active++
			}
		}
	}
	summary.MedicationReminderStats.Total = summary.MedicationCount
	return nil
}

func (s *DashboardService) appointments(db *gorm.DB, userID uuid.UUID, now time.Time, summary *Summary) error {
	today := now.Format(dateLayout)
	weekAhead := now.AddDate(0, 0, weekAheadDays).Format(dateLayout)

	var upcoming []appointments.Appointment
	err := db.Where("user_id = ? AND date >= ?", userID, today).
		Order("date ASC").Order("time ASC").
		Find(&upcoming).Error
	if err != nil {
		return err
	}

	summary.AppointmentCount = len(upcoming)
	summary.NextAppointments = upcoming[:min(upcomingLimit, len(upcoming))]

	summary.AppointmentDatesNextWeek = []string{}
	for _, a := range upcoming {
		if a.Date > weekAhead {
			break
		}
		if n := len(summary.AppointmentDatesNextWeek); n == 0 || summary.AppointmentDatesNextWeek[n-1] != a.Date {
			summary.AppointmentDatesNextWeek = append(summary.AppointmentDatesNextWeek, a.Date)
		}
	}
	return nil
}

func (s *DashboardService) forumActivity(db *gorm.DB, userID uuid.UUID, now time.Time, summary *Summary) error {
	if err := db.Model(&forum.ForumPost{}).Where("user_id = ?", userID).Count(&summary.ForumPostCount).Error; err != nil {
		return err
	}
	if err := db.Model(&forum.ForumReply{}).Where("user_id = ?", userID).Count(&summary.ForumReplyCount).Error; err != nil {
		return err
	}

	var posts []forum.ForumPost
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(recentLimit).Find(&posts).Error; err != nil {
		return err
	}
	var replies []forum.ForumReply
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(recentLimit).Find(&replies).Error; err != nil {
		return err
	}
	titles, err := postTitles(db, replies)
	if err != nil {
		return err
	}

	activity := make([]Activity, 0, len(posts)+len(replies))
	for _, p := range posts {
		activity = append(activity, Activity{Type: typePost, Title: p.Title, Timestamp: p.CreatedAt})
	}
	for _, r := range replies {
		title := typeReply
		if t, ok := titles[r.PostID]; ok {
			title = fmt.Sprintf(replyTitleFmt, t)
		}
		activity = append(activity, Activity{Type: typeReply, Title: title, Timestamp: r.CreatedAt})
	}
	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Timestamp.After(activity[j].Timestamp)
	})
	summary.RecentActivity = activity[:min(recentLimit, len(activity))]

	counts, err := dailyCounts(db, userID, now)
	if err != nil {
		return err
	}
	summary.Chart = chartFor(now, counts)

	if len(activity) > 0 {
		days := 0
		for _, n := range summary.Chart.Data {
			if n > 0 {
				days++
			}
		}
		unit := "days"
		if days == 1 {
			unit = "day"
		}
		summary.EngagementMessage = fmt.Sprintf(engagementFmt, days, unit)
	}
	return nil
}

func postTitles(db *gorm.DB, replies []forum.ForumReply) (map[uuid.UUID]string, error) {
	titles := make(map[uuid.UUID]string)
	if len(replies) == 0 {
		return titles, nil
	}
	ids := make([]uuid.UUID, 0, len(replies))
	for _, r := range replies {
		ids = append(ids, r.PostID)
	}

	var posts []forum.ForumPost
	if err := db.Select("id", "title").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		titles[p.ID] = p.Title
	}
	return titles, nil
}

// dailyCounts buckets the user's posts and replies from the last seven
// days by local calendar date.
func dailyCounts(db *gorm.DB, userID uuid.UUID, now time.Time) (map[string]int, error) {
	y, m, d := now.Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(chartDays - 1))

	var postStamps, replyStamps []time.Time
	if err := db.Model(&forum.ForumPost{}).Where("user_id = ? AND created_at >= ?", userID, since).Pluck("created_at", &postStamps).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&forum.ForumReply{}).Where("user_id = ? AND created_at >= ?", userID, since).Pluck("created_at", &replyStamps).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, ts := range append(postStamps, replyStamps...) {
		counts[ts.In(now.Location()).Format(dateLayout)]++
	}
	return counts, nil
}

func chartFor(now time.Time, counts map[string]int) Chart {
	chart := Chart{Labels: make([]string, chartDays), Data: make([]int, chartDays)}
	for i := 0; i < chartDays; i++ {
		day := now.AddDate(0, 0, i-(chartDays-1))
		chart.Labels[i] = day.Format("Mon")
		chart.Data[i] = counts[day.Format(dateLayout)]
	}
	return chart
}
