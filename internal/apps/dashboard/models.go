package dashboard

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/appointments"
)

type Summary struct {
	MedicationCount          int                        `json:"medication_count"`
	MedicationReminderStats  ReminderStats              `json:"medication_reminder_stats"`
	AppointmentCount         int                        `json:"appointment_count"`
	NextAppointments         []appointments.Appointment `json:"next_five_appointments"`
	AppointmentDatesNextWeek []string                   `json:"appointment_dates_next_week"`
	ForumPostCount           int64                      `json:"forum_post_count"`
	ForumReplyCount          int64                      `json:"forum_reply_count"`
	RecentActivity           []Activity                 `json:"recent_activity"`
	Chart                    Chart                      `json:"chart"`
	EngagementMessage        string                     `json:"engagement_message,omitempty"`
}

type ReminderStats struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}

type Activity struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// Chart holds forum activity per day for the last seven days, oldest first.
type Chart struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}
