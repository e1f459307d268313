package analytics

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UsageEvent is one recorded builder action (generate, edit, publish,
// unpublish). Events live in their own database so the main one stays
// small.
type UsageEvent struct {
	ID        uint      `gorm:"primary_key;autoIncrement"`
	UserID    int       `gorm:"not null;index"`
	Event     string    `gorm:"not null;index"`
	IP        string    `gorm:"not null"`
	Browser   *string   // nullable
	CreatedAt time.Time `gorm:"index"`
}

type AnalyticsModule struct {
	db *gorm.DB
}

// NewAnalyticsModule returns nil when no analytics DB is configured;
// callers treat a nil module as tracking disabled.
func NewAnalyticsModule(db *gorm.DB) *AnalyticsModule {
	if db == nil {
		log.Println("Analytics DB is nil, analytics will be disabled")
		return nil
	}

	if err := db.AutoMigrate(&UsageEvent{}); err != nil {
		log.Printf("Error migrating usage_events table: %v", err)
		return nil
	}

	log.Println("Analytics module initialized successfully")
	return &AnalyticsModule{db: db}
}

// TrackEvent records a builder action. The insert happens in a goroutine
// so a slow analytics DB never delays the request.
func (a *AnalyticsModule) TrackEvent(c *gin.Context, userID int, eventName string) {
	if a == nil || a.db == nil {
		return
	}

	event := UsageEvent{
		UserID:    userID,
		Event:     eventName,
		IP:        a.getClientIP(c),
		Browser:   extractBrowser(c.Request.UserAgent()),
		CreatedAt: time.Now(),
	}

	go func() {
		if err := a.db.Create(&event).Error; err != nil {
			log.Printf("Error saving usage event: %v", err)
		}
	}()
}

// getClientIP returns the real client IP, looking through common proxy
// headers first.
func (a *AnalyticsModule) getClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}

	return c.ClientIP()
}

func extractBrowser(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	var browser string

	// order matters - more specific browsers first
	switch {
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	default:
		browser = "Other"
	}

	return &browser
}

// DayEvents is the number of events on one day.
type DayEvents struct {
	Date  string
	Count int64
}

// UserEvents is the number of events recorded for a user.
type UserEvents struct {
	UserID int
	Count  int64
}

// GetEventsByDay returns per-day event counts for the last N days, with
// zero-filled gaps.
func (a *AnalyticsModule) GetEventsByDay(days int) []DayEvents {
	if a == nil || a.db == nil {
		return []DayEvents{}
	}

	// sqlite's DATE() yields UTC dates, so the labels use UTC too
	now := time.Now().UTC()
	startDate := now.AddDate(0, 0, -days)

	var results []struct {
		Date  string
		Count int64
	}

	a.db.Model(&UsageEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", startDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results)

	dayEvents := make([]DayEvents, days)
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -(days - 1 - i))
		dayEvents[i] = DayEvents{
			Date:  date.Format("2006-01-02"),
			Count: 0,
		}
	}

	for _, result := range results {
		for i := range dayEvents {
			if dayEvents[i].Date == result.Date {
				dayEvents[i].Count = result.Count
				break
			}
		}
	}

	return dayEvents
}

// GetTopUsers returns the N most active users over the last X days.
func (a *AnalyticsModule) GetTopUsers(days int, limit int) []UserEvents {
	if a == nil || a.db == nil {
		return []UserEvents{}
	}

	startDate := time.Now().AddDate(0, 0, -days)

	var results []UserEvents
	a.db.Model(&UsageEvent{}).
		Select("user_id as user_id, COUNT(*) as count").
		Where("created_at >= ?", startDate).
		Group("user_id").
		Order("count DESC").
		Limit(limit).
		Scan(&results)

	return results
}

// GetUserEventCount returns the total number of events for one user.
func (a *AnalyticsModule) GetUserEventCount(userID int) int64 {
	if a == nil || a.db == nil {
		return 0
	}

	var count int64
	a.db.Model(&UsageEvent{}).Where("user_id = ?", userID).Count(&count)
	return count
}
