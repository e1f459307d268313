package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}
	return db
}

func insertEvent(db *gorm.DB, userID int, event string, createdAt time.Time) {
	db.Create(&UsageEvent{
		UserID:    userID,
		Event:     event,
		IP:        "127.0.0.1",
		CreatedAt: createdAt,
	})
}

func TestNewAnalyticsModule_NilDB(t *testing.T) {
	module := NewAnalyticsModule(nil)
	assert.Nil(t, module)
}

func TestNilModuleIsSafe(t *testing.T) {
	var module *AnalyticsModule

	assert.Empty(t, module.GetEventsByDay(7))
	assert.Empty(t, module.GetTopUsers(7, 10))
	assert.Equal(t, int64(0), module.GetUserEventCount(1))
}

func TestGetEventsByDay_ZeroFillsGaps(t *testing.T) {
	module := NewAnalyticsModule(setupTestDB())
	assert.NotNil(t, module)

	now := time.Now()
	insertEvent(module.db, 1, "generate", now)
	insertEvent(module.db, 1, "edit", now)
	insertEvent(module.db, 2, "publish", now.AddDate(0, 0, -2))

	days := module.GetEventsByDay(3)
	assert.Len(t, days, 3)

	// oldest first, today last; buckets and labels are both UTC dates
	assert.Equal(t, now.UTC().AddDate(0, 0, -2).Format("2006-01-02"), days[0].Date)
	assert.Equal(t, int64(1), days[0].Count)
	assert.Equal(t, int64(0), days[1].Count)
	assert.Equal(t, now.UTC().Format("2006-01-02"), days[2].Date)
	assert.Equal(t, int64(2), days[2].Count)
}

func TestGetTopUsers(t *testing.T) {
	module := NewAnalyticsModule(setupTestDB())
	assert.NotNil(t, module)

	now := time.Now()
	for i := 0; i < 3; i++ {
		insertEvent(module.db, 7, "edit", now)
	}
	insertEvent(module.db, 8, "generate", now)
	insertEvent(module.db, 9, "publish", now.AddDate(0, 0, -30))

	top := module.GetTopUsers(7, 10)
	assert.Len(t, top, 2)
	assert.Equal(t, 7, top[0].UserID)
	assert.Equal(t, int64(3), top[0].Count)
	assert.Equal(t, 8, top[1].UserID)

	limited := module.GetTopUsers(7, 1)
	assert.Len(t, limited, 1)
	assert.Equal(t, 7, limited[0].UserID)
}

func TestGetUserEventCount(t *testing.T) {
	module := NewAnalyticsModule(setupTestDB())
	assert.NotNil(t, module)

	insertEvent(module.db, 5, "generate", time.Now())
	insertEvent(module.db, 5, "publish", time.Now())
	insertEvent(module.db, 6, "generate", time.Now())

	assert.Equal(t, int64(2), module.GetUserEventCount(5))
	assert.Equal(t, int64(1), module.GetUserEventCount(6))
	assert.Equal(t, int64(0), module.GetUserEventCount(99))
}

func TestExtractBrowser(t *testing.T) {
	assert.Nil(t, extractBrowser(""))

	cases := map[string]string{
		"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36":          "Chrome",
		"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36 Edg/120":  "Edge",
		"Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 Version/17 Safari/16": "Safari",
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Firefox/121.0":           "Firefox",
		"curl/8.4.0": "Other",
	}

	for ua, want := range cases {
		got := extractBrowser(ua)
		assert.NotNil(t, got)
		assert.Equal(t, want, *got, ua)
	}
}
