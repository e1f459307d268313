package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"situskilat/ai"
	"situskilat/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.User{}, &models.Generation{})
	return db
}

type fakeInvoker struct {
	reply string
	err   error
	calls int
}

func (f *fakeInvoker) Invoke(ctx context.Context, system string, msg ai.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeHosting struct {
	putCalls    int
	removeCalls int
	assetCalls  int
	failPut     bool
	failRemove  bool
	lastHTML    string
}

func (f *fakeHosting) PutSite(ctx context.Context, userID int, html string) (string, error) {
	if f.failPut {
		return "", errors.New("hosting unavailable")
	}
	f.putCalls++
	f.lastHTML = html
	return fmt.Sprintf("http://cdn.test/sites/%d.html", userID), nil
}

func (f *fakeHosting) RemoveSite(ctx context.Context, userID int) error {
	if f.failRemove {
		return errors.New("hosting unavailable")
	}
	f.removeCalls++
	return nil
}

func (f *fakeHosting) PutAsset(ctx context.Context, userID int, filename, contentType string, r io.Reader, size int64) (string, error) {
	f.assetCalls++
	return fmt.Sprintf("http://cdn.test/assets/%d/%s", userID, filename), nil
}

func setupTestRouter(m *StudioModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("test-session", store))
	m.RegisterRoutes(router)
	return router
}

func createTestUser(db *gorm.DB, email string) *models.User {
	// MinCost keeps the fixtures fast; the real handlers use cost 14
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Name:          "Test User",
		Email:         email,
		PasswordHash:  string(hash),
		EmailVerified: true,
	}
	db.Create(user)
	return user
}

func createTestGeneration(db *gorm.DB, userID int, html string, createdAt time.Time) *models.Generation {
	gen := &models.Generation{
		UserID:    userID,
		HTMLCode:  html,
		CreatedAt: createdAt,
	}
	db.Create(gen)
	return gen
}

func loginAs(t *testing.T, router *gin.Engine, email string) []*http.Cookie {
	t.Helper()

	body, _ := json.Marshal(gin.H{"email": email, "password": "password123"})
	req, _ := http.NewRequest("POST", "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func doJSON(router *gin.Engine, method, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return result
}

// assertPointerInvariant checks that published_url and
// published_generation_id are set together or not at all.
func assertPointerInvariant(t *testing.T, db *gorm.DB, userID int) {
	t.Helper()

	var user models.User
	assert.NoError(t, db.First(&user, userID).Error)
	assert.Equal(t, user.PublishedURL == nil, user.PublishedGenerationID == nil,
		"published_url and published_generation_id must be set together")
}
