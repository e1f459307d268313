package backoffice

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"situskilat/analytics"
	"situskilat/hosting"
	"situskilat/models"
)

type BackofficeModule struct {
	db        *gorm.DB
	hosting   hosting.Store
	analytics *analytics.AnalyticsModule
}

func NewBackofficeModule(db *gorm.DB, store hosting.Store, analyticsModule *analytics.AnalyticsModule) *BackofficeModule {
	return &BackofficeModule{
		db:        db,
		hosting:   store,
		analytics: analyticsModule,
	}
}

func (b *BackofficeModule) RegisterRoutes(router *gin.Engine) {
	backofficeGroup := router.Group("/$")
	backofficeGroup.Use(b.requireBackofficeAuth)
	{
		backofficeGroup.GET("/users", b.listUsers)
		backofficeGroup.POST("/unpublish/:userID", b.forceUnpublish)
		backofficeGroup.GET("/stats", b.stats)
	}
}

// requireBackofficeAuth allows only logged-in users whose email is on the
// BACKOFFICE_EMAILS allowlist.
func (b *BackofficeModule) requireBackofficeAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		c.Abort()
		return
	}

	var user models.User
	if err := b.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		c.Abort()
		return
	}

	if !isBackofficeEmail(user.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		c.Abort()
		return
	}

	c.Next()
}

func isBackofficeEmail(email string) bool {
	allowed := os.Getenv("BACKOFFICE_EMAILS")
	if allowed == "" {
		return false
	}

	for _, candidate := range strings.Split(allowed, ",") {
		if strings.EqualFold(strings.TrimSpace(candidate), email) {
			return true
		}
	}
	return false
}

func (b *BackofficeModule) listUsers(c *gin.Context) {
	var users []models.User
	if err := b.db.Order("id ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load users"})
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, user := range users {
		var generations int64
		b.db.Model(&models.Generation{}).Where("user_id = ?", user.ID).Count(&generations)

		list = append(list, gin.H{
			"id":             user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"email_verified": user.EmailVerified,
			"published_url":  user.PublishedURL,
			"generations":    generations,
			"events":         b.analytics.GetUserEventCount(user.ID),
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": list})
}

// forceUnpublish takes a user's site offline without their involvement,
// for abuse handling.
func (b *BackofficeModule) forceUnpublish(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var user models.User
	if err := b.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.PublishedURL == nil {
		c.JSON(http.StatusOK, gin.H{"message": "User has no published site"})
		return
	}

	if b.hosting != nil {
		if err := b.hosting.RemoveSite(context.Background(), user.ID); err != nil {
			log.Printf("backoffice: force unpublish user %d: hosting delete: %v", user.ID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not remove the hosted site"})
			return
		}
	}

	result := b.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"published_url":           nil,
			"published_generation_id": nil,
		})
	if result.Error != nil {
		log.Printf("backoffice: force unpublish user %d: clearing pointer: %v", user.ID, result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not unpublish"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Site unpublished"})
}

func (b *BackofficeModule) stats(c *gin.Context) {
	if b.analytics == nil {
		c.JSON(http.StatusOK, gin.H{"analytics_enabled": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analytics_enabled": true,
		"events_by_day":     b.analytics.GetEventsByDay(30),
		"top_users":         b.analytics.GetTopUsers(30, 10),
	})
}
