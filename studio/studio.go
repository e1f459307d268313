// Package studio is the authenticated surface of SitusKilat: account
// handling, site generation and editing, version history, publishing and
// asset uploads.
package studio

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"situskilat/ai"
	"situskilat/analytics"
	"situskilat/hosting"
)

type StudioModule struct {
	db        *gorm.DB
	ai        ai.Invoker
	hosting   hosting.Store
	analytics *analytics.AnalyticsModule
}

func NewStudioModule(db *gorm.DB, invoker ai.Invoker, store hosting.Store, analyticsModule *analytics.AnalyticsModule) *StudioModule {
	return &StudioModule{
		db:        db,
		ai:        invoker,
		hosting:   store,
		analytics: analyticsModule,
	}
}

func (s *StudioModule) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/register", s.register)
	router.POST("/api/login", s.login)
	router.GET("/api/logout", s.logout)
	router.GET("/api/confirm/:token", s.confirmEmail)

	api := router.Group("/api")
	api.Use(s.requireAuth)
	{
		api.GET("/me", s.me)
		api.POST("/assets", s.uploadAsset)
		api.POST("/generate", s.generate)
		api.POST("/edit", s.edit)
		api.GET("/history", s.listHistory)
		api.GET("/history/:id", s.getHistoryItem)
		api.DELETE("/history/:id", s.deleteHistoryItem)
		api.POST("/publish/:id", s.publish)
		api.POST("/unpublish", s.unpublish)
	}
}

func (s *StudioModule) requireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Next()
}

func (s *StudioModule) track(c *gin.Context, userID int, event string) {
	if s.analytics != nil {
		s.analytics.TrackEvent(c, userID, event)
	}
}
