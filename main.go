package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"situskilat/ai"
	"situskilat/analytics"
	"situskilat/backoffice"
	"situskilat/common"
	"situskilat/database"
	"situskilat/hosting"
	"situskilat/studio"
)

func main() {
	godotenv.Load()

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	analyticsModule := analytics.NewAnalyticsModule(common.ConnectAnalyticsDb())

	var store hosting.Store
	s3Store, err := hosting.NewS3Store(hosting.S3ConfigFromEnv())
	switch {
	case err == nil:
		if err := s3Store.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to prepare hosting bucket:", err)
		}
		store = s3Store
	case errors.Is(err, hosting.ErrNotConfigured):
		log.Println("S3 hosting not configured - publishing and uploads will be disabled")
	default:
		log.Fatal("Failed to connect to hosting storage:", err)
	}

	if os.Getenv("AI_API_KEY") == "" {
		log.Fatal("AI_API_KEY environment variable not set")
	}
	aiClient := ai.NewClient()

	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	sessionStore := cookie.NewStore([]byte(sessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})

	router.Use(sessions.Sessions("situskilat-session", sessionStore))

	studioModule := studio.NewStudioModule(db, aiClient, store, analyticsModule)
	studioModule.RegisterRoutes(router)

	backofficeModule := backoffice.NewBackofficeModule(db, store, analyticsModule)
	backofficeModule.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
