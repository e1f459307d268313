package studio

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"situskilat/models"
)

func (s *StudioModule) publish(c *gin.Context) {
	userID := c.GetInt("user_id")

	genID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	if s.hosting == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Publishing is not configured"})
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not publish"})
		return
	}

	if user.PublishedURL != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A version is already published. Unpublish it first."})
		return
	}

	var gen models.Generation
	if err := s.db.Where("id = ? AND user_id = ?", genID, userID).First(&gen).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
		return
	}

	url, err := s.hosting.PutSite(context.Background(), userID, gen.HTMLCode)
	if err != nil {
		log.Printf("publish: user %d: hosting write: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not publish the site. Please try again."})
		return
	}

	// The pointer is set only if still unpublished, so two concurrent
	// publishes cannot both record one.
	result := s.db.Model(&models.User{}).
		Where("id = ? AND published_url IS NULL", userID).
		Updates(map[string]interface{}{
			"published_url":           url,
			"published_generation_id": gen.ID,
		})
	if result.Error != nil {
		// content is live but no record points at it; needs operator attention
		log.Printf("publish: user %d: pointer update failed after hosting write to %s: %v", userID, url, result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not publish"})
		return
	}
	if result.RowsAffected == 0 {
		// a rival publish won after our hosting write, so the hosted
		// object may hold this generation's HTML instead of the rival's
		log.Printf("publish: user %d: lost publish race after hosting write to %s; hosted content may not match the recorded generation", userID, url)
		c.JSON(http.StatusConflict, gin.H{"error": "A version is already published. Unpublish it first."})
		return
	}

	s.track(c, userID, "publish")
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *StudioModule) unpublish(c *gin.Context) {
	userID := c.GetInt("user_id")

	if s.hosting == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Publishing is not configured"})
		return
	}

	if err := s.hosting.RemoveSite(context.Background(), userID); err != nil {
		log.Printf("unpublish: user %d: hosting delete: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not unpublish the site. Please try again."})
		return
	}

	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"published_url":           nil,
			"published_generation_id": nil,
		})
	if result.Error != nil {
		log.Printf("unpublish: user %d: clearing pointer: %v", userID, result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not unpublish"})
		return
	}

	s.track(c, userID, "unpublish")
	c.JSON(http.StatusOK, gin.H{"message": "Site unpublished"})
}
