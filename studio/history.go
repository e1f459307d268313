package studio

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"situskilat/models"
)

const previewLength = 100

type historyItem struct {
	ID        int       `json:"id"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"version"`
}

func (s *StudioModule) listHistory(c *gin.Context) {
	userID := c.GetInt("user_id")

	items, err := s.historyFor(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": items})
}

// historyFor loads all generations of a user, numbers them 1..N oldest
// first, and returns them newest first for display.
func (s *StudioModule) historyFor(userID int) ([]historyItem, error) {
	var generations []models.Generation
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&generations).Error; err != nil {
		return nil, err
	}

	items := make([]historyItem, 0, len(generations))
	for i, gen := range generations {
		items = append(items, historyItem{
			ID:        gen.ID,
			Preview:   previewOf(gen.HTMLCode),
			CreatedAt: gen.CreatedAt,
			Version:   i + 1,
		})
	}

	// newest first
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	return items, nil
}

func (s *StudioModule) getHistoryItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	genID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var gen models.Generation
	if err := s.db.Where("id = ? AND user_id = ?", genID, userID).First(&gen).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         gen.ID,
		"html":       gen.HTMLCode,
		"created_at": gen.CreatedAt,
	})
}

func (s *StudioModule) deleteHistoryItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	genID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	// The published guard is part of the delete itself, so a publish
	// landing in between cannot leave a dangling pointer.
	result := s.db.
		Where("id = ? AND user_id = ?", genID, userID).
		Where("NOT EXISTS (SELECT 1 FROM users WHERE users.published_generation_id = generations.id)").
		Delete(&models.Generation{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete version"})
		return
	}

	if result.RowsAffected == 0 {
		var published int64
		s.db.Model(&models.User{}).
			Where("id = ? AND published_generation_id = ?", userID, genID).
			Count(&published)
		if published > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "This version is published. Unpublish it first."})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Version deleted"})
}

func previewOf(html string) string {
	runes := []rune(html)
	if len(runes) <= previewLength {
		return html
	}
	return string(runes[:previewLength])
}
