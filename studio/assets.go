package studio

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxAssetSize = 5 << 20 // 5MB

func (s *StudioModule) uploadAsset(c *gin.Context) {
	userID := c.GetInt("user_id")

	if s.hosting == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Uploads are not configured"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required"})
		return
	}

	if file.Size > maxAssetSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (max 5MB)"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the file"})
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.hosting.PutAsset(context.Background(), userID, file.Filename, contentType, src, file.Size)
	if err != nil {
		log.Printf("uploadAsset: user %d: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not store the file. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
