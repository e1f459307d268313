package studio

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"situskilat/ai"
	"situskilat/models"
)

type generateRequest struct {
	Prompt    string   `json:"prompt"`
	ImageURLs []string `json:"image_urls"`
}

type editRequest struct {
	Prompt      string   `json:"prompt"`
	ImageURLs   []string `json:"image_urls"`
	CurrentHTML string   `json:"current_html"`
}

func (s *StudioModule) generate(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A business description is required"})
		return
	}

	system := ai.BuildSystemPrompt(ai.ModeGenerate)
	msg := ai.BuildUserMessage(ai.ModeGenerate, req.Prompt, req.ImageURLs, "")

	gen, extraction, ok := s.runGeneration(c, userID, "generate", system, msg)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         gen.ID,
		"html":       gen.HTMLCode,
		"from_fence": extraction.FromFence,
		"created_at": gen.CreatedAt,
	})
}

func (s *StudioModule) edit(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An edit instruction is required"})
		return
	}
	if req.CurrentHTML == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The current HTML is required for an edit"})
		return
	}

	system := ai.BuildSystemPrompt(ai.ModeEdit)
	msg := ai.BuildUserMessage(ai.ModeEdit, req.Prompt, req.ImageURLs, req.CurrentHTML)

	gen, extraction, ok := s.runGeneration(c, userID, "edit", system, msg)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         gen.ID,
		"html":       gen.HTMLCode,
		"from_fence": extraction.FromFence,
		"created_at": gen.CreatedAt,
	})
}

// runGeneration invokes the model, extracts the HTML document and appends
// it to the user's history. It writes the error response itself and
// returns ok=false when anything failed.
func (s *StudioModule) runGeneration(c *gin.Context, userID int, op string, system string, msg ai.Message) (*models.Generation, ai.Extraction, bool) {
	// The model call continues even if the client goes away; an abandoned
	// browser tab must not abort a generation that will be billed anyway.
	reply, err := s.ai.Invoke(context.Background(), system, msg)
	if err != nil {
		log.Printf("%s: user %d: model invocation: %v", op, userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The site could not be generated. Please try again."})
		return nil, ai.Extraction{}, false
	}

	extraction, err := ai.ExtractHTML(reply)
	if err != nil {
		log.Printf("%s: user %d: extraction: %v", op, userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The site could not be generated. Please try again."})
		return nil, ai.Extraction{}, false
	}

	gen := models.Generation{
		UserID:    userID,
		HTMLCode:  extraction.HTML,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(&gen).Error; err != nil {
		log.Printf("%s: user %d: saving generation: %v", op, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save the generated site"})
		return nil, ai.Extraction{}, false
	}

	s.track(c, userID, op)
	return &gen, extraction, true
}
