package studio

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	emailpkg "situskilat/email"
	"situskilat/models"
)

func (s *StudioModule) register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email and password are required"})
		return
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This email is already registered"})
		return
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account"})
		return
	}

	verificationToken, err := generateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account"})
		return
	}

	emailService := emailpkg.NewEmailService()

	user := models.User{
		Name:                   req.Name,
		Email:                  req.Email,
		PasswordHash:           passwordHash,
		EmailVerified:          !emailService.Configured(), // no SMTP means no verification step
		EmailVerificationToken: verificationToken,
	}

	if err := s.db.Create(&user).Error; err != nil {
		log.Printf("register: creating user %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account"})
		return
	}

	if emailService.Configured() {
		if err := emailService.SendVerificationEmail(user.Email, verificationToken); err != nil {
			log.Printf("register: sending verification email to %s: %v", user.Email, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             user.ID,
		"email_verified": user.EmailVerified,
	})
}

func (s *StudioModule) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
		return
	}

	if !checkPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
		return
	}

	if !user.EmailVerified {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email not verified. Please check your inbox and confirm your email."})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

func (s *StudioModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *StudioModule) confirmEmail(c *gin.Context) {
	token := c.Param("token")

	var user models.User
	if err := s.db.Where("email_verification_token = ?", token).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid or expired token"})
		return
	}

	if user.EmailVerified {
		c.JSON(http.StatusOK, gin.H{"message": "Email already confirmed"})
		return
	}

	user.EmailVerified = true
	user.EmailVerificationToken = ""

	if err := s.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not confirm email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed. You can now log in."})
}

func (s *StudioModule) me(c *gin.Context) {
	userID := c.GetInt("user_id")

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                      user.ID,
		"name":                    user.Name,
		"email":                   user.Email,
		"published_url":           user.PublishedURL,
		"published_generation_id": user.PublishedGenerationID,
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
