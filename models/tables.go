package models

import "time"

type User struct {
	ID                     int     `gorm:"primary_key;autoIncrement" json:"id"`
	Name                   string  `gorm:"not null" json:"name"`
	PasswordHash           string  `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	Email                  string  `gorm:"unique;not null" json:"email"`
	EmailVerified          bool    `gorm:"default:false" json:"email_verified"`
	EmailVerificationToken string  `json:"-"` // token for email verification
	PublishedURL           *string `json:"published_url"`           // nil unless a site is live
	PublishedGenerationID  *int    `json:"published_generation_id"` // set together with PublishedURL, never alone
}

// Generation is one stored HTML document produced by a generate or edit
// call. Rows are append-only: HTMLCode and CreatedAt never change after
// insert. Version numbers are not stored, they are derived at read time.
type Generation struct {
	ID        int       `gorm:"primary_key;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;index" json:"user_id"`
	HTMLCode  string    `gorm:"type:text;not null" json:"html_code"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
