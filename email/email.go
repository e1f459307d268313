package email

import (
	"fmt"
	"net/smtp"
	"os"
)

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// Configured reports whether SMTP is set up. Without it, accounts are
// created already verified.
func (e *EmailService) Configured() bool {
	return e.host != ""
}

func (e *EmailService) SendVerificationEmail(to, token string) error {
	domain := os.Getenv("DOMAIN")
	if domain == "" {
		domain = "http://localhost:8080"
	}

	verificationLink := fmt.Sprintf("%s/api/confirm/%s", domain, token)

	subject := "Confirm your email - SitusKilat"
	body := fmt.Sprintf(`Hello!

Thanks for signing up for SitusKilat.

To confirm your email and activate your account, open the link below:

%s

If you did not sign up for SitusKilat, just ignore this email.

---
SitusKilat - your website in minutes
`, verificationLink)

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, to, subject, body)

	auth := smtp.PlainAuth("", e.user, e.password, e.host)
	addr := fmt.Sprintf("%s:%s", e.host, e.port)

	err := smtp.SendMail(addr, auth, e.from, []string{to}, []byte(message))
	if err != nil {
		return fmt.Errorf("sending email: %v", err)
	}

	return nil
}
