package utils

import (
	"context"
	"fmt"
	"html"
	"time"

	"coursemaster/config"
	"coursemaster/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer queues transactional emails. Implementations never block the caller
// and never report delivery failures back to it.
type Mailer interface {
	SendWelcomeEmail(email, name string)
	SendEnrollmentEmail(email, name, courseTitle string)
}

// EmailService delivers mail through SendGrid.
type EmailService struct {
	client     *sendgrid.Client
	senderMail string
	senderName string
	log        *logger.Logger
}

// NewEmailService returns nil when no API key is configured; callers fall
// back to NopMailer.
func NewEmailService(cfg *config.Config, log *logger.Logger) *EmailService {
	if cfg.SendGridAPIKey == "" || cfg.EmailSender == "" {
		return nil
	}
	return &EmailService{
		client:     sendgrid.NewSendClient(cfg.SendGridAPIKey),
		senderMail: cfg.EmailSender,
		senderName: cfg.EmailSenderName,
		log:        log,
	}
}

// Generic Send Email
func (s *EmailService) SendEmail(ctx context.Context, to, name, subject, htmlBody string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(s.senderName, s.senderMail),
		subject,
		mail.NewEmail(name, to),
		"",
		htmlBody,
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *EmailService) sendAsync(to, name, subject, htmlBody string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.SendEmail(ctx, to, name, subject, htmlBody); err != nil {
			s.log.Error("Error sending email", "to", to, "subject", subject, "error", err)
			return
		}
		s.log.Debug("Email sent", "to", to, "subject", subject)
	}()
}

// HTML wrapper shared by every email.
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E3A8A; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2937; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>COURSE MASTER</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; Course Master. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

func (s *EmailService) SendWelcomeEmail(email, name string) {
	subject := "Welcome to Course Master!"
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Thank you for registering at Course Master.</p>
		<p>We are excited to have you on board!</p>
	`, html.EscapeString(name))

	s.sendAsync(email, name, subject, getEmailTemplate("Welcome Onboard!", body))
}

func (s *EmailService) SendEnrollmentEmail(email, name, courseTitle string) {
	subject := "Enrollment Confirmed: " + courseTitle
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your payment was received and you are now enrolled in <strong>%s</strong>.</p>
		<p>Head to your dashboard to start the first milestone.</p>
	`, html.EscapeString(name), html.EscapeString(courseTitle))

	s.sendAsync(email, name, subject, getEmailTemplate("You're Enrolled", body))
}

// NopMailer drops every message; used when SendGrid is not configured.
type NopMailer struct {
	Log *logger.Logger
}

func (m NopMailer) SendWelcomeEmail(email, _ string) {
	if m.Log != nil {
		m.Log.Debug("Email disabled, skipping welcome email", "to", email)
	}
}

func (m NopMailer) SendEnrollmentEmail(email, _, courseTitle string) {
	if m.Log != nil {
		m.Log.Debug("Email disabled, skipping enrollment email", "to", email, "course", courseTitle)
	}
}
