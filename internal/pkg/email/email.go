package email

import (
	"crypto/tls"
	"fmt"
	"html"

	mail "github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendStatusChangeEmail(toEmail, toName, scholarshipName, status, remarks string) error
	SendSubmissionReceivedEmail(toEmail, toName, scholarshipName string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	FromName      string
	FromEmail     string
	SkipTLSVerify bool
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// SendStatusChangeEmail tells a student that a reviewer changed their application status
func (s *EmailServiceImpl) SendStatusChangeEmail(toEmail, toName, scholarshipName, status, remarks string) error {
	subject := fmt.Sprintf("Your %s application is now %s", scholarshipName, status)

	remarksBlock := ""
	if remarks != "" {
		remarksBlock = fmt.Sprintf(`<p><strong>Remarks:</strong> %s</p>`, html.EscapeString(remarks))
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>The status of your application for <strong>%s</strong> has been updated to <strong>%s</strong>.</p>
				%s
				<p>You can follow the progress of your application from your dashboard.</p>
				<p>Best regards,<br>%s</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName), html.EscapeString(scholarshipName), html.EscapeString(status),
		remarksBlock, html.EscapeString(s.config.FromName))

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendSubmissionReceivedEmail confirms that an application entered review
func (s *EmailServiceImpl) SendSubmissionReceivedEmail(toEmail, toName, scholarshipName string) error {
	subject := fmt.Sprintf("We received your %s application", scholarshipName)

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>Your application for <strong>%s</strong> has been submitted and is pending review.</p>
				<p>Best regards,<br>%s</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName), html.EscapeString(scholarshipName), html.EscapeString(s.config.FromName))

	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail sends an HTML email over STARTTLS
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	// Without an SMTP host, log the email instead (development only)
	if s.config.Host == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP host not configured - email not sent")
		return nil
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := mail.NewDialer(s.config.Host, s.config.Port, s.config.Username, s.config.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         s.config.Host,
		InsecureSkipVerify: s.config.SkipTLSVerify,
	}

	if err := d.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Str("toEmail", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}
