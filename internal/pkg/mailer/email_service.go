package mailer

import (
	"fmt"
	"html"
	"strings"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendHandoffAlert(toEmail string, n dto.HandoffNotification) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string, log logger.ILogger) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
		logger:      log,
	}
}

func (s *emailService) SendHandoffAlert(toEmail string, n dto.HandoffNotification) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Customer waiting for an agent (session %s)", n.SessionID))
	m.SetBody("text/html", HandoffAlertBody(n))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send handoff alert", map[string]interface{}{
			"to":         toEmail,
			"session_id": n.SessionID,
			"error":      err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Handoff alert sent", map[string]interface{}{"to": toEmail, "session_id": n.SessionID})
	return nil
}

// HandoffAlertBody renders the alert e-mail, transcript included.
func HandoffAlertBody(n dto.HandoffNotification) string {
	var transcript strings.Builder
	for _, m := range n.Transcript {
		fmt.Fprintf(&transcript, "<p><strong>%s:</strong> %s</p>", html.EscapeString(m.Role), html.EscapeString(m.Content))
	}
	if transcript.Len() == 0 {
		transcript.WriteString("<p><em>No messages yet.</em></p>")
	}

	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>A customer asked for a human agent</h2>
			<p>Session: <code>%s</code></p>
			<p>Reason: %s</p>
			<p>Promised wait: %s</p>
			<h3>Conversation so far</h3>
			%s
		</div>
	`,
		html.EscapeString(n.SessionID),
		html.EscapeString(n.Reason),
		html.EscapeString(n.EstimatedWaitTime),
		transcript.String(),
	)
}
