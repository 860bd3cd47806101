package services

import (
	"fmt"
	"net/smtp"

	"github.com/mpavlov/courtbook-api/internal/config"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendGroupInvite(to, groupName, inviterName, inviteURL string) error {
	subject := fmt.Sprintf("You've been invited to join %s", groupName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Group Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has invited you to join <strong>%s</strong> on Courtbook.</p>
			<p><a href="%s">Open the invite</a> to join the group and see upcoming reservations.</p>
		</body>
		</html>
	`, inviterName, groupName, inviteURL)

	return s.Send(to, subject, body)
}
