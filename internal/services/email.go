package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/dimitrije/tandem-api/internal/config"
)

var inviteTemplate = template.Must(template.New("invite").Parse(`<html>
<body>
	<h2>Team Invitation</h2>
	<p>Hi,</p>
	<p><strong>{{.InviterName}}</strong> has invited you to join <strong>{{.TeamName}}</strong> as {{.RoleName}}.</p>
	<p><a href="{{.InviteURL}}">Open Tandem to accept or decline this invitation</a></p>
</body>
</html>
`))

// InviteEmail is the data rendered into an invitation message.
type InviteEmail struct {
	TeamName    string
	InviterName string
	RoleName    string
	InviteURL   string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	cfg      config.SMTPConfig
	sendMail sendMailFunc
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send delivers an HTML message. It is a no-op when SMTP is not configured.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	if err := s.sendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) SendTeamInvite(to string, invite InviteEmail) error {
	var body bytes.Buffer
	if err := inviteTemplate.Execute(&body, invite); err != nil {
		return fmt.Errorf("failed to render invite email: %w", err)
	}
	subject := fmt.Sprintf("You've been invited to join %s", invite.TeamName)
	return s.Send(to, subject, body.String())
}
