package services

import (
	"net/smtp"
	"testing"

	"github.com/dimitrije/tandem-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredSMTP() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "user@example.com",
		Password: "password",
		From:     "noreply@example.com",
	}
}

func TestEmailService_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.SMTPConfig)
		want   bool
	}{
		{name: "complete", modify: func(*config.SMTPConfig) {}, want: true},
		{name: "missing host", modify: func(c *config.SMTPConfig) { c.Host = "" }, want: false},
		{name: "missing username", modify: func(c *config.SMTPConfig) { c.Username = "" }, want: false},
		{name: "missing password", modify: func(c *config.SMTPConfig) { c.Password = "" }, want: false},
		{name: "missing from", modify: func(c *config.SMTPConfig) { c.From = "" }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := configuredSMTP()
			tt.modify(&cfg)
			assert.Equal(t, tt.want, NewEmailService(cfg).IsConfigured())
		})
	}
}

func TestEmailService_Send_NotConfigured(t *testing.T) {
	svc := NewEmailService(config.SMTPConfig{})
	called := false
	svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	assert.NoError(t, svc.Send("to@example.com", "Subject", "Body"))
	assert.False(t, called)
}

func TestEmailService_SendTeamInvite(t *testing.T) {
	svc := NewEmailService(configuredSMTP())
	var gotAddr string
	var gotTo []string
	var gotMsg string
	svc.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	err := svc.SendTeamInvite("bob@example.com", InviteEmail{
		TeamName:    "<Platform>",
		InviterName: "Ada",
		RoleName:    "member",
		InviteURL:   "https://tandem.example.com/invites",
	})

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"bob@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: You've been invited to join <Platform>")
	assert.Contains(t, gotMsg, "&lt;Platform&gt;")
	assert.Contains(t, gotMsg, "as member")
	assert.Contains(t, gotMsg, "https://tandem.example.com/invites")
}

func TestEmailService_Send_Failure(t *testing.T) {
	svc := NewEmailService(configuredSMTP())
	svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return assert.AnError
	}

	err := svc.Send("to@example.com", "Subject", "Body")

	assert.ErrorIs(t, err, assert.AnError)
}
