package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFallsBackToLogMailer(t *testing.T) {
	m := New(&config.Config{})
	assert.IsType(t, LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), "a@example.com", "hi", "body"))

	smtpMailer, ok := New(&config.Config{SMTPHost: "mail.example.com", SMTPPort: "2525"}).(*SMTPMailer)
	require.True(t, ok)
	assert.Equal(t, "mail.example.com:2525", smtpMailer.addr)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("from@example.com", "to@example.com", "Reset", "code 123456"))

	head, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, head, "From: from@example.com")
	assert.Contains(t, head, "To: to@example.com")
	assert.Contains(t, head, "Subject: Reset")
	assert.Equal(t, "code 123456", body)
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&SMTPMailer{addr: "127.0.0.1:1"}).Send(ctx, "to@example.com", "s", "b")

	assert.ErrorIs(t, err, context.Canceled)
}
