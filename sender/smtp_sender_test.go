package sender

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSMTPEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_USER", "orders@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("SMTP_FROM", "")
}

func TestNewSMTPSender_RequiresConfig(t *testing.T) {
	setSMTPEnv(t)
	t.Setenv("SMTP_HOST", "")

	_, err := NewSMTPSender()
	assert.Error(t, err)
}

func TestNewSMTPSender_DefaultFromIdentity(t *testing.T) {
	setSMTPEnv(t)

	s, err := NewSMTPSender()
	require.NoError(t, err)
	assert.Equal(t, "Pet Shop Orders <orders@example.com>", s.from)
}

func TestNewSMTPSender_FromOverride(t *testing.T) {
	setSMTPEnv(t)
	t.Setenv("SMTP_FROM", "Adoptions <adopt@example.com>")

	s, err := NewSMTPSender()
	require.NoError(t, err)
	assert.Equal(t, "Adoptions <adopt@example.com>", s.from)
}

func TestSendEmail_CancelledContext(t *testing.T) {
	s := &SMTPSender{host: "mail.example.com", port: "587", username: "u", password: "p"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SendEmail(ctx, "customer@example.com", "subject", "body")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSendEmail_DeadlineBoundsExchange(t *testing.T) {
	// A server that accepts the connection but never greets. The context
	// deadline must cut the exchange off instead of blocking.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(2 * time.Second)
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	s := &SMTPSender{host: host, port: port, username: "u", password: "p"}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = s.SendEmail(ctx, "customer@example.com", "subject", "body")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBuildMessage(t *testing.T) {
	s := &SMTPSender{from: "Pet Shop Orders <orders@example.com>"}

	msg := string(s.buildMessage("customer@example.com", "Your order", "<p>hi</p>"))
	assert.True(t, strings.HasPrefix(msg, "From: Pet Shop Orders <orders@example.com>\r\n"))
	assert.Contains(t, msg, "To: customer@example.com\r\n")
	assert.Contains(t, msg, "Subject: Your order\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}
