package alert

import (
	"bytes"
	"errors"
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/soundprediction/rembed/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsAlerter(t *testing.T) {
	assert.IsType(t, &LogAlerter{}, New(config.AlertConfig{}, nil))
	assert.IsType(t, &EmailAlerter{}, New(config.AlertConfig{
		Enabled:  true,
		SMTPHost: "smtp.example.com",
		To:       []string{"ops@example.com"},
	}, nil))
}

func TestEmailAlerter_Alert(t *testing.T) {
	var gotAddr string
	var gotMsg []byte
	a := NewEmailAlerter(config.AlertConfig{
		Enabled:  true,
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		From:     "rembed@example.com",
		To:       []string{"ops@example.com", "oncall@example.com"},
	})
	a.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		return nil
	}

	require.NoError(t, a.Alert("Circuit open", "ollama unreachable"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Contains(t, string(gotMsg), "To: ops@example.com,oncall@example.com")
	assert.Contains(t, string(gotMsg), "Subject: Circuit open")

	a.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("dial tcp: refused") }
	err := a.Alert("s", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send alert email")
}

func TestEmailAlerter_Disabled(t *testing.T) {
	a := NewEmailAlerter(config.AlertConfig{Enabled: false})
	a.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called when disabled")
		return nil
	}
	assert.NoError(t, a.Alert("s", "m"))
}

func TestLogAlerter(t *testing.T) {
	var buf bytes.Buffer
	a := NewLogAlerter(slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, a.Alert("Circuit open", "gemini failing"))
	assert.Contains(t, buf.String(), "Circuit open")
	assert.Contains(t, buf.String(), "gemini failing")
}
