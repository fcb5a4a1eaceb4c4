package mailservice

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	mailtypes "github.com/tscrond/signin/internal/mailservice/types"
)

func TestBuildMessage(t *testing.T) {
	msg := string(BuildMessage(mailtypes.MessageConfig{
		From:    "noreply@example.com",
		To:      []string{"a@x.com", "b@x.com"},
		Subject: "New sign-in",
		Body:    "<p>hi</p>",
	}))

	assert.True(t, strings.HasPrefix(msg, "From: Sign-in Notifications <noreply@example.com>\r\n"))
	assert.Contains(t, msg, "To: a@x.com, b@x.com\r\n")
	assert.Contains(t, msg, "Subject: New sign-in\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}

func TestStandardSend_CanceledContext(t *testing.T) {
	svc, _ := NewStandardMailService(&mailtypes.StandardSenderConfig{SmtpHost: "localhost", SmtpPort: "2525"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Send(ctx, mailtypes.MessageConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}
