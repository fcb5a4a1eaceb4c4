package mailservice

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	mailtypes "github.com/tscrond/signin/internal/mailservice/types"
)

type StandardEmailService struct {
	config *mailtypes.StandardSenderConfig
}

func NewStandardMailService(cfg *mailtypes.StandardSenderConfig) (*StandardEmailService, error) {
	return &StandardEmailService{
		config: cfg,
	}, nil
}

// Send delivers over SMTP. net/smtp takes no context, so ctx is only
// checked before dialing.
func (s *StandardEmailService) Send(ctx context.Context, config mailtypes.MessageConfig) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg := BuildMessage(config)
	auth := smtp.PlainAuth("", s.config.SmtpUsername, s.config.SmtpPassword, s.config.SmtpHost)

	if err := smtp.SendMail(s.config.SmtpHost+":"+s.config.SmtpPort, auth, config.From, config.To, msg); err != nil {
		return nil, err
	}

	return nil, nil
}

// BuildMessage renders an HTML mail with its headers.
func BuildMessage(config mailtypes.MessageConfig) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: Sign-in Notifications <%s>\r\n", config.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(config.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", config.Subject)
	b.WriteString("MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n")
	b.WriteString(config.Body)
	return []byte(b.String())
}
