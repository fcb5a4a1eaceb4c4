package types

import (
	"context"
	"time"
)

type EmailSender interface {
	Send(ctx context.Context, messageConfig MessageConfig) (any, error)
}

type MessageConfig struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type StandardSenderConfig struct {
	SmtpHost     string
	SmtpPort     string
	SmtpUsername string
	SmtpPassword string
}

// MailData feeds the sign-in notification template.
type MailData struct {
	Email      string
	SignedInAt time.Time
	UserAgent  string
}
