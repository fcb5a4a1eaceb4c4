package mail

import (
	"context"
	"fmt"
	"time"

	templates "github.com/tscrond/signin/internal/mailservice/templates"
	mailtypes "github.com/tscrond/signin/internal/mailservice/types"
	"go.uber.org/zap"
)

type Notifier struct {
	emailSender mailtypes.EmailSender
	from        string
	logger      *zap.Logger
}

func NewMailNotifier(es mailtypes.EmailSender, from string, logger *zap.Logger) *Notifier {
	return &Notifier{
		emailSender: es,
		from:        from,
		logger:      logger,
	}
}

// SendSignInNotification tells the account owner about a completed login.
func (n *Notifier) SendSignInNotification(ctx context.Context, emailTo, userAgent string, at time.Time) error {
	htmlBody, err := templates.RenderMailTemplate("signin", mailtypes.MailData{
		Email:      emailTo,
		SignedInAt: at,
		UserAgent:  userAgent,
	})
	if err != nil {
		return fmt.Errorf("rendering sign-in mail: %w", err)
	}

	output, err := n.emailSender.Send(ctx, mailtypes.MessageConfig{
		From:    n.from,
		To:      []string{emailTo},
		Subject: "New sign-in to your account",
		Body:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("sending sign-in mail: %w", err)
	}

	n.logger.Debug("sign-in mail sent", zap.String("to", emailTo), zap.Any("output", output))

	return nil
}
