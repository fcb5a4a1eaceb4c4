package factory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	appconfig "github.com/tscrond/signin/internal/config"
	mailservice "github.com/tscrond/signin/internal/mailservice/mail"
	"github.com/tscrond/signin/internal/mailservice/types"
)

// NewEmailService returns the sender for the configured provider, or nil
// when notifications are disabled.
func NewEmailService(ctx context.Context, cfg *appconfig.Config) (types.EmailSender, error) {
	switch cfg.NotifyProvider {
	case "ses":
		opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
		if cfg.AWSAccessKeyID != "" && cfg.AWSSecretKey != "" {
			opts = append(opts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
			))
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, err
		}

		return mailservice.NewSESEmailService(awsCfg)
	case "smtp":
		return mailservice.NewStandardMailService(&types.StandardSenderConfig{
			SmtpHost:     cfg.SMTPHost,
			SmtpPort:     cfg.SMTPPort,
			SmtpUsername: cfg.SMTPUsername,
			SmtpPassword: cfg.SMTPPassword,
		})
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.NotifyProvider)
	}
}
