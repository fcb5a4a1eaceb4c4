package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tscrond/signin/internal/api"
	"github.com/tscrond/signin/internal/api/mail"
	"github.com/tscrond/signin/internal/config"
	"github.com/tscrond/signin/internal/logger"
	"github.com/tscrond/signin/internal/login"
	mailfactory "github.com/tscrond/signin/internal/mailservice/factory"
	"github.com/tscrond/signin/internal/profile"
	"github.com/tscrond/signin/internal/repo"
	"github.com/tscrond/signin/internal/secrets"
	"github.com/tscrond/signin/internal/session"
	"github.com/tscrond/signin/internal/token"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sessionPurgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting sign-in service",
		zap.String("listen_port", cfg.ListenPort),
		zap.String("public_url", cfg.PublicURL),
		zap.String("callback_path", cfg.CallbackPath),
		zap.String("session_store", cfg.SessionStore),
		zap.String("notify_provider", cfg.NotifyProvider),
	)

	creds, err := secrets.Load(ctx, cfg.ClientSecretsPath)
	if err != nil {
		log.Fatal("loading client secrets", zap.String("location", cfg.ClientSecretsPath), zap.Error(err))
	}

	oauthConfig, err := creds.OAuthConfig(cfg.GoogleScopes...)
	if err != nil {
		log.Fatal("building oauth2 config", zap.Error(err))
	}

	exchanger := token.NewExchanger(oauthConfig)
	loginService := login.NewService(exchanger, InitProfileFetcher(cfg, creds), log)

	store, closeStore, err := InitSessionStore(cfg, log)
	if err != nil {
		log.Fatal("initializing session store", zap.Error(err))
	}
	defer closeStore()

	notifier, err := InitNotifier(ctx, cfg, log)
	if err != nil {
		log.Fatal("initializing mail notifier", zap.Error(err))
	}

	sessions := session.NewManager(store, cfg.SessionTTL, cfg.SecureCookies)

	s := api.NewAPIServer(cfg.Backend(), loginService, exchanger, sessions, notifier, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})
	g.Go(func() error {
		return sessions.PurgeExpired(gctx, sessionPurgeInterval, func(n int64, err error) {
			if err != nil {
				log.Warn("purging expired sessions", zap.Error(err))
				return
			}
			log.Debug("purged expired sessions", zap.Int64("count", n))
		})
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("server stopped")
}

func InitProfileFetcher(cfg *config.Config, creds *secrets.Credentials) *profile.Fetcher {
	opts := []profile.Option{profile.WithApplicationName(creds.ProjectID)}
	if cfg.PeopleAPIEndpoint != "" {
		opts = append(opts, profile.WithEndpoint(cfg.PeopleAPIEndpoint))
	}
	return profile.NewFetcher(opts...)
}

func InitSessionStore(cfg *config.Config, log *zap.Logger) (session.Store, func(), error) {
	if cfg.SessionStore != "postgres" {
		return session.NewMemoryStore(), func() {}, nil
	}

	repository, err := repo.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}

	return repository, func() {
		if err := repository.Close(); err != nil {
			log.Warn("closing repository", zap.Error(err))
		}
	}, nil
}

func InitNotifier(ctx context.Context, cfg *config.Config, log *zap.Logger) (*mail.Notifier, error) {
	sender, err := mailfactory.NewEmailService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, nil
	}
	return mail.NewMailNotifier(sender, cfg.NotifyFrom, log), nil
}
