package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/tscrond/signin/internal/api/mail"
	"github.com/tscrond/signin/internal/config"
	"github.com/tscrond/signin/internal/login"
	"github.com/tscrond/signin/internal/middleware"
	"github.com/tscrond/signin/internal/session"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// LoginCompleter finishes a login from an authorization code.
type LoginCompleter interface {
	Complete(ctx context.Context, code, redirectURI string, user session.User) (*login.Result, error)
}

// ConsentURLBuilder builds the provider's consent screen URL.
type ConsentURLBuilder interface {
	AuthCodeURL(state, redirectURI string) string
}

type APIServer struct {
	backendConfig config.BackendConfig
	login         LoginCompleter
	consent       ConsentURLBuilder
	sessions      *session.Manager
	notifier      *mail.Notifier
	logger        *zap.Logger
}

// NewAPIServer wires the handlers. notifier may be nil.
func NewAPIServer(backendConfig config.BackendConfig, lc LoginCompleter, consent ConsentURLBuilder, sessions *session.Manager, notifier *mail.Notifier, logger *zap.Logger) *APIServer {
	return &APIServer{
		backendConfig: backendConfig,
		login:         lc,
		consent:       consent,
		sessions:      sessions,
		notifier:      notifier,
		logger:        logger,
	}
}

func (s *APIServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.LogRequests(s.logger))

	if s.backendConfig.FrontendEndpoint != "" {
		c := cors.New(cors.Options{
			AllowedOrigins:   []string{s.backendConfig.FrontendEndpoint},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
		})
		r.Use(c.Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// auth
	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)

		r.Get("/auth/login", s.oauthHandler)
		r.Get(s.backendConfig.CallbackPath, s.authCallback)
		r.Get(errorViewPath, s.errorPage)
		r.Get("/auth/session", s.sessionInfo)
		r.Get("/auth/logout", s.logout)
		r.Post("/auth/logout", s.logout)
	})

	return r
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *APIServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              "0.0.0.0" + s.backendConfig.ListenPort,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
