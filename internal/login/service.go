// Package login completes the authorization code flow: it exchanges the
// code, reads the user's profile and returns the updated session record.
package login

import (
	"context"
	"fmt"

	"github.com/tscrond/signin/internal/profile"
	"github.com/tscrond/signin/internal/session"
	"github.com/tscrond/signin/internal/userdata"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type TokenExchanger interface {
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
}

type ProfileFetcher interface {
	FetchSelf(ctx context.Context, accessToken string) (*userdata.Profile, error)
}

// Result of a completed login. User is the caller's session record with
// the account email filled in.
type Result struct {
	Token   *oauth2.Token
	Profile *userdata.Profile
	User    session.User
}

type Service struct {
	tokens   TokenExchanger
	profiles ProfileFetcher
	logger   *zap.Logger
}

func NewService(tokens TokenExchanger, profiles ProfileFetcher, logger *zap.Logger) *Service {
	return &Service{
		tokens:   tokens,
		profiles: profiles,
		logger:   logger,
	}
}

// Complete runs exchange, profile fetch and email extraction in order and
// stops at the first failure. The user passed in is never modified.
func (s *Service) Complete(ctx context.Context, code, redirectURI string, user session.User) (*Result, error) {
	t, err := s.tokens.Exchange(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}

	p, err := s.profiles.FetchSelf(ctx, t.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	email, err := profile.AccountEmail(p)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.ID, err)
	}

	user.Email = email
	user.OAuthState = ""

	s.logger.Info("login completed",
		zap.String("session_id", user.ID),
		zap.String("profile_id", p.ID),
		zap.String("email", email),
	)

	return &Result{
		Token:   t,
		Profile: p,
		User:    user,
	}, nil
}
