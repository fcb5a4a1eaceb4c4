// Package token exchanges authorization codes for access tokens.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// ErrTokenExchange is returned for any failed exchange: transport errors,
// provider rejections and codes that were already used or expired.
var ErrTokenExchange = errors.New("token exchange failed")

const defaultTimeout = 30 * time.Second

type Exchanger struct {
	config *oauth2.Config
	client *http.Client
}

type Option func(*Exchanger)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Exchanger) {
		e.client = c
	}
}

func NewExchanger(cfg *oauth2.Config, opts ...Option) *Exchanger {
	e := &Exchanger{
		config: cfg,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AuthCodeURL returns the consent screen URL. redirectURI must later be
// passed unchanged to Exchange.
func (e *Exchanger) AuthCodeURL(state, redirectURI string) string {
	cfg := e.withRedirect(redirectURI)
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades code for a token in a single request. It is never retried.
func (e *Exchanger) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := e.withRedirect(redirectURI)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.client)
	t, err := cfg.Exchange(ctx, code)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.ErrorCode != "" {
			return nil, fmt.Errorf("%w: provider responded %q", ErrTokenExchange, rErr.ErrorCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	if t.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	return t, nil
}

func (e *Exchanger) withRedirect(redirectURI string) *oauth2.Config {
	cfg := *e.config // copy
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}
	return &cfg
}
