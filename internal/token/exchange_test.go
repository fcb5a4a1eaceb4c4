package token

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tscrond/signin/internal/googletest"
)

const redirectURI = "http://localhost:3000/auth/callback"

func TestExchange_Success(t *testing.T) {
	srv := googletest.NewServer(t)
	srv.AddCode("ABC123", redirectURI, "T1")

	e := NewExchanger(srv.OAuthConfig(), WithHTTPClient(srv.Client()))
	tok, err := e.Exchange(context.Background(), "ABC123", redirectURI)
	require.NoError(t, err)

	assert.Equal(t, "T1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, 1, srv.TokenCalls())
}

func TestExchange_CodeIsSingleUse(t *testing.T) {
	srv := googletest.NewServer(t)
	srv.AddCode("ABC123", redirectURI, "T1")
	e := NewExchanger(srv.OAuthConfig(), WithHTTPClient(srv.Client()))

	_, err := e.Exchange(context.Background(), "ABC123", redirectURI)
	require.NoError(t, err)

	_, err = e.Exchange(context.Background(), "ABC123", redirectURI)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExchange)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Equal(t, 2, srv.TokenCalls())
}

func TestExchange_RedirectURIMismatch(t *testing.T) {
	srv := googletest.NewServer(t)
	srv.AddCode("ABC123", redirectURI, "T1")
	e := NewExchanger(srv.OAuthConfig(), WithHTTPClient(srv.Client()))

	_, err := e.Exchange(context.Background(), "ABC123", "http://evil.example.com/auth/callback")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExchange)
	assert.Contains(t, err.Error(), "redirect_uri_mismatch")
}

func TestExchange_UnknownCode(t *testing.T) {
	srv := googletest.NewServer(t)
	e := NewExchanger(srv.OAuthConfig(), WithHTTPClient(srv.Client()))

	_, err := e.Exchange(context.Background(), "nope", redirectURI)
	assert.ErrorIs(t, err, ErrTokenExchange)
	assert.Equal(t, 1, srv.TokenCalls())
}

func TestExchange_NetworkFailure(t *testing.T) {
	srv := googletest.NewServer(t)
	cfg := srv.OAuthConfig()
	srv.Close()

	e := NewExchanger(cfg, WithHTTPClient(&http.Client{}))
	_, err := e.Exchange(context.Background(), "ABC123", redirectURI)
	assert.ErrorIs(t, err, ErrTokenExchange)
}

func TestAuthCodeURL(t *testing.T) {
	srv := googletest.NewServer(t)
	e := NewExchanger(srv.OAuthConfig())

	raw := e.AuthCodeURL("state-1", redirectURI)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/auth", u.Path)
	assert.Equal(t, googletest.ClientID, q.Get("client_id"))
	assert.Equal(t, redirectURI, q.Get("redirect_uri"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "email profile", q.Get("scope"))
}
