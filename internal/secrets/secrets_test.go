package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const webSecrets = `{
  "web": {
    "client_id": "123.apps.googleusercontent.com",
    "project_id": "welovecoding-login",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "client_secret": "s3cr3t",
    "redirect_uris": ["http://localhost:3000/auth/callback"]
  }
}`

func writeSecrets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client_secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	creds, err := Load(context.Background(), writeSecrets(t, webSecrets))
	require.NoError(t, err)

	assert.Equal(t, "123.apps.googleusercontent.com", creds.ClientID)
	assert.Equal(t, "s3cr3t", creds.ClientSecret)
	assert.Equal(t, "welovecoding-login", creds.ProjectID)
	assert.Equal(t, "https://oauth2.googleapis.com/token", creds.TokenURI)
	assert.Equal(t, []string{"http://localhost:3000/auth/callback"}, creds.RedirectURIs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"web": `},
		{"no web section", `{"other": {}}`},
		{"web not object", `{"web": "x"}`},
		{"missing client id", `{"web": {"client_secret": "s"}}`},
		{"missing client secret", `{"web": {"client_id": "c"}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestParse_InstalledLayout(t *testing.T) {
	creds, err := Parse([]byte(`{"installed": {"client_id": "c", "client_secret": "s"}}`))
	require.NoError(t, err)
	assert.Equal(t, "c", creds.ClientID)
	assert.Empty(t, creds.ProjectID)
}

func TestOAuthConfig(t *testing.T) {
	creds, err := Parse([]byte(webSecrets))
	require.NoError(t, err)

	cfg, err := creds.OAuthConfig("email", "profile")
	require.NoError(t, err)

	assert.Equal(t, "123.apps.googleusercontent.com", cfg.ClientID)
	assert.Equal(t, "s3cr3t", cfg.ClientSecret)
	assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.Endpoint.TokenURL)
	assert.Equal(t, oauth2.AuthStyleInParams, cfg.Endpoint.AuthStyle)
	assert.Equal(t, []string{"email", "profile"}, cfg.Scopes)
	assert.Empty(t, cfg.RedirectURL)
}

func TestOAuthConfig_WithoutRedirectURIsOrEndpoints(t *testing.T) {
	creds, err := Parse([]byte(`{"web": {"client_id": "c", "client_secret": "s", "project_id": "p"}}`))
	require.NoError(t, err)
	assert.Empty(t, creds.RedirectURIs)

	cfg, err := creds.OAuthConfig("email")
	require.NoError(t, err)

	assert.Equal(t, "c", cfg.ClientID)
	assert.Equal(t, google.Endpoint.AuthURL, cfg.Endpoint.AuthURL)
	assert.Equal(t, google.Endpoint.TokenURL, cfg.Endpoint.TokenURL)
	assert.Equal(t, oauth2.AuthStyleInParams, cfg.Endpoint.AuthStyle)
}

type fakeObjects struct {
	bucket, object string
	data           []byte
	err            error
}

func (f *fakeObjects) ReadObject(_ context.Context, bucket, object string) ([]byte, error) {
	f.bucket, f.object = bucket, object
	return f.data, f.err
}

func TestLoad_GCS(t *testing.T) {
	objects := &fakeObjects{data: []byte(webSecrets)}

	creds, err := Load(context.Background(), "gs://login-config/google/client_secrets.json", WithObjectReader(objects))
	require.NoError(t, err)

	assert.Equal(t, "login-config", objects.bucket)
	assert.Equal(t, "google/client_secrets.json", objects.object)
	assert.Equal(t, "welovecoding-login", creds.ProjectID)
}

func TestLoad_GCSFailure(t *testing.T) {
	objects := &fakeObjects{err: errors.New("object doesn't exist")}

	_, err := Load(context.Background(), "gs://login-config/missing.json", WithObjectReader(objects))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestParseGCSLocation(t *testing.T) {
	tests := []struct {
		location string
		bucket   string
		object   string
		wantErr  bool
	}{
		{"gs://b/o.json", "b", "o.json", false},
		{"gs://b/dir/o.json", "b", "dir/o.json", false},
		{"gs://b", "", "", true},
		{"gs:///o.json", "", "", true},
		{"gs://b/", "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.location, func(t *testing.T) {
			bucket, object, err := parseGCSLocation(tc.location)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.bucket, bucket)
			assert.Equal(t, tc.object, object)
		})
	}
}
