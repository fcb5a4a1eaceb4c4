// Package secrets loads the Google OAuth client secrets document the
// service authenticates with.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrConfiguration is returned when the client secrets cannot be read or
// do not describe a usable OAuth client. It is fatal at startup.
var ErrConfiguration = errors.New("client secrets configuration error")

// Credentials is the parsed client secrets document. It is immutable
// after Load and safe for concurrent use.
type Credentials struct {
	ClientID     string
	ClientSecret string
	ProjectID    string
	AuthURI      string
	TokenURI     string
	RedirectURIs []string
}

// ObjectReader fetches an object from a storage bucket.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
}

type loader struct {
	objects ObjectReader
}

type Option func(*loader)

// WithObjectReader replaces the Cloud Storage reader used for gs:// locations.
func WithObjectReader(r ObjectReader) Option {
	return func(l *loader) {
		l.objects = r
	}
}

// Load reads the client secrets from location, which is either a file
// path or a gs://bucket/object URL.
func Load(ctx context.Context, location string, opts ...Option) (*Credentials, error) {
	l := &loader{objects: gcsReader{}}
	for _, opt := range opts {
		opt(l)
	}

	data, err := l.read(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfiguration, location, err)
	}

	return Parse(data)
}

func (l *loader) read(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, gcsScheme) {
		bucket, object, err := parseGCSLocation(location)
		if err != nil {
			return nil, err
		}
		return l.objects.ReadObject(ctx, bucket, object)
	}

	return os.ReadFile(location)
}

// Parse extracts credentials from a client secrets document. Both the
// "web" and "installed" application layouts are accepted.
func Parse(data []byte) (*Credentials, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrConfiguration)
	}

	app := gjson.GetBytes(data, "web")
	if !app.Exists() {
		app = gjson.GetBytes(data, "installed")
	}
	if !app.IsObject() {
		return nil, fmt.Errorf("%w: missing \"web\" section", ErrConfiguration)
	}

	creds := &Credentials{
		ClientID:     app.Get("client_id").String(),
		ClientSecret: app.Get("client_secret").String(),
		ProjectID:    app.Get("project_id").String(),
		AuthURI:      app.Get("auth_uri").String(),
		TokenURI:     app.Get("token_uri").String(),
	}
	for _, uri := range app.Get("redirect_uris").Array() {
		creds.RedirectURIs = append(creds.RedirectURIs, uri.String())
	}

	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id is empty", ErrConfiguration)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret is empty", ErrConfiguration)
	}

	return creds, nil
}

// OAuthConfig builds the oauth2 configuration for the client, requesting
// the given scopes. Endpoints default to Google's when the document does
// not name them. RedirectURL is left empty; it is chosen per request.
func (c *Credentials) OAuthConfig(scopes ...string) (*oauth2.Config, error) {
	if c == nil || c.ClientID == "" || c.ClientSecret == "" {
		return nil, fmt.Errorf("%w: incomplete credentials", ErrConfiguration)
	}

	endpoint := oauth2.Endpoint{
		AuthURL:  c.AuthURI,
		TokenURL: c.TokenURI,
	}
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}, nil
}
