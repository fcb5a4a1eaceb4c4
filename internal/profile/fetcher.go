// Package profile reads the signed-in user's Google profile.
package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tscrond/signin/internal/userdata"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

var (
	// ErrProfileFetch is returned when the profile request itself fails.
	ErrProfileFetch = errors.New("profile fetch failed")
	// ErrEmailNotFound is returned when the profile was fetched but carries
	// no single account email.
	ErrEmailNotFound = errors.New("account email not in email list")
)

const (
	personFields     = "names,emailAddresses"
	sourceAccount    = "ACCOUNT"
	defaultTimeout   = 30 * time.Second
	selfResourceName = "people/me"
)

type Fetcher struct {
	client   *http.Client
	endpoint string
	appName  string
}

type Option func(*Fetcher)

// WithHTTPClient sets the base client; its transport carries the bearer token.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithEndpoint overrides the People API base path.
func WithEndpoint(endpoint string) Option {
	return func(f *Fetcher) {
		f.endpoint = endpoint
	}
}

// WithApplicationName tags outgoing requests with the client's project id.
func WithApplicationName(name string) Option {
	return func(f *Fetcher) {
		f.appName = name
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{client: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchSelf returns the profile of the user the access token belongs to.
func (f *Fetcher) FetchSelf(ctx context.Context, accessToken string) (*userdata.Profile, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrProfileFetch)
	}

	svc, err := f.service(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: building client: %v", ErrProfileFetch, err)
	}

	person, err := svc.People.Get(selfResourceName).PersonFields(personFields).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: status %d: %s", ErrProfileFetch, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	return toProfile(person), nil
}

func (f *Fetcher) service(ctx context.Context, accessToken string) (*people.Service, error) {
	base := context.WithValue(ctx, oauth2.HTTPClient, f.client)
	client := oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = f.client.Timeout

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint))
	}

	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	svc.UserAgent = f.appName

	return svc, nil
}

func toProfile(p *people.Person) *userdata.Profile {
	profile := &userdata.Profile{
		ID: strings.TrimPrefix(p.ResourceName, "people/"),
	}

	for _, name := range p.Names {
		if name != nil && name.DisplayName != "" {
			profile.DisplayName = name.DisplayName
			break
		}
	}

	for _, e := range p.EmailAddresses {
		if e == nil || e.Value == "" {
			continue
		}
		profile.Emails = append(profile.Emails, userdata.Email{
			Value: e.Value,
			Type:  emailType(e),
		})
	}

	return profile
}

// emailType reports "account" for the address Google sources from the
// account itself, otherwise the label the user gave the address.
func emailType(e *people.EmailAddress) string {
	if e.Metadata != nil && e.Metadata.Source != nil && e.Metadata.Source.Type == sourceAccount {
		return userdata.EmailTypeAccount
	}
	return strings.ToLower(e.Type)
}

// AccountEmail returns the single address typed "account". Two different
// account addresses are treated like none.
func AccountEmail(p *userdata.Profile) (string, error) {
	if p == nil {
		return "", ErrEmailNotFound
	}

	var found string
	for _, e := range p.Emails {
		if e.Type != userdata.EmailTypeAccount {
			continue
		}
		if found != "" && !strings.EqualFold(found, e.Value) {
			return "", fmt.Errorf("%w: ambiguous account emails", ErrEmailNotFound)
		}
		found = e.Value
	}

	if found == "" {
		return "", ErrEmailNotFound
	}

	return found, nil
}
