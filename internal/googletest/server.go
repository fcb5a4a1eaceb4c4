// Package googletest runs an in-process stand-in for Google's OAuth2
// token endpoint and the People API.
package googletest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/people/v1"
)

const (
	ClientID     = "test-client.apps.googleusercontent.com"
	ClientSecret = "test-secret"
)

type grant struct {
	redirectURI string
	accessToken string
	used        bool
}

// Server counts every request it receives so tests can assert on the
// number of outbound calls a flow made.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	grants      map[string]*grant
	people      map[string]*people.Person
	tokenCalls  int
	peopleCalls int
}

func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		grants: make(map[string]*grant),
		people: make(map[string]*people.Person),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", s.handleToken)
	mux.HandleFunc("/v1/people/me", s.handlePeopleMe)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// AddCode registers a single-use authorization code which exchanges for
// accessToken when presented with redirectURI.
func (s *Server) AddCode(code, redirectURI, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[code] = &grant{redirectURI: redirectURI, accessToken: accessToken}
}

// SetPerson sets the people/me response for requests bearing accessToken.
func (s *Server) SetPerson(accessToken string, p *people.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[accessToken] = p
}

func (s *Server) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

func (s *Server) PeopleCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peopleCalls
}

// Calls returns the total number of requests served.
func (s *Server) Calls() int {
	return s.TokenCalls() + s.PeopleCalls()
}

// PeopleEndpoint is the base path to hand to the People API client.
func (s *Server) PeopleEndpoint() string {
	return s.URL + "/"
}

// OAuthConfig returns a client configuration pointing at the stub token endpoint.
func (s *Server) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     ClientID,
		ClientSecret: ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.URL + "/auth",
			TokenURL:  s.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"email", "profile"},
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenCalls++

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "invalid_request"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	if r.PostForm.Get("client_id") != ClientID || r.PostForm.Get("client_secret") != ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}
	if r.PostForm.Get("grant_type") != "authorization_code" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	g, ok := s.grants[r.PostForm.Get("code")]
	if !ok || g.used {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "Malformed auth code.",
		})
		return
	}
	if g.redirectURI != r.PostForm.Get("redirect_uri") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "redirect_uri_mismatch"})
		return
	}
	g.used = true

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": g.accessToken,
		"token_type":   "Bearer",
		"expires_in":   3599,
		"scope":        "email profile",
	})
}

func (s *Server) handlePeopleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peopleCalls++

	accessToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	p, ok := s.people[accessToken]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{
				"code":    http.StatusUnauthorized,
				"message": "Request had invalid authentication credentials.",
				"status":  "UNAUTHENTICATED",
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
