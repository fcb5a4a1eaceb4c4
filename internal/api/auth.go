package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tscrond/signin/internal/profile"
	"github.com/tscrond/signin/internal/session"
	"github.com/tscrond/signin/internal/token"
	"github.com/tscrond/signin/internal/userdata"
	"github.com/tscrond/signin/pkg"
	"go.uber.org/zap"
)

const stateBytes = 16

func (s *APIServer) oauthHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	state, err := pkg.RandToken(stateBytes)
	if err != nil {
		s.logger.Error("generating oauth state", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	user.OAuthState = state
	if err := s.sessions.Save(r.Context(), user); err != nil {
		s.logger.Error("saving session", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	url := s.consent.AuthCodeURL(state, s.redirectURI(r))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (s *APIServer) authCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if q.Has("error") {
		s.logger.Info("provider returned an error", zap.String("error", q.Get("error")))
		s.errorView(w, q.Get("error"))
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "The 'code' URL parameter is missing", http.StatusBadRequest)
		return
	}

	user, ok := session.FromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if user.OAuthState != "" && q.Get("state") != user.OAuthState {
		s.logger.Warn("oauth state mismatch", zap.String("session_id", user.ID))
		s.errorView(w, "state_mismatch")
		return
	}

	result, err := s.login.Complete(ctx, code, s.redirectURI(r), user)
	if err != nil {
		s.logger.Error("login failed",
			zap.String("session_id", user.ID),
			zap.String("reason", failureReason(err)),
			zap.Error(err),
		)
		s.errorView(w, "")
		return
	}

	if _, err := s.sessions.Rotate(ctx, w, result.User); err != nil {
		s.logger.Error("rotating session", zap.String("session_id", user.ID), zap.Error(err))
		s.errorView(w, "")
		return
	}

	if s.notifier != nil {
		if err := s.notifier.SendSignInNotification(ctx, result.User.Email, r.UserAgent(), time.Now()); err != nil {
			s.logger.Warn("sign-in notification failed", zap.Error(err))
		}
	}

	s.successView(w, result.User.Email, result.Token.AccessToken)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenExchange):
		return "token_exchange"
	case errors.Is(err, profile.ErrEmailNotFound):
		return "email_not_found"
	case errors.Is(err, profile.ErrProfileFetch):
		return "profile_fetch"
	default:
		return "unknown"
	}
}

func (s *APIServer) errorPage(w http.ResponseWriter, r *http.Request) {
	s.errorView(w, r.URL.Query().Get("error"))
}

func (s *APIServer) sessionInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := session.FromContext(r.Context())
	if !ok || !user.Authenticated() {
		w.WriteHeader(http.StatusForbidden)
		JSON(w, map[string]any{
			"response":      "access_denied",
			"code":          http.StatusForbidden,
			"authenticated": false,
		})
		return
	}

	JSON(w, map[string]any{
		"response":      "access_granted",
		"code":          http.StatusOK,
		"authenticated": true,
		"user_info":     userdata.SessionUserInfo{Email: user.Email},
	})
}

// Delete the session record and expire the session cookie
func (s *APIServer) logout(w http.ResponseWriter, r *http.Request) {
	user, ok := session.FromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		JSON(w, map[string]any{
			"response":          "session_not_found",
			"code":              http.StatusNotFound,
			"logout_successful": true,
		})
		return
	}

	if err := s.sessions.Destroy(r.Context(), w, user.ID); err != nil {
		s.logger.Error("deleting session", zap.String("session_id", user.ID), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		JSON(w, map[string]any{
			"response":          "internal_server_error",
			"code":              http.StatusInternalServerError,
			"logout_successful": false,
		})
		return
	}

	JSON(w, map[string]any{
		"response":          "session_invalidated",
		"code":              http.StatusOK,
		"logout_successful": true,
	})
}

// redirectURI is the callback URL registered with the provider. Without a
// configured public URL it is derived from the incoming request.
func (s *APIServer) redirectURI(r *http.Request) string {
	if s.backendConfig.PublicURL != "" {
		return s.backendConfig.PublicURL + s.backendConfig.CallbackPath
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host + s.backendConfig.CallbackPath
}

func JSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Error encoding JSON", http.StatusInternalServerError)
		return
	}
}
