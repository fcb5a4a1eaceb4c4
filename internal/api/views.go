package api

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

const (
	errorViewPath  = "/auth/error"
	maxReasonRunes = 200
)

//go:embed templates/*.html
var viewFiles embed.FS

var views = template.Must(template.ParseFS(viewFiles, "templates/*.html"))

type successData struct {
	Email       string
	AccessToken string
}

type errorData struct {
	Reason    template.HTML
	LoginPath string
}

func (s *APIServer) successView(w http.ResponseWriter, email, accessToken string) {
	s.render(w, http.StatusOK, "success.html", successData{
		Email:       email,
		AccessToken: accessToken,
	})
}

// errorView renders the login failure page. reason comes from the
// provider's redirect and is sanitised before display.
func (s *APIServer) errorView(w http.ResponseWriter, reason string) {
	if r := []rune(reason); len(r) > maxReasonRunes {
		reason = string(r[:maxReasonRunes])
	}

	var safe template.HTML
	if reason != "" && s.backendConfig.HTMLSanitizationPolicy != nil {
		safe = template.HTML(s.backendConfig.HTMLSanitizationPolicy.Sanitize(reason))
	} else if reason != "" {
		safe = template.HTML(template.HTMLEscapeString(reason))
	}

	s.render(w, http.StatusUnauthorized, "error.html", errorData{
		Reason:    safe,
		LoginPath: "/auth/login",
	})
}

func (s *APIServer) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("rendering view", zap.String("view", name), zap.Error(err))
	}
}
