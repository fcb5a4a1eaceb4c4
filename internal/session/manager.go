package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

const (
	CookieName = "session_id"

	userContextKey ctxKey = "session-user"
)

// Manager ensures every request carries a session record. New records are
// only persisted once a handler saves them.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Middleware loads or starts the session before calling the next handler.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, cookieToSet, err := m.ensureSession(ctx, r.Cookie)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if cookieToSet != nil {
			http.SetCookie(w, cookieToSet)
		}

		next.ServeHTTP(w, r.WithContext(NewContext(ctx, user)))
	})
}

func (m *Manager) ensureSession(ctx context.Context, cookieFn func(name string) (*http.Cookie, error)) (User, *http.Cookie, error) {
	cookie, err := cookieFn(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return m.newSession()
		}
		return User{}, nil, err
	}

	if cookie.Value == "" {
		return m.newSession()
	}

	user, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return m.newSession()
		}
		return User{}, nil, err
	}

	return *user, nil, nil
}

func (m *Manager) newSession() (User, *http.Cookie, error) {
	now := m.now().UTC()
	user := User{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	return user, m.buildCookie(user.ID, user.ExpiresAt), nil
}

// Save persists the record returned by a handler.
func (m *Manager) Save(ctx context.Context, user User) error {
	user.UpdatedAt = m.now().UTC()
	return m.store.Save(ctx, &user)
}

// Rotate moves the record to a fresh session id, removes the old id and
// sets the new cookie. Call it whenever the session's privilege changes.
func (m *Manager) Rotate(ctx context.Context, w http.ResponseWriter, old User) (User, error) {
	now := m.now().UTC()

	rotated := old
	rotated.ID = uuid.NewString()
	rotated.UpdatedAt = now
	rotated.ExpiresAt = now.Add(m.ttl)
	if rotated.CreatedAt.IsZero() {
		rotated.CreatedAt = now
	}

	if err := m.store.Save(ctx, &rotated); err != nil {
		return User{}, err
	}

	if old.ID != "" {
		if err := m.store.Delete(ctx, old.ID); err != nil {
			return User{}, err
		}
	}

	http.SetCookie(w, m.buildCookie(rotated.ID, rotated.ExpiresAt))
	return rotated, nil
}

// Destroy removes the session and expires its cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return nil
}

// PurgeExpired runs the store's cleanup every interval until ctx ends.
func (m *Manager) PurgeExpired(ctx context.Context, interval time.Duration, onPurge func(int64, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := m.store.PurgeExpired(ctx)
			if onPurge != nil {
				onPurge(n, err)
			}
		}
	}
}

func (m *Manager) buildCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   m.secure,
		Path:     "/",
		Expires:  expiresAt,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromContext extracts the session record stored by the middleware.
func FromContext(ctx context.Context) (User, bool) {
	val, ok := ctx.Value(userContextKey).(User)
	return val, ok
}

// NewContext returns a copy of ctx carrying user.
func NewContext(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
