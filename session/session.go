package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"todo-service/models"

	"github.com/google/uuid"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const (
	// CookieName carries the opaque session id
	CookieName = "todo_session"
	// AuthType is the httpserver route auth type for routes gated by a logged-in session
	AuthType = "session"

	keyPrefix = "session:"
)

// Manager keeps session state in a cache keyed by an opaque cookie value
type Manager struct {
	cache  cache.Cache
	ttl    time.Duration
	secure bool
}

// NewManager creates a session manager
func NewManager(c cache.Cache, ttl time.Duration, secure bool) *Manager {
	return &Manager{cache: c, ttl: ttl, secure: secure}
}

// Start stores sess under a fresh id and sets the session cookie.
// Any session already referenced by the request is dropped so a login never reuses an old id.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, sess models.Session) (string, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		m.cache.Delete(keyPrefix + cookie.Value)
	}

	id := uuid.New().String()
	if err := m.Save(id, sess); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return id, nil
}

// Save overwrites the state stored under id
func (m *Manager) Save(id string, sess models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	// Stored as a string so memory and Redis backends hand back the same type
	if err := m.cache.Set(keyPrefix+id, string(data), m.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Load returns the session referenced by the request cookie and its id.
// A missing, expired or unreadable session loads as an anonymous one with an empty id.
func (m *Manager) Load(r *http.Request) (*models.Session, string) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return &models.Session{}, ""
	}

	raw, err := m.cache.Get(keyPrefix + cookie.Value)
	if err != nil {
		return &models.Session{}, ""
	}

	var sess models.Session
	switch v := raw.(type) {
	case string:
		err = json.Unmarshal([]byte(v), &sess)
	case []byte:
		err = json.Unmarshal(v, &sess)
	default:
		err = fmt.Errorf("unexpected session type %T", raw)
	}
	if err != nil {
		logger.Error("Invalid session data", zap.Error(err))
		return &models.Session{}, ""
	}
	return &sess, cookie.Value
}

// Destroy removes the session state and expires the cookie
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		MaxAge:   -1,
	})

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	if err := m.cache.Delete(keyPrefix + cookie.Value); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate is the httpserver auth callback for session routes.
// It accepts only logged-in sessions and exposes the session as the request claims.
func (m *Manager) Authenticate(r *http.Request) (bool, httpserver.RequestAuth) {
	sess, _ := m.Load(r)
	if !sess.LoggedIn || sess.UserID == "" {
		return false, httpserver.RequestAuth{}
	}
	return true, httpserver.RequestAuth{
		Type:   AuthType,
		Client: sess.UserID,
		Claims: *sess,
	}
}

// FromContext returns the session injected by Authenticate
func FromContext(ctx context.Context) (*models.Session, bool) {
	auth := httpserver.GetRequestAuth(ctx)
	if auth == nil {
		return nil, false
	}
	sess, ok := auth.Claims.(models.Session)
	if !ok {
		return nil, false
	}
	return &sess, true
}

// WithSession attaches sess to ctx the same way the httpserver does after Authenticate
func WithSession(ctx context.Context, sess models.Session) context.Context {
	return context.WithValue(ctx, httpserver.RequestAuthKey, httpserver.RequestAuth{
		Type:   AuthType,
		Client: sess.UserID,
		Claims: sess,
	})
}
