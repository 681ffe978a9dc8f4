package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/social-scuba/divelog/pkg/config"
)

// SessionName is the name of the login session cookie.
const SessionName = "divelog-session"

// SessionKeyUserID holds the logged-in user's id.
const SessionKeyUserID = "curr_user"

// SessionStore keeps the logged-in user id in a signed cookie.
type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore creates the cookie store.
//
// The secret can be any passphrase; it is SHA-256 hashed to derive the
// 32-byte signing key, so it must stay the same across restarts.
func NewSessionStore(cfg config.SessionConfig) *SessionStore {
	key := sha256.Sum256([]byte(cfg.Secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

// Login records userID in the session cookie.
func (s *SessionStore) Login(w http.ResponseWriter, r *http.Request, userID int) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil && session == nil {
		return err
	}
	session.Values[SessionKeyUserID] = userID
	return session.Save(r, w)
}

// Logout removes the user id and expires the cookie.
func (s *SessionStore) Logout(w http.ResponseWriter, r *http.Request) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil && session == nil {
		return err
	}
	delete(session.Values, SessionKeyUserID)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// UserID returns the logged-in user id, if any. A tampered or expired
// cookie reads as logged out.
func (s *SessionStore) UserID(r *http.Request) (int, bool) {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return 0, false
	}
	id, ok := session.Values[SessionKeyUserID].(int)
	return id, ok && id > 0
}
