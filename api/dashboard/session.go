package dashboard

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/kilianp07/occupancy/core/occupancy"
)

const (
	sessionName  = "occupancy"
	keyPinned    = "pin_enabled"
	keyPinnedFor = "pin_line"
)

// NewSessionStore returns a cookie store signed with secret. An empty secret
// gets a random key, so pins do not survive a restart.
func NewSessionStore(secret string) *sessions.CookieStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

func loadPin(store sessions.Store, r *http.Request) occupancy.Pin {
	sess, err := store.Get(r, sessionName)
	if err != nil {
		// Tampered or stale cookie: start unpinned.
		return occupancy.Pin{}
	}
	enabled, _ := sess.Values[keyPinned].(bool)
	line, _ := sess.Values[keyPinnedFor].(string)
	return occupancy.Pin{Enabled: enabled, Line: line}
}

func savePin(store sessions.Store, w http.ResponseWriter, r *http.Request, pin occupancy.Pin) error {
	sess, _ := store.Get(r, sessionName)
	sess.Values[keyPinned] = pin.Enabled
	sess.Values[keyPinnedFor] = pin.Line
	return sess.Save(r, w)
}
