package session

import (
	"crypto/subtle"
	"net/http"
	"time"
)

const (
	AccessCookieName  = "authToken"
	RefreshCookieName = "refreshToken"

	DefaultAccessCookieTTL  = 15 * time.Minute
	DefaultRefreshCookieTTL = 7 * 24 * time.Hour
)

// CookieConfig controls how tokens are rendered as cookies.
type CookieConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Path       string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
}

func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		AccessTTL:  DefaultAccessCookieTTL,
		RefreshTTL: DefaultRefreshCookieTTL,
		Path:       "/",
		SameSite:   http.SameSiteLaxMode,
	}
}

// Cookies renders the current tokens. An absent token is rendered as an
// expiring cookie so the client drops it.
func (s *Store) Cookies(cfg CookieConfig) []*http.Cookie {
	st := s.Snapshot()
	return []*http.Cookie{
		tokenCookie(cfg, AccessCookieName, st.AccessToken, cfg.AccessTTL),
		tokenCookie(cfg, RefreshCookieName, st.RefreshToken, cfg.RefreshTTL),
	}
}

// WriteCookies sets the session cookies on w.
func (s *Store) WriteCookies(w http.ResponseWriter, cfg CookieConfig) {
	for _, c := range s.Cookies(cfg) {
		http.SetCookie(w, c)
	}
}

// ExpiredCookies renders both session cookies as expiring, whatever the
// current tokens are.
func ExpiredCookies(cfg CookieConfig) []*http.Cookie {
	return []*http.Cookie{
		tokenCookie(cfg, AccessCookieName, "", cfg.AccessTTL),
		tokenCookie(cfg, RefreshCookieName, "", cfg.RefreshTTL),
	}
}

// OwnsRequest reports whether r carries the current access token in its
// access cookie. An anonymous session owns no request.
func (s *Store) OwnsRequest(r *http.Request) bool {
	token := s.AccessToken()
	if token == "" || r == nil {
		return false
	}
	c, err := r.Cookie(AccessCookieName)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(token)) == 1
}

// LoadCookies seeds the tokens from r. It reports whether an access token
// was found. The current user is left untouched.
func (s *Store) LoadCookies(r *http.Request) bool {
	var access, refresh string
	if c, err := r.Cookie(AccessCookieName); err == nil {
		access = c.Value
	}
	if c, err := r.Cookie(RefreshCookieName); err == nil {
		refresh = c.Value
	}
	if access == "" && refresh == "" {
		return false
	}
	s.SetTokens(access, refresh)
	return access != ""
}

func tokenCookie(cfg CookieConfig, name, value string, ttl time.Duration) *http.Cookie {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	sameSite := cfg.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: sameSite,
		MaxAge:   int(ttl / time.Second),
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}
