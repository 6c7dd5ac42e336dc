package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/authdemo/sessionkit/identity"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user *identity.UserRecord
		want string
	}{
		{"no user", nil, ""},
		{"both names", &identity.UserRecord{FirstName: "Ada", LastName: "Lovelace", Email: "a@x.com"}, "Ada Lovelace"},
		{"first only", &identity.UserRecord{FirstName: "Ada", Email: "a@x.com"}, "Ada"},
		{"last only", &identity.UserRecord{LastName: "Lovelace", Email: "a@x.com"}, "Lovelace"},
		{"email fallback", &identity.UserRecord{Email: "a@x.com"}, "a@x.com"},
	}
	for _, tc := range cases {
		s := NewStore()
		s.SetCurrentUser(tc.user)
		if got := s.DisplayName(); got != tc.want {
			t.Fatalf("%s: DisplayName = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestIsAuthenticatedFollowsAccessToken(t *testing.T) {
	s := NewStore()
	if s.IsAuthenticated() {
		t.Fatal("empty store must not be authenticated")
	}
	s.SetTokens("access", "refresh")
	if !s.IsAuthenticated() {
		t.Fatal("expected authenticated once access token is set")
	}
	if s.CurrentUser() != nil {
		t.Fatal("tokens alone must not populate the user")
	}
	s.ClearTokens()
	if s.IsAuthenticated() || s.RefreshToken() != "" {
		t.Fatal("ClearTokens must drop both tokens")
	}
}

func TestCurrentUserIsCopied(t *testing.T) {
	s := NewStore()
	u := &identity.UserRecord{Email: "a@x.com"}
	s.SetCurrentUser(u)
	u.Email = "mutated"

	got := s.CurrentUser()
	if got.Email != "a@x.com" {
		t.Fatalf("store shares memory with caller: %q", got.Email)
	}
	got.Email = "mutated again"
	if s.CurrentUser().Email != "a@x.com" {
		t.Fatal("CurrentUser result shares memory with store")
	}
}

func TestMutatorsSafeOnAnonymousSession(t *testing.T) {
	s := NewStore()
	s.ClearTokens()
	s.SetCurrentUser(nil)
	s.SetLoading(false)
	if s.Loading() {
		t.Fatal("loading must never go negative")
	}
	if s.ReplaceAccessToken("", "x") {
		t.Fatal("ReplaceAccessToken must not set a token on an empty session")
	}
}

func TestLoadingIsReferenceCounted(t *testing.T) {
	s := NewStore()
	s.SetLoading(true)
	s.SetLoading(true)
	s.SetLoading(false)
	if !s.Loading() {
		t.Fatal("expected loading while one operation is outstanding")
	}
	s.SetLoading(false)
	if s.Loading() {
		t.Fatal("expected loading cleared")
	}
}

func TestReplaceAccessTokenKeepsRefresh(t *testing.T) {
	s := NewStore()
	s.SetTokens("a1", "r1")

	if s.ReplaceAccessToken("stale", "a2") {
		t.Fatal("swap must fail for a stale expected token")
	}
	if !s.ReplaceAccessToken("a1", "a2") {
		t.Fatal("swap must succeed for the current token")
	}
	if s.AccessToken() != "a2" || s.RefreshToken() != "r1" {
		t.Fatalf("unexpected tokens %q %q", s.AccessToken(), s.RefreshToken())
	}
}

func TestObserversReceiveChanges(t *testing.T) {
	s := NewStore()
	var (
		mu     sync.Mutex
		fields []Field
	)
	unsubscribe := s.Subscribe(func(c Change) {
		mu.Lock()
		fields = append(fields, c.Field)
		mu.Unlock()
	})

	s.SetCurrentUser(&identity.UserRecord{Email: "a@x.com"})
	s.SetTokens("a", "r")
	s.SetLoading(true)
	unsubscribe()
	s.ClearTokens()

	mu.Lock()
	defer mu.Unlock()
	want := []Field{FieldUser, FieldTokens, FieldLoading}
	if len(fields) != len(want) {
		t.Fatalf("observed %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("observed %v, want %v", fields, want)
		}
	}
}

func TestObserverMayReadStore(t *testing.T) {
	s := NewStore()
	var seen string
	s.Subscribe(func(Change) { seen = s.AccessToken() })
	s.SetTokens("a", "r")
	if seen != "a" {
		t.Fatalf("observer read %q", seen)
	}
}

func TestCookiesCarryContractExpiries(t *testing.T) {
	s := NewStore()
	s.SetTokens("a", "r")

	cookies := s.Cookies(DefaultCookieConfig())
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	access, refresh := cookies[0], cookies[1]
	if access.Name != AccessCookieName || access.MaxAge != int((15*time.Minute)/time.Second) {
		t.Fatalf("unexpected access cookie %+v", access)
	}
	if refresh.Name != RefreshCookieName || refresh.MaxAge != int((7*24*time.Hour)/time.Second) {
		t.Fatalf("unexpected refresh cookie %+v", refresh)
	}
	if access.Path != "/" || access.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie scope %+v", access)
	}
}

func TestCookiesExpireAbsentTokens(t *testing.T) {
	s := NewStore()
	for _, c := range s.Cookies(DefaultCookieConfig()) {
		if c.MaxAge >= 0 {
			t.Fatalf("expected expiring cookie for absent token, got %+v", c)
		}
	}
}

func TestLoadCookiesRoundTrip(t *testing.T) {
	src := NewStore()
	src.SetTokens("a", "r")
	rec := httptest.NewRecorder()
	src.WriteCookies(rec, DefaultCookieConfig())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	dst := NewStore()
	if !dst.LoadCookies(req) {
		t.Fatal("expected access token to be loaded")
	}
	if dst.AccessToken() != "a" || dst.RefreshToken() != "r" {
		t.Fatalf("loaded %q %q", dst.AccessToken(), dst.RefreshToken())
	}
}

func TestExpiredCookiesIgnoreCurrentTokens(t *testing.T) {
	cookies := ExpiredCookies(DefaultCookieConfig())
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if c.Value != "" || c.MaxAge >= 0 {
			t.Fatalf("expected an expiring cookie, got %+v", c)
		}
	}
}

func TestOwnsRequestMatchesAccessCookie(t *testing.T) {
	s := NewStore()
	withCookie := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: value})
		return req
	}

	if s.OwnsRequest(withCookie("")) {
		t.Fatal("anonymous session must own no request")
	}

	s.SetTokens("a", "r")
	if !s.OwnsRequest(withCookie("a")) {
		t.Fatal("matching cookie must own the session")
	}
	if s.OwnsRequest(withCookie("b")) {
		t.Fatal("foreign cookie must not own the session")
	}
	if s.OwnsRequest(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Fatal("request without cookie must not own the session")
	}
	if s.OwnsRequest(nil) {
		t.Fatal("nil request must not own the session")
	}
}
