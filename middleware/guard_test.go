package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/authdemo/sessionkit"
	sessionpkg "github.com/authdemo/sessionkit/session"
)

type fakeSession struct {
	authenticated bool
	logouts       int
}

func (f *fakeSession) IsAuthenticated() bool { return f.authenticated }
func (f *fakeSession) Logout(context.Context) {
	f.logouts++
	f.authenticated = false
}

func TestRouteGuardExactMatch(t *testing.T) {
	s := &fakeSession{}
	g := newRouteGuard(s, []string{"/", "/profile"})

	if !g.Allow(context.Background(), "/about") {
		t.Fatal("unprotected path must be allowed")
	}
	if !g.Allow(context.Background(), "/profile/edit") {
		t.Fatal("prefix of a protected path must not match")
	}
	if s.logouts != 0 {
		t.Fatalf("unexpected logout count %d", s.logouts)
	}
	if g.Allow(context.Background(), "/profile") {
		t.Fatal("anonymous access to a protected path must be denied")
	}
	if s.logouts != 1 {
		t.Fatalf("expected one logout, got %d", s.logouts)
	}
}

func TestRouteGuardAllowsAuthenticated(t *testing.T) {
	s := &fakeSession{authenticated: true}
	g := newRouteGuard(s, []string{"/"})

	if !g.Allow(context.Background(), "/") {
		t.Fatal("authenticated access must be allowed")
	}
	if s.logouts != 0 {
		t.Fatal("authenticated access must not log out")
	}
}

func newCoordinator(t *testing.T, nav sessionkit.Navigator) *sessionkit.Coordinator {
	t.Helper()
	cfg := sessionkit.DefaultConfig()
	cfg.Mock.Latency = 0
	cfg.Mock.FailureRate = 0
	c, err := sessionkit.New().WithConfig(cfg).WithNavigator(nav).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestGuardRedirectsAnonymousRequest(t *testing.T) {
	var routes []string
	c := newCoordinator(t, sessionkit.NavigatorFunc(func(_ context.Context, route string, _ bool) error {
		routes = append(routes, route)
		return nil
	}))

	called := false
	h := Guard(c)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if called {
		t.Fatal("handler must not run")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/sign-in" {
		t.Fatalf("got %d to %q", rec.Code, rec.Header().Get("Location"))
	}
	var expired bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionpkg.AccessCookieName && ck.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Fatal("expected the access cookie to be expired")
	}
	if len(routes) != 1 || routes[0] != "/signup" {
		t.Fatalf("logout navigation = %v", routes)
	}
}

func TestGuardPassesUserThrough(t *testing.T) {
	c := newCoordinator(t, nil)
	res := c.Register(context.Background(), sessionkit.SignUpInput{Email: "a@x.com", Password: "Secret1!"}, nil)
	if !res.Success {
		t.Fatalf("register: %+v", res)
	}

	var got *sessionkit.UserRecord
	h := Guard(c)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range c.Cookies() {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got == nil || got.UserID != res.User.UserID {
		t.Fatalf("user in context = %+v", got)
	}
}

func TestGuardDeniesClientWithoutTheSessionCookie(t *testing.T) {
	c := newCoordinator(t, nil)
	res := c.Register(context.Background(), sessionkit.SignUpInput{Email: "a@x.com", Password: "Secret1!"}, nil)
	if !res.Success {
		t.Fatalf("register: %+v", res)
	}
	token := c.Session().AccessToken()

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "no cookie"},
		{name: "foreign token", cookie: &http.Cookie{Name: sessionpkg.AccessCookieName, Value: "access_token_forged"}},
		{name: "empty token", cookie: &http.Cookie{Name: sessionpkg.AccessCookieName, Value: ""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			h := Guard(c)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if called {
				t.Fatal("handler must not run")
			}
			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/sign-in" {
				t.Fatalf("got %d to %q", rec.Code, rec.Header().Get("Location"))
			}
			for _, ck := range rec.Result().Cookies() {
				if ck.Value == token || ck.MaxAge >= 0 {
					t.Fatalf("response leaks or sets a session cookie: %+v", ck)
				}
			}
			if !c.IsAuthenticated() || c.Session().AccessToken() != token {
				t.Fatal("a stranger's request must not end the session")
			}
		})
	}
}

func TestGuardUnprotectedPathHidesUserFromStranger(t *testing.T) {
	c := newCoordinator(t, nil)
	res := c.Register(context.Background(), sessionkit.SignUpInput{Email: "a@x.com", Password: "Secret1!"}, nil)
	if !res.Success {
		t.Fatalf("register: %+v", res)
	}

	var (
		called bool
		found  bool
	)
	h := Guard(c)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		_, found = UserFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	if !called {
		t.Fatal("unprotected path must be served")
	}
	if found {
		t.Fatal("a stranger must not see the session user")
	}
}

func TestGuardWithoutCoordinator(t *testing.T) {
	rec := httptest.NewRecorder()
	Guard(nil)(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}
