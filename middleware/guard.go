package middleware

import (
	"context"
	"net/http"

	"github.com/authdemo/sessionkit"
)

type userContextKey struct{}

// UserFromContext returns the user the guard admitted the request for.
func UserFromContext(ctx context.Context) (*sessionkit.UserRecord, bool) {
	u, ok := ctx.Value(userContextKey{}).(*sessionkit.UserRecord)
	return u, ok
}

// session is the coordinator surface the guard needs.
type session interface {
	IsAuthenticated() bool
	Logout(ctx context.Context)
}

// RouteGuard admits navigation to protected paths only while a session is
// authenticated. Paths match exactly; "/profile/" is not "/profile".
type RouteGuard struct {
	session   session
	protected map[string]struct{}
}

// NewRouteGuard protects the paths in c's Routes.Protected.
func NewRouteGuard(c *sessionkit.Coordinator) *RouteGuard {
	return newRouteGuard(c, c.Config().Routes.Protected)
}

func newRouteGuard(s session, paths []string) *RouteGuard {
	g := &RouteGuard{
		session:   s,
		protected: make(map[string]struct{}, len(paths)),
	}
	for _, p := range paths {
		g.protected[p] = struct{}{}
	}
	return g
}

func (g *RouteGuard) Protected(path string) bool {
	_, ok := g.protected[path]
	return ok
}

// Allow reports whether navigation to path may proceed. Denied navigation
// logs the session out, which also navigates to the sign-in or sign-up
// route.
func (g *RouteGuard) Allow(ctx context.Context, path string) bool {
	if !g.Protected(path) {
		return true
	}
	if g.session != nil && g.session.IsAuthenticated() {
		return true
	}
	if g.session != nil {
		g.session.Logout(ctx)
	}
	return false
}

// Guard is the HTTP form of RouteGuard for a single-session server such as
// a local backend-for-frontend. A request only acts for the session when its
// authToken cookie carries the session's access token. Denied requests get
// expired session cookies and a 303 to the sign-in route.
//
// A protected request from a client that does not own an authenticated
// session is denied without logging that session out.
func Guard(c *sessionkit.Coordinator) func(http.Handler) http.Handler {
	if c == nil {
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			})
		}
	}
	g := NewRouteGuard(c)
	signIn := c.Config().Routes.SignIn

	deny := func(w http.ResponseWriter, r *http.Request) {
		c.ExpireCookies(w)
		http.Redirect(w, r, signIn, http.StatusSeeOther)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := c.OwnsRequest(r)
			if g.Protected(r.URL.Path) && c.IsAuthenticated() && !owner {
				deny(w, r)
				return
			}
			if !g.Allow(r.Context(), r.URL.Path) {
				deny(w, r)
				return
			}

			ctx := r.Context()
			if u := c.CurrentUser(); u != nil && owner {
				ctx = context.WithValue(ctx, userContextKey{}, u)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
