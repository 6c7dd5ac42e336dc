package flows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/internal/audit"
	"github.com/authdemo/sessionkit/internal/index"
	"github.com/authdemo/sessionkit/internal/limiters"
	"github.com/authdemo/sessionkit/notify"
	"github.com/authdemo/sessionkit/password"
	"github.com/authdemo/sessionkit/session"
	"github.com/authdemo/sessionkit/tokens"
)

var testErrors = Errors{
	NotReady:           errors.New("not ready"),
	SpamRejected:       errors.New("spam rejected"),
	InvalidCredentials: errors.New("invalid credentials"),
	UserAlreadyExists:  errors.New("user already exists"),
	LookupFailed:       errors.New("lookup failed"),
	RefreshFailed:      errors.New("refresh failed"),
	Unknown:            errors.New("unknown"),
	InvalidInput:       errors.New("invalid input"),
	PasswordPolicy:     errors.New("password policy"),
	NoActiveSession:    errors.New("no active session"),
	SessionNotFound:    errors.New("session not found"),
}

// flakyStore wraps a MemoryStore and fails selected operations.
type flakyStore struct {
	*identity.MemoryStore
	mu        sync.Mutex
	failSet   bool
	failCount bool
}

func (s *flakyStore) Set(ctx context.Context, key string, value identity.UserRecord) error {
	s.mu.Lock()
	fail := s.failSet
	s.mu.Unlock()
	if fail {
		return identity.ErrUnavailable
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *flakyStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	fail := s.failCount
	s.mu.Unlock()
	if fail {
		return 0, identity.ErrUnavailable
	}
	return s.MemoryStore.Count(ctx)
}

func (s *flakyStore) setFailing(fail bool) {
	s.mu.Lock()
	s.failSet = fail
	s.mu.Unlock()
}

type navigation struct {
	route   string
	replace bool
}

type harness struct {
	deps     Deps
	session  *session.Store
	store    *flakyStore
	toasts   *notify.Recorder
	spam     *limiters.SpamLimiter
	index    *index.Email
	draw     float64
	starts   int
	stops    int
	navs     []navigation
	events   []audit.Event
	counters map[int]int
}

const (
	metricRegisterSuccess = iota + 1
	metricRegisterFailure
	metricRegisterDuplicate
	metricAuthSuccess
	metricAuthFailure
	metricSpamRejected
	metricRestoreSuccess
	metricRestoreFailure
	metricRefreshSuccess
	metricRefreshFailure
	metricLogout
	metricForcedLogout
	metricProfileSuccess
	metricProfileFailure
)

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		session:  session.NewStore(),
		store:    &flakyStore{MemoryStore: identity.NewMemoryStore()},
		toasts:   &notify.Recorder{},
		spam:     limiters.NewSpamLimiter(limiters.SpamConfig{Enabled: true}),
		index:    index.NewEmail(),
		draw:     0.99,
		counters: make(map[int]int),
	}
	issuer := tokens.NewMockIssuer(h.store, tokens.Config{
		FailureRate: 0.5,
		Rand:        func() float64 { return h.draw },
	})

	h.deps = Deps{
		Session:      h.session,
		Store:        h.store,
		Issuer:       issuer,
		Hasher:       password.NewDemo("", ""),
		Spam:         h.spam,
		Index:        h.index,
		Notify:       notify.NewCenter(h.toasts, 0),
		Navigate:     h.navigate,
		StartRefresh: func() { h.starts++ },
		StopRefresh:  func() { h.stops++ },
		Routes:       Routes{SignIn: "/sign-in", SignUp: "/signup"},
		MetricInc:    func(id int) { h.counters[id]++ },
		EmitAudit:    func(_ context.Context, e audit.Event) { h.events = append(h.events, e) },
		Metrics: MetricIDs{
			RegisterSuccess:      metricRegisterSuccess,
			RegisterFailure:      metricRegisterFailure,
			RegisterDuplicate:    metricRegisterDuplicate,
			AuthSuccess:          metricAuthSuccess,
			AuthFailure:          metricAuthFailure,
			SpamRejected:         metricSpamRejected,
			RestoreSuccess:       metricRestoreSuccess,
			RestoreFailure:       metricRestoreFailure,
			RefreshSuccess:       metricRefreshSuccess,
			RefreshFailure:       metricRefreshFailure,
			Logout:               metricLogout,
			ForcedLogout:         metricForcedLogout,
			ProfileUpdateSuccess: metricProfileSuccess,
			ProfileUpdateFailure: metricProfileFailure,
		},
		Errors: testErrors,
	}
	return h
}

func (h *harness) navigate(_ context.Context, route string, replace bool) error {
	h.navs = append(h.navs, navigation{route: route, replace: replace})
	return nil
}

// failIssuer makes every subsequent issuer call fail.
func (h *harness) failIssuer() { h.draw = 0 }

func (h *harness) register(t *testing.T, email, pw string) identity.UserRecord {
	t.Helper()
	res := RunRegister(context.Background(), SignUpInput{Email: email, Password: pw}, nil, h.deps)
	if !res.Success || res.User == nil {
		t.Fatalf("register %s failed: %+v", email, res)
	}
	return *res.User
}

func (h *harness) lastToast(t *testing.T) notify.Toast {
	t.Helper()
	toast, ok := h.toasts.Last()
	if !ok {
		t.Fatal("expected a toast")
	}
	return toast
}

func (h *harness) lastEvent(t *testing.T) audit.Event {
	t.Helper()
	if len(h.events) == 0 {
		t.Fatal("expected an audit event")
	}
	return h.events[len(h.events)-1]
}
