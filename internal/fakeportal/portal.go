// Package fakeportal is a small in-process imitation of the CV portal. It
// renders the screens the page objects target closely enough to exercise
// login, the session cache, RBAC redirects and the user list without the
// real application.
package fakeportal

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"

	"github.com/networkteam/cvsuite/config"
	"github.com/networkteam/cvsuite/pages"
)

const (
	// SessionCookie holds the session token after login.
	SessionCookie = "cvportal_session"
	// DefaultRequestLogCapacity is the number of requests kept for inspection.
	DefaultRequestLogCapacity = 1000
)

// Account can sign in to the portal.
type Account struct {
	Email    string
	Password string
	Name     string
	Role     config.Role
	SBU      string
}

// Options configures a Portal.
type Options struct {
	// Accounts that may sign in. Each is also listed in user management.
	Accounts []Account
	// Users are additional user management entries without a login.
	Users []User
	// LoginDelay is added to every successful sign in.
	// Default: 0
	LoginDelay time.Duration
	// RequestLogCapacity bounds the request log.
	// Default: DefaultRequestLogCapacity
	RequestLogCapacity uint64
	// Logger receives request logs at debug level.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Portal serves the fake application. It is safe for concurrent use.
type Portal struct {
	options  Options
	logger   *slog.Logger
	accounts map[string]Account
	requests *requestLog
	handler  http.Handler

	mu       sync.Mutex
	sessions map[string]string
	logins   map[string]int
	users    *directory
}

// New creates a portal.
func New(options Options) *Portal {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Portal{
		options: options,
		logger:  logger,
		accounts: lo.SliceToMap(options.Accounts, func(a Account) (string, Account) {
			return strings.ToLower(a.Email), a
		}),
		requests: newRequestLog(options.RequestLogCapacity),
		sessions: make(map[string]string),
		logins:   make(map[string]int),
		users:    newDirectory(options.Accounts, options.Users),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", p.getLogin)
	mux.HandleFunc("POST /login", p.postLogin)
	mux.HandleFunc("POST /logout", p.postLogout)
	mux.HandleFunc("GET /{$}", p.authenticated(p.getDashboard))
	mux.HandleFunc("GET /unauthorized", p.authenticated(p.getUnauthorized))
	for _, spec := range pages.EmployeeRestrictedModules() {
		mux.HandleFunc("GET "+spec.DefaultPath, p.authenticated(p.module(spec)))
	}
	p.handler = p.record(mux)

	return p
}

func (p *Portal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// Logins returns how often email signed in successfully.
func (p *Portal) Logins(email string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logins[strings.ToLower(email)]
}

// TotalLogins is the number of successful sign ins of all accounts.
func (p *Portal) TotalLogins() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.Sum(lo.Values(p.logins))
}

// Requests returns up to the n most recent requests, oldest first.
func (p *Portal) Requests(n uint64) []Request {
	return p.requests.last(n)
}

// Users returns a snapshot of the user management entries.
func (p *Portal) Users() []User {
	return p.users.all()
}

func (p *Portal) accountOf(r *http.Request) (Account, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return Account{}, false
	}
	p.mu.Lock()
	email, ok := p.sessions[cookie.Value]
	p.mu.Unlock()
	if !ok {
		return Account{}, false
	}
	account, ok := p.accounts[email]
	return account, ok
}

type accountHandler func(w http.ResponseWriter, r *http.Request, account Account)

func (p *Portal) authenticated(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := p.accountOf(r)
		if !ok {
			http.Redirect(w, r, pages.LoginPath, http.StatusFound)
			return
		}
		next(w, r, account)
	}
}

func (p *Portal) getLogin(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, loginView(""))
}

func (p *Portal) postLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	account, ok := p.accounts[email]
	if !ok || account.Password != r.PostFormValue("password") {
		render(w, r, http.StatusUnauthorized, loginView("Invalid email or password"))
		return
	}

	if err := sleep(r.Context(), p.options.LoginDelay); err != nil {
		return
	}

	token := uuid.Must(uuid.NewV4()).String()
	p.mu.Lock()
	p.sessions[token] = email
	p.logins[email]++
	p.mu.Unlock()
	p.logger.Info("Signed in", slog.String("email", email), slog.String("role", account.Role.String()))

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (p *Portal) postLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		p.mu.Lock()
		delete(p.sessions, cookie.Value)
		p.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Path: "/", MaxAge: -1})
	http.Redirect(w, r, pages.LoginPath, http.StatusFound)
}

func (p *Portal) getDashboard(w http.ResponseWriter, r *http.Request, account Account) {
	render(w, r, http.StatusOK, layout(account, dashboardView(account)))
}

func (p *Portal) getUnauthorized(w http.ResponseWriter, r *http.Request, account Account) {
	render(w, r, http.StatusForbidden, layout(account, unauthorizedView()))
}

func (p *Portal) module(spec pages.ModuleSpec) accountHandler {
	return func(w http.ResponseWriter, r *http.Request, account Account) {
		if !Allowed(account.Role, spec) {
			http.Redirect(w, r, "/unauthorized", http.StatusFound)
			return
		}
		switch spec.Key {
		case pages.CVDashboardModule.Key:
			render(w, r, http.StatusOK, layout(account, cvDashboardView(VisibleCategories(account.Role))))
		case pages.UserManagementModule.Key:
			query := r.URL.Query().Get("q")
			render(w, r, http.StatusOK, layout(account, userListView(query, p.users.search(query))))
		default:
			render(w, r, http.StatusOK, layout(account, moduleView(spec)))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Server is a portal listening on a local port.
type Server struct {
	Portal *Portal
	Server *httptest.Server
	URL    string
}

// NewServer starts a portal on a random local port.
func NewServer(options Options) *Server {
	p := New(options)
	s := httptest.NewServer(p)
	return &Server{Portal: p, Server: s, URL: s.URL}
}

// Close shuts the server down.
func (s *Server) Close() {
	s.Server.Close()
}
