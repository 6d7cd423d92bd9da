// ABOUTME: In-memory fake of the platform REST backend
// ABOUTME: chi router with bearer auth, seeded fixtures, and fault/latency hooks for tests

package twin

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type ctxKey string

const accountKey ctxKey = "account"

type fault struct {
	status  int
	message string
}

// Server is a fake backend. It is safe for concurrent use.
type Server struct {
	mu         sync.Mutex
	accounts   map[string]*account // by email
	tokens     map[string]*account
	verify     map[string]*account // pending email verification tokens
	branches   []branch
	autoVerify bool

	faults map[string][]fault
	delays map[string]time.Duration

	router chi.Router
}

// New returns a server seeded with the demo account.
func New() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]*account),
		verify:   make(map[string]*account),
		faults:   make(map[string][]fault),
		delays:   make(map[string]time.Duration),
	}
	s.seed()
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}))
	r.Use(s.injectFaults)

	r.Get("/branches", s.listBranches)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/register", s.register)
		r.Post("/validate", s.validateField)
		r.Put("/verifyemail/{token}", s.verifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(s.requireBearer)
			r.Put("/profile", s.updateProfile)
			r.Put("/password", s.updatePassword)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)

		r.Get("/investors/dashboard/stats", s.dashboardStats)
		r.Get("/investors/team", s.team)

		r.Get("/rewards/summary", s.rewardSummary)
		r.Get("/rewards", s.listRewards)
		r.Post("/rewards/claim", s.claimReward)

		r.Get("/sales", s.listSales)
		r.Post("/sales", s.createSale)

		r.Get("/withdrawals/balance", s.balance)
		r.Get("/withdrawals", s.listWithdrawals)
		r.Post("/withdrawals", s.submitWithdrawal)
	})

	return r
}

// ServeHTTP implements http.Handler so the server can back an httptest.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// FailNext makes the next request matching method and path fail with
// status and a {success:false, message} body. Calls queue in order.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := routeKey(method, path)
	s.faults[k] = append(s.faults[k], fault{status: status, message: message})
}

// Delay holds every request matching method and path for d before handling
// it. A zero d removes the delay.
func (s *Server) Delay(method, path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := routeKey(method, path)
	if d <= 0 {
		delete(s.delays, k)
		return
	}
	s.delays[k] = d
}

// SetAutoVerify makes registration return a token immediately.
func (s *Server) SetAutoVerify(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoVerify = on
}

// RevokeTokens invalidates every issued token, as when sessions expire server side.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]*account)
}

// VerificationToken returns the pending verification token for email.
func (s *Server) VerificationToken(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, acct := range s.verify {
		if strings.EqualFold(acct.user.Email, email) {
			return tok, true
		}
	}
	return "", false
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k := routeKey(r.Method, r.URL.Path)

		s.mu.Lock()
		d := s.delays[k]
		var f *fault
		if queued := s.faults[k]; len(queued) > 0 {
			f = &queued[0]
			s.faults[k] = queued[1:]
		}
		s.mu.Unlock()

		if d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		if f != nil {
			fail(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			fail(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		s.mu.Lock()
		acct := s.tokens[token]
		s.mu.Unlock()
		if acct == nil {
			fail(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), acct)))
	})
}

func (s *Server) issueToken(acct *account) string {
	tok := uuid.NewString()
	s.tokens[tok] = acct
	return tok
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func succeed(w http.ResponseWriter, data any, message string) {
	body := map[string]any{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, http.StatusOK, body)
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}
