// ABOUTME: Auth slice holding the current user and session credential
// ABOUTME: Login, registration, verification, profile and password changes, and logout

package store

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/harperreed/rankup/api"
	"github.com/harperreed/rankup/models"
	"github.com/harperreed/rankup/session"
)

const (
	msgLoginFailed    = "Login failed. Please check your credentials."
	msgRegisterFailed = "Registration failed. Please try again."
	msgVerifyFailed   = "Verification failed."
	msgProfileFailed  = "Profile update failed."
	msgPasswordFailed = "Password update failed."

	// MsgSessionExpired is the error shown after the server rejects the stored credential.
	MsgSessionExpired = "Your session has expired. Please log in again."
)

// AuthState is a snapshot of the auth slice. User is nil when logged out.
type AuthState struct {
	Status
	User *models.User
}

// LoggedIn reports whether a session is present.
func (s AuthState) LoggedIn() bool {
	return s.User != nil
}

type AuthSlice struct {
	slice
	user     *models.User
	api      *api.Client
	sessions session.Store
	logger   *log.Logger
}

func newAuthSlice(h *hub, sessions session.Store, logger *log.Logger) *AuthSlice {
	a := &AuthSlice{
		slice:    newSlice("auth", h),
		sessions: sessions,
		logger:   logger,
	}
	if sessions == nil {
		return a
	}

	user, err := sessions.Load()
	if err != nil {
		logger.Warn("ignoring stored session", "err", err)
		return a
	}
	a.user = user
	return a
}

// State returns a copy of the current snapshot.
func (a *AuthSlice) State() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st := AuthState{Status: a.status}
	if a.user != nil {
		u := *a.user
		st.User = &u
	}
	return st
}

// Token implements api.CredentialSource.
func (a *AuthSlice) Token() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil || a.user.Token == "" {
		return "", false
	}
	return a.user.Token, true
}

func (a *AuthSlice) persist(user *models.User) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.Save(user); err != nil {
		a.logger.Warn("failed to persist session", "err", err)
	}
}

func (a *AuthSlice) forget() {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.Clear(); err != nil {
		a.logger.Warn("failed to clear stored session", "err", err)
	}
}

// enveloped posts or puts body and unwraps the {success, data, message} envelope.
func enveloped[T any](ctx context.Context, c *api.Client, method, path string, body any) (api.Envelope[T], error) {
	var env api.Envelope[T]
	if err := c.Do(ctx, method, path, nil, body, &env); err != nil {
		return env, err
	}
	if !env.Success {
		return env, api.Rejected(env.Message)
	}
	return env, nil
}

// Login authenticates and persists the returned user record.
func (a *AuthSlice) Login(ctx context.Context, creds models.Credentials) error {
	_, err := run(ctx, &a.slice, request[*models.User]{
		op:       "login",
		fallback: msgLoginFailed,
		call: func(ctx context.Context) (*models.User, error) {
			env, err := enveloped[*models.User](api.Public(ctx), a.api, http.MethodPost, "/auth/login", creds)
			if err != nil {
				return nil, err
			}
			if env.Data == nil {
				return nil, api.Rejected(env.Message)
			}
			a.persist(env.Data)
			return env.Data, nil
		},
		onFulfilled: func(u *models.User) { a.user = u },
	})
	return err
}

// Register creates an account. When the server returns a token the new user
// is logged in immediately; otherwise the current session is left as is and
// the account awaits email verification.
func (a *AuthSlice) Register(ctx context.Context, reg models.Registration) (loggedIn bool, err error) {
	user, err := run(ctx, &a.slice, request[*models.User]{
		op:       "register",
		fallback: msgRegisterFailed,
		call: func(ctx context.Context) (*models.User, error) {
			env, err := enveloped[*models.User](api.Public(ctx), a.api, http.MethodPost, "/auth/register", reg)
			if err != nil {
				return nil, err
			}
			if env.Data == nil || env.Data.Token == "" {
				return nil, nil
			}
			a.persist(env.Data)
			return env.Data, nil
		},
		onFulfilled: func(u *models.User) {
			if u != nil {
				a.user = u
			}
		},
	})
	return user != nil, err
}

// VerifyEmail confirms an account with the emailed token and returns the server's message.
func (a *AuthSlice) VerifyEmail(ctx context.Context, token string) (string, error) {
	return run(ctx, &a.slice, request[string]{
		op:       "verifyEmail",
		fallback: msgVerifyFailed,
		call: func(ctx context.Context) (string, error) {
			env, err := enveloped[any](api.Public(ctx), a.api, http.MethodPut, "/auth/verifyemail/"+url.PathEscape(token), nil)
			return env.Message, err
		},
	})
}

// UpdateProfile saves profile changes. A response without a token keeps the current one.
func (a *AuthSlice) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	_, err := run(ctx, &a.slice, request[*models.User]{
		op:       "updateProfile",
		fallback: msgProfileFailed,
		call: func(ctx context.Context) (*models.User, error) {
			env, err := enveloped[*models.User](ctx, a.api, http.MethodPut, "/auth/profile", upd)
			if err != nil {
				return nil, err
			}
			if env.Data == nil {
				return nil, api.Rejected(env.Message)
			}
			if env.Data.Token == "" {
				if token, ok := a.Token(); ok {
					env.Data.Token = token
				}
			}
			a.persist(env.Data)
			return env.Data, nil
		},
		onFulfilled: func(u *models.User) { a.user = u },
		onRejected:  a.keepExpiry,
	})
	return err
}

// UpdatePassword changes the password and returns the server's message.
func (a *AuthSlice) UpdatePassword(ctx context.Context, change models.PasswordChange) (string, error) {
	return run(ctx, &a.slice, request[string]{
		op:       "updatePassword",
		fallback: msgPasswordFailed,
		call: func(ctx context.Context) (string, error) {
			env, err := enveloped[any](ctx, a.api, http.MethodPut, "/auth/password", change)
			return env.Message, err
		},
		onRejected: a.keepExpiry,
	})
}

// keepExpiry preserves the expiry message when a credentialed auth call was
// rejected with 401 and the session has already been dropped. Runs under the lock.
func (a *AuthSlice) keepExpiry(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Unauthorized() && a.user == nil {
		a.status.Error = MsgSessionExpired
	}
}

// Logout drops the session from memory and durable storage.
func (a *AuthSlice) Logout() {
	a.mu.Lock()
	a.user = nil
	a.status.Error = ""
	a.mu.Unlock()
	a.forget()
	a.emit("logout", PhaseReset, "")
}

// ExpireSession logs out after the server rejected token and leaves an
// explanatory error. It does nothing unless token is the current session's,
// so a late 401 for a replaced session is ignored.
func (a *AuthSlice) ExpireSession(token string) {
	a.mu.Lock()
	if a.user == nil || a.user.Token != token {
		a.mu.Unlock()
		return
	}
	a.user = nil
	a.status.Error = MsgSessionExpired
	a.mu.Unlock()
	a.forget()
	a.logger.Warn("session expired")
	a.emit("expireSession", PhaseReset, MsgSessionExpired)
}

func (a *AuthSlice) ClearError() {
	a.clearError("clearError")
}
