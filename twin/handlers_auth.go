// ABOUTME: Fake auth endpoints: login, registration, verification, profile, password
// ABOUTME: Responses use the {success, data, message} envelope

package twin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harperreed/rankup/models"
)

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) listBranches(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]branch(nil), s.branches...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decode(r, &creds); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accounts[strings.ToLower(creds.Email)]
	if acct == nil || acct.password != creds.Password {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !acct.verified {
		fail(w, http.StatusUnauthorized, "Please verify your email before logging in")
		return
	}

	user := acct.user
	user.Token = s.issueToken(acct)
	succeed(w, user, "")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := decode(r, &reg); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reg.Email == "" || reg.UserName == "" || reg.Password == "" {
		fail(w, http.StatusBadRequest, "Please fill in all required fields")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg.Email = strings.ToLower(reg.Email)
	if s.accounts[reg.Email] != nil {
		fail(w, http.StatusBadRequest, "User already exists")
		return
	}
	if s.userNameTaken(reg.UserName) {
		fail(w, http.StatusBadRequest, "Username already taken")
		return
	}

	acct := newAccount(reg, s.autoVerify)
	s.accounts[reg.Email] = acct

	user := acct.user
	if s.autoVerify {
		user.Token = s.issueToken(acct)
		succeed(w, user, "Registration successful")
		return
	}
	s.verify[uuid.NewString()] = acct
	succeed(w, user, "Registration successful. Please check your email to verify your account.")
}

func (s *Server) userNameTaken(name string) bool {
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.UserName, name) {
			return true
		}
	}
	return false
}

func (s *Server) validateField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Field {
	case "email":
		if s.accounts[strings.ToLower(req.Value)] != nil {
			fail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	case "userName":
		if s.userNameTaken(req.Value) {
			fail(w, http.StatusBadRequest, "Username already taken")
			return
		}
	default:
		fail(w, http.StatusBadRequest, "Unknown field")
		return
	}
	succeed(w, nil, "")
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.verify[token]
	if acct == nil {
		fail(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}
	acct.verified = true
	delete(s.verify, token)
	succeed(w, nil, "Email verified successfully. You can now log in.")
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := accountFrom(r)
	if upd.Name != "" {
		acct.user.Name = upd.Name
	}
	if upd.Phone != "" {
		acct.user.Phone = upd.Phone
	}
	if upd.Address != "" {
		acct.user.Address = upd.Address
	}
	if upd.ProfilePic != "" {
		acct.user.ProfilePic = upd.ProfilePic
	}
	// The profile response carries no token.
	succeed(w, acct.user, "Profile updated")
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var change models.PasswordChange
	if err := decode(r, &change); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := accountFrom(r)
	if acct.password != change.CurrentPassword {
		fail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if len(change.NewPassword) < 8 {
		fail(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	acct.password = change.NewPassword
	succeed(w, nil, "Password updated successfully")
}
