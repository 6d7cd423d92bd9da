// ABOUTME: Tests for the backend HTTP client
// ABOUTME: Covers credential attachment, error normalization, multipart uploads, and the 401 hook
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rankup/models"
)

type staticCreds struct {
	token string
}

func (s staticCreds) Token() (string, bool) {
	return s.token, s.token != ""
}

func newTestClient(t *testing.T, h http.HandlerFunc, creds CredentialSource, onUnauthorized func(string)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Credentials: creds, OnUnauthorized: onUnauthorized})
	require.NoError(t, err)
	return c
}

func TestNewRequiresValidBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestBearerAttachedAutomatically(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}, staticCreds{token: "t1"}, nil)

	var out map[string]bool
	require.NoError(t, c.Get(context.Background(), "/investors/team", nil, &out))

	assert.Equal(t, "Bearer t1", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.True(t, out["ok"])
}

func TestPublicRequestsSkipCredential(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}, staticCreds{token: "t1"}, nil)

	require.NoError(t, c.Post(Public(context.Background()), "/auth/login", map[string]string{"email": "a@b.com"}, nil))
	assert.Empty(t, gotAuth)
}

func TestNoSessionSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}, staticCreds{}, nil)

	require.NoError(t, c.Get(context.Background(), "/rewards/summary", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestErrorMessageFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"message":"Insufficient balance"}`)
	}, nil, nil)

	err := c.Post(context.Background(), "/withdrawals", map[string]float64{"amount": 10}, nil)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Insufficient balance", Message(err, "fallback"))
}

func TestErrorFallbackForNonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}, nil, nil)

	err := c.Get(context.Background(), "/investors/dashboard/stats", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch dashboard statistics", Message(err, "Failed to fetch dashboard statistics"))
}

func TestTransportFailureUsesFallback(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	err = c.Get(context.Background(), "/withdrawals", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch withdrawal history", Message(err, "Failed to fetch withdrawal history"))
}

func TestUnauthorizedHookOnlyForCredentialedRequests(t *testing.T) {
	calls := 0
	var rejected string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Not authorized, token failed"}`)
	}, staticCreds{token: "expired"}, func(token string) {
		calls++
		rejected = token
	})

	err := c.Get(context.Background(), "/investors/team", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "expired", rejected)

	err = c.Post(Public(context.Background()), "/auth/login", map[string]string{}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "public requests should not trigger the hook")
}

func TestPostMultipart(t *testing.T) {
	var description, fileName, fileBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		description = r.FormValue("description")
		f, hdr, err := r.FormFile("receipt")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		data, _ := io.ReadAll(f)
		fileName = hdr.Filename
		fileBody = string(data)
		_, _ = io.WriteString(w, `{"_id":"s1"}`)
	}, staticCreds{token: "t1"}, nil)

	var sale models.Sale
	err := c.PostMultipart(context.Background(), "/sales",
		map[string]string{"description": "Starter"},
		&models.Upload{FileName: "receipt.png", Content: []byte("png-bytes")},
		&sale)
	require.NoError(t, err)

	assert.Equal(t, "s1", sale.ID)
	assert.Equal(t, "Starter", description)
	assert.Equal(t, "receipt.png", fileName)
	assert.Equal(t, "png-bytes", fileBody)
}

func TestValidateField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"message":"Username already taken"}`)
	}, nil, nil)

	ok, msg, err := c.ValidateField(context.Background(), "userName", "taken")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Username already taken", msg)
}
