// ABOUTME: HTTP client for the platform REST backend
// ABOUTME: Attaches the session bearer credential, tags requests, and normalizes failures
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"golang.org/x/oauth2"

	"github.com/harperreed/rankup/models"
)

// RequestIDHeader carries a per-request ULID for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

const maxBodySize = 8 << 20

// CredentialSource supplies the bearer token for outgoing requests.
// ok is false when no session is present.
type CredentialSource interface {
	Token() (token string, ok bool)
}

// Config holds client settings.
type Config struct {
	BaseURL string

	// Timeout overrides the transport default when non-zero.
	Timeout time.Duration

	Credentials CredentialSource

	// OnUnauthorized is called with the token a request carried when the
	// server answered it with 401.
	OnUnauthorized func(token string)

	Logger     *log.Logger
	HTTPClient *http.Client
}

// Envelope is the {success, message, data} wrapper used by several endpoints.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Client is the single chokepoint for calls to the backend.
type Client struct {
	baseURL        string
	http           *http.Client
	credentials    CredentialSource
	onUnauthorized func(token string)
	logger         *log.Logger
}

// New creates a client for the given backend.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		hc = &copied
	}
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = &bearerTransport{base: base}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           hc,
		credentials:    cfg.Credentials,
		onUnauthorized: cfg.OnUnauthorized,
		logger:         logger,
	}, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type publicKey struct{}

// Public marks requests made with ctx as not needing a credential.
func Public(ctx context.Context) context.Context {
	return context.WithValue(ctx, publicKey{}, true)
}

func isPublic(ctx context.Context) bool {
	v, _ := ctx.Value(publicKey{}).(bool)
	return v
}

type tokenKey struct{}

func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// bearerTransport attaches the token send resolved for the request through
// oauth2's transport.
type bearerTransport struct {
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, _ := req.Context().Value(tokenKey{}).(string)
	if token == "" {
		return t.base.RoundTrip(req)
	}
	rt := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return rt.RoundTrip(req)
}

// credential returns the token to attach, read once per request.
func (c *Client) credential(ctx context.Context) (string, bool) {
	if c.credentials == nil || isPublic(ctx) {
		return "", false
	}
	return c.credentials.Token()
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Do sends a request with an optional JSON body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, query, reader, contentType, out)
}

// PostMultipart sends form fields and an optional file as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file *models.Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return &Error{Err: fmt.Errorf("failed to write form field %s: %w", k, err)}
		}
	}

	if file != nil {
		field := file.FieldName
		if field == "" {
			field = "receipt"
		}
		part, err := w.CreateFormFile(field, file.FileName)
		if err != nil {
			return &Error{Err: fmt.Errorf("failed to create file part: %w", err)}
		}
		if _, err := part.Write(file.Content); err != nil {
			return &Error{Err: fmt.Errorf("failed to write file part: %w", err)}
		}
	}

	if err := w.Close(); err != nil {
		return &Error{Err: fmt.Errorf("failed to finish multipart body: %w", err)}
	}
	return c.send(ctx, http.MethodPost, path, nil, &buf, w.FormDataContentType(), out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	token, credentialed := c.credential(ctx)
	if credentialed {
		ctx = withToken(ctx, token)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &Error{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := ulid.Make().String()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return &Error{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", requestID)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := errorFromResponse(resp.StatusCode, data)
		if apiErr.Unauthorized() && credentialed && c.onUnauthorized != nil {
			c.logger.Warn("credential rejected by server", "path", path)
			c.onUnauthorized(token)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Body: data, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// ListBranches returns the branches offered at sign-up.
func (c *Client) ListBranches(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	if err := c.Get(Public(ctx), "/branches", nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// ValidateField asks the server whether a sign-up field value is acceptable.
// When ok is false, message explains why.
func (c *Client) ValidateField(ctx context.Context, field, value string) (ok bool, message string, err error) {
	var resp Envelope[json.RawMessage]
	body := map[string]string{"field": field, "value": value}
	if err := c.Post(Public(ctx), "/auth/validate", body, &resp); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
			return false, Message(err, "Validation failed"), nil
		}
		return false, "", err
	}
	if !resp.Success {
		return false, resp.Message, nil
	}
	return true, "", nil
}
