package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 8 << 20

// Client talks to the trainer backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	store   CredentialStore
	now     func() time.Time
	timeout time.Duration

	mu      sync.RWMutex
	session *Session
}

var _ Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the base HTTP client. Its transport is wrapped, never
// mutated.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCredentialStore persists the session across runs.
func WithCredentialStore(s CredentialStore) Option {
	return func(c *Client) { c.store = s }
}

// WithClock overrides the clock used for session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	timeout := c.http.Timeout
	if c.timeout > 0 {
		timeout = c.timeout
	}
	c.http = &http.Client{
		Timeout:   timeout,
		Transport: &requestIDTransport{base: c.http.Transport},
	}
	return c
}

// Restore loads a previously saved credential. An expired credential is
// discarded.
func (c *Client) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	cred, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if cred == nil {
		return nil
	}
	s := SessionFromCredential(cred)
	if !s.Valid(c.now()) {
		return c.store.Clear(ctx)
	}
	c.setSession(s)
	return nil
}

// Session returns the held session, or nil when logged out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// FetchCatalog implements Service.
func (c *Client) FetchCatalog(ctx context.Context) ([]Question, error) {
	raw, err := c.read(ctx, "catalog", "/questions", catalogSchema)
	if err != nil {
		return nil, err
	}
	var qs []Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, &FetchError{Op: "catalog", Message: "malformed catalog", Err: err}
	}
	return normalizeQuestions(qs), nil
}

// FetchStats implements Service.
func (c *Client) FetchStats(ctx context.Context) (*Stats, error) {
	raw, err := c.read(ctx, "stats", "/stats", statsSchema)
	if err != nil {
		return nil, err
	}
	var s Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &FetchError{Op: "stats", Message: "malformed stats", Err: err}
	}
	return normalizeStats(&s), nil
}

// CurrentUser implements Service.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	raw, err := c.read(ctx, "user", "/auth/me", userSchema)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, &FetchError{Op: "user", Message: "malformed user", Err: err}
	}
	return &u, nil
}

// SubmitProgress implements Service.
func (c *Client) SubmitProgress(ctx context.Context, questionID, elapsedSeconds int, solved bool) (ProgressStatus, error) {
	body := progressUpdate{TimeSpentSeconds: float64(elapsedSeconds), Solved: solved}
	path := fmt.Sprintf("/questions/%d/progress", questionID)

	raw, err := c.write(ctx, "submit progress", path, body, true)
	if err != nil {
		return "", err
	}
	var st statusResponse
	if err := decodeAck(raw, &st); err != nil {
		return "", &SubmissionError{Op: "submit progress", Message: "unexpected response", Err: err}
	}
	if st.Status == string(StatusAlreadySolved) {
		return StatusAlreadySolved, nil
	}
	return StatusOK, nil
}

// ResetProgress implements Service.
func (c *Client) ResetProgress(ctx context.Context) error {
	raw, err := c.write(ctx, "reset progress", "/progress/reset", nil, true)
	if err != nil {
		return err
	}
	var st statusResponse
	if err := decodeAck(raw, &st); err != nil {
		return &SubmissionError{Op: "reset progress", Message: "unexpected response", Err: err}
	}
	return nil
}

// Login exchanges username and password for a bearer token using the OAuth2
// password grant and stores the resulting session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/auth/login",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			msg := detailMessage(re.Body)
			if msg == "" {
				msg = "login rejected"
			}
			return &AuthError{Message: msg, Err: err}
		}
		return &AuthError{Message: "cannot reach server", Err: err}
	}

	s := NewSession(tok)
	if s.subject == "" {
		s.subject = username
	}
	c.setSession(s)

	if c.store != nil {
		if err := c.store.Save(ctx, s.Credential(c.now())); err != nil {
			return fmt.Errorf("save credential: %w", err)
		}
	}
	return nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	raw, err := c.write(ctx, "register", "/auth/register", credentials{Username: username, Password: password}, false)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(userSchema, raw); err != nil {
		return nil, &SubmissionError{Op: "register", Message: "unexpected response", Err: err}
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, &SubmissionError{Op: "register", Message: "unexpected response", Err: err}
	}
	return &u, nil
}

// Logout drops the session in memory and in the credential store.
func (c *Client) Logout(ctx context.Context) error {
	c.setSession(nil)
	if c.store == nil {
		return nil
	}
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// read performs an authenticated GET and validates the body against schema.
func (c *Client) read(ctx context.Context, op, path string, schema *payloadSchema) ([]byte, error) {
	status, raw, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		if IsAuth(err) {
			return nil, err
		}
		return nil, &FetchError{Op: op, Message: "request failed", Err: err}
	}
	if status == http.StatusUnauthorized {
		return nil, &AuthError{Message: orStatus(detailMessage(raw), status)}
	}
	if status < 200 || status > 299 {
		return nil, &FetchError{Op: op, StatusCode: status, Message: orStatus(detailMessage(raw), status)}
	}
	if err := validatePayload(schema, raw); err != nil {
		return nil, &FetchError{Op: op, StatusCode: status, Message: "unexpected " + op + " payload", Err: err}
	}
	return raw, nil
}

// write performs a POST. Failures are reported as *SubmissionError.
func (c *Client) write(ctx context.Context, op, path string, body any, authed bool) ([]byte, error) {
	status, raw, err := c.do(ctx, http.MethodPost, path, body, authed)
	if err != nil {
		if IsAuth(err) {
			return nil, err
		}
		return nil, &SubmissionError{Op: op, Message: "request failed", Err: err}
	}
	if status == http.StatusUnauthorized && authed {
		return nil, &AuthError{Message: orStatus(detailMessage(raw), status)}
	}
	if status < 200 || status > 299 {
		return nil, &SubmissionError{Op: op, StatusCode: status, Message: orStatus(detailMessage(raw), status)}
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.http
	if authed {
		hc, err = c.authedClient(ctx)
		if err != nil {
			return 0, nil, err
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// authedClient returns an HTTP client that attaches the session's bearer
// token, or *AuthError when there is no usable session.
func (c *Client) authedClient(ctx context.Context) (*http.Client, error) {
	s := c.Session()
	if s == nil {
		return nil, &AuthError{Err: ErrNoSession}
	}
	if !s.Valid(c.now()) {
		return nil, &AuthError{Message: "session expired, please log in again", Err: ErrSessionExpired}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(s.Token()))
	hc.Timeout = c.http.Timeout
	return hc, nil
}

func decodeAck(raw []byte, v *statusResponse) error {
	if err := validatePayload(statusSchema, raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// detailMessage extracts the backend's {"detail": ...} message. Validation
// failures carry a list of {"msg": ...} objects instead of a string.
func detailMessage(raw []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func orStatus(msg string, status int) string {
	if msg != "" {
		return msg
	}
	return http.StatusText(status)
}

// requestIDTransport stamps every outgoing request with a fresh request id.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get(RequestIDHeader) != "" {
		return base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return base.RoundTrip(r)
}
