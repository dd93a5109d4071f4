package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/store"
)

const catalogJSON = `[
{"id":1,"title":"Coin flips","topic":"probability","tags":["coins"],"difficulty":"easy","companies":["Jane Street"],"task_text":"Flip.","is_solved":false,"attempts":0,"avg_time_seconds":null},
{"id":2,"title":"Dice sums","topic":"probability","tags":["dice"],"difficulty":"medium","companies":["Optiver"],"task_text":"Roll.","is_solved":true,"attempts":2,"avg_time_seconds":40.0}
]`

const statsJSON = `{"total_questions":2,"solved_questions":1,"avg_time_seconds":40.0,"solved_by_difficulty":{"medium":1},"daily_solved":[{"date":"2025-03-01","solved":1}],"solved_by_topic":{"probability":1},"solved_by_company":{"Optiver":1}}`

// backend is a minimal trainer server for driving commands end to end.
type backend struct {
	mu     sync.Mutex
	token  string
	resets int
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	b := &backend{token: signed}

	write := func(w http.ResponseWriter, code int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}

	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		_ = req.ParseForm()
		if req.PostForm.Get("username") != "alice" || req.PostForm.Get("password") != "secret" {
			write(w, http.StatusBadRequest, `{"detail":"Incorrect username or password"}`)
			return
		}
		write(w, http.StatusOK, `{"access_token":"`+b.token+`","token_type":"bearer"}`)
	})
	r.Post("/auth/register", func(w http.ResponseWriter, req *http.Request) {
		var body struct{ Username string }
		_ = json.NewDecoder(req.Body).Decode(&body)
		write(w, http.StatusOK, `{"id":1,"username":"`+body.Username+`","created_at":"2024-05-01T10:00:00"}`)
	})
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if req.Header.Get("Authorization") != "Bearer "+b.currentToken() {
					write(w, http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)
					return
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/auth/me", func(w http.ResponseWriter, _ *http.Request) {
			write(w, http.StatusOK, `{"id":1,"username":"alice","created_at":"2024-05-01T10:00:00"}`)
		})
		r.Get("/questions", func(w http.ResponseWriter, _ *http.Request) {
			write(w, http.StatusOK, catalogJSON)
		})
		r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
			write(w, http.StatusOK, statsJSON)
		})
		r.Post("/progress/reset", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			b.resets++
			b.mu.Unlock()
			write(w, http.StatusOK, `{"status":"reset"}`)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

// cli runs commands against a backend with an isolated database and
// environment.
type cli struct {
	t    *testing.T
	args []string
}

func (b *backend) currentToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *backend) rotateToken(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = tok
}

func newCLI(t *testing.T, baseURL string) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, k := range []string{"QUANTIZ_API_URL", "QUANTIZ_API_TIMEOUT", "QUANTIZ_RETRY_ATTEMPTS", "QUANTIZ_DB", "QUANTIZ_LOG_FILE", "QUANTIZ_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return &cli{t: t, args: []string{"--api", baseURL, "--db", filepath.Join(dir, "quantiz.db")}}
}

func (c *cli) dbPath() string { return c.args[3] }

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetArgs(append(args, c.args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into
// each other through the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestVersion(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv.URL)
	out, err := c.run("", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "quantiz "))
}

func TestLoginLifecycle(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv.URL)

	_, err := c.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")

	_, err = c.run("", "login", "-u", "alice", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect username or password")

	out, err := c.run("alice\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as alice.")

	out, err = c.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice (id 1)")

	out, err = c.run("n\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	out, err = c.run("", "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress reset.")
	b.mu.Lock()
	assert.Equal(t, 1, b.resets)
	b.mu.Unlock()

	out, err = c.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	_, err = c.run("", "whoami")
	require.Error(t, err)
}

func TestStartUserDropsRejectedCredential(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv.URL)
	_, err := c.run("", "login", "-u", "alice", "--password", "secret")
	require.NoError(t, err)

	// The server no longer accepts the saved token.
	b.rotateToken("rotated")

	ctx := context.Background()
	st, err := store.Open(c.dbPath())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	client := api.NewClient(srv.URL, api.WithCredentialStore(st.Credentials()))
	require.NoError(t, client.Restore(ctx))
	require.NotNil(t, client.Session())

	d := &deps{client: client, svc: client, logger: slog.New(slog.DiscardHandler)}
	user, reason := d.startUser(ctx)
	assert.Empty(t, user)
	assert.Equal(t, "Could not validate credentials", reason)

	assert.Nil(t, client.Session())
	cred, err := st.Credentials().Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred, "rejected credential is removed from disk")
}

func TestStartUserKeepsValidCredential(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv.URL)
	_, err := c.run("", "login", "-u", "alice", "--password", "secret")
	require.NoError(t, err)

	st, err := store.Open(c.dbPath())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	client := api.NewClient(srv.URL, api.WithCredentialStore(st.Credentials()))
	require.NoError(t, client.Restore(context.Background()))

	d := &deps{client: client, svc: client, logger: slog.New(slog.DiscardHandler)}
	user, reason := d.startUser(context.Background())
	assert.Equal(t, "alice", user)
	assert.Empty(t, reason)
}

func TestRegister(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv.URL)
	out, err := c.run("", "register", "-u", "alice", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered alice.")
	assert.Contains(t, out, "Signed in as alice.")
}

func TestQuestionsAndStats(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv.URL)
	_, err := c.run("", "login", "-u", "alice", "--password", "secret")
	require.NoError(t, err)

	out, err := c.run("", "questions")
	require.NoError(t, err)
	assert.Contains(t, out, "Coin flips")
	assert.Contains(t, out, "Dice sums")
	assert.Contains(t, out, "2 of 2 questions")

	out, err = c.run("", "questions", "--unsolved")
	require.NoError(t, err)
	assert.Contains(t, out, "Coin flips")
	assert.NotContains(t, out, "Dice sums")

	out, err = c.run("", "questions", "--company", "Optiver", "--topic", "probability")
	require.NoError(t, err)
	assert.NotContains(t, out, "Coin flips")
	assert.Contains(t, out, "1 of 2 questions")

	out, err = c.run("", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "2025-03-01")
}

func TestBadAPIFlag(t *testing.T) {
	c := newCLI(t, "ftp://example.com")
	_, err := c.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
