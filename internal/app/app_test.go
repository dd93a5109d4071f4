package app

import (
	"context"
	"log/slog"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/catalog"
	"github.com/abhisek/quantiz/internal/progress"
	"github.com/abhisek/quantiz/internal/router"
	"github.com/abhisek/quantiz/internal/screen"
	catscreen "github.com/abhisek/quantiz/internal/screens/catalog"
	"github.com/abhisek/quantiz/internal/screens/login"
	"github.com/abhisek/quantiz/internal/screens/stats"
	"github.com/abhisek/quantiz/internal/session"
)

func newEnv(t *testing.T) (*screen.Env, *api.MockService) {
	t.Helper()
	mock := api.NewMockService(
		api.Question{ID: 1, Title: "Coin flips", Difficulty: "easy"},
		api.Question{ID: 2, Title: "Dice sums", Difficulty: "medium", IsSolved: true},
	)
	store := catalog.NewStore(mock)
	med := progress.NewMediator(mock, store, nil)
	return &screen.Env{
		Service:  mock,
		Catalog:  store,
		Mediator: med,
		Trainer:  session.NewTrainer(store, med),
		Detail:   session.NewDetail(store, med, nil),
		Logger:   slog.New(slog.DiscardHandler),
	}, mock
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am, cmd
}

func TestStartScreen(t *testing.T) {
	env, _ := newEnv(t)
	assert.IsType(t, &login.LoginScreen{}, newAppModel(Options{Env: env}).router.Active())
	assert.IsType(t, &catscreen.CatalogScreen{}, newAppModel(Options{Env: env, Username: "alice"}).router.Active())
}

func TestLoggedInGoesToCatalog(t *testing.T) {
	env, _ := newEnv(t)
	m := newAppModel(Options{Env: env})

	m, cmd := update(t, m, screen.LoggedInMsg{Username: "alice"})
	assert.Equal(t, "alice", m.username)
	assert.IsType(t, &catscreen.CatalogScreen{}, m.router.Active())
	require.NotNil(t, cmd, "catalog fetch starts")
}

func TestLogoutClearsState(t *testing.T) {
	env, mock := newEnv(t)
	require.NoError(t, env.Catalog.Refresh(context.Background()))
	m := newAppModel(Options{Env: env, Username: "alice"})
	m.router.Push(stats.New(env))

	m, _ = update(t, m, screen.LogoutMsg{Reason: "session expired"})
	assert.Equal(t, 1, mock.CallCount("logout"))
	assert.Empty(t, m.username)
	assert.False(t, env.Catalog.Loaded())
	assert.Nil(t, env.Catalog.Stats())
	assert.Equal(t, 1, m.router.Depth())
	assert.IsType(t, &login.LoginScreen{}, m.router.Active())
	assert.Contains(t, m.router.View(80, 24), "session expired")
}

func TestEscPopsUnlessCapturing(t *testing.T) {
	env, _ := newEnv(t)
	m := newAppModel(Options{Env: env, Username: "alice"})
	esc := tea.KeyPressMsg{Code: tea.KeyEscape}

	_, cmd := update(t, m, esc)
	assert.Nil(t, cmd, "esc at the bottom of the stack does nothing")

	m.router.Push(stats.New(env))
	_, cmd = update(t, m, esc)
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())

	// A login screen on top captures Esc as text editing.
	m.router.Push(login.New(env, ""))
	_, cmd = update(t, m, esc)
	if cmd != nil {
		assert.NotEqual(t, router.PopScreenMsg{}, cmd())
	}
}

func TestStatus(t *testing.T) {
	env, _ := newEnv(t)
	m := newAppModel(Options{Env: env})
	assert.Equal(t, "signed out", m.status())

	m.username = "alice"
	assert.Equal(t, "alice", m.status())

	require.NoError(t, env.Catalog.Refresh(context.Background()))
	assert.Equal(t, "alice  ✓ 0/2", m.status())
}
