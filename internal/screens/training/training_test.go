package training

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/catalog"
	"github.com/abhisek/quantiz/internal/progress"
	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/session"
)

type fakeTicker struct {
	mu sync.Mutex
	ch chan time.Time
}

func (f *fakeTicker) Start() <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = make(chan time.Time, 1)
	return f.ch
}

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.ch)
}

func (f *fakeTicker) send(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch <- at
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

type fixture struct {
	env    *screen.Env
	mock   *api.MockService
	ticker *fakeTicker
	start  time.Time
}

func newFixture(t *testing.T, qs ...api.Question) *fixture {
	t.Helper()
	f := &fixture{
		mock:   api.NewMockService(qs...),
		ticker: &fakeTicker{},
		start:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	store := catalog.NewStore(f.mock)
	med := progress.NewMediator(f.mock, store, nil)
	f.env = &screen.Env{
		Service:  f.mock,
		Catalog:  store,
		Mediator: med,
		Trainer: session.NewTrainer(store, med,
			session.WithTicker(f.ticker),
			session.WithClock(func() time.Time { return f.start }),
			session.WithRandom(func(int) int { return 0 })),
		Detail: session.NewDetail(store, med, nil),
		Logger: slog.New(slog.DiscardHandler),
	}
	return f
}

// started returns a screen whose session is running with its tick
// listener armed.
func started(t *testing.T, f *fixture) (*TrainingScreen, tea.Cmd) {
	t.Helper()
	s := New(f.env)
	_, wait := s.Update(s.Init()())
	require.NotNil(t, wait, "a running session arms a tick listener")
	return s, wait
}

func TestStartServesAndTicks(t *testing.T) {
	f := newFixture(t, api.Question{ID: 1, Title: "Coin flips"}, api.Question{ID: 2, Title: "Dice"})
	s, wait := started(t, f)

	snap := f.env.Trainer.Snapshot()
	require.Equal(t, session.StateRunning, snap.State)
	assert.Equal(t, 1, snap.Served)
	assert.Contains(t, s.View(100, 30), snap.Current.Title)

	f.ticker.send(f.start.Add(75 * time.Second))
	msg := wait()
	require.IsType(t, tickMsg{}, msg)
	_, again := s.Update(msg)
	assert.NotNil(t, again, "ticks keep the listener armed")
	assert.Equal(t, 75, f.env.Trainer.Snapshot().Elapsed)
	assert.Contains(t, s.View(100, 30), "1:15")
}

func TestCloseEndsTickChain(t *testing.T) {
	f := newFixture(t, api.Question{ID: 1, Title: "Coin flips"})
	s, wait := started(t, f)

	s.Close()
	assert.Equal(t, session.StateIdle, f.env.Trainer.Snapshot().State)

	msg := wait()
	require.IsType(t, tickStoppedMsg{}, msg)
	_, cmd := s.Update(msg)
	assert.Nil(t, cmd, "nothing to listen to once stopped")
	assert.Contains(t, s.View(100, 30), "not running")
}

func TestMarkAdvances(t *testing.T) {
	f := newFixture(t, api.Question{ID: 1, Title: "Coin flips"}, api.Question{ID: 2, Title: "Dice"})
	s, _ := started(t, f)
	first := f.env.Trainer.Snapshot().Current.ID
	require.Equal(t, 1, first)

	// The server reports the submission on the next fetch.
	f.mock.SetCatalog(api.CatalogResponse{Questions: []api.Question{
		{ID: 1, Title: "Coin flips", IsSolved: true, Attempts: 1},
		{ID: 2, Title: "Dice"},
	}})
	_, cmd := s.Update(keyPress('m'))
	require.NotNil(t, cmd)
	s.Update(cmd())

	subs := f.mock.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, first, subs[0].QuestionID)
	assert.True(t, subs[0].Solved)

	snap := f.env.Trainer.Snapshot()
	assert.Equal(t, 2, snap.Served)
	assert.Equal(t, 1, snap.SolvedInSession)
	assert.Equal(t, 2, snap.Current.ID)
	assert.Contains(t, s.View(100, 30), "solved in 0s")
}

func TestRevealKeys(t *testing.T) {
	f := newFixture(t, api.Question{ID: 1, Title: "Coin flips", Hint: "think parity"})
	s, _ := started(t, f)

	s.Update(keyPress('h'))
	assert.True(t, f.env.Trainer.Snapshot().Reveal.Hint)
	assert.Contains(t, s.View(100, 30), "think parity")
	s.Update(keyPress('h'))
	assert.False(t, f.env.Trainer.Snapshot().Reveal.Hint)
}

func TestExhaustedThenRestart(t *testing.T) {
	f := newFixture(t)
	s := New(f.env)
	_, cmd := s.Update(s.Init()())
	assert.Nil(t, cmd)
	assert.Equal(t, session.StateExhausted, f.env.Trainer.Snapshot().State)
	assert.Contains(t, s.View(100, 30), "Nothing left to train")
	assert.Contains(t, s.View(100, 30), session.MsgNoQuestions)

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, startedMsg{}, cmd())
}

func TestStartAuthErrorLogsOut(t *testing.T) {
	f := newFixture(t)
	f.mock.SetCatalog(api.CatalogResponse{Err: &api.AuthError{Message: "token expired"}})
	s := New(f.env)

	_, cmd := s.Update(s.Init()())
	require.NotNil(t, cmd)
	assert.Equal(t, screen.LogoutMsg{Reason: "token expired"}, cmd())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abcdefgh", shortID("abcdefgh-1234"))
	assert.Equal(t, "abc", shortID("abc"))
}
