package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/catalog"
)

func newMediator(qs ...api.Question) (*Mediator, *api.MockService, *catalog.Store) {
	mock := api.NewMockService(qs...)
	store := catalog.NewStore(mock)
	return NewMediator(mock, store, nil), mock, store
}

func TestSubmit_PassesArgumentsThrough(t *testing.T) {
	m, mock, _ := newMediator(api.Question{ID: 1})

	st, err := m.Submit(context.Background(), 1, 45, true)
	require.NoError(t, err)
	assert.Equal(t, api.StatusOK, st)

	subs := mock.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, 1, subs[0].QuestionID)
	assert.Equal(t, 45, subs[0].ElapsedSeconds)
	assert.True(t, subs[0].Solved)
}

func TestSubmit_RejectsElapsedBelowOne(t *testing.T) {
	m, mock, _ := newMediator()

	for _, e := range []int{0, -5} {
		_, err := m.Submit(context.Background(), 1, e, false)
		assert.ErrorIs(t, err, ErrInvalidElapsed)
	}
	assert.Empty(t, mock.Submissions())
}

func TestSubmit_WrapsTransportFailure(t *testing.T) {
	m, mock, _ := newMediator()
	mock.QueueSubmit(api.SubmitResponse{Err: errors.New("connection reset")})

	_, err := m.Submit(context.Background(), 1, 10, true)
	var se *api.SubmissionError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "connection reset", se.Message)
	assert.False(t, m.InFlight(1), "a failed submission settles")
}

func TestSubmit_SerializedPerQuestion(t *testing.T) {
	m, mock, _ := newMediator()

	entered := make(chan struct{})
	release := make(chan struct{})
	mock.SubmitHook = func(id int) {
		if id == 1 {
			close(entered)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), 1, 5, true)
		done <- err
	}()
	<-entered

	assert.True(t, m.InFlight(1))
	_, err := m.Submit(context.Background(), 1, 5, true)
	assert.ErrorIs(t, err, ErrInFlight)

	// Other questions are not blocked.
	_, err = m.Submit(context.Background(), 2, 5, true)
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, mock.Submissions(), 2)
}

func TestReconcile_RefreshesOnceEach(t *testing.T) {
	m, mock, store := newMediator(api.Question{ID: 1})

	require.NoError(t, m.Reconcile(context.Background()))
	assert.Equal(t, 1, mock.CallCount("fetch_catalog"))
	assert.Equal(t, 1, mock.CallCount("fetch_stats"))
	assert.Len(t, store.Questions(), 1)
}

func TestReconcile_FailureIsReported(t *testing.T) {
	m, mock, _ := newMediator()
	mock.SetStats(api.StatsResponse{Err: &api.FetchError{Op: "stats", StatusCode: 502}})

	err := m.Reconcile(context.Background())
	var fe *api.FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestResetAll_RequiresConfirmation(t *testing.T) {
	m, mock, _ := newMediator()

	err := m.ResetAll(context.Background(), false)
	assert.ErrorIs(t, err, ErrResetNotConfirmed)
	assert.Empty(t, mock.Calls)
}

func TestResetAll_ResetsAndReconciles(t *testing.T) {
	m, mock, _ := newMediator(api.Question{ID: 1, IsSolved: true})

	require.NoError(t, m.ResetAll(context.Background(), true))
	assert.Equal(t, 1, mock.CallCount("reset_progress"))
	assert.Equal(t, 1, mock.CallCount("fetch_catalog"))
	assert.Equal(t, 1, mock.CallCount("fetch_stats"))
}

func TestResetAll_FailureSkipsReconcile(t *testing.T) {
	m, mock, _ := newMediator()
	mock.ResetErr = &api.SubmissionError{Op: "reset progress", StatusCode: 500, Message: "boom"}

	err := m.ResetAll(context.Background(), true)
	var se *api.SubmissionError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, mock.CallCount("fetch_catalog"))
}
