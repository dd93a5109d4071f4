// Package progress mediates every write of the user's progress and the
// full refresh that must follow it.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/catalog"
)

var (
	// ErrInFlight is returned when a submission for the same question has
	// not settled yet.
	ErrInFlight = errors.New("a submission for this question is already in progress")

	// ErrResetNotConfirmed is returned by ResetAll without user confirmation.
	ErrResetNotConfirmed = errors.New("reset requires confirmation")

	// ErrInvalidElapsed is returned for an elapsed time below one second.
	ErrInvalidElapsed = errors.New("elapsed time must be at least one second")
)

// Mediator submits progress and reconciles the catalog store afterwards.
// It never patches local state; the next fetch is the only source of truth.
type Mediator struct {
	svc    api.Service
	store  *catalog.Store
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[int]bool
}

// NewMediator creates a Mediator.
func NewMediator(svc api.Service, store *catalog.Store, logger *slog.Logger) *Mediator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mediator{
		svc:      svc,
		store:    store,
		logger:   logger.With("component", "progress"),
		inFlight: map[int]bool{},
	}
}

// Submit records one attempt. Submissions are serialized per question id.
func (m *Mediator) Submit(ctx context.Context, questionID, elapsedSeconds int, solved bool) (api.ProgressStatus, error) {
	if elapsedSeconds < 1 {
		return "", ErrInvalidElapsed
	}

	m.mu.Lock()
	if m.inFlight[questionID] {
		m.mu.Unlock()
		return "", ErrInFlight
	}
	m.inFlight[questionID] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inFlight, questionID)
		m.mu.Unlock()
	}()

	status, err := m.svc.SubmitProgress(ctx, questionID, elapsedSeconds, solved)
	if err != nil {
		var se *api.SubmissionError
		if api.IsAuth(err) || errors.As(err, &se) {
			return "", err
		}
		return "", &api.SubmissionError{Op: "submit progress", Message: err.Error(), Err: err}
	}
	return status, nil
}

// InFlight reports whether a submission for questionID has not settled.
func (m *Mediator) InFlight(questionID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight[questionID]
}

// Reconcile refreshes catalog and stats, once each. A failure leaves the
// display stale but never undoes the write that triggered it.
func (m *Mediator) Reconcile(ctx context.Context) error {
	if err := m.store.Refresh(ctx); err != nil {
		m.logger.Warn("reconcile failed", "error", err)
		return fmt.Errorf("refresh after update: %w", err)
	}
	return nil
}

// ResetAll wipes all progress on the backend and reconciles. It does
// nothing unless confirmed is true.
func (m *Mediator) ResetAll(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrResetNotConfirmed
	}
	if err := m.svc.ResetProgress(ctx); err != nil {
		var se *api.SubmissionError
		if api.IsAuth(err) || errors.As(err, &se) {
			return err
		}
		return &api.SubmissionError{Op: "reset progress", Message: err.Error(), Err: err}
	}
	m.logger.Info("progress reset")
	return m.Reconcile(ctx)
}
