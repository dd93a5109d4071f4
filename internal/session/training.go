package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/catalog"
	"github.com/abhisek/quantiz/internal/progress"
)

// Trainer is the training session state machine:
// Idle -> Running -> (Idle | Exhausted), with Exhausted restartable.
//
// It owns the one-second ticker; every exit from Running stops it, and at
// most one ticker is active at a time. Network calls run without holding
// the lock, and a result that arrives after the session was stopped or
// restarted is discarded.
type Trainer struct {
	store    *catalog.Store
	mediator *progress.Mediator
	ticker   Ticker
	now      func() time.Time
	intn     func(int) int
	newID    func() string
	logger   *slog.Logger

	mu         sync.Mutex
	state      State
	current    *api.Question
	startedAt  time.Time
	elapsed    int
	reveal     Reveal
	notice     Notice
	submitting bool
	sessionID  string
	served     int
	solved     int
	gen        uint64 // bumped on Start and Stop
	ticks      <-chan time.Time
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithTicker sets the tick source. The default is a one-second CronTicker.
func WithTicker(tk Ticker) TrainerOption {
	return func(t *Trainer) { t.ticker = tk }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) TrainerOption {
	return func(t *Trainer) { t.now = now }
}

// WithRandom overrides the source used to pick a question index in [0, n).
func WithRandom(intn func(n int) int) TrainerOption {
	return func(t *Trainer) { t.intn = intn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) TrainerOption {
	return func(t *Trainer) { t.logger = l }
}

// NewTrainer creates an idle Trainer.
func NewTrainer(store *catalog.Store, mediator *progress.Mediator, opts ...TrainerOption) *Trainer {
	t := &Trainer{
		store:    store,
		mediator: mediator,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(t)
	}
	if t.ticker == nil {
		t.ticker = NewCronTicker(time.Second)
	}
	t.logger = t.logger.With("component", "training")
	return t
}

// Start begins a new session. An empty catalog is refetched first; if that
// fetch fails the trainer stays Idle with an error notice and the error is
// returned. A failed stats fetch only adds a warning. An empty pool moves
// to Exhausted, which is not an error.
func (t *Trainer) Start(ctx context.Context) error {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	var refreshNotice Notice
	if len(t.store.Questions()) == 0 {
		if err := t.store.RefreshCatalog(ctx); err != nil {
			t.mu.Lock()
			defer t.mu.Unlock()
			if t.gen == gen {
				t.clearLocked(StateIdle)
				t.notice = failure(err)
			}
			return err
		}
		if err := t.store.RefreshStats(ctx); err != nil {
			if api.IsAuth(err) {
				t.mu.Lock()
				defer t.mu.Unlock()
				if t.gen == gen {
					t.clearLocked(StateIdle)
					t.notice = failure(err)
				}
				return err
			}
			refreshNotice = warning("stats refresh failed: " + api.Message(err))
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		return nil
	}

	q, ok := pickQuestion(t.store.Questions(), t.intn)
	if !ok {
		t.clearLocked(StateExhausted)
		t.notice = info(MsgNoQuestions)
		return nil
	}

	t.sessionID = t.newID()
	t.served = 0
	t.solved = 0
	t.serveLocked(q)
	t.notice = refreshNotice
	t.logger.Info("training started", "session_id", t.sessionID, "question_id", q.ID)
	return nil
}

// Toggle flips one reveal flag of the current question. Ignored unless
// running.
func (t *Trainer) Toggle(k RevealKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return
	}
	t.reveal = t.reveal.Toggle(k)
}

// Tick recomputes the elapsed counter from the wall clock. Ignored unless
// running.
func (t *Trainer) Tick(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return
	}
	t.elapsed = elapsedSince(t.startedAt, now)
}

// Mark records the outcome for the current question and advances.
//
// Marking an already solved question as solved is a no-op with an
// informational notice. A failed submission keeps the question and its
// timer. A failed refresh after a successful submission is shown as a
// warning and the session still advances.
func (t *Trainer) Mark(ctx context.Context, solved bool) error {
	t.mu.Lock()
	if t.state != StateRunning || t.current == nil {
		t.mu.Unlock()
		return nil
	}
	if t.submitting {
		t.notice = failure(progress.ErrInFlight)
		t.mu.Unlock()
		return progress.ErrInFlight
	}
	q := *t.current
	if solved && q.IsSolved {
		t.notice = info(MsgAlreadySolved)
		t.mu.Unlock()
		return nil
	}
	secs := submitSeconds(t.startedAt, t.now())
	t.submitting = true
	gen := t.gen
	t.mu.Unlock()

	status, err := t.mediator.Submit(ctx, q.ID, secs, solved)

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		return err
	}
	t.submitting = false
	if err != nil {
		t.notice = failure(err)
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()

	recErr := t.mediator.Reconcile(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		return nil
	}

	if solved {
		t.solved++
	}

	next, ok := pickQuestion(t.store.Questions(), t.intn)
	if !ok {
		t.logger.Info("training exhausted", "session_id", t.sessionID, "served", t.served)
		t.clearLocked(StateExhausted)
		t.notice = info(MsgAllSolved)
		return authOnly(recErr)
	}
	t.serveLocked(next)

	switch {
	case recErr != nil:
		t.notice = warning("progress saved, but refresh failed: " + api.Message(recErr))
	case status == api.StatusAlreadySolved:
		t.notice = info(MsgAlreadySolved)
	case solved:
		t.notice = info(fmt.Sprintf("solved in %ds", secs))
	default:
		t.notice = info(fmt.Sprintf("attempt recorded (%ds)", secs))
	}
	return authOnly(recErr)
}

// Stop ends the session from any state. Idempotent.
func (t *Trainer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.clearLocked(StateIdle)
}

// Close releases the ticker on teardown.
func (t *Trainer) Close() { t.Stop() }

// Ticks returns the active tick channel, nil when not running. The channel
// is closed when the session leaves Running.
func (t *Trainer) Ticks() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

// Snapshot returns a copy of the current state.
func (t *Trainer) Snapshot() TrainingSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := TrainingSnapshot{
		State:           t.state,
		StartedAt:       t.startedAt,
		Elapsed:         t.elapsed,
		Reveal:          t.reveal,
		Notice:          t.notice,
		Submitting:      t.submitting,
		SessionID:       t.sessionID,
		Served:          t.served,
		SolvedInSession: t.solved,
	}
	if t.current != nil {
		q := *t.current
		s.Current = &q
	}
	return s
}

// serveLocked makes q current with a fresh clock and hidden reveals.
func (t *Trainer) serveLocked(q api.Question) {
	t.state = StateRunning
	t.current = &q
	t.startedAt = t.now()
	t.elapsed = 0
	t.reveal = Reveal{}
	t.submitting = false
	t.served++
	if t.ticks == nil {
		t.ticks = t.ticker.Start()
	}
}

// clearLocked drops the current question and the session fields and stops
// the ticker.
func (t *Trainer) clearLocked(next State) {
	if t.ticks != nil {
		t.ticker.Stop()
		t.ticks = nil
	}
	t.state = next
	t.current = nil
	t.startedAt = time.Time{}
	t.elapsed = 0
	t.reveal = Reveal{}
	t.notice = Notice{}
	t.submitting = false
	t.sessionID = ""
	t.served = 0
	t.solved = 0
}

// authOnly passes auth failures up for a forced logout and swallows the
// rest, which are already shown as a notice.
func authOnly(err error) error {
	if api.IsAuth(err) {
		return err
	}
	return nil
}
