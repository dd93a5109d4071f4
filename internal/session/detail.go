package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/catalog"
	"github.com/abhisek/quantiz/internal/progress"
)

// Detail tracks the one question opened outside training. It never
// advances to another question on its own.
type Detail struct {
	store    *catalog.Store
	mediator *progress.Mediator
	now      func() time.Time

	mu         sync.Mutex
	current    *api.Question
	openedAt   time.Time
	reveal     Reveal
	notice     Notice
	submitting bool
}

// NewDetail creates a Detail with nothing open. A nil now uses time.Now.
func NewDetail(store *catalog.Store, mediator *progress.Mediator, now func() time.Time) *Detail {
	if now == nil {
		now = time.Now
	}
	return &Detail{store: store, mediator: mediator, now: now}
}

// Open makes q the open question. Re-opening the same question only
// restarts the attempt clock; reveal flags and notice survive.
func (d *Detail) Open(q api.Question) {
	d.mu.Lock()
	defer d.mu.Unlock()

	same := d.current != nil && d.current.ID == q.ID
	d.current = &q
	d.openedAt = d.now()
	if !same {
		d.reveal = Reveal{}
		d.notice = Notice{}
		d.submitting = false
	}
}

// Toggle flips one reveal flag. Ignored when nothing is open.
func (d *Detail) Toggle(k RevealKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return
	}
	d.reveal = d.reveal.Toggle(k)
}

// Close forgets the open question.
func (d *Detail) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
	d.openedAt = time.Time{}
	d.reveal = Reveal{}
	d.notice = Notice{}
	d.submitting = false
}

// Snapshot returns a copy of the current state.
func (d *Detail) Snapshot() DetailSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := DetailSnapshot{
		OpenedAt:   d.openedAt,
		Elapsed:    elapsedSince(d.openedAt, d.now()),
		Reveal:     d.reveal,
		Notice:     d.notice,
		Submitting: d.submitting,
	}
	if d.current != nil {
		q := *d.current
		s.Current = &q
	}
	return s
}

// Mark records the outcome for the open question. On success the catalog
// is reconciled and the open question re-pointed to its fresh copy; the
// attempt clock restarts. On failure the clock is left untouched.
func (d *Detail) Mark(ctx context.Context, solved bool) error {
	d.mu.Lock()
	if d.current == nil {
		d.mu.Unlock()
		return nil
	}
	if d.submitting {
		d.notice = failure(progress.ErrInFlight)
		d.mu.Unlock()
		return progress.ErrInFlight
	}
	q := *d.current
	if solved && q.IsSolved {
		d.notice = info(MsgAlreadySolved)
		d.mu.Unlock()
		return nil
	}
	secs := submitSeconds(d.openedAt, d.now())
	d.submitting = true
	d.mu.Unlock()

	status, err := d.mediator.Submit(ctx, q.ID, secs, solved)

	d.mu.Lock()
	if d.current == nil || d.current.ID != q.ID {
		d.mu.Unlock()
		return err
	}
	d.submitting = false
	if err != nil {
		d.notice = failure(err)
		d.mu.Unlock()
		return err
	}
	d.mu.Unlock()

	recErr := d.mediator.Reconcile(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil || d.current.ID != q.ID {
		return authOnly(recErr)
	}
	if fresh, ok := d.store.Lookup(q.ID); ok {
		d.current = &fresh
	}
	d.openedAt = d.now()

	switch {
	case recErr != nil:
		d.notice = warning("progress saved, but refresh failed: " + api.Message(recErr))
	case status == api.StatusAlreadySolved:
		d.notice = info(MsgAlreadySolved)
	case solved:
		d.notice = info(fmt.Sprintf("marked solved (%ds)", secs))
	default:
		d.notice = info(fmt.Sprintf("attempt recorded (%ds)", secs))
	}
	return authOnly(recErr)
}
