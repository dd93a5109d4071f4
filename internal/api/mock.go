package api

import (
	"context"
	"sync"
)

// CatalogResponse is a canned FetchCatalog result for the MockService.
type CatalogResponse struct {
	Questions []Question
	Err       error
}

// StatsResponse is a canned FetchStats result for the MockService.
type StatsResponse struct {
	Stats *Stats
	Err   error
}

// SubmitResponse is a canned SubmitProgress result for the MockService.
type SubmitResponse struct {
	Status ProgressStatus
	Err    error
}

// MockCall records one call made against the MockService.
type MockCall struct {
	Op             string
	QuestionID     int
	ElapsedSeconds int
	Solved         bool
	Username       string
}

// MockService is a deterministic Service for testing.
//
// Catalog, stats and submit responses are served in FIFO order. For catalog
// and stats the last queued response keeps being served once the queue is
// down to one, so a single canned catalog behaves like a static backend.
// Submits fall back to StatusOK once their queue is drained. Every call is
// recorded in Calls.
type MockService struct {
	mu       sync.Mutex
	catalogs []CatalogResponse
	stats    []StatsResponse
	submits  []SubmitResponse

	User        *User
	LoginErr    error
	RegisterErr error
	ResetErr    error
	UserErr     error

	// SubmitHook, when set, runs inside SubmitProgress before it returns.
	// Tests use it to hold a submission in flight.
	SubmitHook func(questionID int)

	Calls []MockCall
}

var _ Service = (*MockService)(nil)

// NewMockService creates a MockService serving the given catalog and an
// empty stats snapshot.
func NewMockService(questions ...Question) *MockService {
	m := &MockService{User: &User{ID: 1, Username: "mock"}}
	m.catalogs = []CatalogResponse{{Questions: questions}}
	m.stats = []StatsResponse{{Stats: normalizeStats(&Stats{TotalQuestions: len(questions)})}}
	return m
}

// QueueCatalog appends catalog responses behind the ones already queued.
func (m *MockService) QueueCatalog(rs ...CatalogResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs = append(m.catalogs, rs...)
}

// SetCatalog replaces the catalog queue with a single static response.
func (m *MockService) SetCatalog(r CatalogResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs = []CatalogResponse{r}
}

// SetStats replaces the stats queue with a single static response.
func (m *MockService) SetStats(r StatsResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = []StatsResponse{r}
}

// QueueSubmit appends submit responses.
func (m *MockService) QueueSubmit(rs ...SubmitResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submits = append(m.submits, rs...)
}

func (m *MockService) FetchCatalog(_ context.Context) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Op: "fetch_catalog"})

	r := next(&m.catalogs, CatalogResponse{}, true)
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]Question, len(r.Questions))
	copy(out, r.Questions)
	return normalizeQuestions(out), nil
}

func (m *MockService) FetchStats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Op: "fetch_stats"})

	r := next(&m.stats, StatsResponse{Stats: &Stats{}}, true)
	if r.Err != nil {
		return nil, r.Err
	}
	s := *r.Stats
	return normalizeStats(&s), nil
}

func (m *MockService) SubmitProgress(_ context.Context, questionID, elapsedSeconds int, solved bool) (ProgressStatus, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{
		Op:             "submit_progress",
		QuestionID:     questionID,
		ElapsedSeconds: elapsedSeconds,
		Solved:         solved,
	})
	r := next(&m.submits, SubmitResponse{Status: StatusOK}, false)
	hook := m.SubmitHook
	m.mu.Unlock()

	if hook != nil {
		hook(questionID)
	}
	if r.Err != nil {
		return "", r.Err
	}
	if r.Status == "" {
		return StatusOK, nil
	}
	return r.Status, nil
}

func (m *MockService) ResetProgress(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Op: "reset_progress"})
	return m.ResetErr
}

func (m *MockService) CurrentUser(_ context.Context) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Op: "current_user"})
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.User == nil {
		return nil, &AuthError{Err: ErrNoSession}
	}
	u := *m.User
	return &u, nil
}

func (m *MockService) Login(_ context.Context, username, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Op: "login", Username: username})
	if m.LoginErr != nil {
		return m.LoginErr
	}
	m.User = &User{ID: 1, Username: username}
	m.UserErr = nil
	return nil
}

func (m *MockService) Register(_ context.Context, username, _ string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Op: "register", Username: username})
	if m.RegisterErr != nil {
		return nil, m.RegisterErr
	}
	return &User{ID: 1, Username: username}, nil
}

func (m *MockService) Logout(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Op: "logout"})
	m.User = nil
	return nil
}

// CallCount returns the number of calls made for op.
func (m *MockService) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Submissions returns the recorded SubmitProgress calls.
func (m *MockService) Submissions() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCall
	for _, c := range m.Calls {
		if c.Op == "submit_progress" {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded calls.
func (m *MockService) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// next pops the head of q. When sticky is set the last element stays in
// place and is served again.
func next[T any](q *[]T, fallback T, sticky bool) T {
	if len(*q) == 0 {
		return fallback
	}
	head := (*q)[0]
	if len(*q) > 1 || !sticky {
		*q = (*q)[1:]
	}
	return head
}
