package catalog

import (
	"context"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/abhisek/quantiz/internal/api"
)

// ErrStale is returned by a refresh whose response arrived after the store
// was invalidated. The response is discarded.
var ErrStale = errors.New("catalog: stale response discarded")

// memoSize bounds the filter results kept per catalog version. Typing a
// search adds one entry per keystroke.
const memoSize = 32

type memoKey struct {
	version uint64
	key     string
}

// Store holds the last fetched catalog and stats. Both are only ever
// replaced wholesale by a refresh; slices handed out must be treated as
// read-only.
type Store struct {
	svc api.Service

	mu         sync.RWMutex
	questions  []api.Question
	stats      *api.Stats
	facets     Facets
	loaded     bool
	version    uint64 // bumped on every catalog replacement
	generation uint64 // bumped on Invalidate
	memo       *lru.Cache[memoKey, []api.Question]
}

// NewStore creates an empty Store backed by svc.
func NewStore(svc api.Service) *Store {
	memo, _ := lru.New[memoKey, []api.Question](memoSize)
	return &Store{svc: svc, memo: memo}
}

// Refresh fetches the catalog and then the stats, one remote call each.
// A failure of one does not skip the other unless it is an auth failure.
// Prior data stays in place for whichever fetch failed.
func (s *Store) Refresh(ctx context.Context) error {
	catErr := s.RefreshCatalog(ctx)
	if api.IsAuth(catErr) || errors.Is(catErr, ErrStale) {
		return catErr
	}
	statsErr := s.RefreshStats(ctx)
	return errors.Join(catErr, statsErr)
}

// RefreshCatalog replaces the catalog with a fresh snapshot.
func (s *Store) RefreshCatalog(ctx context.Context) error {
	gen := s.Generation()
	qs, err := s.svc.FetchCatalog(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return ErrStale
	}
	if err != nil {
		return asFetchError("catalog", err)
	}

	s.questions = qs
	s.facets = FacetsOf(qs)
	s.loaded = true
	s.version++
	s.memo.Purge()
	return nil
}

// RefreshStats replaces the stats with a fresh snapshot.
func (s *Store) RefreshStats(ctx context.Context) error {
	gen := s.Generation()
	st, err := s.svc.FetchStats(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return ErrStale
	}
	if err != nil {
		return asFetchError("stats", err)
	}
	s.stats = st
	return nil
}

// Invalidate drops all data and makes every refresh already in flight
// report ErrStale instead of repopulating the store. Called on logout.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.version++
	s.questions = nil
	s.stats = nil
	s.facets = Facets{}
	s.loaded = false
	s.memo.Purge()
}

// Questions returns the current catalog.
func (s *Store) Questions() []api.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions
}

// Stats returns the current stats, or nil before the first fetch.
func (s *Store) Stats() *api.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Facets returns facets over the unfiltered catalog.
func (s *Store) Facets() Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facets
}

// Loaded reports whether a catalog has been fetched since the last
// Invalidate.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Version returns the catalog version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Generation returns the invalidation generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Lookup returns the question with the given id from the current catalog.
func (s *Store) Lookup(id int) (api.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return api.Question{}, false
}

// Filtered returns the current catalog filtered by c. The most recently
// used results are memoized per (catalog version, criteria) pair.
func (s *Store) Filtered(c Criteria) []api.Question {
	k := c.Key()

	s.mu.RLock()
	mk := memoKey{version: s.version, key: k}
	if res, ok := s.memo.Get(mk); ok {
		s.mu.RUnlock()
		return res
	}
	qs := s.questions
	s.mu.RUnlock()

	res := Filter(qs, c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version == mk.version {
		s.memo.Add(mk, res)
	}
	return res
}

func asFetchError(op string, err error) error {
	var fe *api.FetchError
	if api.IsAuth(err) || errors.As(err, &fe) {
		return err
	}
	return &api.FetchError{Op: op, Message: err.Error(), Err: err}
}
