package alerts

import (
	"sync"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

// Store keeps the dismissed alert ids for the life of the process and the
// active alerts derived from the most recent poll.
type Store struct {
	mu        sync.RWMutex
	dismissed map[string]struct{}
	active    []models.Alert
	lastSeq   uint64
}

func NewStore() *Store {
	return &Store{
		dismissed: make(map[string]struct{}),
	}
}

// Ingest recomputes the active list as fetched minus dismissed, keeping the
// fetched order. A result from a cycle older than the last applied one is
// discarded and reported with applied=false.
func (s *Store) Ingest(seq uint64, fetched []models.Alert) (active []models.Alert, applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.lastSeq {
		return s.snapshot(), false
	}
	s.lastSeq = seq

	s.active = make([]models.Alert, 0, len(fetched))
	for _, a := range fetched {
		if _, ok := s.dismissed[a.ID]; ok {
			continue
		}
		s.active = append(s.active, a)
	}
	return s.snapshot(), true
}

// Dismiss hides the alert locally. It reports whether the id was newly
// dismissed; a repeated dismissal changes nothing.
func (s *Store) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dismissed[id]; ok {
		return false
	}
	s.dismissed[id] = struct{}{}

	kept := s.active[:0:0]
	for _, a := range s.active {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.active = kept
	return true
}

func (s *Store) IsDismissed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dismissed[id]
	return ok
}

func (s *Store) DismissedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dismissed)
}

func (s *Store) Active() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Find returns the active alert for a folio.
func (s *Store) Find(folio models.Folio) (models.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.active {
		if a.Folio == folio {
			return a, true
		}
	}
	return models.Alert{}, false
}

func (s *Store) snapshot() []models.Alert {
	out := make([]models.Alert, len(s.active))
	copy(out, s.active)
	return out
}
