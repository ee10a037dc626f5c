package service

import (
	"sync"
	"time"

	"github.com/campusplan/timetable-core/internal/models"
)

// proposal is one cached Generate outcome awaiting Save, mirroring the
// teacher's Generate-then-Save two-phase flow (SPEC_FULL §4: "Idempotent
// re-generation").
type proposal struct {
	RunID       string
	Items       []models.ScheduleItem
	RequestedAt time.Time
}

// proposalCache is the seam between TimetableService and whatever backs the
// pending-proposal cache: the in-process proposalStore below, or
// redisProposalCache when the startup Redis ping succeeds (SPEC_FULL §2);
// the in-process store is the fallback when Redis cannot be reached.
type proposalCache interface {
	Save(p proposal)
	Get(runID string) (proposal, bool)
	Delete(runID string)
}

// proposalStore is an in-process, TTL-expiring cache of pending proposals,
// grounded on the teacher's proposalStore (sync.RWMutex + map + TTL check
// on read).
type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]proposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &proposalStore{ttl: ttl, items: make(map[string]proposal)}
}

func (s *proposalStore) Save(p proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.RunID] = p
}

func (s *proposalStore) Get(runID string) (proposal, bool) {
	s.mu.RLock()
	p, ok := s.items[runID]
	s.mu.RUnlock()
	if !ok {
		return proposal{}, false
	}
	if time.Since(p.RequestedAt) > s.ttl {
		s.Delete(runID)
		return proposal{}, false
	}
	return p, true
}

func (s *proposalStore) Delete(runID string) {
	s.mu.Lock()
	delete(s.items, runID)
	s.mu.Unlock()
}
