// Package resultmem keeps the latest result per (room, participant) in
// memory. Each room gets its own bucket with its own lock, so two busy
// rooms never contend with each other.
package resultmem

import (
	"sync"

	"github.com/bmmjam/taptap/internal/model"
)

type bucket struct {
	mu      sync.RWMutex
	byUser  map[model.UserID]model.Result
	ordered []model.UserID // first-seen submission order
}

type Store struct {
	mu    sync.RWMutex
	rooms map[model.RoomCode]*bucket
}

func New() *Store {
	return &Store{rooms: make(map[model.RoomCode]*bucket)}
}

func (s *Store) room(code model.RoomCode) *bucket {
	s.mu.RLock()
	b, ok := s.rooms[code]
	s.mu.RUnlock()
	if ok {
		return b
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.rooms[code]; ok {
		return b
	}
	b = &bucket{byUser: make(map[model.UserID]model.Result)}
	s.rooms[code] = b
	return b
}

// Upsert stores the result for its user, overwriting any previous one,
// and returns the distinct participant count for the room. Resubmitting
// never double-counts and never changes the user's position in the
// member list.
func (s *Store) Upsert(code model.RoomCode, r model.Result) int {
	b := s.room(code)
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, seen := b.byUser[r.UserID]; !seen {
		b.ordered = append(b.ordered, r.UserID)
	}
	b.byUser[r.UserID] = r
	return len(b.ordered)
}

// Snapshot returns the room's results in first-submission order.
func (s *Store) Snapshot(code model.RoomCode) []model.Result {
	b := s.room(code)
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.Result, 0, len(b.ordered))
	for _, id := range b.ordered {
		out = append(out, b.byUser[id])
	}
	return out
}

// Clear drops every result for the room. The room itself and any
// memberships pointing at it stay intact.
func (s *Store) Clear(code model.RoomCode) {
	b := s.room(code)
	b.mu.Lock()
	b.byUser = make(map[model.UserID]model.Result)
	b.ordered = nil
	b.mu.Unlock()
}
