package memory

import (
	"context"
	"sync"

	"classroom-quiz-service/internal/domain"
)

// RosterStore serves classroom rosters from an in-memory map.
type RosterStore struct {
	mu      sync.RWMutex
	rosters map[string][]domain.Student
}

func NewRosterStore(rosters map[string][]domain.Student) *RosterStore {
	if rosters == nil {
		rosters = make(map[string][]domain.Student)
	}
	return &RosterStore{rosters: rosters}
}

func (s *RosterStore) Students(_ context.Context, classroom string) ([]domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Student(nil), s.rosters[classroom]...), nil
}
