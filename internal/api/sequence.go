package api

import "sync"

// EntityKind names one of the collections held by the store.
type EntityKind string

const (
	KindUser         EntityKind = "user"
	KindTestResponse EntityKind = "test_response"
	KindEvent        EntityKind = "neurofeedback_event"
	KindAchievement  EntityKind = "achievement"
)

// sequence hands out strictly increasing identifiers per entity kind, starting at 1.
type sequence struct {
	mu   sync.Mutex
	last map[EntityKind]int64
}

func newSequence() *sequence {
	return &sequence{last: map[EntityKind]int64{}}
}

func (s *sequence) next(kind EntityKind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[kind]++
	return s.last[kind]
}
