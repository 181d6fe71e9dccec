package api

import (
	"sort"
	"sync"
	"time"

	"github.com/soaringjerry/Cortex/internal/models"
)

// memoryStore keeps every entity for the lifetime of the process.
// Rows are kept in insertion order; lookups by id go through the index maps.
type memoryStore struct {
	mu  sync.RWMutex
	seq *sequence
	now func() time.Time

	users           []*models.User
	usersByID       map[int64]*models.User
	responses       []*models.TestResponse
	responsesByID   map[int64]*models.TestResponse
	events          []*models.NeurofeedbackEvent
	achievements    []*models.Achievement
	achievementByID map[int64]*models.Achievement
}

// NewMemoryStore returns an empty store with all sequences at zero.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		seq:             newSequence(),
		now:             func() time.Time { return time.Now().UTC() },
		usersByID:       map[int64]*models.User{},
		responsesByID:   map[int64]*models.TestResponse{},
		achievementByID: map[int64]*models.Achievement{},
	}
}

// users

func (s *memoryStore) CreateUser(username, password string, email *string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == username {
			return models.User{}, false
		}
	}
	u := &models.User{
		ID:        s.seq.next(KindUser),
		Username:  username,
		Password:  password,
		Email:     cloneString(email),
		CreatedAt: s.now(),
	}
	s.users = append(s.users, u)
	s.usersByID[u.ID] = u
	return cloneUser(u), true
}

func (s *memoryStore) GetUser(id int64) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByID[id]
	if !ok {
		return nil
	}
	out := cloneUser(u)
	return &out
}

func (s *memoryStore) GetUserByUsername(name string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == name {
			out := cloneUser(u)
			return &out
		}
	}
	return nil
}

// test responses

func (s *memoryStore) CreateTestResponse(f TestResponseFields) models.TestResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr := &models.TestResponse{
		ID:           s.seq.next(KindTestResponse),
		UserID:       cloneInt64(f.UserID),
		TestCode:     f.TestCode,
		QuestionID:   f.QuestionID,
		Response:     f.Response,
		CreatedAt:    s.now(),
		BrainRegions: cloneStrings(f.BrainRegions),
		Intensity:    cloneInt(f.Intensity),
	}
	s.responses = append(s.responses, tr)
	s.responsesByID[tr.ID] = tr
	return cloneTestResponse(tr)
}

func (s *memoryStore) GetTestResponses(userID int64) []models.TestResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TestResponse{}
	for _, tr := range s.responses {
		if ownedBy(tr.UserID, userID) {
			out = append(out, cloneTestResponse(tr))
		}
	}
	return out
}

func (s *memoryStore) GetTestResponseByID(id int64) *models.TestResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tr, ok := s.responsesByID[id]
	if !ok {
		return nil
	}
	out := cloneTestResponse(tr)
	return &out
}

// neurofeedback events

func (s *memoryStore) CreateNeurofeedbackEvent(f EventFields) models.NeurofeedbackEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := &models.NeurofeedbackEvent{
		ID:             s.seq.next(KindEvent),
		UserID:         cloneInt64(f.UserID),
		TestResponseID: cloneInt64(f.TestResponseID),
		BrainRegionID:  f.BrainRegionID,
		Intensity:      models.DefaultEventIntensity,
		Duration:       models.DefaultEventDuration,
		CreatedAt:      s.now(),
		Metadata:       cloneMetadata(f.Metadata),
	}
	if f.Intensity != nil {
		ev.Intensity = *f.Intensity
	}
	if f.Duration != nil {
		ev.Duration = *f.Duration
	}
	s.events = append(s.events, ev)
	return cloneEvent(ev)
}

func (s *memoryStore) GetNeurofeedbackEvents(userID int64) []models.NeurofeedbackEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.NeurofeedbackEvent{}
	for _, ev := range s.events {
		if ownedBy(ev.UserID, userID) {
			out = append(out, cloneEvent(ev))
		}
	}
	return out
}

func (s *memoryStore) GetRecentNeurofeedbackEvents(userID int64, limit int) []models.NeurofeedbackEvent {
	out := s.GetNeurofeedbackEvents(userID)
	// stable: equal timestamps keep insertion order
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// achievements

func (s *memoryStore) CreateAchievement(f AchievementFields) models.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &models.Achievement{
		ID:          s.seq.next(KindAchievement),
		UserID:      cloneInt64(f.UserID),
		Title:       f.Title,
		Description: f.Description,
		AchievedAt:  s.now(),
		Type:        f.Type,
		Metadata:    mergeAchievementMetadata(f.Metadata),
		ShareHash:   f.ShareHash,
		IsPublic:    f.IsPublic,
	}
	s.achievements = append(s.achievements, a)
	s.achievementByID[a.ID] = a
	return cloneAchievement(a)
}

func (s *memoryStore) GetAchievements(userID int64) []models.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Achievement{}
	for _, a := range s.achievements {
		if ownedBy(a.UserID, userID) {
			out = append(out, cloneAchievement(a))
		}
	}
	return out
}

func (s *memoryStore) GetAchievementByShareHash(hash string) *models.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.achievements {
		if a.ShareHash == hash && a.IsPublic {
			out := cloneAchievement(a)
			return &out
		}
	}
	return nil
}

func (s *memoryStore) UpdateAchievementVisibility(id int64, isPublic bool) *models.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.achievementByID[id]
	if !ok {
		return nil
	}
	a.IsPublic = isPublic
	out := cloneAchievement(a)
	return &out
}

// GetPublicAchievements returns public achievements, newest first. A limit of
// zero or less returns all of them.
func (s *memoryStore) GetPublicAchievements(limit int) []models.Achievement {
	s.mu.RLock()
	out := []models.Achievement{}
	for _, a := range s.achievements {
		if a.IsPublic {
			out = append(out, cloneAchievement(a))
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].AchievedAt.After(out[j].AchievedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *memoryStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreStats{
		Users:         len(s.users),
		TestResponses: len(s.responses),
		Events:        len(s.events),
		Achievements:  len(s.achievements),
	}
}

// mergeAchievementMetadata overlays caller metadata onto {details:"", stats:{}}.
// Fields of the wrong shape are ignored rather than rejected.
func mergeAchievementMetadata(in map[string]any) models.AchievementMetadata {
	md := models.AchievementMetadata{Stats: map[string]string{}}
	if in == nil {
		return md
	}
	if d, ok := in["details"].(string); ok {
		md.Details = d
	}
	switch st := in["stats"].(type) {
	case map[string]string:
		for k, v := range st {
			md.Stats[k] = v
		}
	case map[string]any:
		stats := make(map[string]string, len(st))
		for k, v := range st {
			sv, ok := v.(string)
			if !ok {
				stats = nil
				break
			}
			stats[k] = sv
		}
		if stats != nil {
			md.Stats = stats
		}
	}
	return md
}

func ownedBy(owner *int64, userID int64) bool {
	return owner != nil && *owner == userID
}

func cloneUser(u *models.User) models.User {
	out := *u
	out.Email = cloneString(u.Email)
	return out
}

func cloneTestResponse(tr *models.TestResponse) models.TestResponse {
	out := *tr
	out.UserID = cloneInt64(tr.UserID)
	out.BrainRegions = cloneStrings(tr.BrainRegions)
	out.Intensity = cloneInt(tr.Intensity)
	return out
}

func cloneEvent(ev *models.NeurofeedbackEvent) models.NeurofeedbackEvent {
	out := *ev
	out.UserID = cloneInt64(ev.UserID)
	out.TestResponseID = cloneInt64(ev.TestResponseID)
	out.Metadata = cloneMetadata(ev.Metadata)
	return out
}

func cloneAchievement(a *models.Achievement) models.Achievement {
	out := *a
	out.UserID = cloneInt64(a.UserID)
	out.Metadata.Stats = make(map[string]string, len(a.Metadata.Stats))
	for k, v := range a.Metadata.Stats {
		out.Metadata.Stats[k] = v
	}
	return out
}

func cloneMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
