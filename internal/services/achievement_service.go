package services

import (
	"strings"

	"github.com/soaringjerry/Cortex/internal/models"
)

// AchievementStore abstracts persistence operations required by AchievementService.
type AchievementStore interface {
	CreateAchievement(in NewAchievement) (models.Achievement, error)
	ListAchievements(userID int64) ([]models.Achievement, error)
	GetAchievementByShareHash(hash string) (*models.Achievement, error)
	UpdateAchievementVisibility(id int64, isPublic bool) (*models.Achievement, error)
	ListPublicAchievements(limit int) ([]models.Achievement, error)
}

type AchievementService struct {
	store AchievementStore
}

func NewAchievementService(store AchievementStore) *AchievementService {
	return &AchievementService{store: store}
}

// Create stores a new achievement. The share hash comes from the caller.
func (s *AchievementService) Create(in NewAchievement) (*models.Achievement, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ShareHash = strings.TrimSpace(in.ShareHash)
	if in.Title == "" {
		return nil, NewInvalidError("title is required")
	}
	if in.Description == "" {
		return nil, NewInvalidError("description is required")
	}
	if in.ShareHash == "" {
		return nil, NewInvalidError("shareHash is required")
	}
	if in.UserID != nil && *in.UserID <= 0 {
		return nil, NewInvalidError("userId must be a positive integer")
	}
	a, err := s.store.CreateAchievement(in)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AchievementService) ListByUser(userID int64) ([]models.Achievement, error) {
	if userID <= 0 {
		return nil, NewInvalidError("invalid userId")
	}
	return s.store.ListAchievements(userID)
}

// SetVisibility flips isPublic. Unknown ids are reported as not found and
// nothing is created.
func (s *AchievementService) SetVisibility(id int64, isPublic bool) (*models.Achievement, error) {
	if id <= 0 {
		return nil, NewInvalidError("invalid achievement id")
	}
	a, err := s.store.UpdateAchievementVisibility(id, isPublic)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NewNotFoundError("achievement not found")
	}
	return a, nil
}

// GetShared resolves a public achievement by share hash. Private
// achievements are indistinguishable from unknown hashes.
func (s *AchievementService) GetShared(hash string) (*models.Achievement, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, NewInvalidError("share hash is required")
	}
	a, err := s.store.GetAchievementByShareHash(hash)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NewNotFoundError("achievement not found")
	}
	return a, nil
}

// ListPublic returns public achievements newest first; limit <= 0 means all.
func (s *AchievementService) ListPublic(limit int) ([]models.Achievement, error) {
	return s.store.ListPublicAchievements(limit)
}
