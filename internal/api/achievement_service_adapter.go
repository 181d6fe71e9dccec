package api

import (
	"github.com/soaringjerry/Cortex/internal/models"
	"github.com/soaringjerry/Cortex/internal/services"
)

type achievementStoreAdapter struct {
	store Store
}

func newAchievementStoreAdapter(store Store) services.AchievementStore {
	return &achievementStoreAdapter{store: store}
}

func (a *achievementStoreAdapter) CreateAchievement(in services.NewAchievement) (models.Achievement, error) {
	return a.store.CreateAchievement(AchievementFields{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Metadata:    in.Metadata,
		ShareHash:   in.ShareHash,
		IsPublic:    in.IsPublic,
	}), nil
}

func (a *achievementStoreAdapter) ListAchievements(userID int64) ([]models.Achievement, error) {
	return a.store.GetAchievements(userID), nil
}

func (a *achievementStoreAdapter) GetAchievementByShareHash(hash string) (*models.Achievement, error) {
	return a.store.GetAchievementByShareHash(hash), nil
}

func (a *achievementStoreAdapter) UpdateAchievementVisibility(id int64, isPublic bool) (*models.Achievement, error) {
	return a.store.UpdateAchievementVisibility(id, isPublic), nil
}

func (a *achievementStoreAdapter) ListPublicAchievements(limit int) ([]models.Achievement, error) {
	return a.store.GetPublicAchievements(limit), nil
}

var _ services.AchievementStore = (*achievementStoreAdapter)(nil)
