package api

import (
	"github.com/soaringjerry/Cortex/internal/models"
	"github.com/soaringjerry/Cortex/internal/services"
)

type userStoreAdapter struct {
	store Store
}

func newUserStoreAdapter(store Store) services.UserStore {
	return &userStoreAdapter{store: store}
}

func (a *userStoreAdapter) CreateUser(username, passHash string, email *string) (models.User, error) {
	u, ok := a.store.CreateUser(username, passHash, email)
	if !ok {
		return models.User{}, services.NewConflictError("username exists")
	}
	return u, nil
}

func (a *userStoreAdapter) GetUser(id int64) (*models.User, error) {
	return a.store.GetUser(id), nil
}

func (a *userStoreAdapter) FindUserByUsername(name string) (*models.User, error) {
	return a.store.GetUserByUsername(name), nil
}

func (a *userStoreAdapter) ListTestResponses(userID int64) ([]models.TestResponse, error) {
	return a.store.GetTestResponses(userID), nil
}

var _ services.UserStore = (*userStoreAdapter)(nil)
