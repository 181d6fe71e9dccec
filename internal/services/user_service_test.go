package services

import (
	"testing"
	"time"

	"github.com/soaringjerry/Cortex/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type userStubStore struct {
	users     []*models.User
	responses []models.TestResponse
}

func (s *userStubStore) CreateUser(username, passHash string, email *string) (models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, NewConflictError("username exists")
		}
	}
	u := &models.User{ID: int64(len(s.users) + 1), Username: username, Password: passHash, Email: email}
	s.users = append(s.users, u)
	return *u, nil
}

func (s *userStubStore) GetUser(id int64) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *userStubStore) FindUserByUsername(name string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == name {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *userStubStore) ListTestResponses(userID int64) ([]models.TestResponse, error) {
	out := []models.TestResponse{}
	for _, r := range s.responses {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestUserCreateHashesPassword(t *testing.T) {
	store := &userStubStore{}
	svc := NewUserService(store)
	svc.hash = func(p string) (string, error) {
		b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.MinCost)
		return string(b), err
	}

	email := " neo@example.com "
	u, err := svc.Create(" neo ", "Secret123", &email)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u.ID != 1 || u.Username != "neo" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.Email == nil || *u.Email != "neo@example.com" {
		t.Fatalf("email = %v, want trimmed", u.Email)
	}
	if u.Password == "Secret123" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(store.users[0].Password), []byte("Secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if _, err := svc.Create("neo", "other", nil); err == nil {
		t.Fatalf("expected conflict on duplicate username")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestUserCreateValidation(t *testing.T) {
	svc := NewUserService(&userStubStore{})
	if _, err := svc.Create("", "pw", nil); err == nil {
		t.Fatalf("expected validation error for missing username")
	}
	if _, err := svc.Create("trinity", " ", nil); err == nil {
		t.Fatalf("expected validation error for blank password")
	}
}

func TestUserGet(t *testing.T) {
	store := &userStubStore{}
	svc := NewUserService(store)
	svc.hash = func(p string) (string, error) { return "hash:" + p, nil }
	if _, err := svc.Create("morpheus", "pw", nil); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u, err := svc.Get(1); err != nil || u.Username != "morpheus" {
		t.Fatalf("Get = (%v,%v)", u, err)
	}
	if _, err := svc.Get(2); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(0); err == nil {
		t.Fatalf("expected invalid error")
	}
}

func TestUserTestResponsesNewestFirst(t *testing.T) {
	base := time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC)
	store := &userStubStore{responses: []models.TestResponse{
		{ID: 1, UserID: int64Ptr(1), CreatedAt: base},
		{ID: 2, UserID: int64Ptr(2), CreatedAt: base.Add(time.Minute)},
		{ID: 3, UserID: int64Ptr(1), CreatedAt: base.Add(2 * time.Minute)},
		{ID: 4, UserID: int64Ptr(1), CreatedAt: base.Add(2 * time.Minute)},
	}}
	svc := NewUserService(store)
	rs, err := svc.TestResponses(1)
	if err != nil {
		t.Fatalf("TestResponses returned error: %v", err)
	}
	if len(rs) != 3 || rs[0].ID != 4 || rs[1].ID != 3 || rs[2].ID != 1 {
		t.Fatalf("unexpected order %+v", rs)
	}
}

// staleLookupStore simulates a concurrent insert landing between the
// username lookup and the create.
type staleLookupStore struct{ userStubStore }

func (s *staleLookupStore) FindUserByUsername(string) (*models.User, error) { return nil, nil }

func TestUserCreateConflictFromStore(t *testing.T) {
	store := &staleLookupStore{}
	svc := NewUserService(store)
	svc.hash = func(p string) (string, error) { return "hash:" + p, nil }
	if _, err := svc.Create("neo", "pw", nil); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}
	_, err := svc.Create("neo", "pw", nil)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict from store, got %v", err)
	}
	if len(store.users) != 1 {
		t.Fatalf("users stored = %d, want 1", len(store.users))
	}
}
