package services

import (
	"sort"
	"strings"

	"github.com/soaringjerry/Cortex/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	// CreateUser fails with a conflict ServiceError when username is taken.
	CreateUser(username, passHash string, email *string) (models.User, error)
	GetUser(id int64) (*models.User, error)
	FindUserByUsername(name string) (*models.User, error)
	ListTestResponses(userID int64) ([]models.TestResponse, error)
}

type UserService struct {
	store UserStore
	hash  func(password string) (string, error)
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store, hash: bcryptHash}
}

func bcryptHash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Create registers a user. Usernames are unique; the password is stored as a
// bcrypt hash.
func (s *UserService) Create(username, password string, email *string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("username/password required")
	}
	if email != nil {
		e := strings.TrimSpace(*email)
		if e == "" {
			email = nil
		} else {
			email = &e
		}
	}
	// Early exit spares a bcrypt round for obvious duplicates; the store
	// still decides races.
	existing, err := s.store.FindUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("username exists")
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	u, err := s.store.CreateUser(username, hash, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Get(id int64) (*models.User, error) {
	if id <= 0 {
		return nil, NewInvalidError("invalid userId")
	}
	u, err := s.store.GetUser(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewNotFoundError("user not found")
	}
	return u, nil
}

// TestResponses lists a user's responses, newest first.
func (s *UserService) TestResponses(userID int64) ([]models.TestResponse, error) {
	if userID <= 0 {
		return nil, NewInvalidError("invalid userId")
	}
	rs, err := s.store.ListTestResponses(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID > rs[j].ID
		}
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
	return rs, nil
}
