package api

import "github.com/soaringjerry/Cortex/internal/models"

// TestResponseFields carries caller input for CreateTestResponse.
type TestResponseFields struct {
	UserID       *int64
	TestCode     string
	QuestionID   string
	Response     string
	BrainRegions []string
	Intensity    *int
}

// EventFields carries caller input for CreateNeurofeedbackEvent.
// Nil Intensity and Duration fall back to the model defaults.
type EventFields struct {
	UserID         *int64
	TestResponseID *int64
	BrainRegionID  string
	Intensity      *int
	Duration       *int
	Metadata       map[string]any
}

// AchievementFields carries caller input for CreateAchievement. Metadata is
// loosely typed on purpose: it is merged into the fixed AchievementMetadata shape.
type AchievementFields struct {
	UserID      *int64
	Title       string
	Description string
	Type        string
	Metadata    map[string]any
	ShareHash   string
	IsPublic    bool
}

// StoreStats reports how many rows each collection holds.
type StoreStats struct {
	Users         int `json:"users"`
	TestResponses int `json:"test_responses"`
	Events        int `json:"neurofeedback_events"`
	Achievements  int `json:"achievements"`
}

type Store interface {
	// CreateUser inserts a user unless the username is taken; the check and
	// the insert happen under one lock.
	CreateUser(username, password string, email *string) (models.User, bool)
	GetUser(id int64) *models.User
	GetUserByUsername(name string) *models.User

	CreateTestResponse(f TestResponseFields) models.TestResponse
	GetTestResponses(userID int64) []models.TestResponse
	GetTestResponseByID(id int64) *models.TestResponse

	CreateNeurofeedbackEvent(f EventFields) models.NeurofeedbackEvent
	GetNeurofeedbackEvents(userID int64) []models.NeurofeedbackEvent
	GetRecentNeurofeedbackEvents(userID int64, limit int) []models.NeurofeedbackEvent

	CreateAchievement(f AchievementFields) models.Achievement
	GetAchievements(userID int64) []models.Achievement
	GetAchievementByShareHash(hash string) *models.Achievement
	UpdateAchievementVisibility(id int64, isPublic bool) *models.Achievement
	GetPublicAchievements(limit int) []models.Achievement

	Stats() StoreStats
}

var _ Store = (*memoryStore)(nil)
