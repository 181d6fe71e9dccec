package models

import "time"

// User is an account that owns test responses, events and achievements.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // opaque; callers store a hash, never plaintext
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TestResponse is a single answer to a catalog test question.
type TestResponse struct {
	ID           int64     `json:"id"`
	UserID       *int64    `json:"userId"`
	TestCode     string    `json:"testCode"`
	QuestionID   string    `json:"questionId"`
	Response     string    `json:"response"`
	CreatedAt    time.Time `json:"createdAt"`
	BrainRegions []string  `json:"brainRegions"`
	Intensity    *int      `json:"intensity"`
}

// NeurofeedbackEvent is a simulated activation of one brain region.
type NeurofeedbackEvent struct {
	ID             int64          `json:"id"`
	UserID         *int64         `json:"userId"`
	TestResponseID *int64         `json:"testResponseId"`
	BrainRegionID  string         `json:"brainRegionId"`
	Intensity      int            `json:"intensity"`
	Duration       int            `json:"duration"` // milliseconds
	CreatedAt      time.Time      `json:"createdAt"`
	Metadata       map[string]any `json:"metadata"`
}

// AchievementMetadata is the fixed shape stored with every achievement.
type AchievementMetadata struct {
	Details string            `json:"details"`
	Stats   map[string]string `json:"stats"`
}

// Achievement is a shareable milestone. Only IsPublic changes after creation.
type Achievement struct {
	ID          int64               `json:"id"`
	UserID      *int64              `json:"userId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	AchievedAt  time.Time           `json:"achievedAt"`
	Type        string              `json:"type"`
	Metadata    AchievementMetadata `json:"metadata"`
	ShareHash   string              `json:"shareHash"`
	IsPublic    bool                `json:"isPublic"`
}

// Defaults applied by the store when a create call leaves a field unset.
const (
	DefaultEventIntensity = 5
	DefaultEventDuration  = 3000
)
