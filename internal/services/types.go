package services

import "github.com/soaringjerry/Cortex/internal/catalog"

// Lookup resolves catalog codes. *catalog.Catalog satisfies it.
type Lookup interface {
	TestByCode(code string) *catalog.TestDefinition
	RegionByCode(code string) *catalog.BrainRegion
}

// NewTestResponse is the input for persisting a test response.
type NewTestResponse struct {
	UserID       *int64
	TestCode     string
	QuestionID   string
	Response     string
	BrainRegions []string
	Intensity    *int
}

// NewEvent is the input for persisting a neurofeedback event. Nil Intensity
// or Duration take the store defaults (5 and 3000ms).
type NewEvent struct {
	UserID         *int64
	TestResponseID *int64
	BrainRegionID  string
	Intensity      *int
	Duration       *int
	Metadata       map[string]any
}

// NewAchievement is the input for persisting an achievement.
type NewAchievement struct {
	UserID      *int64
	Title       string
	Description string
	Type        string
	Metadata    map[string]any
	ShareHash   string
	IsPublic    bool
}

const (
	minIntensity = 1
	maxIntensity = 10

	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

func validIntensity(v *int) bool {
	return v == nil || (*v >= minIntensity && *v <= maxIntensity)
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }
