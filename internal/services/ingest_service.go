package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/soaringjerry/Cortex/internal/catalog"
	"github.com/soaringjerry/Cortex/internal/metrics"
	"github.com/soaringjerry/Cortex/internal/models"
)

// IngestStore abstracts persistence operations required by IngestService.
type IngestStore interface {
	CreateTestResponse(in NewTestResponse) (models.TestResponse, error)
	CreateEvent(in NewEvent) (models.NeurofeedbackEvent, error)
	RecentEvents(userID int64, limit int) ([]models.NeurofeedbackEvent, error)
}

// EventBroadcaster pushes an event to a user's live connections. Delivery is
// best effort: implementations swallow and log per-connection failures.
type EventBroadcaster interface {
	BroadcastEvent(userID int64, ev models.NeurofeedbackEvent)
}

// IngestRequest carries a test-response submission.
type IngestRequest struct {
	UserID       *int64
	TestCode     string
	QuestionID   string
	Response     string
	BrainRegions []string
	Intensity    *int
}

// SimulateRequest asks for a standalone event on one region.
type SimulateRequest struct {
	UserID        int64
	BrainRegionID string
	Intensity     *int
}

var errStoreNotConfigured = errors.New("ingest service store is nil")

// IngestService turns test responses into neurofeedback events and pushes
// them to the submitting user's connections.
type IngestService struct {
	store       IngestStore
	lookup      Lookup
	broadcaster EventBroadcaster
	sampler     RegionActivationSampler
	metrics     *metrics.Metrics
}

// NewIngestService wires the pipeline. broadcaster and m may be nil.
func NewIngestService(store IngestStore, lookup Lookup, broadcaster EventBroadcaster, m *metrics.Metrics) *IngestService {
	return &IngestService{
		store:       store,
		lookup:      lookup,
		broadcaster: broadcaster,
		sampler:     NewRandomSampler(),
		metrics:     m,
	}
}

// WithSampler replaces the activation sampler.
func (s *IngestService) WithSampler(sampler RegionActivationSampler) *IngestService {
	if sampler != nil {
		s.sampler = sampler
	}
	return s
}

// Ingest persists the response, then one event per brain region of its test,
// then broadcasts those events. Rows written before ctx is cancelled stay
// written; only broadcasting is skipped.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (*models.TestResponse, error) {
	if s.store == nil {
		return nil, errStoreNotConfigured
	}
	req.TestCode = strings.TrimSpace(req.TestCode)
	req.QuestionID = strings.TrimSpace(req.QuestionID)
	switch {
	case req.TestCode == "":
		return nil, NewInvalidError("testCode is required")
	case req.QuestionID == "":
		return nil, NewInvalidError("questionId is required")
	case strings.TrimSpace(req.Response) == "":
		return nil, NewInvalidError("response is required")
	case req.UserID != nil && *req.UserID <= 0:
		return nil, NewInvalidError("userId must be a positive integer")
	case !validIntensity(req.Intensity):
		return nil, NewInvalidError("intensity must be between 1 and 10")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tr, err := s.store.CreateTestResponse(NewTestResponse{
		UserID:       req.UserID,
		TestCode:     req.TestCode,
		QuestionID:   req.QuestionID,
		Response:     req.Response,
		BrainRegions: req.BrainRegions,
		Intensity:    req.Intensity,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TestResponseStored()

	def := s.lookupTest(tr.TestCode)
	if def == nil || len(def.BrainRegionCodes) == 0 {
		return &tr, nil
	}

	events := make([]models.NeurofeedbackEvent, 0, len(def.BrainRegionCodes))
	for _, code := range def.BrainRegionCodes {
		name, color := s.regionDisplay(code)
		intensity := s.sampler.Intensity()
		if tr.Intensity != nil {
			intensity = *tr.Intensity
		}
		ev, err := s.store.CreateEvent(NewEvent{
			UserID:         tr.UserID,
			TestResponseID: int64Ptr(tr.ID),
			BrainRegionID:  code,
			Intensity:      intPtr(intensity),
			Duration:       intPtr(s.sampler.Duration()),
			Metadata: map[string]any{
				"questionId":       tr.QuestionID,
				"testCode":         tr.TestCode,
				"brainRegionName":  name,
				"brainRegionColor": color,
				"simulated":        true,
			},
		})
		if err != nil {
			return nil, err
		}
		s.metrics.EventStored(metrics.SourceIngest)
		events = append(events, ev)
	}

	if tr.UserID == nil {
		return &tr, nil
	}
	if err := ctx.Err(); err != nil {
		log.Printf("ingest: skipping broadcast of %d events for response=%d: %v", len(events), tr.ID, err)
		return &tr, nil
	}
	for _, ev := range events {
		s.broadcast(*tr.UserID, ev)
	}
	return &tr, nil
}

// Simulate persists and broadcasts a standalone event for one region. A
// missing intensity defaults to a flat 5, unlike Ingest which samples one.
func (s *IngestService) Simulate(ctx context.Context, req SimulateRequest) (*models.NeurofeedbackEvent, error) {
	if s.store == nil {
		return nil, errStoreNotConfigured
	}
	req.BrainRegionID = strings.TrimSpace(req.BrainRegionID)
	switch {
	case req.UserID <= 0:
		return nil, NewInvalidError("userId is required")
	case req.BrainRegionID == "":
		return nil, NewInvalidError("brainRegionId is required")
	case !validIntensity(req.Intensity):
		return nil, NewInvalidError("intensity must be between 1 and 10")
	}
	region := s.lookupRegion(req.BrainRegionID)
	if region == nil {
		return nil, NewNotFoundError("brain region not found")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	intensity := models.DefaultEventIntensity
	if req.Intensity != nil {
		intensity = *req.Intensity
	}
	ev, err := s.store.CreateEvent(NewEvent{
		UserID:        int64Ptr(req.UserID),
		BrainRegionID: region.Code,
		Intensity:     intPtr(intensity),
		Metadata: map[string]any{
			"brainRegionName":  region.Name,
			"brainRegionColor": region.Color,
			"simulated":        true,
		},
	})
	if err != nil {
		return nil, err
	}
	s.metrics.EventStored(metrics.SourceSimulate)

	if err := ctx.Err(); err != nil {
		log.Printf("ingest: skipping broadcast of simulated event=%d: %v", ev.ID, err)
		return &ev, nil
	}
	s.broadcast(req.UserID, ev)
	return &ev, nil
}

// RecentEvents returns the newest events for userID. limit defaults to 10 and
// is capped at 100.
func (s *IngestService) RecentEvents(userID int64, limit int) ([]models.NeurofeedbackEvent, error) {
	if s.store == nil {
		return nil, errStoreNotConfigured
	}
	if userID <= 0 {
		return nil, NewInvalidError("invalid userId")
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.store.RecentEvents(userID, limit)
}

func (s *IngestService) broadcast(userID int64, ev models.NeurofeedbackEvent) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastEvent(userID, ev)
}

func (s *IngestService) lookupTest(code string) *catalog.TestDefinition {
	if s.lookup == nil {
		return nil
	}
	return s.lookup.TestByCode(code)
}

func (s *IngestService) lookupRegion(code string) *catalog.BrainRegion {
	if s.lookup == nil {
		return nil
	}
	return s.lookup.RegionByCode(code)
}

// regionDisplay falls back to the bare code when the catalog has no entry.
func (s *IngestService) regionDisplay(code string) (name, color string) {
	if r := s.lookupRegion(code); r != nil {
		return r.Name, r.Color
	}
	return code, ""
}
