package api

import (
	"github.com/soaringjerry/Cortex/internal/models"
	"github.com/soaringjerry/Cortex/internal/realtime"
	"github.com/soaringjerry/Cortex/internal/services"
)

type ingestStoreAdapter struct {
	store Store
}

func newIngestStoreAdapter(store Store) services.IngestStore {
	return &ingestStoreAdapter{store: store}
}

func (a *ingestStoreAdapter) CreateTestResponse(in services.NewTestResponse) (models.TestResponse, error) {
	return a.store.CreateTestResponse(TestResponseFields{
		UserID:       in.UserID,
		TestCode:     in.TestCode,
		QuestionID:   in.QuestionID,
		Response:     in.Response,
		BrainRegions: in.BrainRegions,
		Intensity:    in.Intensity,
	}), nil
}

func (a *ingestStoreAdapter) CreateEvent(in services.NewEvent) (models.NeurofeedbackEvent, error) {
	return a.store.CreateNeurofeedbackEvent(EventFields{
		UserID:         in.UserID,
		TestResponseID: in.TestResponseID,
		BrainRegionID:  in.BrainRegionID,
		Intensity:      in.Intensity,
		Duration:       in.Duration,
		Metadata:       in.Metadata,
	}), nil
}

func (a *ingestStoreAdapter) RecentEvents(userID int64, limit int) ([]models.NeurofeedbackEvent, error) {
	return a.store.GetRecentNeurofeedbackEvents(userID, limit), nil
}

var _ services.IngestStore = (*ingestStoreAdapter)(nil)

// registryBroadcaster hands pipeline events to the connection registry.
type registryBroadcaster struct {
	registry *realtime.Registry
}

func (b registryBroadcaster) BroadcastEvent(userID int64, ev models.NeurofeedbackEvent) {
	b.registry.Broadcast(userID, ev)
}

var _ services.EventBroadcaster = registryBroadcaster{}
