package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/soaringjerry/Cortex/internal/catalog"
	"github.com/soaringjerry/Cortex/internal/metrics"
	"github.com/soaringjerry/Cortex/internal/middleware"
	"github.com/soaringjerry/Cortex/internal/realtime"
	"github.com/soaringjerry/Cortex/internal/services"
	"github.com/soaringjerry/Cortex/internal/utils"
)

const maxBodyBytes = 64 * 1024

// Options wires the router's collaborators. Zero values get in-process defaults.
type Options struct {
	Store         Store
	Catalog       *catalog.Catalog
	Registry      *realtime.Registry
	Metrics       *metrics.Metrics
	AllowedOrigin string
	// ShareHash generates share tokens for achievements created without one.
	ShareHash func() string
}

type Router struct {
	store        Store
	catalog      *catalog.Catalog
	registry     *realtime.Registry
	metrics      *metrics.Metrics
	origin       string
	shareHash    func() string
	ingest       *services.IngestService
	users        *services.UserService
	achievements *services.AchievementService
}

func NewRouter(opts Options) *Router {
	if opts.Store == nil {
		opts.Store = newMemoryStore()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = realtime.NewRegistry(opts.Metrics)
	}
	if opts.ShareHash == nil {
		opts.ShareHash = defaultShareHash
	}
	return &Router{
		store:        opts.Store,
		catalog:      opts.Catalog,
		registry:     opts.Registry,
		metrics:      opts.Metrics,
		origin:       opts.AllowedOrigin,
		shareHash:    opts.ShareHash,
		ingest:       services.NewIngestService(newIngestStoreAdapter(opts.Store), opts.Catalog, registryBroadcaster{registry: opts.Registry}, opts.Metrics),
		users:        services.NewUserService(newUserStoreAdapter(opts.Store)),
		achievements: services.NewAchievementService(newAchievementStoreAdapter(opts.Store)),
	}
}

func defaultShareHash() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/test-responses", rt.handleTestResponse)
	mux.HandleFunc("POST /api/simulate-neurofeedback", rt.handleSimulate)
	mux.HandleFunc("POST /api/users", rt.handleCreateUser)
	mux.HandleFunc("GET /api/users/{userId}", rt.handleGetUser)
	mux.HandleFunc("GET /api/users/{userId}/test-responses", rt.handleUserTestResponses)
	mux.HandleFunc("GET /api/users/{userId}/neurofeedback", rt.handleRecentEvents)
	mux.HandleFunc("GET /api/users/{userId}/achievements", rt.handleUserAchievements)
	mux.HandleFunc("POST /api/achievements", rt.handleCreateAchievement)
	mux.HandleFunc("PATCH /api/achievements/{id}/visibility", rt.handleAchievementVisibility)
	mux.HandleFunc("GET /api/achievements/public", rt.handlePublicAchievements)
	mux.HandleFunc("GET /api/achievements/shared/{hash}", rt.handleSharedAchievement)
	mux.HandleFunc("GET /api/tests", rt.handleTests)
	mux.HandleFunc("GET /api/brain-regions", rt.handleBrainRegions)
	mux.HandleFunc("GET /api/stats", rt.handleStats)
	mux.Handle("/ws", realtime.NewHandler(rt.registry, realtime.HandlerOptions{AllowedOrigin: rt.origin}))
	mux.Handle("GET /metrics", rt.metrics.Handler())
}

// POST /api/test-responses
// { userId?: number, testCode, questionId, response, brainRegions?: [], intensity?: number }
func (rt *Router) handleTestResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       json.RawMessage `json:"userId"`
		TestCode     string          `json:"testCode"`
		QuestionID   string          `json:"questionId"`
		Response     string          `json:"response"`
		BrainRegions []string        `json:"brainRegions"`
		Intensity    *int            `json:"intensity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	userID, ok := parseOptionalID(req.UserID)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "error.invalid_user_id", string(services.ErrorInvalid))
		return
	}
	tr, err := rt.ingest.Ingest(r.Context(), services.IngestRequest{
		UserID:       userID,
		TestCode:     req.TestCode,
		QuestionID:   req.QuestionID,
		Response:     req.Response,
		BrainRegions: req.BrainRegions,
		Intensity:    req.Intensity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// POST /api/simulate-neurofeedback
// { userId, brainRegionId, intensity?: number }
func (rt *Router) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        json.RawMessage `json:"userId"`
		BrainRegionID string          `json:"brainRegionId"`
		Intensity     *int            `json:"intensity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	userID, ok := parseOptionalID(req.UserID)
	if !ok || userID == nil {
		writeError(w, r, http.StatusBadRequest, "error.invalid_user_id", string(services.ErrorInvalid))
		return
	}
	ev, err := rt.ingest.Simulate(r.Context(), services.SimulateRequest{
		UserID:        *userID,
		BrainRegionID: req.BrainRegionID,
		Intensity:     req.Intensity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// GET /api/users/{userId}/neurofeedback?limit=N
func (rt *Router) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	evs, err := rt.ingest.RecentEvents(userID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// POST /api/users
// { username, password, email? }
func (rt *Router) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string  `json:"username"`
		Password string  `json:"password"`
		Email    *string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := rt.users.Create(req.Username, req.Password, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// GET /api/users/{userId}
func (rt *Router) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	u, err := rt.users.Get(userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// GET /api/users/{userId}/test-responses
func (rt *Router) handleUserTestResponses(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	rs, err := rt.users.TestResponses(userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// GET /api/users/{userId}/achievements
func (rt *Router) handleUserAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	as, err := rt.achievements.ListByUser(userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, as)
}

// POST /api/achievements
// { userId?, title, description, type?, metadata?: {details, stats}, shareHash?, isPublic? }
func (rt *Router) handleCreateAchievement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      json.RawMessage `json:"userId"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Type        string          `json:"type"`
		Metadata    map[string]any  `json:"metadata"`
		ShareHash   string          `json:"shareHash"`
		IsPublic    bool            `json:"isPublic"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	userID, ok := parseOptionalID(req.UserID)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "error.invalid_user_id", string(services.ErrorInvalid))
		return
	}
	if strings.TrimSpace(req.ShareHash) == "" {
		req.ShareHash = rt.shareHash()
	}
	a, err := rt.achievements.Create(services.NewAchievement{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Metadata:    req.Metadata,
		ShareHash:   req.ShareHash,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// PATCH /api/achievements/{id}/visibility
// { isPublic: bool }
func (rt *Router) handleAchievementVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		IsPublic *bool `json:"isPublic"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IsPublic == nil {
		writeServiceError(w, r, services.NewInvalidError("isPublic is required"))
		return
	}
	a, err := rt.achievements.SetVisibility(id, *req.IsPublic)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GET /api/achievements/public?limit=N
func (rt *Router) handlePublicAchievements(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	as, err := rt.achievements.ListPublic(limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, as)
}

// GET /api/achievements/shared/{hash}
func (rt *Router) handleSharedAchievement(w http.ResponseWriter, r *http.Request) {
	a, err := rt.achievements.GetShared(r.PathValue("hash"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GET /api/tests
func (rt *Router) handleTests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.catalog.Tests())
}

// GET /api/brain-regions
func (rt *Router) handleBrainRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.catalog.Regions())
}

// GET /api/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"store":           rt.store.Stats(),
		"connected_users": rt.registry.Users(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "error.invalid_body", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		key := "error.invalid_id"
		if name == "userId" {
			key = "error.invalid_user_id"
		}
		writeError(w, r, http.StatusBadRequest, key, string(services.ErrorInvalid))
		return 0, false
	}
	return id, true
}

// queryLimit returns 0 when no limit is given; services apply their defaults.
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(w, r, http.StatusBadRequest, "error.invalid_limit", string(services.ErrorInvalid))
		return 0, false
	}
	return n, true
}

// parseOptionalID accepts null or absent as anonymous, otherwise defers to
// the websocket register rules.
func parseOptionalID(raw json.RawMessage) (*int64, bool) {
	if s := strings.TrimSpace(string(raw)); s == "" || s == "null" {
		return nil, true
	}
	id, ok := realtime.ParseUserID(raw)
	if !ok {
		return nil, false
	}
	return &id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders {message, error}; message is localized from key.
func writeError(w http.ResponseWriter, r *http.Request, status int, key, detail string) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, status, map[string]string{"message": utils.T(locale, key), "error": detail})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
			writeError(w, r, http.StatusServiceUnavailable, "error.cancelled", err.Error())
			return
		}
		log.Printf("api: %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "error.internal", "internal")
		return
	}
	status := http.StatusBadRequest
	switch se.Code {
	case services.ErrorNotFound:
		status = http.StatusNotFound
	case services.ErrorConflict:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"message": se.Message, "error": string(se.Code)})
}
