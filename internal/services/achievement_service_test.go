package services

import (
	"sort"
	"testing"
	"time"

	"github.com/soaringjerry/Cortex/internal/models"
)

type stubAchievementStore struct {
	items []*models.Achievement
}

func (s *stubAchievementStore) CreateAchievement(in NewAchievement) (models.Achievement, error) {
	a := &models.Achievement{
		ID:          int64(len(s.items) + 1),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		ShareHash:   in.ShareHash,
		IsPublic:    in.IsPublic,
		AchievedAt:  time.Unix(int64(len(s.items)), 0),
		Metadata:    models.AchievementMetadata{Stats: map[string]string{}},
	}
	s.items = append(s.items, a)
	return *a, nil
}

func (s *stubAchievementStore) ListAchievements(userID int64) ([]models.Achievement, error) {
	out := []models.Achievement{}
	for _, a := range s.items {
		if a.UserID != nil && *a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubAchievementStore) GetAchievementByShareHash(hash string) (*models.Achievement, error) {
	for _, a := range s.items {
		if a.ShareHash == hash && a.IsPublic {
			copy := *a
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *stubAchievementStore) UpdateAchievementVisibility(id int64, isPublic bool) (*models.Achievement, error) {
	for _, a := range s.items {
		if a.ID == id {
			a.IsPublic = isPublic
			copy := *a
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *stubAchievementStore) ListPublicAchievements(limit int) ([]models.Achievement, error) {
	out := []models.Achievement{}
	for _, a := range s.items {
		if a.IsPublic {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AchievedAt.After(out[j].AchievedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestAchievementCreateValidation(t *testing.T) {
	svc := NewAchievementService(&stubAchievementStore{})
	for i, in := range []NewAchievement{
		{Description: "d", ShareHash: "h"},
		{Title: "t", ShareHash: "h"},
		{Title: "t", Description: "d"},
		{Title: "t", Description: "d", ShareHash: "h", UserID: int64Ptr(-1)},
	} {
		_, err := svc.Create(in)
		if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
			t.Fatalf("case %d: expected invalid error, got %v", i, err)
		}
	}
}

func TestAchievementShareVisibility(t *testing.T) {
	store := &stubAchievementStore{}
	svc := NewAchievementService(store)

	a, err := svc.Create(NewAchievement{UserID: int64Ptr(1), Title: " First Sync ", Description: "Completed BUCP-DT", ShareHash: "abc"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if a.Title != "First Sync" {
		t.Fatalf("title = %q, want trimmed", a.Title)
	}
	if a.IsPublic {
		t.Fatalf("achievements default to private")
	}
	if _, err := svc.GetShared("abc"); !IsNotFound(err) {
		t.Fatalf("private achievement must not resolve by hash, got %v", err)
	}

	updated, err := svc.SetVisibility(a.ID, true)
	if err != nil {
		t.Fatalf("SetVisibility returned error: %v", err)
	}
	if !updated.IsPublic || updated.Title != a.Title || updated.ShareHash != a.ShareHash {
		t.Fatalf("unexpected updated achievement %+v", updated)
	}
	got, err := svc.GetShared("abc")
	if err != nil || got.ID != a.ID {
		t.Fatalf("GetShared = (%v,%v), want id %d", got, err, a.ID)
	}
}

func TestAchievementSetVisibilityUnknown(t *testing.T) {
	store := &stubAchievementStore{}
	svc := NewAchievementService(store)
	if _, err := svc.SetVisibility(99, true); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(store.items) != 0 {
		t.Fatalf("unknown id must not create an achievement")
	}
}

func TestAchievementListing(t *testing.T) {
	svc := NewAchievementService(&stubAchievementStore{})
	for i, pub := range []bool{true, false, true, true} {
		if _, err := svc.Create(NewAchievement{UserID: int64Ptr(int64(1 + i%2)), Title: "t", Description: "d", ShareHash: string(rune('a' + i)), IsPublic: pub}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	pub, _ := svc.ListPublic(0)
	if len(pub) != 3 {
		t.Fatalf("public = %d, want 3", len(pub))
	}
	if pub[0].ID != 4 {
		t.Fatalf("newest public first, got id %d", pub[0].ID)
	}
	limited, _ := svc.ListPublic(2)
	if len(limited) != 2 {
		t.Fatalf("limited = %d, want 2", len(limited))
	}
	mine, err := svc.ListByUser(1)
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListByUser = (%d,%v), want 2", len(mine), err)
	}
	if _, err := svc.ListByUser(0); err == nil {
		t.Fatalf("expected invalid error")
	}
}
