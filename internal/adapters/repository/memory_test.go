package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/volmatch/internal/domain/model"
	"github.com/okian/volmatch/pkg/errs"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMemoryStore_FindByID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.PutEvent(model.Event{ID: "event123", Name: "Community Fair", RequiredSkills: []string{"Teamwork"}})

	got, err := store.FindByID(ctx, "event123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Community Fair" {
		t.Errorf("expected name Community Fair, got %q", got.Name)
	}

	// Mutating the copy must not leak into the store.
	got.RequiredSkills[0] = "changed"
	again, _ := store.FindByID(ctx, "event123")
	if again.RequiredSkills[0] != "Teamwork" {
		t.Errorf("store was mutated through returned value: %v", again.RequiredSkills)
	}

	_, err = store.FindByID(ctx, "missing")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMemoryStore_Find(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, id := range []string{"user3", "user1", "user2"} {
		store.PutVolunteer(model.Volunteer{ID: id, Preferences: map[string]string{"tshirts": "Would love to!"}})
	}

	all, err := store.Find(ctx, VolunteerFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 volunteers, got %d", len(all))
	}
	for i, want := range []string{"user1", "user2", "user3"} {
		if all[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].ID)
		}
	}

	some, err := store.Find(ctx, VolunteerFilter{IDs: []string{"user2", "ghost", "user2", "user1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(some) != 2 || some[0].ID != "user1" || some[1].ID != "user2" {
		t.Errorf("expected [user1 user2], got %v", some)
	}

	some[0].Preferences["tshirts"] = "Not this area."
	fresh, _ := store.Find(ctx, VolunteerFilter{IDs: []string{"user1"}})
	if fresh[0].Preferences["tshirts"] != "Would love to!" {
		t.Errorf("store was mutated through returned preferences")
	}
}

func TestMemoryStore_CreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(fixedClock(t0)))

	first, created, err := store.Create(ctx, model.HistoryRecord{ID: "a", EventID: "event123", VolunteerID: "user123", Priority: 7})
	if err != nil || !created {
		t.Fatalf("expected created record, got created=%v err=%v", created, err)
	}
	if !first.CreatedAt.Equal(t0) {
		t.Errorf("expected clock time %v, got %v", t0, first.CreatedAt)
	}

	second, created, err := store.Create(ctx, model.HistoryRecord{ID: "b", EventID: "event123", VolunteerID: "user123", Priority: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("second create for the same pair should not create")
	}
	if second.ID != "a" || second.Priority != 7 {
		t.Errorf("expected original record back, got %+v", second)
	}

	list, _ := store.ListByEvent(ctx, "event123")
	if len(list) != 1 {
		t.Errorf("expected exactly one record, got %d", len(list))
	}
}

func TestMemoryStore_CreateRejectsBlankKeys(t *testing.T) {
	store := NewMemoryStore()
	_, _, err := store.Create(context.Background(), model.HistoryRecord{EventID: "event123"})
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestMemoryStore_ListByEventOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	t0 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	records := []model.HistoryRecord{
		{EventID: "e", VolunteerID: "v3", CreatedAt: t0.Add(time.Second)},
		{EventID: "e", VolunteerID: "v2", CreatedAt: t0},
		{EventID: "e", VolunteerID: "v1", CreatedAt: t0},
		{EventID: "other", VolunteerID: "v9", CreatedAt: t0},
	}
	for _, r := range records {
		if _, _, err := store.Create(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := store.ListByEvent(ctx, "e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"v1", "v2", "v3"}
	if len(list) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(list))
	}
	for i := range want {
		if list[i].VolunteerID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], list[i].VolunteerID)
		}
	}

	empty, err := store.ListByEvent(ctx, "nothing")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %v (err %v)", empty, err)
	}
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, created, err := store.Create(ctx, model.HistoryRecord{
				ID:          fmt.Sprintf("r%d", i),
				EventID:     "event123",
				VolunteerID: fmt.Sprintf("user%d", i%5),
			})
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if createdCount != 5 {
		t.Errorf("expected 5 creations, got %d", createdCount)
	}
	list, _ := store.ListByEvent(ctx, "event123")
	if len(list) != 5 {
		t.Errorf("expected 5 records, got %d", len(list))
	}
}

func TestMemoryStore_Load(t *testing.T) {
	store := NewMemoryStore()
	store.Load(Seed{
		Events:     []model.Event{{ID: "e1"}, {ID: "e2"}},
		Volunteers: []model.Volunteer{{ID: "v1"}},
	})
	if _, err := store.FindByID(context.Background(), "e2"); err != nil {
		t.Errorf("expected seeded event, got %v", err)
	}
	vs, _ := store.Find(context.Background(), VolunteerFilter{})
	if len(vs) != 1 {
		t.Errorf("expected 1 seeded volunteer, got %d", len(vs))
	}
	if store.Kind() != KindMemory {
		t.Errorf("unexpected kind %q", store.Kind())
	}
}
