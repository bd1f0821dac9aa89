package repository

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/volmatch/internal/domain/model"
	"github.com/okian/volmatch/pkg/metrics"
)

// MemoryStore keeps events, volunteers and history in process memory.
//
// All methods are safe for concurrent use. Returned values are copies, so
// callers may mutate them freely.
type MemoryStore struct {
	mu         sync.RWMutex
	events     map[string]model.Event
	volunteers map[string]model.Volunteer
	// history is keyed by event id, then volunteer id.
	history map[string]map[string]model.HistoryRecord
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		events:     make(map[string]model.Event),
		volunteers: make(map[string]model.Volunteer),
		history:    make(map[string]map[string]model.HistoryRecord),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind implements Store.
func (s *MemoryStore) Kind() string { return KindMemory }

// PutEvent inserts or replaces an event.
func (s *MemoryStore) PutEvent(e model.Event) {
	s.mu.Lock()
	s.events[e.ID] = cloneEvent(e)
	s.mu.Unlock()
}

// PutVolunteer inserts or replaces a volunteer.
func (s *MemoryStore) PutVolunteer(v model.Volunteer) {
	s.mu.Lock()
	s.volunteers[v.ID] = cloneVolunteer(v)
	s.mu.Unlock()
}

// Load adds every event and volunteer of the seed, replacing entries with
// the same id.
func (s *MemoryStore) Load(seed Seed) {
	for _, e := range seed.Events {
		s.PutEvent(e)
	}
	for _, v := range seed.Volunteers {
		s.PutVolunteer(v)
	}
}

// FindByID implements EventStore.
func (s *MemoryStore) FindByID(_ context.Context, id string) (model.Event, error) {
	start := time.Now()
	s.mu.RLock()
	e, ok := s.events[id]
	s.mu.RUnlock()

	// A miss is a normal answer, not a store failure.
	metrics.RecordStoreOperation(KindMemory, "find_event", sinceMs(start), nil)
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return cloneEvent(e), nil
}

// Find implements VolunteerStore.
func (s *MemoryStore) Find(_ context.Context, filter VolunteerFilter) ([]model.Volunteer, error) {
	start := time.Now()
	s.mu.RLock()
	var out []model.Volunteer
	if len(filter.IDs) == 0 {
		out = make([]model.Volunteer, 0, len(s.volunteers))
		for _, v := range s.volunteers {
			out = append(out, cloneVolunteer(v))
		}
	} else {
		out = make([]model.Volunteer, 0, len(filter.IDs))
		seen := make(map[string]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if v, ok := s.volunteers[id]; ok {
				out = append(out, cloneVolunteer(v))
			}
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	metrics.RecordStoreOperation(KindMemory, "find_volunteers", sinceMs(start), nil)
	return out, nil
}

// Create implements HistoryStore.
func (s *MemoryStore) Create(_ context.Context, rec model.HistoryRecord) (model.HistoryRecord, bool, error) {
	start := time.Now()
	if strings.TrimSpace(rec.EventID) == "" || strings.TrimSpace(rec.VolunteerID) == "" {
		return model.HistoryRecord{}, false, ErrInvalidRecord
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	byVolunteer, ok := s.history[rec.EventID]
	if !ok {
		byVolunteer = make(map[string]model.HistoryRecord)
		s.history[rec.EventID] = byVolunteer
	}
	existing, exists := byVolunteer[rec.VolunteerID]
	if !exists {
		byVolunteer[rec.VolunteerID] = rec
	}
	s.mu.Unlock()

	metrics.RecordStoreOperation(KindMemory, "create_history", sinceMs(start), nil)
	if exists {
		return existing, false, nil
	}
	return rec, true, nil
}

// ListByEvent implements HistoryStore.
func (s *MemoryStore) ListByEvent(_ context.Context, eventID string) ([]model.HistoryRecord, error) {
	start := time.Now()
	s.mu.RLock()
	out := slices.Collect(maps.Values(s.history[eventID]))
	s.mu.RUnlock()

	if out == nil {
		out = []model.HistoryRecord{}
	}
	SortHistory(out)
	metrics.RecordStoreOperation(KindMemory, "list_history", sinceMs(start), nil)
	return out, nil
}

// SortHistory orders records by creation time, then volunteer id.
func SortHistory(recs []model.HistoryRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].VolunteerID < recs[j].VolunteerID
	})
}

func cloneEvent(e model.Event) model.Event {
	e.RequiredSkills = slices.Clone(e.RequiredSkills)
	e.TaskCategories = slices.Clone(e.TaskCategories)
	return e
}

func cloneVolunteer(v model.Volunteer) model.Volunteer {
	v.Skills = slices.Clone(v.Skills)
	v.Preferences = maps.Clone(v.Preferences)
	return v
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
