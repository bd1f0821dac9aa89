// Package repository defines the directory and history store contracts and
// their in-memory and DynamoDB implementations.
package repository

import (
	"context"

	"github.com/okian/volmatch/internal/domain/model"
)

// Store kinds accepted by configuration.
const (
	KindMemory   = "memory"
	KindDynamoDB = "dynamodb"
)

// EventStore reads events from the event directory.
type EventStore interface {
	// FindByID returns the event or an error matching ErrNotFound.
	FindByID(ctx context.Context, id string) (model.Event, error)
}

// VolunteerFilter narrows a volunteer lookup. A zero filter selects everyone.
type VolunteerFilter struct {
	IDs []string
}

// VolunteerStore reads volunteers from the volunteer directory.
type VolunteerStore interface {
	// Find returns the matching volunteers ordered by id. Unknown ids are
	// absent from the result rather than reported as errors.
	Find(ctx context.Context, filter VolunteerFilter) ([]model.Volunteer, error)
}

// HistoryStore persists match history records.
type HistoryStore interface {
	// Create stores rec unless a record for the same (EventID, VolunteerID)
	// exists. It returns the stored record and whether it was newly created.
	Create(ctx context.Context, rec model.HistoryRecord) (model.HistoryRecord, bool, error)
	// ListByEvent returns the event's records ordered by creation time,
	// then volunteer id.
	ListByEvent(ctx context.Context, eventID string) ([]model.HistoryRecord, error)
}

// Store bundles every contract the matching service consumes.
type Store interface {
	EventStore
	VolunteerStore
	HistoryStore
	// Kind names the backing implementation.
	Kind() string
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*DynamoStore)(nil)
)
