// Package types contains the read shapes returned over HTTP.
package types

import (
	"time"

	"github.com/okian/volmatch/internal/domain/model"
)

// Volunteer is the public view of a matched volunteer.
type Volunteer struct {
	ID          string            `json:"id"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Skills      []string          `json:"skills"`
	Preferences map[string]string `json:"preferences"`
}

// Match is a committed volunteer/event pair.
type Match struct {
	VolunteerID string `json:"volunteerId"`
	EventID     string `json:"eventId"`
}

// MatchFailure reports a requested volunteer that could not be committed.
type MatchFailure struct {
	VolunteerID string `json:"volunteerId"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

// SaveMatchResponse is the body of POST /saveMatch.
type SaveMatchResponse struct {
	Message  string         `json:"message"`
	Matches  []Match        `json:"matches"`
	Failures []MatchFailure `json:"failures,omitempty"`
}

// HistoryEntry is a persisted match history record.
type HistoryEntry struct {
	ID          string    `json:"id"`
	VolunteerID string    `json:"volunteerId"`
	EventID     string    `json:"eventId"`
	CreatedAt   time.Time `json:"createdAt"`
	Priority    int       `json:"priority"`
}

// FromVolunteer converts a domain volunteer to its public view. Nil
// collections become empty ones so clients always see arrays and objects.
func FromVolunteer(v model.Volunteer) Volunteer {
	skills := v.Skills
	if skills == nil {
		skills = []string{}
	}
	prefs := v.Preferences
	if prefs == nil {
		prefs = map[string]string{}
	}
	return Volunteer{
		ID:          v.ID,
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		Skills:      skills,
		Preferences: prefs,
	}
}

// FromRecord converts a history record to its public view.
func FromRecord(r model.HistoryRecord) HistoryEntry {
	return HistoryEntry{
		ID:          r.ID,
		VolunteerID: r.VolunteerID,
		EventID:     r.EventID,
		CreatedAt:   r.CreatedAt,
		Priority:    r.Priority,
	}
}
