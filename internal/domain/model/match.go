package model

import "time"

// Candidate is a volunteer considered for one event. It lives for a single
// matching request and is never persisted.
type Candidate struct {
	Volunteer Volunteer
	Priority  int
	Eligible  bool
}

// HistoryRecord is a committed volunteer/event pairing. Records are
// immutable once written; (EventID, VolunteerID) identifies one logically.
type HistoryRecord struct {
	ID          string
	VolunteerID string
	EventID     string
	CreatedAt   time.Time
	// Priority is the volunteer's aggregate preference score for the
	// event at commit time.
	Priority int
}
