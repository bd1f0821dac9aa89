package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the time source used when a record has no creation time.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// DynamoOption applies a configuration option to the DynamoStore.
type DynamoOption func(*DynamoStore)

// WithTables sets the events, volunteers and history table names. Blank
// names keep the defaults.
func WithTables(events, volunteers, history string) DynamoOption {
	return func(s *DynamoStore) {
		if events != "" {
			s.eventsTable = events
		}
		if volunteers != "" {
			s.volunteersTable = volunteers
		}
		if history != "" {
			s.historyTable = history
		}
	}
}

// WithDynamoClock sets the time source used when a record has no creation time.
func WithDynamoClock(now func() time.Time) DynamoOption {
	return func(s *DynamoStore) {
		if now != nil {
			s.now = now
		}
	}
}
