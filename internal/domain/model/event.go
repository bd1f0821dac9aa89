// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Urgency is the ordered urgency category of an event.
type Urgency int

// Urgency levels, lowest first.
const (
	UrgencyUnknown Urgency = iota
	UrgencyLow
	UrgencyMedium
	UrgencyHigh
)

var urgencyNames = map[Urgency]string{
	UrgencyUnknown: "",
	UrgencyLow:     "Low",
	UrgencyMedium:  "Medium",
	UrgencyHigh:    "High",
}

// ParseUrgency reads an urgency name case-insensitively. An empty string
// yields UrgencyUnknown.
func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UrgencyUnknown, nil
	case "low":
		return UrgencyLow, nil
	case "medium":
		return UrgencyMedium, nil
	case "high":
		return UrgencyHigh, nil
	}
	return UrgencyUnknown, fmt.Errorf("unknown urgency %q", s)
}

func (u Urgency) String() string {
	return urgencyNames[u]
}

// MarshalText implements encoding.TextMarshaler.
func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Urgency) UnmarshalText(b []byte) error {
	parsed, err := ParseUrgency(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Event is a volunteering event as owned by the event directory.
type Event struct {
	ID             string
	Name           string
	RequiredSkills []string
	Date           time.Time
	Location       string
	Urgency        Urgency
	// TaskCategories lists the preference categories the event needs help
	// with. Empty means the configured default categories apply.
	TaskCategories []string
}
