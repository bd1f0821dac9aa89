package repository

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/volmatch/internal/domain/model"
)

// Seed is the directory content loaded into a MemoryStore at startup.
type Seed struct {
	Events     []model.Event
	Volunteers []model.Volunteer
}

type seedFile struct {
	Events     []seedEvent     `yaml:"events"`
	Volunteers []seedVolunteer `yaml:"volunteers"`
}

type seedEvent struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	RequiredSkills []string `yaml:"requiredSkills"`
	Date           string   `yaml:"date"`
	Location       string   `yaml:"location"`
	Urgency        string   `yaml:"urgency"`
	TaskCategories []string `yaml:"taskCategories"`
}

type seedVolunteer struct {
	ID          string            `yaml:"id"`
	FirstName   string            `yaml:"firstName"`
	LastName    string            `yaml:"lastName"`
	Skills      []string          `yaml:"skills"`
	Preferences map[string]string `yaml:"preferences"`
}

// Accepted seed date layouts.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// LoadSeedFile reads a YAML seed from path.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return Seed{}, fmt.Errorf("%w: open %s: %w", ErrInvalidSeed, path, err)
	}
	defer func() { _ = f.Close() }()
	return LoadSeed(f)
}

// LoadSeed decodes and validates a YAML seed.
func LoadSeed(r io.Reader) (Seed, error) {
	var raw seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, fmt.Errorf("%w: decode: %w", ErrInvalidSeed, err)
	}

	seed := Seed{
		Events:     make([]model.Event, 0, len(raw.Events)),
		Volunteers: make([]model.Volunteer, 0, len(raw.Volunteers)),
	}

	eventIDs := make(map[string]struct{}, len(raw.Events))
	for i, e := range raw.Events {
		ev, err := e.toModel()
		if err != nil {
			return Seed{}, fmt.Errorf("%w: events[%d]: %w", ErrInvalidSeed, i, err)
		}
		if _, dup := eventIDs[ev.ID]; dup {
			return Seed{}, fmt.Errorf("%w: events[%d]: duplicate id %q", ErrInvalidSeed, i, ev.ID)
		}
		eventIDs[ev.ID] = struct{}{}
		seed.Events = append(seed.Events, ev)
	}

	volunteerIDs := make(map[string]struct{}, len(raw.Volunteers))
	for i, v := range raw.Volunteers {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			return Seed{}, fmt.Errorf("%w: volunteers[%d]: missing id", ErrInvalidSeed, i)
		}
		if _, dup := volunteerIDs[id]; dup {
			return Seed{}, fmt.Errorf("%w: volunteers[%d]: duplicate id %q", ErrInvalidSeed, i, id)
		}
		volunteerIDs[id] = struct{}{}
		seed.Volunteers = append(seed.Volunteers, model.Volunteer{
			ID:          id,
			FirstName:   v.FirstName,
			LastName:    v.LastName,
			Skills:      v.Skills,
			Preferences: v.Preferences,
		})
	}
	return seed, nil
}

func (e seedEvent) toModel() (model.Event, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return model.Event{}, errors.New("missing id")
	}
	urgency, err := model.ParseUrgency(e.Urgency)
	if err != nil {
		return model.Event{}, err
	}
	date, err := parseDate(e.Date)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		ID:             id,
		Name:           e.Name,
		RequiredSkills: e.RequiredSkills,
		Date:           date,
		Location:       e.Location,
		Urgency:        urgency,
		TaskCategories: e.TaskCategories,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
