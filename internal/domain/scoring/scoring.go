// Package scoring converts free-text preference labels into willingness scores.
package scoring

import (
	"fmt"
	"strings"
)

// Level is a willingness level. Its integer value is the score.
type Level int

// Willingness levels, weakest first. LevelNeutral is used for missing or
// unrecognised labels: below any stated willingness, above a refusal.
const (
	LevelUnavailable  Level = 0
	LevelNeutral      Level = 1
	LevelOpen         Level = 2
	LevelWilling      Level = 3
	LevelEnthusiastic Level = 4
)

var levelNames = map[Level]string{
	LevelUnavailable:  "unavailable",
	LevelNeutral:      "neutral",
	LevelOpen:         "open",
	LevelWilling:      "willing",
	LevelEnthusiastic: "enthusiastic",
}

// defaultPhrases are the labels offered by the volunteer profile form.
var defaultPhrases = map[string]Level{
	"would love to":         LevelEnthusiastic,
	"would like to":         LevelWilling,
	"wouldn't mind helping": LevelOpen,
	"not this area":         LevelUnavailable,
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel reads a canonical level name.
func ParseLevel(name string) (Level, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for l, s := range levelNames {
		if s == n {
			return l, nil
		}
	}
	return LevelNeutral, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

// Scorer maps a preference label to a score. Higher means more willing.
type Scorer interface {
	Score(label string) int
}

// Option applies a configuration option to the TableScorer.
type Option func(*TableScorer)

// WithAlias maps an extra label phrase to a level. Blank phrases are ignored.
func WithAlias(phrase string, level Level) Option {
	return func(s *TableScorer) {
		if p := normalize(phrase); p != "" {
			s.phrases[p] = level
		}
	}
}

// TableScorer scores labels through a fixed phrase table. It is safe for
// concurrent use once constructed.
type TableScorer struct {
	phrases map[string]Level
}

// NewTableScorer creates a scorer with the default phrases plus any aliases.
func NewTableScorer(opts ...Option) *TableScorer {
	s := &TableScorer{phrases: make(map[string]Level, len(defaultPhrases)+len(levelNames))}
	for p, l := range defaultPhrases {
		s.phrases[p] = l
	}
	for l, name := range levelNames {
		s.phrases[name] = l
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Level returns the level for label, LevelNeutral when it is not known.
func (s *TableScorer) Level(label string) Level {
	if l, ok := s.phrases[normalize(label)]; ok {
		return l
	}
	return LevelNeutral
}

// Score returns the integer score for label.
func (s *TableScorer) Score(label string) int {
	return int(s.Level(label))
}

// normalize folds case, unifies apostrophes and drops surrounding spaces and
// trailing punctuation so "Would love to!" and "would love to" match.
func normalize(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.ReplaceAll(l, "’", "'")
	l = strings.TrimRight(l, ".!? ")
	return strings.Join(strings.Fields(l), " ")
}
