// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Keys are flat snake_case so the same name works in YAML and as a
//     VOLMATCH_ environment variable.
//   - New returns the defaults; Load layers file and environment on top and
//     validates the result.
package config

import (
	"fmt"
	"strings"

	repository "github.com/okian/volmatch/internal/adapters/repository"
	"github.com/okian/volmatch/internal/domain/eligibility"
	"github.com/okian/volmatch/internal/domain/ranking"
	"github.com/okian/volmatch/internal/domain/scoring"
	"github.com/okian/volmatch/pkg/logger"
)

// LabelAlias maps an extra preference phrase to a willingness level name
// (enthusiastic, willing, open, neutral, unavailable).
type LabelAlias struct {
	Phrase string `koanf:"phrase"`
	Level  string `koanf:"level"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// APIPrefix is the path under which the matching routes are mounted.
	APIPrefix string `koanf:"api_prefix"`

	// Store selects the backend: memory or dynamodb.
	Store string `koanf:"store"`

	// SeedFile is an optional YAML file loaded into the memory store.
	SeedFile string `koanf:"seed_file"`

	DynamoRegion          string `koanf:"dynamo_region"`
	DynamoEndpoint        string `koanf:"dynamo_endpoint"`
	DynamoEventsTable     string `koanf:"dynamo_events_table"`
	DynamoVolunteersTable string `koanf:"dynamo_volunteers_table"`
	DynamoHistoryTable    string `koanf:"dynamo_history_table"`

	// MatchPolicy is the eligibility policy: any or all.
	MatchPolicy string `koanf:"match_policy"`

	// TaskCategories are ranked for events that declare none.
	TaskCategories []string `koanf:"task_categories"`

	// LabelAliases extend the recognised preference phrases.
	LabelAliases []LabelAlias `koanf:"label_aliases"`

	// CommitConcurrency bounds concurrent history writes per commit.
	CommitConcurrency int `koanf:"commit_concurrency"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             logger.FormatText,
		Addr:                  ":9080",
		APIPrefix:             "/api/volunteerMatch",
		Store:                 repository.KindMemory,
		DynamoEventsTable:     repository.DefaultEventsTable,
		DynamoVolunteersTable: repository.DefaultVolunteersTable,
		DynamoHistoryTable:    repository.DefaultHistoryTable,
		MatchPolicy:           string(eligibility.PolicyAny),
		TaskCategories:        append([]string(nil), ranking.DefaultCategories...),
		CommitConcurrency:     8,
		CORSAllowedOrigins:    []string{"*"},
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("%w: api_prefix %q must start with /", ErrInvalidConfig, c.APIPrefix)
	}
	switch c.LogFormat {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Store {
	case repository.KindMemory, repository.KindDynamoDB:
	default:
		return fmt.Errorf("%w: store %q", ErrInvalidConfig, c.Store)
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("%w: match_policy: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Aliases(); err != nil {
		return fmt.Errorf("%w: label_aliases: %w", ErrInvalidConfig, err)
	}
	if c.CommitConcurrency <= 0 {
		return fmt.Errorf("%w: commit_concurrency must be positive, got %d", ErrInvalidConfig, c.CommitConcurrency)
	}
	return nil
}

// Policy returns the parsed eligibility policy.
func (c *Config) Policy() (eligibility.Policy, error) {
	return eligibility.ParsePolicy(c.MatchPolicy)
}

// Aliases returns the label aliases with their parsed levels.
func (c *Config) Aliases() (map[string]scoring.Level, error) {
	out := make(map[string]scoring.Level, len(c.LabelAliases))
	for i, a := range c.LabelAliases {
		if strings.TrimSpace(a.Phrase) == "" {
			return nil, fmt.Errorf("entry %d: empty phrase", i)
		}
		level, err := scoring.ParseLevel(a.Level)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[a.Phrase] = level
	}
	return out, nil
}
