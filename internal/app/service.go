// Package service provides the matching service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	repository "github.com/okian/volmatch/internal/adapters/repository"
	"github.com/okian/volmatch/internal/domain/eligibility"
	"github.com/okian/volmatch/internal/domain/model"
	"github.com/okian/volmatch/internal/domain/ranking"
	"github.com/okian/volmatch/internal/domain/recorder"
	"github.com/okian/volmatch/internal/domain/scoring"
	"github.com/okian/volmatch/internal/domain/types"
	"github.com/okian/volmatch/pkg/errs"
	"github.com/okian/volmatch/pkg/logger"
	"github.com/okian/volmatch/pkg/metrics"
)

// SuccessMessage confirms a fully committed match set.
const SuccessMessage = "Volunteers matched, prioritized, and saved to the history successfully!"

// PartialMessage accompanies a match set where some volunteers failed.
const PartialMessage = "Some volunteers could not be matched; the rest were saved to the history."

// Service implements the API dependencies for volunteer matching.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	matcher  *eligibility.Matcher
	ranker   *ranking.Ranker
	recorder *recorder.Recorder

	// Configuration
	policy            eligibility.Policy
	categories        []string
	aliases           []scoring.Option
	commitConcurrency int
	now               func() time.Time

	// State
	started bool

	// Counters
	listRequests   atomic.Int64
	commitRequests atomic.Int64
	partialCommits atomic.Int64
	recordsCreated atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the directory and history store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPolicy sets the eligibility policy.
func WithPolicy(p eligibility.Policy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithTaskCategories sets the categories ranked for events that declare none.
func WithTaskCategories(categories []string) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = categories
		}
	}
}

// WithLabelAlias maps an extra preference phrase to a level.
func WithLabelAlias(phrase string, level scoring.Level) Option {
	return func(s *Service) {
		s.aliases = append(s.aliases, scoring.WithAlias(phrase, level))
	}
}

// WithCommitConcurrency bounds concurrent history writes per commit.
func WithCommitConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.commitConcurrency = n
		}
	}
}

// WithClock sets the time source for history records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		policy:            eligibility.PolicyAny,
		categories:        ranking.DefaultCategories,
		commitConcurrency: 8,
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the matching components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.logger.Info(ctx, "starting matching service...")

	s.matcher = eligibility.NewMatcher(eligibility.WithPolicy(s.policy))
	s.ranker = ranking.NewRanker(
		scoring.NewTableScorer(s.aliases...),
		ranking.WithDefaultCategories(s.categories),
	)
	s.recorder = recorder.New(s.store,
		recorder.WithConcurrency(s.commitConcurrency),
		recorder.WithPriority(s.ranker.Priority),
		recorder.WithClock(s.now),
	)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.String("store", s.store.Kind()),
		logger.String("policy", string(s.policy)),
		logger.Strings("defaultCategories", s.categories),
		logger.Int("commitConcurrency", s.commitConcurrency),
	)

	return nil
}

// Stop releases the store if it holds resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping matching service...")
	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "store close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "matching service stopped")
}

func (s *Service) components() (repository.Store, *eligibility.Matcher, *ranking.Ranker, *recorder.Recorder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store, s.matcher, s.ranker, s.recorder, s.started
}

// ListMatches returns the eligible volunteers for the event, best first.
func (s *Service) ListMatches(ctx context.Context, eventID string) ([]types.Volunteer, error) {
	const op = "service.ListMatches"
	store, matcher, ranker, _, started := s.components()
	if !started {
		return nil, errs.Wrap(op, ErrNotStarted)
	}
	if strings.TrimSpace(eventID) == "" {
		return nil, errs.WrapKind(op, errs.ErrInvalidInput, ErrMissingEventID)
	}
	s.listRequests.Add(1)

	event, err := store.FindByID(ctx, eventID)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	pool, err := store.Find(ctx, repository.VolunteerFilter{})
	if err != nil {
		return nil, errs.Wrap(op, err)
	}

	eligible := matcher.Filter(event.RequiredSkills, pool)
	ranked := ranker.Rank(event, eligible)
	metrics.RecordMatchesListed(len(pool), len(ranked))

	s.logger.Debug(ctx, "listed matches",
		logger.String("eventID", eventID),
		logger.Int("pool", len(pool)),
		logger.Int("eligible", len(ranked)),
	)

	out := make([]types.Volunteer, len(ranked))
	for i, c := range ranked {
		out[i] = types.FromVolunteer(c.Volunteer)
	}
	return out, nil
}

// CommitMatches records the chosen volunteers for the event.
//
// Volunteers are committed independently. When only some fail the result
// still lists the committed ones and the error matches errs.ErrPartialFailure.
func (s *Service) CommitMatches(ctx context.Context, eventID string, volunteerIDs []string) (types.SaveMatchResponse, error) {
	const op = "service.CommitMatches"
	store, _, _, rec, started := s.components()
	if !started {
		return types.SaveMatchResponse{}, errs.Wrap(op, ErrNotStarted)
	}
	if err := validateCommit(eventID, volunteerIDs); err != nil {
		return types.SaveMatchResponse{}, errs.WrapKind(op, errs.ErrInvalidInput, err)
	}
	s.commitRequests.Add(1)

	event, err := store.FindByID(ctx, eventID)
	if err != nil {
		return types.SaveMatchResponse{}, errs.Wrap(op, err)
	}

	found, err := store.Find(ctx, repository.VolunteerFilter{IDs: volunteerIDs})
	if err != nil {
		return types.SaveMatchResponse{}, errs.Wrap(op, err)
	}
	resolved := make(map[string]model.Volunteer, len(found))
	for _, v := range found {
		resolved[v.ID] = v
	}

	outcomes, recErr := rec.Record(ctx, event, volunteerIDs, resolved)

	result := types.SaveMatchResponse{
		Message: SuccessMessage,
		Matches: make([]types.Match, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		if o.Err != nil {
			result.Failures = append(result.Failures, types.MatchFailure{
				VolunteerID: o.VolunteerID,
				Code:        errs.Code(o.Err),
				Message:     o.Err.Error(),
			})
			continue
		}
		if o.Created {
			s.recordsCreated.Add(1)
		}
		result.Matches = append(result.Matches, types.Match{
			VolunteerID: o.Record.VolunteerID,
			EventID:     o.Record.EventID,
		})
	}

	if recErr != nil {
		if errs.KindOf(recErr) == errs.ErrPartialFailure {
			s.partialCommits.Add(1)
			result.Message = PartialMessage
		}
		s.logger.Warn(ctx, "commit incomplete",
			logger.String("eventID", eventID),
			logger.Int("committed", len(result.Matches)),
			logger.Int("failed", len(result.Failures)),
			logger.Error(recErr),
		)
		return result, errs.Wrap(op, recErr)
	}

	s.logger.Info(ctx, "matches committed",
		logger.String("eventID", eventID),
		logger.Int("volunteers", len(result.Matches)),
	)
	return result, nil
}

// History returns the event's committed records, oldest first.
func (s *Service) History(ctx context.Context, eventID string) ([]types.HistoryEntry, error) {
	const op = "service.History"
	store, _, _, _, started := s.components()
	if !started {
		return nil, errs.Wrap(op, ErrNotStarted)
	}
	if strings.TrimSpace(eventID) == "" {
		return nil, errs.WrapKind(op, errs.ErrInvalidInput, ErrMissingEventID)
	}

	if _, err := store.FindByID(ctx, eventID); err != nil {
		return nil, errs.Wrap(op, err)
	}
	records, err := store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}

	out := make([]types.HistoryEntry, len(records))
	for i, r := range records {
		out[i] = types.FromRecord(r)
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"policy":            string(s.policy),
		"defaultCategories": s.categories,
		"commitConcurrency": s.commitConcurrency,
		"listRequests":      s.listRequests.Load(),
		"commitRequests":    s.commitRequests.Load(),
		"partialCommits":    s.partialCommits.Load(),
		"recordsCreated":    s.recordsCreated.Load(),
	}
	if s.store != nil {
		stats["store"] = s.store.Kind()
	}

	return stats
}

func validateCommit(eventID string, volunteerIDs []string) error {
	if strings.TrimSpace(eventID) == "" {
		return ErrMissingEventID
	}
	if len(volunteerIDs) == 0 {
		return ErrNoVolunteers
	}
	for _, id := range volunteerIDs {
		if strings.TrimSpace(id) == "" {
			return ErrBlankVolunteerID
		}
	}
	return nil
}
