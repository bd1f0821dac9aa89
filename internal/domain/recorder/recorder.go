// Package recorder persists committed volunteer/event matches as history
// records.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/okian/volmatch/internal/domain/model"
	"github.com/okian/volmatch/pkg/errs"
	"github.com/okian/volmatch/pkg/metrics"
)

const defaultConcurrency = 8

// HistoryWriter stores history records with create-if-absent semantics.
type HistoryWriter interface {
	Create(ctx context.Context, rec model.HistoryRecord) (model.HistoryRecord, bool, error)
}

// PriorityFunc computes a volunteer's aggregate priority for an event.
type PriorityFunc func(e model.Event, v model.Volunteer) int

// Outcome is the result of committing one requested volunteer id.
type Outcome struct {
	VolunteerID string
	Record      model.HistoryRecord
	// Created is false when the pair was already recorded.
	Created bool
	Err     error
}

// Recorder writes one history record per requested volunteer.
type Recorder struct {
	store       HistoryWriter
	priority    PriorityFunc
	concurrency int
	now         func() time.Time
	newID       func() string
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithConcurrency bounds the number of concurrent store writes.
func WithConcurrency(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithPriority sets the function used for the priority snapshot.
func WithPriority(fn PriorityFunc) Option {
	return func(r *Recorder) {
		if fn != nil {
			r.priority = fn
		}
	}
}

// WithClock sets the creation time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator sets the record id generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Recorder) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New creates a Recorder writing to store.
func New(store HistoryWriter, opts ...Option) *Recorder {
	r := &Recorder{
		store:       store,
		priority:    func(model.Event, model.Volunteer) int { return 0 },
		concurrency: defaultConcurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record commits each id in volunteerIDs against event. resolved holds the
// volunteers that exist; ids missing from it fail with errs.ErrNotFound
// without stopping the others.
//
// Outcomes are returned in input order, one per requested id. A repeated id
// is written once and its outcome is reported at every position. The error
// is nil when every id committed, errs.ErrPartialFailure when some did, and
// the failures' own kind when none did.
func (r *Recorder) Record(ctx context.Context, event model.Event, volunteerIDs []string, resolved map[string]model.Volunteer) ([]Outcome, error) {
	const op = "recorder.Record"

	unique := make([]string, 0, len(volunteerIDs))
	index := make(map[string]int, len(volunteerIDs))
	for _, id := range volunteerIDs {
		if _, seen := index[id]; !seen {
			index[id] = len(unique)
			unique = append(unique, id)
		}
	}

	results := make([]Outcome, len(unique))
	createdAt := r.now().UTC()

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, id := range unique {
		g.Go(func() error {
			results[i] = r.commitOne(ctx, event, id, resolved, createdAt)
			return nil
		})
	}
	_ = g.Wait()

	var (
		combined   error
		failed     int
		storeFault bool
	)
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			combined = multierr.Append(combined, fmt.Errorf("volunteer %s: %w", res.VolunteerID, res.Err))
			storeFault = storeFault || errors.Is(res.Err, errs.ErrStoreUnavailable)
			metrics.RecordHistoryRecord(metrics.RecordFailed)
		case res.Created:
			metrics.RecordHistoryRecord(metrics.RecordCreated)
		default:
			metrics.RecordHistoryRecord(metrics.RecordExisting)
		}
	}

	outcomes := make([]Outcome, len(volunteerIDs))
	for i, id := range volunteerIDs {
		outcomes[i] = results[index[id]]
	}

	switch {
	case failed == 0:
		metrics.RecordCommit(metrics.CommitSucceeded)
		return outcomes, nil
	case failed < len(unique):
		metrics.RecordCommit(metrics.CommitPartial)
		return outcomes, errs.WrapKind(op, errs.ErrPartialFailure, combined)
	case storeFault:
		metrics.RecordCommit(metrics.CommitFailed)
		return outcomes, errs.WrapKind(op, errs.ErrStoreUnavailable, combined)
	default:
		metrics.RecordCommit(metrics.CommitFailed)
		return outcomes, errs.WrapKind(op, errs.KindOf(results[0].Err), combined)
	}
}

func (r *Recorder) commitOne(ctx context.Context, event model.Event, id string, resolved map[string]model.Volunteer, createdAt time.Time) Outcome {
	out := Outcome{VolunteerID: id}
	v, ok := resolved[id]
	if !ok {
		out.Err = errs.New("volunteer lookup", errs.ErrNotFound)
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Err = errs.WrapKind("history write", errs.ErrStoreUnavailable, err)
		return out
	}

	rec, created, err := r.store.Create(ctx, model.HistoryRecord{
		ID:          r.newID(),
		VolunteerID: id,
		EventID:     event.ID,
		CreatedAt:   createdAt,
		Priority:    r.priority(event, v),
	})
	if err != nil {
		out.Err = errs.Wrap("history write", err)
		return out
	}
	out.Record = rec
	out.Created = created
	return out
}
