// Package ranking orders eligible volunteers by their preference for an event.
//
// Ordering: aggregate priority DESC, then volunteer id ASC. The aggregate is
// the sum of label scores over the event's relevant task categories; a
// category the volunteer never stated contributes the neutral score, so every
// volunteer is measured over the same categories.
package ranking

import (
	"sort"
	"strings"

	"github.com/okian/volmatch/internal/domain/model"
	"github.com/okian/volmatch/internal/domain/scoring"
)

// DefaultCategories are the task categories of the volunteer profile form.
var DefaultCategories = []string{
	"tshirts",
	"ticketSales",
	"raffleTicketSales",
	"trafficParking",
	"cleanupGrounds",
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithDefaultCategories sets the categories used for events that declare none.
func WithDefaultCategories(categories []string) Option {
	return func(r *Ranker) {
		if cats := foldCategories(categories); len(cats) > 0 {
			r.defaultCategories = cats
		}
	}
}

// Ranker computes priorities and orders candidates. It holds no per-request
// state and never mutates its inputs.
type Ranker struct {
	scorer            scoring.Scorer
	defaultCategories []string
}

// NewRanker creates a ranker scoring labels with scorer.
func NewRanker(scorer scoring.Scorer, opts ...Option) *Ranker {
	if scorer == nil {
		scorer = scoring.NewTableScorer()
	}
	r := &Ranker{
		scorer:            scorer,
		defaultCategories: foldCategories(DefaultCategories),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Categories returns the folded task categories relevant to e.
func (r *Ranker) Categories(e model.Event) []string {
	if cats := foldCategories(e.TaskCategories); len(cats) > 0 {
		return cats
	}
	return r.defaultCategories
}

// Priority returns v's aggregate preference score for e.
func (r *Ranker) Priority(e model.Event, v model.Volunteer) int {
	return r.priority(r.Categories(e), v)
}

func (r *Ranker) priority(categories []string, v model.Volunteer) int {
	prefs := make(map[string]string, len(v.Preferences))
	for k, label := range v.Preferences {
		prefs[foldCategory(k)] = label
	}
	total := 0
	for _, c := range categories {
		// a missing key scores as an empty label, i.e. neutral
		total += r.scorer.Score(prefs[c])
	}
	return total
}

// Rank scores every volunteer of eligible and returns the candidates best
// first. All returned candidates are marked eligible.
func (r *Ranker) Rank(e model.Event, eligible []model.Volunteer) []model.Candidate {
	categories := r.Categories(e)
	out := make([]model.Candidate, len(eligible))
	for i, v := range eligible {
		out[i] = model.Candidate{
			Volunteer: v,
			Priority:  r.priority(categories, v),
			Eligible:  true,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// less returns true if a should appear before b.
func less(a, b model.Candidate) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.Volunteer.ID < b.Volunteer.ID
}

func foldCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func foldCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		f := foldCategory(c)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
