// Package eligibility filters a volunteer pool by skill compatibility with an event.
package eligibility

import (
	"fmt"
	"strings"

	"github.com/okian/volmatch/internal/domain/model"
)

// Policy decides how a volunteer's skills must cover the required set.
type Policy string

// Supported policies.
const (
	// PolicyAny admits a volunteer sharing at least one required skill.
	PolicyAny Policy = "any"
	// PolicyAll admits a volunteer holding every required skill.
	PolicyAll Policy = "all"
)

// ParsePolicy reads a policy name. Empty means PolicyAny.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAny:
		return PolicyAny, nil
	case PolicyAll:
		return PolicyAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Matcher filters volunteers against an event's required skills.
type Matcher struct {
	policy Policy
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithPolicy sets the eligibility policy.
func WithPolicy(p Policy) Option {
	return func(m *Matcher) {
		if p == PolicyAny || p == PolicyAll {
			m.policy = p
		}
	}
}

// NewMatcher creates a matcher; the default policy is PolicyAny.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{policy: PolicyAny}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the active policy.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// Eligible reports whether v qualifies for a required skill set. An empty
// required set admits everyone.
func (m *Matcher) Eligible(required map[string]struct{}, v model.Volunteer) bool {
	if len(required) == 0 {
		return true
	}
	have := model.SkillSet(v.Skills)
	hits := 0
	for skill := range required {
		if _, ok := have[skill]; ok {
			hits++
			if m.policy == PolicyAny {
				return true
			}
		}
	}
	return m.policy == PolicyAll && hits == len(required)
}

// Filter returns the eligible volunteers of pool, preserving pool order.
// The pool is not modified.
func (m *Matcher) Filter(requiredSkills []string, pool []model.Volunteer) []model.Volunteer {
	required := model.SkillSet(requiredSkills)
	out := make([]model.Volunteer, 0, len(pool))
	for _, v := range pool {
		if m.Eligible(required, v) {
			out = append(out, v)
		}
	}
	return out
}
