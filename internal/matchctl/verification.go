package matchctl

import (
	"context"
	"fmt"

	"github.com/okian/volmatch/internal/domain/model"
	"github.com/okian/volmatch/internal/domain/types"
	"github.com/okian/volmatch/pkg/logger"
)

// Report summarises a verification run.
type Report struct {
	EventID    string
	Volunteers []types.Volunteer
}

// Verify lists the matches for eventID twice and checks that both listings
// are identical. When requiredSkills is not empty every listed volunteer
// must share at least one of them, compared case-insensitively.
func Verify(ctx context.Context, c *Client, eventID string, requiredSkills []string) (Report, error) {
	first, err := c.List(ctx, eventID)
	if err != nil {
		return Report{}, fmt.Errorf("first listing: %w", err)
	}
	second, err := c.List(ctx, eventID)
	if err != nil {
		return Report{}, fmt.Errorf("second listing: %w", err)
	}

	if err := compareOrder(first, second); err != nil {
		return Report{}, err
	}
	if err := checkSkills(first, requiredSkills); err != nil {
		return Report{}, err
	}

	logger.Get().Debug(ctx, "verification passed",
		logger.String("eventId", eventID),
		logger.Int("volunteers", len(first)))
	return Report{EventID: eventID, Volunteers: first}, nil
}

func compareOrder(a, b []types.Volunteer) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d then %d volunteers", ErrOrderChanged, len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return fmt.Errorf("%w: position %d was %s then %s", ErrOrderChanged, i, a[i].ID, b[i].ID)
		}
	}
	return nil
}

func checkSkills(volunteers []types.Volunteer, required []string) error {
	if len(required) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[model.NormalizeSkill(s)] = struct{}{}
	}
	for _, v := range volunteers {
		if !sharesSkill(v.Skills, want) {
			return fmt.Errorf("%w: %s", ErrSkillMismatch, v.ID)
		}
	}
	return nil
}

func sharesSkill(skills []string, want map[string]struct{}) bool {
	for _, s := range skills {
		if _, ok := want[model.NormalizeSkill(s)]; ok {
			return true
		}
	}
	return false
}
