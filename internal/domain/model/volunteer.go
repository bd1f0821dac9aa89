package model

import "strings"

// Volunteer is a person from the volunteer directory. Preferences maps a
// task category (e.g. "ticketSales") to a free-text preference label.
type Volunteer struct {
	ID          string
	FirstName   string
	LastName    string
	Skills      []string
	Preferences map[string]string
}

// NormalizeSkill folds a skill name for comparison.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SkillSet returns the normalized set of skills, ignoring blanks.
func SkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if n := NormalizeSkill(s); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
