package domain

import (
	"strings"
	"time"
)

// Seniority enumerates engineer experience levels.
type Seniority string

const (
	SeniorityJunior Seniority = "junior"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
)

// Valid reports whether s is a known seniority.
func (s Seniority) Valid() bool {
	switch s {
	case SeniorityJunior, SeniorityMid, SenioritySenior:
		return true
	}
	return false
}

// CapacityTiers are the accepted maxCapacity values.
var CapacityTiers = []int{25, 50, 75, 100}

// ValidCapacityTier reports whether v is one of CapacityTiers.
func ValidCapacityTier(v int) bool {
	for _, tier := range CapacityTiers {
		if tier == v {
			return true
		}
	}
	return false
}

const (
	DefaultMaxCapacity = 100
	DefaultDepartment  = "Engineering"
)

// Engineer is the registry record for an engineer account.
type Engineer struct {
	ID          string
	Name        string
	Email       string
	Department  string
	Skills      []string
	Seniority   Seniority
	MaxCapacity int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Matches reports whether query is a case-insensitive substring of the name or any skill.
func (e *Engineer) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Name), q) {
		return true
	}
	for _, skill := range e.Skills {
		if strings.Contains(strings.ToLower(skill), q) {
			return true
		}
	}
	return false
}

// NormalizeSkills trims, drops empties and de-duplicates (case-insensitively), keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, raw := range skills {
		skill := strings.TrimSpace(raw)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}
