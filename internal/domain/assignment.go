package domain

import (
	"strings"
	"time"
)

// DefaultAssignmentRole is used when an assignment is created without a role.
const DefaultAssignmentRole = "Developer"

// Assignment commits a share of an engineer's capacity to a project over an inclusive day range.
type Assignment struct {
	ID                   string
	EngineerID           string
	ProjectID            string
	AllocationPercentage int
	StartDate            time.Time
	EndDate              time.Time
	Role                 string
	CreatedAt            time.Time
}

// AssignmentView joins an assignment with the display fields of its engineer and project.
type AssignmentView struct {
	Assignment
	EngineerName  string
	ProjectName   string
	ProjectStatus ProjectStatus
}

// Matches reports whether query is a case-insensitive substring of the engineer, project or role.
func (v *AssignmentView) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{v.EngineerName, v.ProjectName, v.Role} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// CapacitySummary is an engineer's committed and free allocation on a given day.
type CapacitySummary struct {
	EngineerID        string    `json:"engineerId"`
	AsOf              time.Time `json:"asOf"`
	MaxCapacity       int       `json:"maxCapacity"`
	TotalAllocated    int       `json:"totalAllocated"`
	AvailableCapacity int       `json:"availableCapacity"`
}
