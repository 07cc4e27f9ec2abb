package domain

import (
	"strings"
	"time"
)

// ProjectStatus enumerates project lifecycle states. Transitions are free-form.
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is a unit of work engineers get assigned to.
type Project struct {
	ID             string
	Name           string
	Description    string
	RequiredSkills []string
	TeamSize       int
	Status         ProjectStatus
	StartDate      time.Time
	EndDate        time.Time
	ManagerID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Matches reports whether query is a case-insensitive substring of the name, description or a required skill.
func (p *Project) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, skill := range p.RequiredSkills {
		if strings.Contains(strings.ToLower(skill), q) {
			return true
		}
	}
	return false
}
