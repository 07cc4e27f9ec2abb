package dto

import (
	"time"

	"github.com/spec-kit/erms/internal/domain"
)

// ProjectRequest payload for creating or replacing a project.
type ProjectRequest struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Description    string   `json:"description" validate:"max=5000"`
	RequiredSkills []string `json:"requiredSkills" validate:"max=50,dive,max=60"`
	TeamSize       int      `json:"teamSize"`
	Status         string   `json:"status" validate:"omitempty,oneof=planning active completed"`
	StartDate      string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string   `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// ProjectResponse is the public view of a project.
type ProjectResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	RequiredSkills []string             `json:"requiredSkills"`
	TeamSize       int                  `json:"teamSize"`
	Status         domain.ProjectStatus `json:"status"`
	StartDate      string               `json:"startDate"`
	EndDate        string               `json:"endDate"`
	ManagerID      string               `json:"managerId"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// NewProjectResponse maps a project.
func NewProjectResponse(p *domain.Project) ProjectResponse {
	skills := p.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	return ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		RequiredSkills: skills,
		TeamSize:       p.TeamSize,
		Status:         p.Status,
		StartDate:      domain.FormatDate(p.StartDate),
		EndDate:        domain.FormatDate(p.EndDate),
		ManagerID:      p.ManagerID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// NewProjectResponses maps a list of projects.
func NewProjectResponses(projects []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, NewProjectResponse(&projects[i]))
	}
	return out
}
