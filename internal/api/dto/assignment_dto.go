package dto

import (
	"time"

	"github.com/spec-kit/erms/internal/domain"
)

// CreateAssignmentRequest payload. Allocation bounds are checked by the ledger
// after the engineer and project are resolved.
type CreateAssignmentRequest struct {
	EngineerID           string `json:"engineerId" validate:"required"`
	ProjectID            string `json:"projectId" validate:"required"`
	AllocationPercentage int    `json:"allocationPercentage"`
	StartDate            string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate              string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Role                 string `json:"role" validate:"max=80"`
}

// AssignmentResponse is the public view of an assignment. Listing responses
// also carry engineer and project display fields.
type AssignmentResponse struct {
	ID                   string               `json:"id"`
	EngineerID           string               `json:"engineerId"`
	ProjectID            string               `json:"projectId"`
	AllocationPercentage int                  `json:"allocationPercentage"`
	StartDate            string               `json:"startDate"`
	EndDate              string               `json:"endDate"`
	Role                 string               `json:"role"`
	CreatedAt            time.Time            `json:"createdAt"`
	EngineerName         string               `json:"engineerName,omitempty"`
	ProjectName          string               `json:"projectName,omitempty"`
	ProjectStatus        domain.ProjectStatus `json:"projectStatus,omitempty"`
}

// NewAssignmentResponse maps an assignment.
func NewAssignmentResponse(a *domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                   a.ID,
		EngineerID:           a.EngineerID,
		ProjectID:            a.ProjectID,
		AllocationPercentage: a.AllocationPercentage,
		StartDate:            domain.FormatDate(a.StartDate),
		EndDate:              domain.FormatDate(a.EndDate),
		Role:                 a.Role,
		CreatedAt:            a.CreatedAt,
	}
}

// NewAssignmentViewResponses maps joined assignment rows.
func NewAssignmentViewResponses(views []domain.AssignmentView) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(views))
	for i := range views {
		resp := NewAssignmentResponse(&views[i].Assignment)
		resp.EngineerName = views[i].EngineerName
		resp.ProjectName = views[i].ProjectName
		resp.ProjectStatus = views[i].ProjectStatus
		out = append(out, resp)
	}
	return out
}
