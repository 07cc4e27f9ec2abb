package dto

import (
	"time"

	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/ledger"
)

// EngineerResponse is the public view of an engineer.
type EngineerResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Department  string           `json:"department"`
	Skills      []string         `json:"skills"`
	Seniority   domain.Seniority `json:"seniority"`
	MaxCapacity int              `json:"maxCapacity"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// UpdateEngineerRequest is a partial profile update; omitted fields are left untouched.
type UpdateEngineerRequest struct {
	Skills      *[]string `json:"skills" validate:"omitempty,max=50,dive,max=60"`
	Seniority   *string   `json:"seniority" validate:"omitempty,oneof=junior mid senior"`
	MaxCapacity *int      `json:"maxCapacity" validate:"omitempty,oneof=25 50 75 100"`
	Department  *string   `json:"department" validate:"omitempty,max=120"`
}

// CapacityResponse reports an engineer's allocation on one day.
type CapacityResponse struct {
	Engineer          EngineerResponse `json:"engineer"`
	AsOf              string           `json:"asOf"`
	MaxCapacity       int              `json:"maxCapacity"`
	TotalAllocated    int              `json:"totalAllocated"`
	AvailableCapacity int              `json:"availableCapacity"`
}

// TimelineStep is a run of days with constant committed allocation.
type TimelineStep struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Allocated int    `json:"allocated"`
}

// TimelineResponse is the allocation step function of an engineer over a range.
type TimelineResponse struct {
	EngineerID  string         `json:"engineerId"`
	MaxCapacity int            `json:"maxCapacity"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Steps       []TimelineStep `json:"steps"`
}

// NewEngineerResponse maps an engineer.
func NewEngineerResponse(e *domain.Engineer) EngineerResponse {
	skills := e.Skills
	if skills == nil {
		skills = []string{}
	}
	return EngineerResponse{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Department:  e.Department,
		Skills:      skills,
		Seniority:   e.Seniority,
		MaxCapacity: e.MaxCapacity,
		UpdatedAt:   e.UpdatedAt,
	}
}

// NewEngineerResponses maps a list of engineers.
func NewEngineerResponses(engineers []domain.Engineer) []EngineerResponse {
	out := make([]EngineerResponse, 0, len(engineers))
	for i := range engineers {
		out = append(out, NewEngineerResponse(&engineers[i]))
	}
	return out
}

// NewCapacityResponse maps a capacity summary for engineer.
func NewCapacityResponse(e *domain.Engineer, s domain.CapacitySummary) CapacityResponse {
	return CapacityResponse{
		Engineer:          NewEngineerResponse(e),
		AsOf:              domain.FormatDate(s.AsOf),
		MaxCapacity:       s.MaxCapacity,
		TotalAllocated:    s.TotalAllocated,
		AvailableCapacity: s.AvailableCapacity,
	}
}

// NewTimelineResponse maps ledger steps.
func NewTimelineResponse(e *domain.Engineer, from, to time.Time, steps []ledger.Step) TimelineResponse {
	out := make([]TimelineStep, 0, len(steps))
	for _, s := range steps {
		out = append(out, TimelineStep{
			StartDate: domain.FormatDate(s.Start),
			EndDate:   domain.FormatDate(s.End),
			Allocated: s.Allocated,
		})
	}
	return TimelineResponse{
		EngineerID:  e.ID,
		MaxCapacity: e.MaxCapacity,
		From:        domain.FormatDate(from),
		To:          domain.FormatDate(to),
		Steps:       out,
	}
}
