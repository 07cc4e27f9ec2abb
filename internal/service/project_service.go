package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/events"
	"github.com/spec-kit/erms/internal/repository"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

// ProjectService manages the project registry.
type ProjectService struct {
	projects   repository.ProjectRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProjectDependencies bundles collaborators for the project service.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ProjectInput carries the writable project fields for create and update.
type ProjectInput struct {
	Name           string
	Description    string
	RequiredSkills []string
	TeamSize       int
	Status         domain.ProjectStatus
	StartDate      time.Time
	EndDate        time.Time
}

// ProjectListFilter describes listing filters.
type ProjectListFilter struct {
	Status     *domain.ProjectStatus
	ManagerID  *string
	SearchTerm *string
}

// NewProjectService constructs the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	s := &ProjectService{
		projects:   deps.ProjectRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// CreateProject registers a project managed by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, caller domain.Caller, input ProjectInput) (*domain.Project, error) {
	if !caller.CanManage() {
		return nil, apperrors.NewForbidden("manager role required")
	}
	if input.Status == "" {
		input.Status = domain.ProjectStatusPlanning
	}
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	project := &domain.Project{ManagerID: caller.ID}
	applyProjectInput(project, input)
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, caller, events.EventProjectCreated, project, "")
	return project, nil
}

// GetProject fetches a project.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "project", map[string]any{"project_id": id})
	}
	return project, nil
}

// ListProjects lists projects matching filter.
func (s *ProjectService) ListProjects(ctx context.Context, filter ProjectListFilter) ([]domain.Project, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *filter.Status})
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) == "" {
		filter.SearchTerm = nil
	}
	projects, err := s.projects.List(ctx, repository.ProjectFilter{
		Status:     filter.Status,
		ManagerID:  filter.ManagerID,
		SearchTerm: filter.SearchTerm,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

// UpdateProject replaces the writable fields of a project. Status moves freely between values.
func (s *ProjectService) UpdateProject(ctx context.Context, caller domain.Caller, id string, input ProjectInput) (*domain.Project, error) {
	if !caller.CanManage() {
		return nil, apperrors.NewForbidden("manager role required")
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "project", map[string]any{"project_id": id})
	}
	if input.Status == "" {
		input.Status = project.Status
	}
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	oldStatus := project.Status
	applyProjectInput(project, input)
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, mapRepoError(err, "project", map[string]any{"project_id": id})
	}
	s.publish(ctx, caller, events.EventProjectUpdated, project, oldStatus)
	return project, nil
}

// DeleteProject removes a project that no assignment references.
func (s *ProjectService) DeleteProject(ctx context.Context, caller domain.Caller, id string) error {
	if !caller.CanManage() {
		return apperrors.NewForbidden("manager role required")
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "project", map[string]any{"project_id": id})
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return mapRepoError(err, "project", map[string]any{"project_id": id})
	}
	s.publish(ctx, caller, events.EventProjectDeleted, project, "")
	return nil
}

func applyProjectInput(project *domain.Project, input ProjectInput) {
	project.Name = strings.TrimSpace(input.Name)
	project.Description = strings.TrimSpace(input.Description)
	project.RequiredSkills = domain.NormalizeSkills(input.RequiredSkills)
	project.TeamSize = input.TeamSize
	project.Status = input.Status
	project.StartDate = domain.Day(input.StartDate)
	project.EndDate = domain.Day(input.EndDate)
}

func validateProjectInput(input ProjectInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "is required"
	}
	if input.TeamSize < 1 {
		details["teamSize"] = "must be at least 1"
	}
	if !input.Status.Valid() {
		details["status"] = "must be planning, active or completed"
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		details["dates"] = "startDate and endDate are required"
	} else if domain.Day(input.EndDate).Before(domain.Day(input.StartDate)) {
		details["endDate"] = "must not be before startDate"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid project", details)
	}
	return nil
}

func (s *ProjectService) publish(ctx context.Context, caller domain.Caller, eventType events.EventType, p *domain.Project, oldStatus domain.ProjectStatus) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: p.ID,
		Actor:     events.ActorFrom(caller),
		Timestamp: time.Now(),
		Payload: events.ProjectPayload{
			Name:      p.Name,
			Status:    p.Status,
			OldStatus: oldStatus,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
