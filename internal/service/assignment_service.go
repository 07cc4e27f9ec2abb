package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/events"
	"github.com/spec-kit/erms/internal/ledger"
	"github.com/spec-kit/erms/internal/observability"
	"github.com/spec-kit/erms/internal/repository"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

// AssignmentService admits, lists and removes assignments.
type AssignmentService struct {
	engineers   repository.EngineerRepository
	projects    repository.ProjectRepository
	assignments repository.AssignmentRepository
	capacity    *CapacityService
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	EngineerRepo   repository.EngineerRepository
	ProjectRepo    repository.ProjectRepository
	AssignmentRepo repository.AssignmentRepository
	Capacity       *CapacityService
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// AssignmentCreateInput describes a new assignment.
type AssignmentCreateInput struct {
	EngineerID           string
	ProjectID            string
	AllocationPercentage int
	StartDate            time.Time
	EndDate              time.Time
	Role                 string
}

// AssignmentListFilter describes listing filters.
type AssignmentListFilter struct {
	EngineerID    *string
	ProjectID     *string
	ProjectStatus *domain.ProjectStatus
	SearchTerm    *string
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	s := &AssignmentService{
		engineers:   deps.EngineerRepo,
		projects:    deps.ProjectRepo,
		assignments: deps.AssignmentRepo,
		capacity:    deps.Capacity,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// CreateAssignment admits the assignment unless it would push the engineer's
// peak overlapping allocation above their maxCapacity. The check and insert
// run under the engineer's ledger lock, so concurrent admissions for the same
// engineer cannot both slip under the limit.
func (s *AssignmentService) CreateAssignment(ctx context.Context, caller domain.Caller, input AssignmentCreateInput) (*domain.Assignment, error) {
	if !caller.CanManage() {
		return nil, apperrors.NewForbidden("manager role required")
	}

	if _, err := s.engineers.GetByID(ctx, input.EngineerID); err != nil {
		return nil, mapRepoError(err, "engineer", map[string]any{"engineer_id": input.EngineerID})
	}
	if _, err := s.projects.GetByID(ctx, input.ProjectID); err != nil {
		return nil, mapRepoError(err, "project", map[string]any{"project_id": input.ProjectID})
	}
	if err := validateAssignmentInput(input); err != nil {
		return nil, err
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = domain.DefaultAssignmentRole
	}
	assignment := &domain.Assignment{
		EngineerID:           input.EngineerID,
		ProjectID:            input.ProjectID,
		AllocationPercentage: input.AllocationPercentage,
		StartDate:            domain.Day(input.StartDate),
		EndDate:              domain.Day(input.EndDate),
		Role:                 role,
	}

	err := s.assignments.WithEngineerLock(ctx, input.EngineerID, func(ctx context.Context, tx repository.LedgerTx) error {
		existing, err := tx.Assignments(ctx)
		if err != nil {
			return err
		}
		engineer := tx.Engineer()
		peak := ledger.PeakWith(ledger.FromAssignments(existing), ledger.Entry{
			Start:      assignment.StartDate,
			End:        assignment.EndDate,
			Allocation: assignment.AllocationPercentage,
		})
		if peak > engineer.MaxCapacity {
			return apperrors.NewCapacityExceeded("assignment would exceed engineer capacity", map[string]any{
				"engineer_id":  engineer.ID,
				"peak":         peak,
				"max_capacity": engineer.MaxCapacity,
				"available":    max(0, engineer.MaxCapacity-(peak-assignment.AllocationPercentage)),
			})
		}
		return tx.InsertAssignment(ctx, assignment)
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
			s.metrics.RecordAdmission(false)
			s.logger.Info("assignment rejected",
				zap.String("engineer_id", input.EngineerID),
				zap.String("project_id", input.ProjectID),
				zap.Int("allocation", input.AllocationPercentage))
			return nil, err
		}
		if errors.Is(err, repository.ErrReferenced) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": input.ProjectID})
		}
		return nil, mapRepoError(err, "engineer", map[string]any{"engineer_id": input.EngineerID})
	}

	s.metrics.RecordAdmission(true)
	s.capacity.Invalidate(ctx, assignment.EngineerID)
	s.publish(ctx, caller, events.EventAssignmentCreated, assignment)
	return assignment, nil
}

// GetAssignment fetches an assignment visible to the caller.
func (s *AssignmentService) GetAssignment(ctx context.Context, caller domain.Caller, id string) (*domain.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "assignment", map[string]any{"assignment_id": id})
	}
	if !caller.CanManage() && !caller.Owns(assignment.EngineerID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return assignment, nil
}

// ListAssignments returns assignments joined with engineer and project names.
// Engineers only ever see their own assignments.
func (s *AssignmentService) ListAssignments(ctx context.Context, caller domain.Caller, filter AssignmentListFilter) ([]domain.AssignmentView, error) {
	if !caller.CanManage() {
		if filter.EngineerID != nil && !caller.Owns(*filter.EngineerID) {
			return nil, apperrors.NewForbidden("engineers may only list their own assignments")
		}
		self := caller.ID
		filter.EngineerID = &self
	}
	if filter.ProjectStatus != nil && !filter.ProjectStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *filter.ProjectStatus})
	}
	views, err := s.assignments.List(ctx, repository.AssignmentFilter{
		EngineerID:    filter.EngineerID,
		ProjectID:     filter.ProjectID,
		ProjectStatus: filter.ProjectStatus,
		SearchTerm:    filter.SearchTerm,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return views, nil
}

// RemoveAssignment deletes an assignment. Removal only frees capacity, so no recheck is needed.
func (s *AssignmentService) RemoveAssignment(ctx context.Context, caller domain.Caller, id string) error {
	if !caller.CanManage() {
		return apperrors.NewForbidden("manager role required")
	}
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "assignment", map[string]any{"assignment_id": id})
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return mapRepoError(err, "assignment", map[string]any{"assignment_id": id})
	}
	s.capacity.Invalidate(ctx, assignment.EngineerID)
	s.publish(ctx, caller, events.EventAssignmentRemoved, assignment)
	return nil
}

func validateAssignmentInput(input AssignmentCreateInput) error {
	details := map[string]any{}
	if input.AllocationPercentage < 1 || input.AllocationPercentage > 100 {
		details["allocationPercentage"] = "must be between 1 and 100"
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		details["dates"] = "startDate and endDate are required"
	} else if domain.Day(input.EndDate).Before(domain.Day(input.StartDate)) {
		details["endDate"] = "must not be before startDate"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid assignment", details)
	}
	return nil
}

func (s *AssignmentService) publish(ctx context.Context, caller domain.Caller, eventType events.EventType, a *domain.Assignment) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: a.ID,
		Actor:     events.ActorFrom(caller),
		Timestamp: time.Now(),
		Payload: events.AssignmentPayload{
			EngineerID:           a.EngineerID,
			ProjectID:            a.ProjectID,
			AllocationPercentage: a.AllocationPercentage,
			StartDate:            domain.FormatDate(a.StartDate),
			EndDate:              domain.FormatDate(a.EndDate),
			Role:                 a.Role,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
