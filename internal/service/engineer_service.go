package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/erms/internal/domain"
	"github.com/spec-kit/erms/internal/events"
	"github.com/spec-kit/erms/internal/ledger"
	"github.com/spec-kit/erms/internal/repository"
	apperrors "github.com/spec-kit/erms/pkg/util/errorutil"
)

// EngineerService manages the engineer registry.
type EngineerService struct {
	engineers   repository.EngineerRepository
	assignments repository.AssignmentRepository
	capacity    *CapacityService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// EngineerDependencies bundles collaborators for the engineer service.
type EngineerDependencies struct {
	EngineerRepo   repository.EngineerRepository
	AssignmentRepo repository.AssignmentRepository
	Capacity       *CapacityService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// EngineerUpdateInput holds optional profile changes; nil fields are left untouched.
type EngineerUpdateInput struct {
	Skills      *[]string
	Seniority   *domain.Seniority
	MaxCapacity *int
	Department  *string
}

// NewEngineerService constructs the service.
func NewEngineerService(deps EngineerDependencies) *EngineerService {
	s := &EngineerService{
		engineers:   deps.EngineerRepo,
		assignments: deps.AssignmentRepo,
		capacity:    deps.Capacity,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// GetEngineer fetches an engineer.
func (s *EngineerService) GetEngineer(ctx context.Context, id string) (*domain.Engineer, error) {
	engineer, err := s.engineers.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "engineer", map[string]any{"engineer_id": id})
	}
	return engineer, nil
}

// ListEngineers lists engineers, optionally narrowed by a name/skill query.
func (s *EngineerService) ListEngineers(ctx context.Context, query string) ([]domain.Engineer, error) {
	filter := repository.EngineerFilter{}
	if q := strings.TrimSpace(query); q != "" {
		filter.SearchTerm = &q
	}
	engineers, err := s.engineers.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return engineers, nil
}

// UpdateEngineer applies profile changes. Only the engineer themself or an
// admin may edit a profile. Lowering maxCapacity below the peak allocation
// committed from today onwards is rejected.
func (s *EngineerService) UpdateEngineer(ctx context.Context, caller domain.Caller, id string, input EngineerUpdateInput) (*domain.Engineer, error) {
	if !caller.Owns(id) && !caller.IsAdmin() {
		return nil, apperrors.NewForbidden("engineers may only edit their own profile")
	}
	if err := validateEngineerUpdate(input); err != nil {
		return nil, err
	}

	var (
		updated *domain.Engineer
		oldMax  int
	)
	err := s.assignments.WithEngineerLock(ctx, id, func(ctx context.Context, tx repository.LedgerTx) error {
		current := tx.Engineer()
		oldMax = current.MaxCapacity
		next := *current
		if input.Skills != nil {
			next.Skills = domain.NormalizeSkills(*input.Skills)
		}
		if input.Seniority != nil {
			next.Seniority = *input.Seniority
		}
		if input.Department != nil {
			next.Department = strings.TrimSpace(*input.Department)
		}
		if input.MaxCapacity != nil {
			next.MaxCapacity = *input.MaxCapacity
		}

		if next.MaxCapacity < current.MaxCapacity {
			existing, err := tx.Assignments(ctx)
			if err != nil {
				return err
			}
			if peak := committedPeak(existing, s.capacity.Today()); peak > next.MaxCapacity {
				return apperrors.NewCapacityExceeded("maxCapacity is below committed allocation", map[string]any{
					"engineer_id":        id,
					"committed_peak":     peak,
					"requested_capacity": next.MaxCapacity,
				})
			}
		}
		if err := tx.UpdateEngineer(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, "engineer", map[string]any{"engineer_id": id})
	}

	s.capacity.Invalidate(ctx, id)
	s.publish(ctx, caller, events.EventEngineerUpdated, id, events.EngineerUpdatedPayload{
		OldMaxCapacity: oldMax,
		NewMaxCapacity: updated.MaxCapacity,
		Seniority:      updated.Seniority,
		Skills:         updated.Skills,
	})
	return updated, nil
}

// DeleteEngineer removes an engineer account. Admin only; rejected while assignments reference it.
func (s *EngineerService) DeleteEngineer(ctx context.Context, caller domain.Caller, id string) error {
	if !caller.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	if err := s.engineers.Delete(ctx, id); err != nil {
		return mapRepoError(err, "engineer", map[string]any{"engineer_id": id})
	}
	s.capacity.Invalidate(ctx, id)
	s.publish(ctx, caller, events.EventEngineerDeleted, id, nil)
	return nil
}

// committedPeak is the peak allocation over assignments still running on or after today.
func committedPeak(assignments []domain.Assignment, today time.Time) int {
	entries := ledger.FromAssignments(assignments)
	last := today
	for _, e := range entries {
		if e.End.After(last) {
			last = e.End
		}
	}
	return ledger.Peak(entries, today, last)
}

func validateEngineerUpdate(input EngineerUpdateInput) error {
	details := map[string]any{}
	if input.MaxCapacity != nil && !domain.ValidCapacityTier(*input.MaxCapacity) {
		details["maxCapacity"] = domain.CapacityTiers
	}
	if input.Seniority != nil && !input.Seniority.Valid() {
		details["seniority"] = "must be junior, mid or senior"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid engineer profile", details)
	}
	return nil
}

func (s *EngineerService) publish(ctx context.Context, caller domain.Caller, eventType events.EventType, engineerID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: engineerID,
		Actor:     events.ActorFrom(caller),
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
